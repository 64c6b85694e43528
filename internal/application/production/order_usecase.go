package production

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	appinv "github.com/jhoicas/inventario-produccion/internal/application/inventory"
	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-produccion/internal/domain/inventory"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
	"github.com/jhoicas/inventario-produccion/pkg/logger"
	"github.com/jhoicas/inventario-produccion/pkg/metrics"
)

// OrderItemInput ítem a incluir en la orden.
type OrderItemInput struct {
	ItemID   string
	Role     string
	Quantity int64
}

// CreateOrderInput datos de una nueva orden de producción.
type CreateOrderInput struct {
	ColorID string
	Note    string
	Items   []OrderItemInput
}

// OrderUseCase crea, consulta y ejecuta órdenes de producción.
type OrderUseCase struct {
	repos  repository.Repos
	tx     appinv.TxRunner
	ledger *appinv.StockLedger
	log    *logger.Logger
	now    func() time.Time
}

// NewOrderUseCase construye el caso de uso de órdenes de producción.
func NewOrderUseCase(repos repository.Repos, tx appinv.TxRunner, ledger *appinv.StockLedger, log *logger.Logger) *OrderUseCase {
	return &OrderUseCase{repos: repos, tx: tx, ledger: ledger, log: log.Component("production_orders"), now: time.Now}
}

// Create registra una orden pendiente. Exige al menos un ítem fabricado; los kits deben ser
// ítems de tipo kit y los fabricados controlados por color exigen el color de la orden.
func (uc *OrderUseCase) Create(ctx context.Context, in CreateOrderInput) (*entity.ProductionOrder, error) {
	if len(in.Items) == 0 {
		return nil, domain.Invalid("items", "se requiere al menos un ítem")
	}
	ids := make([]string, 0, len(in.Items))
	manufactured := 0
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		if it.ItemID == "" {
			return nil, domain.Invalid(field+".item_id", "requerido")
		}
		if it.Quantity <= 0 {
			return nil, domain.Invalid(field+".quantity", "debe ser positiva")
		}
		if it.Quantity > entity.MaxQuantity {
			return nil, domain.Invalid(field+".quantity", fmt.Sprintf("máximo %d", entity.MaxQuantity))
		}
		switch it.Role {
		case entity.OrderItemRoleManufactured:
			manufactured++
		case entity.OrderItemRoleKit:
		default:
			return nil, domain.Invalid(field+".role", fmt.Sprintf("rol desconocido %q", it.Role))
		}
		ids = append(ids, it.ItemID)
	}
	if manufactured == 0 {
		return nil, domain.Invalid("items", "la orden necesita al menos un ítem con rol manufactured")
	}

	items, err := appinv.LoadItems(ctx, uc.repos, ids)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	order := &entity.ProductionOrder{
		ID:        uuid.New().String(),
		ColorID:   in.ColorID,
		Status:    entity.ProductionStatusPending,
		Note:      in.Note,
		CreatedAt: now,
	}
	for i, it := range in.Items {
		item := items[it.ItemID]
		field := fmt.Sprintf("items[%d].item_id", i)
		switch {
		case it.Role == entity.OrderItemRoleKit && !item.IsKit():
			return nil, domain.Invalid(field, fmt.Sprintf("el ítem %s no es un kit", item.ID))
		case it.Role == entity.OrderItemRoleManufactured && (!item.IsManufactured() || item.IsKit()):
			return nil, domain.Invalid(field, fmt.Sprintf("el ítem %s no es fabricado", item.ID))
		case it.Role == entity.OrderItemRoleManufactured && item.TrackedByColor && in.ColorID == "":
			return nil, domain.Invalid("color_id", fmt.Sprintf("el ítem %s se controla por color; la orden requiere color", item.ID))
		}
		order.Items = append(order.Items, entity.ProductionOrderItem{
			ID:       uuid.New().String(),
			OrderID:  order.ID,
			ItemID:   item.ID,
			Role:     it.Role,
			Quantity: it.Quantity,
			Position: i + 1,
		})
	}

	err = uc.tx.Run(ctx, nil, func(r repository.Repos) error {
		return r.ProductionOrders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", order.ID).Str("color_id", order.ColorID).Int("items", len(order.Items)).Msg("orden de producción creada")
	return order, nil
}

// Get devuelve la orden con sus ítems.
func (uc *OrderUseCase) Get(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	order, err := uc.repos.ProductionOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NotFound("orden de producción", id)
	}
	return order, nil
}

// ListItems ítems de la orden en orden de posición.
func (uc *OrderUseCase) ListItems(ctx context.Context, id string) ([]entity.ProductionOrderItem, error) {
	order, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return order.Items, nil
}

// stockLine movimiento planeado sobre una partición de stock.
type stockLine struct {
	item *entity.Item
	key  entity.StockKey
	qty  int64
}

// executionPlan consumo agregado de insumos, entradas de producto terminado y bloqueos necesarios.
type executionPlan struct {
	consume []stockLine
	credit  []stockLine
	keys    []string
}

// Execute consume los insumos y acredita los productos terminados de una orden pendiente.
// La verificación de suficiencia, los movimientos y el cambio de estado ocurren en una sola
// transacción con los bloqueos de todas las particiones afectadas: o se aplica todo o nada.
func (uc *OrderUseCase) Execute(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	defer metrics.ObserveSince("production_execute", time.Now())

	order, err := uc.execute(ctx, id)
	metrics.ProductionExecutions.WithLabelValues(appinv.ResultLabel(err)).Inc()
	if err != nil {
		if appinv.ResultLabel(err) == metrics.ResultError {
			uc.log.Error().Err(err).Str("order_id", id).Msg("error ejecutando orden de producción")
		} else {
			uc.log.Warn().Err(err).Str("order_id", id).Msg("ejecución de orden rechazada")
		}
		return nil, err
	}
	uc.log.Info().Str("order_id", order.ID).Str("color_id", order.ColorID).Msg("orden de producción completada")
	return order, nil
}

func (uc *OrderUseCase) execute(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	order, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.ProductionStatusPending {
		return nil, invalidState(order)
	}
	plan, err := uc.plan(ctx, uc.repos, order)
	if err != nil {
		return nil, err
	}

	var movements []*entity.StockMovement
	err = uc.tx.Run(ctx, plan.keys, func(r repository.Repos) error {
		locked, err := r.ProductionOrders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.NotFound("orden de producción", id)
		}
		if locked.Status != entity.ProductionStatusPending {
			return invalidState(locked)
		}
		// Las recetas pueden cambiar entre la planificación y el bloqueo.
		current, err := uc.plan(ctx, r, locked)
		if err != nil {
			return err
		}
		if !coveredBy(current.keys, plan.keys) {
			return &domain.ConcurrencyConflictError{Operation: "ejecutar orden " + id, Err: errors.New("la receta cambió durante la ejecución")}
		}

		for _, c := range current.consume {
			available, err := r.Balances.Get(ctx, c.key)
			if err != nil {
				return err
			}
			if available < c.qty {
				return &domain.InsufficientStockError{ItemID: c.item.ID, ColorID: c.key.ColorID, Required: c.qty, Available: available}
			}
		}

		for _, c := range current.consume {
			mov, err := uc.ledger.RecordInTx(ctx, r, c.item, appinv.RecordInput{
				ItemID:   c.item.ID,
				Quantity: -c.qty,
				Kind:     entity.MovementKindProduction,
				ColorID:  c.key.ColorID,
				Origin:   id,
				Note:     "consumo de producción",
			})
			if err != nil {
				return err
			}
			movements = append(movements, mov)
		}
		for _, c := range current.credit {
			mov, err := uc.ledger.RecordInTx(ctx, r, c.item, appinv.RecordInput{
				ItemID:   c.item.ID,
				Quantity: c.qty,
				Kind:     entity.MovementKindProduction,
				ColorID:  c.key.ColorID,
				Origin:   id,
				Note:     "entrada de producto terminado",
			})
			if err != nil {
				return err
			}
			movements = append(movements, mov)
		}

		completedAt := uc.now()
		if err := r.ProductionOrders.UpdateStatus(ctx, id, entity.ProductionStatusCompleted, &completedAt); err != nil {
			return err
		}
		locked.Status = entity.ProductionStatusCompleted
		locked.CompletedAt = &completedAt
		order = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	appinv.CountMovements(movements...)
	return order, nil
}

// plan expande un nivel las recetas de los ítems fabricados y resuelve la partición de cada movimiento.
func (uc *OrderUseCase) plan(ctx context.Context, r repository.Repos, order *entity.ProductionOrder) (*executionPlan, error) {
	if !order.HasManufactured() {
		return nil, domain.Invalid("items", "la orden necesita al menos un ítem con rol manufactured")
	}
	boms, err := loadBOMs(ctx, r, order.Items)
	if err != nil {
		return nil, err
	}
	for itemID, lines := range boms {
		if len(lines) == 0 {
			return nil, domain.Invalid("items", fmt.Sprintf("el ítem %s no tiene receta", itemID))
		}
	}
	reqs, err := domaininv.ExpandProductionOrder(order.Items, boms)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(reqs)+len(order.Items))
	for _, req := range reqs {
		ids = append(ids, req.ItemID)
	}
	for _, it := range order.Items {
		ids = append(ids, it.ItemID)
	}
	items, err := appinv.LoadItems(ctx, r, ids)
	if err != nil {
		return nil, err
	}

	plan := &executionPlan{}
	keys := []string{entity.ProductionOrderLockKey(order.ID)}
	for _, req := range reqs {
		item := items[req.ItemID]
		if item.TrackedByColor && order.ColorID == "" {
			return nil, domain.Invalid("color_id", fmt.Sprintf("el insumo %s se controla por color; la orden requiere color", item.ID))
		}
		key := entity.StockKey{ItemID: item.ID, ColorID: item.StockColor(order.ColorID)}
		plan.consume = append(plan.consume, stockLine{item: item, key: key, qty: req.Quantity})
		keys = append(keys, key.LockKey())
	}

	credited := make(map[string]int)
	for _, it := range order.Items {
		if it.Role != entity.OrderItemRoleManufactured {
			continue
		}
		item := items[it.ItemID]
		if item.TrackedByColor && order.ColorID == "" {
			return nil, domain.Invalid("color_id", fmt.Sprintf("el ítem %s se controla por color; la orden requiere color", item.ID))
		}
		if i, ok := credited[item.ID]; ok {
			plan.credit[i].qty += it.Quantity
			continue
		}
		key := entity.StockKey{ItemID: item.ID, ColorID: item.StockColor(order.ColorID)}
		credited[item.ID] = len(plan.credit)
		plan.credit = append(plan.credit, stockLine{item: item, key: key, qty: it.Quantity})
		keys = append(keys, key.LockKey())
	}
	plan.keys = entity.SortedLockKeys(keys)
	return plan, nil
}

func coveredBy(needed, held []string) bool {
	set := make(map[string]struct{}, len(held))
	for _, k := range held {
		set[k] = struct{}{}
	}
	for _, k := range needed {
		if _, ok := set[k]; !ok {
			return false
		}
	}
	return true
}

func invalidState(order *entity.ProductionOrder) error {
	return &domain.InvalidStateError{
		Resource: "orden de producción",
		ID:       order.ID,
		Status:   order.Status,
		Expected: entity.ProductionStatusPending,
	}
}
