package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinv "github.com/jhoicas/inventario-produccion/internal/application/inventory"
	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-produccion/internal/domain/inventory"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
	"github.com/jhoicas/inventario-produccion/pkg/logger"
	"github.com/jhoicas/inventario-produccion/pkg/metrics"
)

// LineInput línea de una nueva orden de compra.
type LineInput struct {
	ItemID          string
	ColorID         string
	OrderedQuantity int64
	UnitPrice       decimal.Decimal
}

// CreateInput datos de una nueva orden de compra.
type CreateInput struct {
	SupplierID string
	Kind       string
	ExpectedAt *time.Time
	Lines      []LineInput
}

// ReceiptInput cantidad recibida ahora para una línea.
type ReceiptInput struct {
	LineID   string
	Quantity int64
}

// ReceiptResult orden actualizada y líneas que quedaron sobre-recibidas con este lote.
type ReceiptResult struct {
	Order             *entity.PurchaseOrder
	OverReceivedLines []string
	MovementsRecorded int
}

// ReceivingUseCase órdenes de compra y recepciones parciales contra sus líneas.
type ReceivingUseCase struct {
	repos  repository.Repos
	tx     appinv.TxRunner
	ledger *appinv.StockLedger
	log    *logger.Logger
	now    func() time.Time
}

// NewReceivingUseCase construye el caso de uso de recepción de compras.
func NewReceivingUseCase(repos repository.Repos, tx appinv.TxRunner, ledger *appinv.StockLedger, log *logger.Logger) *ReceivingUseCase {
	return &ReceivingUseCase{repos: repos, tx: tx, ledger: ledger, log: log.Component("purchase_receiving"), now: time.Now}
}

// Create registra la orden. Una orden received-directly se recibe completa al crearse:
// escribe las entradas al libro en la misma transacción y queda en estado received.
func (uc *ReceivingUseCase) Create(ctx context.Context, in CreateInput) (*entity.PurchaseOrder, error) {
	if in.SupplierID == "" {
		return nil, domain.Invalid("supplier_id", "requerido")
	}
	switch in.Kind {
	case entity.PurchaseKindOrdered:
		if in.ExpectedAt == nil {
			return nil, domain.Invalid("expected_at", "requerido para órdenes pedidas")
		}
	case entity.PurchaseKindReceivedDirectly:
	default:
		return nil, domain.Invalid("kind", fmt.Sprintf("tipo de orden desconocido %q", in.Kind))
	}
	if len(in.Lines) == 0 {
		return nil, domain.Invalid("lines", "se requiere al menos una línea")
	}
	ids := make([]string, len(in.Lines))
	for i, l := range in.Lines {
		if l.OrderedQuantity <= 0 {
			return nil, domain.Invalid(fmt.Sprintf("lines[%d].ordered_quantity", i), "debe ser positiva")
		}
		if l.OrderedQuantity > entity.MaxQuantity {
			return nil, domain.Invalid(fmt.Sprintf("lines[%d].ordered_quantity", i), fmt.Sprintf("máximo %d", entity.MaxQuantity))
		}
		if l.UnitPrice.IsNegative() {
			return nil, domain.Invalid(fmt.Sprintf("lines[%d].unit_price", i), "no puede ser negativo")
		}
		ids[i] = l.ItemID
	}
	items, err := appinv.LoadItems(ctx, uc.repos, ids)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	order := &entity.PurchaseOrder{
		ID:         uuid.New().String(),
		SupplierID: in.SupplierID,
		Kind:       in.Kind,
		Status:     entity.PurchaseStatusOpen,
		ExpectedAt: in.ExpectedAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for i, l := range in.Lines {
		item := items[l.ItemID]
		if err := checkReceivable(item, l.ColorID, fmt.Sprintf("lines[%d]", i)); err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, entity.PurchaseOrderLine{
			ID:              uuid.New().String(),
			OrderID:         order.ID,
			ItemID:          item.ID,
			ColorID:         item.StockColor(l.ColorID),
			OrderedQuantity: l.OrderedQuantity,
			UnitPrice:       l.UnitPrice,
			Position:        i + 1,
		})
	}

	keys := []string{entity.PurchaseOrderLockKey(order.ID)}
	direct := order.Kind == entity.PurchaseKindReceivedDirectly
	if direct {
		for i := range order.Lines {
			order.Lines[i].ReceivedQuantity = order.Lines[i].OrderedQuantity
			keys = append(keys, lineKey(order.Lines[i]).LockKey())
		}
		order.Status = domaininv.PurchaseStatus(order.Lines)
	}

	var movements []*entity.StockMovement
	err = uc.tx.Run(ctx, entity.SortedLockKeys(keys), func(r repository.Repos) error {
		if err := r.PurchaseOrders.Create(ctx, order); err != nil {
			return err
		}
		if !direct {
			return nil
		}
		for _, l := range order.Lines {
			mov, err := uc.ledger.RecordInTx(ctx, r, items[l.ItemID], appinv.RecordInput{
				ItemID:   l.ItemID,
				Quantity: l.ReceivedQuantity,
				Kind:     entity.MovementKindInbound,
				ColorID:  l.ColorID,
				Origin:   order.ID,
				Note:     "compra recibida directamente",
			})
			if err != nil {
				return err
			}
			movements = append(movements, mov)
		}
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("supplier_id", in.SupplierID).Msg("orden de compra rechazada")
		return nil, err
	}
	appinv.CountMovements(movements...)
	uc.log.Info().
		Str("purchase_order_id", order.ID).
		Str("kind", order.Kind).
		Str("status", order.Status).
		Int("lines", len(order.Lines)).
		Msg("orden de compra creada")
	return order, nil
}

// Get devuelve la orden con sus líneas.
func (uc *ReceivingUseCase) Get(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	order, err := uc.repos.PurchaseOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NotFound("orden de compra", id)
	}
	return order, nil
}

// Receive aplica un lote de recepciones. Las cantidades se acumulan por línea sin recortar:
// la sobre-recepción se acepta y se informa en OverReceivedLines. Cada cantidad positiva
// genera una entrada al libro; el estado se recalcula a partir de las líneas.
func (uc *ReceivingUseCase) Receive(ctx context.Context, id string, receipts []ReceiptInput) (*ReceiptResult, error) {
	defer metrics.ObserveSince("purchase_receive", time.Now())

	res, err := uc.receive(ctx, id, receipts)
	metrics.PurchaseReceipts.WithLabelValues(appinv.ResultLabel(err)).Inc()
	if err != nil {
		uc.log.Warn().Err(err).Str("purchase_order_id", id).Msg("recepción rechazada")
		return nil, err
	}
	if len(res.OverReceivedLines) > 0 {
		uc.log.Warn().Str("purchase_order_id", id).Strs("over_received_lines", res.OverReceivedLines).Msg("sobre-recepción")
	}
	uc.log.Info().
		Str("purchase_order_id", id).
		Str("status", res.Order.Status).
		Int("movements", res.MovementsRecorded).
		Msg("recepción registrada")
	return res, nil
}

func (uc *ReceivingUseCase) receive(ctx context.Context, id string, receipts []ReceiptInput) (*ReceiptResult, error) {
	if len(receipts) == 0 {
		return nil, domain.Invalid("receipts", "se requiere al menos una recepción")
	}
	order, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Líneas repetidas en el lote se suman.
	var lineIDs []string
	qtyByLine := make(map[string]int64)
	for i, rc := range receipts {
		if rc.Quantity < 0 {
			return nil, domain.Invalid(fmt.Sprintf("receipts[%d].quantity", i), "no puede ser negativa")
		}
		if rc.Quantity > entity.MaxQuantity-qtyByLine[rc.LineID] {
			return nil, domain.Invalid(fmt.Sprintf("receipts[%d].quantity", i), fmt.Sprintf("máximo %d por línea", entity.MaxQuantity))
		}
		if _, ok := order.Line(rc.LineID); !ok {
			return nil, domain.NotFound("línea de la orden de compra "+order.ID, rc.LineID)
		}
		if _, ok := qtyByLine[rc.LineID]; !ok {
			lineIDs = append(lineIDs, rc.LineID)
		}
		qtyByLine[rc.LineID] += rc.Quantity
	}

	itemIDs := make([]string, 0, len(lineIDs))
	keys := []string{entity.PurchaseOrderLockKey(order.ID)}
	for _, lineID := range lineIDs {
		line, _ := order.Line(lineID)
		itemIDs = append(itemIDs, line.ItemID)
		if qtyByLine[lineID] > 0 {
			keys = append(keys, lineKey(*line).LockKey())
		}
	}
	items, err := appinv.LoadItems(ctx, uc.repos, itemIDs)
	if err != nil {
		return nil, err
	}

	res := &ReceiptResult{OverReceivedLines: []string{}}
	var movements []*entity.StockMovement
	err = uc.tx.Run(ctx, entity.SortedLockKeys(keys), func(r repository.Repos) error {
		locked, err := r.PurchaseOrders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.NotFound("orden de compra", id)
		}
		res.OverReceivedLines = res.OverReceivedLines[:0]
		movements = movements[:0]

		for _, lineID := range lineIDs {
			line, ok := locked.Line(lineID)
			if !ok {
				return domain.NotFound("línea de la orden de compra "+id, lineID)
			}
			qty := qtyByLine[lineID]
			if qty == 0 {
				continue
			}
			if qty > entity.MaxQuantity-line.ReceivedQuantity {
				return domain.Invalid("receipts", fmt.Sprintf("la línea %s superaría %d unidades recibidas", line.ID, entity.MaxQuantity))
			}
			mov, err := uc.ledger.RecordInTx(ctx, r, items[line.ItemID], appinv.RecordInput{
				ItemID:   line.ItemID,
				Quantity: qty,
				Kind:     entity.MovementKindInbound,
				ColorID:  line.ColorID,
				Origin:   id,
				Note:     "recepción de compra",
			})
			if err != nil {
				return err
			}
			movements = append(movements, mov)
			line.ReceivedQuantity += qty
			if line.OverReceived() {
				res.OverReceivedLines = append(res.OverReceivedLines, line.ID)
			}
		}

		locked.Status = domaininv.PurchaseStatus(locked.Lines)
		locked.UpdatedAt = uc.now()
		if err := r.PurchaseOrders.SaveReceipt(ctx, locked); err != nil {
			return err
		}
		res.Order = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	appinv.CountMovements(movements...)
	res.MovementsRecorded = len(movements)
	return res, nil
}

func checkReceivable(item *entity.Item, colorID, field string) error {
	if item.IsKit() {
		return domain.Invalid(field+".item_id", fmt.Sprintf("el kit %s no tiene stock propio", item.ID))
	}
	if item.TrackedByColor && colorID == "" {
		return domain.Invalid(field+".color_id", fmt.Sprintf("el ítem %s se controla por color", item.ID))
	}
	return nil
}

func lineKey(l entity.PurchaseOrderLine) entity.StockKey {
	return entity.StockKey{ItemID: l.ItemID, ColorID: l.ColorID}
}
