package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
	"github.com/jhoicas/inventario-produccion/pkg/logger"
	"github.com/jhoicas/inventario-produccion/pkg/metrics"
)

const (
	defaultMovementLimit = 100
	maxMovementLimit     = 1000
)

// RecordInput entrada para agregar un movimiento al libro.
type RecordInput struct {
	ItemID   string
	Quantity int64 // con signo
	Kind     string
	ColorID  string
	Origin   string
	Note     string
}

// StockLedger libro append-only de movimientos de inventario.
// Es la única vía de mutación del stock: los demás componentes llaman a Record/RecordInTx.
// Los saldos nunca se guardan de forma independiente; el saldo materializado se
// actualiza en la misma transacción que cada movimiento.
type StockLedger struct {
	repos repository.Repos
	tx    TxRunner
	log   *logger.Logger
	now   func() time.Time
}

// NewStockLedger construye el libro. repos son los repositorios fuera de transacción (lecturas).
func NewStockLedger(repos repository.Repos, tx TxRunner, log *logger.Logger) *StockLedger {
	return &StockLedger{repos: repos, tx: tx, log: log.Component("stock_ledger"), now: time.Now}
}

// Record agrega un movimiento en su propia transacción, bloqueando la partición ítem+color.
// No valida que el saldo resultante sea no negativo (esa política vive en los callers).
func (l *StockLedger) Record(ctx context.Context, in RecordInput) (*entity.StockMovement, error) {
	item, err := LoadItem(ctx, l.repos, in.ItemID)
	if err != nil {
		return nil, err
	}
	if err := validateRecord(item, in); err != nil {
		return nil, err
	}
	key := entity.StockKey{ItemID: item.ID, ColorID: item.StockColor(in.ColorID)}

	var mov *entity.StockMovement
	err = l.tx.Run(ctx, []string{key.LockKey()}, func(r repository.Repos) error {
		var err error
		mov, err = l.RecordInTx(ctx, r, item, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	CountMovements(mov)
	return mov, nil
}

// RecordInTx agrega el movimiento usando los repositorios de la transacción del caller.
// El caller debe tener tomado el bloqueo de la partición y contar el movimiento tras el Commit.
func (l *StockLedger) RecordInTx(ctx context.Context, r repository.Repos, item *entity.Item, in RecordInput) (*entity.StockMovement, error) {
	if err := validateRecord(item, in); err != nil {
		return nil, err
	}
	key := entity.StockKey{ItemID: item.ID, ColorID: item.StockColor(in.ColorID)}
	current, err := r.Balances.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if next := current + in.Quantity; (in.Quantity > 0 && next < current) || (in.Quantity < 0 && next > current) {
		return nil, domain.Invalid("quantity", fmt.Sprintf("el saldo de %s desborda con %d unidades", item.ID, in.Quantity))
	}
	now := l.now()
	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		ItemID:    item.ID,
		ColorID:   key.ColorID,
		Quantity:  in.Quantity,
		Kind:      in.Kind,
		Origin:    in.Origin,
		Note:      in.Note,
		CreatedAt: now,
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	balance, err := r.Balances.Add(ctx, key, mov.Quantity, now)
	if err != nil {
		return nil, err
	}
	l.log.Debug().
		Str("item_id", mov.ItemID).
		Str("color_id", mov.ColorID).
		Str("kind", mov.Kind).
		Str("origin", mov.Origin).
		Int64("quantity", mov.Quantity).
		Int64("balance", balance).
		Msg("movimiento registrado")
	return mov, nil
}

func validateRecord(item *entity.Item, in RecordInput) error {
	if !entity.ValidMovementKind(in.Kind) {
		return domain.Invalid("kind", fmt.Sprintf("tipo de movimiento desconocido %q", in.Kind))
	}
	if in.Quantity == 0 {
		return domain.Invalid("quantity", "la cantidad no puede ser cero")
	}
	if in.Quantity > entity.MaxQuantity || in.Quantity < -entity.MaxQuantity {
		return domain.Invalid("quantity", fmt.Sprintf("máximo %d unidades por movimiento", entity.MaxQuantity))
	}
	if item.IsKit() {
		return domain.Invalid("item_id", fmt.Sprintf("el kit %s no tiene stock propio", item.ID))
	}
	if item.TrackedByColor && in.ColorID == "" {
		return domain.Invalid("color_id", fmt.Sprintf("el ítem %s se controla por color", item.ID))
	}
	return nil
}

// CountMovements actualiza las métricas de movimientos ya confirmados.
func CountMovements(movs ...*entity.StockMovement) {
	for _, m := range movs {
		if m != nil {
			metrics.MovementsTotal.WithLabelValues(m.Kind).Inc()
		}
	}
}

// Balance saldo actual del ítem. Con color y para ítems controlados por color devuelve
// el saldo de ese color; en otro caso el agregado de todos los colores.
func (l *StockLedger) Balance(ctx context.Context, itemID, colorID string) (int64, error) {
	item, err := LoadItem(ctx, l.repos, itemID)
	if err != nil {
		return 0, err
	}
	return BalanceOf(ctx, l.repos, item, colorID)
}

// BalanceOf calcula el saldo con los repositorios dados (dentro o fuera de transacción).
func BalanceOf(ctx context.Context, r repository.Repos, item *entity.Item, colorID string) (int64, error) {
	if item.TrackedByColor && colorID != "" {
		return r.Balances.Get(ctx, entity.StockKey{ItemID: item.ID, ColorID: colorID})
	}
	return r.Balances.Total(ctx, item.ID)
}

// BalancesByColor saldos por color de todos los colores con historia para el ítem,
// ordenados por color.
func (l *StockLedger) BalancesByColor(ctx context.Context, itemID string) ([]entity.StockBalance, error) {
	item, err := LoadItem(ctx, l.repos, itemID)
	if err != nil {
		return nil, err
	}
	list, err := l.repos.Balances.ListByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ColorID < list[j].ColorID })
	return list, nil
}

// ListMovements consulta el historial ordenado por fecha.
func (l *StockLedger) ListMovements(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	return l.repos.Movements.List(ctx, f)
}

// MovementPage página del libro junto con el total de movimientos que cumplen el filtro.
type MovementPage struct {
	Movements []*entity.StockMovement
	Limit     int
	Offset    int
	Total     int
}

// Page lista una página de movimientos y cuenta todos los que cumplen el filtro.
func (l *StockLedger) Page(ctx context.Context, f repository.MovementFilter) (*MovementPage, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	movs, err := l.repos.Movements.List(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := l.repos.Movements.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	return &MovementPage{Movements: movs, Limit: f.Limit, Offset: f.Offset, Total: total}, nil
}

func normalizeFilter(f repository.MovementFilter) (repository.MovementFilter, error) {
	if f.Kind != "" && !entity.ValidMovementKind(f.Kind) {
		return f, domain.Invalid("kind", fmt.Sprintf("tipo de movimiento desconocido %q", f.Kind))
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, domain.Invalid("from", "el rango de fechas está invertido")
	}
	if f.Limit <= 0 {
		f.Limit = defaultMovementLimit
	}
	if f.Limit > maxMovementLimit {
		f.Limit = maxMovementLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f, nil
}

// AuditRow comparación por color entre la suma del libro y el saldo materializado.
type AuditRow struct {
	ColorID      string
	Ledger       int64
	Materialized int64
	Drift        int64 // Materialized - Ledger
}

// AuditReport resultado de la auditoría de conservación de un ítem.
type AuditReport struct {
	ItemID   string
	Balanced bool
	Total    int64 // suma de todos los movimientos
	Rows     []AuditRow
}

// Audit recalcula el saldo sumando los movimientos y lo compara con el saldo materializado.
func (l *StockLedger) Audit(ctx context.Context, itemID string) (*AuditReport, error) {
	item, err := LoadItem(ctx, l.repos, itemID)
	if err != nil {
		return nil, err
	}
	sums, err := l.repos.Movements.SumByColor(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	stored, err := l.repos.Balances.ListByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	rows := make(map[string]*AuditRow)
	for _, s := range sums {
		rows[s.ColorID] = &AuditRow{ColorID: s.ColorID, Ledger: s.Quantity}
	}
	for _, s := range stored {
		row, ok := rows[s.ColorID]
		if !ok {
			row = &AuditRow{ColorID: s.ColorID}
			rows[s.ColorID] = row
		}
		row.Materialized = s.Quantity
	}

	report := &AuditReport{ItemID: item.ID, Balanced: true}
	for _, row := range rows {
		row.Drift = row.Materialized - row.Ledger
		if row.Drift != 0 {
			report.Balanced = false
		}
		report.Total += row.Ledger
		report.Rows = append(report.Rows, *row)
	}
	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].ColorID < report.Rows[j].ColorID })

	if !report.Balanced {
		l.log.Error().Str("item_id", item.ID).Msg("descuadre entre libro y saldo materializado")
	}
	return report, nil
}

// LoadItem obtiene el ítem o devuelve NotFoundError.
func LoadItem(ctx context.Context, r repository.Repos, itemID string) (*entity.Item, error) {
	if itemID == "" {
		return nil, domain.Invalid("item_id", "requerido")
	}
	item, err := r.Items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("ítem", itemID)
	}
	return item, nil
}

// LoadItems obtiene varios ítems; el primero que falte produce NotFoundError.
func LoadItems(ctx context.Context, r repository.Repos, ids []string) (map[string]*entity.Item, error) {
	items, err := r.Items.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := items[id]; !ok {
			return nil, domain.NotFound("ítem", id)
		}
	}
	return items, nil
}
