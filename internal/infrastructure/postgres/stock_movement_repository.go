package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
// La tabla tiene un trigger que rechaza UPDATE y DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, item_id, color_id, quantity, kind, origin, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ItemID, nullable(m.ColorID), m.Quantity, m.Kind,
		nullable(m.Origin), nullable(m.Note), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// List filtra el libro. Orden: fecha ascendente y luego ID.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	where, args := movementWhere(f)
	query := `
		SELECT id, item_id, COALESCE(color_id, ''), quantity, kind, COALESCE(origin, ''), COALESCE(note, ''), created_at
		FROM stock_movements` + where
	query += " ORDER BY created_at, id"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	list := []*entity.StockMovement{}
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.ItemID, &m.ColorID, &m.Quantity, &m.Kind,
			&m.Origin, &m.Note, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// SumByColor recalcula el saldo del ítem desde el libro, por color.
func (r *StockMovementRepo) SumByColor(ctx context.Context, itemID string) ([]entity.StockBalance, error) {
	rows, err := r.q.Query(ctx, `
		SELECT COALESCE(color_id, ''), SUM(quantity)::BIGINT
		FROM stock_movements WHERE item_id = $1
		GROUP BY 1 ORDER BY 1`, itemID)
	if err != nil {
		return nil, fmt.Errorf("sum movements: %w", err)
	}
	defer rows.Close()
	out := []entity.StockBalance{}
	for rows.Next() {
		b := entity.StockBalance{ItemID: itemID}
		if err := rows.Scan(&b.ColorID, &b.Quantity); err != nil {
			return nil, fmt.Errorf("scan sum: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Consumption salidas y consumos de producción desde since, más la fecha del primer movimiento.
func (r *StockMovementRepo) Count(ctx context.Context, f repository.MovementFilter) (int, error) {
	where, args := movementWhere(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stock movements: %w", err)
	}
	return n, nil
}

// movementWhere arma el WHERE del filtro; Limit y Offset quedan fuera.
func movementWhere(f repository.MovementFilter) (string, []any) {
	where := " WHERE TRUE"
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where += fmt.Sprintf(" AND "+cond, len(args))
	}
	if f.ItemID != "" {
		add("item_id = $%d", f.ItemID)
	}
	if f.ColorID != "" {
		add("color_id = $%d", f.ColorID)
	}
	if f.Kind != "" {
		add("kind = $%d", f.Kind)
	}
	if f.Origin != "" {
		add("origin = $%d", f.Origin)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	return where, args
}

func (r *StockMovementRepo) Consumption(ctx context.Context, itemID string, since time.Time) (repository.ConsumptionStats, error) {
	var stats repository.ConsumptionStats
	err := r.q.QueryRow(ctx, `
		SELECT
			COALESCE(-SUM(quantity) FILTER (
				WHERE quantity < 0 AND created_at >= $2 AND kind IN ('outbound', 'production')
			), 0)::BIGINT,
			MIN(created_at)
		FROM stock_movements WHERE item_id = $1`, itemID, since,
	).Scan(&stats.Consumed, &stats.FirstMovementAt)
	if err != nil {
		return stats, fmt.Errorf("consumption: %w", err)
	}
	return stats, nil
}
