package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepo)(nil)

// StockBalanceRepo saldo materializado por ítem y color (color '' para ítems sin color).
type StockBalanceRepo struct {
	q Querier
}

// NewStockBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

// Get saldo de una partición; 0 si no hay fila.
func (r *StockBalanceRepo) Get(ctx context.Context, key entity.StockKey) (int64, error) {
	var q int64
	err := r.q.QueryRow(ctx,
		`SELECT quantity FROM stock_balances WHERE item_id = $1 AND color_id = $2`,
		key.ItemID, key.ColorID,
	).Scan(&q)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return q, nil
}

// Total suma todas las particiones del ítem.
func (r *StockBalanceRepo) Total(ctx context.Context, itemID string) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)::BIGINT FROM stock_balances WHERE item_id = $1`, itemID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total balance: %w", err)
	}
	return total, nil
}

// ListByItem particiones del ítem ordenadas por color.
func (r *StockBalanceRepo) ListByItem(ctx context.Context, itemID string) ([]entity.StockBalance, error) {
	rows, err := r.q.Query(ctx, `
		SELECT item_id, color_id, quantity, updated_at
		FROM stock_balances WHERE item_id = $1 ORDER BY color_id`, itemID)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()
	out := []entity.StockBalance{}
	for rows.Next() {
		var b entity.StockBalance
		if err := rows.Scan(&b.ItemID, &b.ColorID, &b.Quantity, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Add suma delta a la partición (upsert) y devuelve el saldo resultante.
func (r *StockBalanceRepo) Add(ctx context.Context, key entity.StockKey, delta int64, at time.Time) (int64, error) {
	var q int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO stock_balances (item_id, color_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (item_id, color_id) DO UPDATE
		SET quantity = stock_balances.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
		RETURNING quantity`,
		key.ItemID, key.ColorID, delta, at,
	).Scan(&q)
	if err != nil {
		return 0, fmt.Errorf("add balance: %w", err)
	}
	return q, nil
}
