package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
)

var _ repository.ProductionOrderRepository = (*ProductionOrderRepo)(nil)

// ProductionOrderRepo órdenes de producción y sus ítems sobre PostgreSQL.
type ProductionOrderRepo struct {
	q Querier
}

// NewProductionOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionOrderRepository(q Querier) *ProductionOrderRepo {
	return &ProductionOrderRepo{q: q}
}

// Create persiste la cabecera y los ítems. Llamar dentro de una tx para que sea atómico.
func (r *ProductionOrderRepo) Create(ctx context.Context, o *entity.ProductionOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO production_orders (id, color_id, status, note, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, nullable(o.ColorID), o.Status, o.Note, o.CreatedAt, o.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("orden de producción %s: %w", o.ID, domain.ErrConflict)
		}
		return fmt.Errorf("insert production order: %w", err)
	}
	for _, it := range o.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO production_order_items (id, order_id, item_id, role, quantity, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, o.ID, it.ItemID, it.Role, it.Quantity, it.Position,
		)
		if err != nil {
			return fmt.Errorf("insert production order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden con sus ítems.
func (r *ProductionOrderRepo) GetByID(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la fila de la orden hasta el fin de la transacción.
func (r *ProductionOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *ProductionOrderRepo) get(ctx context.Context, id, lock string) (*entity.ProductionOrder, error) {
	var o entity.ProductionOrder
	err := r.q.QueryRow(ctx, `
		SELECT id, COALESCE(color_id, ''), status, note, created_at, completed_at
		FROM production_orders WHERE id = $1`+lock, id,
	).Scan(&o.ID, &o.ColorID, &o.Status, &o.Note, &o.CreatedAt, &o.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production order: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, item_id, role, quantity, position
		FROM production_order_items WHERE order_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list production order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.ProductionOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ItemID, &it.Role, &it.Quantity, &it.Position); err != nil {
			return nil, fmt.Errorf("scan production order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus cambia el estado de la orden.
func (r *ProductionOrderRepo) UpdateStatus(ctx context.Context, id, status string, completedAt *time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE production_orders SET status = $2, completed_at = $3 WHERE id = $1`,
		id, status, completedAt,
	)
	if err != nil {
		return fmt.Errorf("update production order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("orden de producción", id)
	}
	return nil
}
