package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
)

var _ repository.BOMRepository = (*BOMRepo)(nil)

// BOMRepo recetas sobre PostgreSQL. La tabla rechaza autorreferencias y cantidades <= 0 (CHECK).
type BOMRepo struct {
	q Querier
}

// NewBOMRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBOMRepository(q Querier) *BOMRepo {
	return &BOMRepo{q: q}
}

// Upsert agrega la línea al final o actualiza la cantidad; position no cambia en el update.
func (r *BOMRepo) Upsert(ctx context.Context, line *entity.BOMLine) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO bom_lines (manufactured_id, ingredient_id, quantity_per_unit)
		VALUES ($1, $2, $3)
		ON CONFLICT (manufactured_id, ingredient_id) DO UPDATE
		SET quantity_per_unit = EXCLUDED.quantity_per_unit
		RETURNING position`,
		line.ManufacturedID, line.IngredientID, line.QuantityPerUnit,
	).Scan(&line.Position)
	if err != nil {
		return fmt.Errorf("upsert bom line: %w", err)
	}
	return nil
}

// Delete elimina la línea; false si no existía.
func (r *BOMRepo) Delete(ctx context.Context, manufacturedID, ingredientID string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`DELETE FROM bom_lines WHERE manufactured_id = $1 AND ingredient_id = $2`,
		manufacturedID, ingredientID,
	)
	if err != nil {
		return false, fmt.Errorf("delete bom line: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// ListByManufactured líneas de la receta en orden de inserción.
func (r *BOMRepo) ListByManufactured(ctx context.Context, manufacturedID string) ([]entity.BOMLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT manufactured_id, ingredient_id, quantity_per_unit, position
		FROM bom_lines WHERE manufactured_id = $1 ORDER BY position`, manufacturedID)
	if err != nil {
		return nil, fmt.Errorf("list bom: %w", err)
	}
	defer rows.Close()
	var lines []entity.BOMLine
	for rows.Next() {
		var l entity.BOMLine
		if err := rows.Scan(&l.ManufacturedID, &l.IngredientID, &l.QuantityPerUnit, &l.Position); err != nil {
			return nil, fmt.Errorf("scan bom line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
