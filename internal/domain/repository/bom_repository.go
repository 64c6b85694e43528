package repository

import (
	"context"

	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
)

// BOMRepository puerto de las recetas (listas de materiales).
type BOMRepository interface {
	// Upsert inserta la línea al final o actualiza la cantidad conservando su posición.
	Upsert(ctx context.Context, line *entity.BOMLine) error
	// Delete devuelve false si la línea no existía.
	Delete(ctx context.Context, manufacturedID, ingredientID string) (bool, error)
	// ListByManufactured devuelve las líneas en orden de almacenamiento.
	ListByManufactured(ctx context.Context, manufacturedID string) ([]entity.BOMLine, error)
}
