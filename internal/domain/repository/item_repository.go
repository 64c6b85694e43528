package repository

import (
	"context"

	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
)

// ItemRepository define el puerto de lectura del catálogo de ítems.
// Create existe para siembra y pruebas; el catálogo lo administra un sistema externo.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	// GetByID devuelve nil, nil si el ítem no existe.
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	// GetMany devuelve solo los ítems encontrados, indexados por ID.
	GetMany(ctx context.Context, ids []string) (map[string]*entity.Item, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Item, error)
}
