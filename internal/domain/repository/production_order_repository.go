package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
)

// ProductionOrderRepository puerto de órdenes de producción.
type ProductionOrderRepository interface {
	Create(ctx context.Context, order *entity.ProductionOrder) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.ProductionOrder, error)
	// GetForUpdate igual que GetByID pero bloquea la fila dentro de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.ProductionOrder, error)
	UpdateStatus(ctx context.Context, id, status string, completedAt *time.Time) error
}
