package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
)

// MovementFilter filtros para consultar el libro de movimientos (auditoría / historial).
type MovementFilter struct {
	ItemID  string
	ColorID string
	Kind    string
	Origin  string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// ConsumptionStats consumo de un ítem en una ventana.
type ConsumptionStats struct {
	Consumed        int64      // magnitud de salidas y consumos de producción en la ventana
	FirstMovementAt *time.Time // primer movimiento del ítem de cualquier tipo; nil si no hay historia
}

// StockMovementRepository puerto del libro append-only. No hay Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// List ordena por fecha ascendente y luego por ID.
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	// Count cuenta los movimientos que cumplen el filtro, ignorando Limit y Offset.
	Count(ctx context.Context, filter MovementFilter) (int, error)
	// SumByColor recalcula los saldos del ítem sumando sus movimientos (por color).
	SumByColor(ctx context.Context, itemID string) ([]entity.StockBalance, error)
	Consumption(ctx context.Context, itemID string, since time.Time) (ConsumptionStats, error)
}
