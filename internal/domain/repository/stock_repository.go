package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
)

// StockBalanceRepository puerto del saldo materializado por ítem+color.
// Solo se modifica vía Add, en la misma transacción que el movimiento que lo origina.
type StockBalanceRepository interface {
	// Get saldo exacto de una partición (0 si no existe).
	Get(ctx context.Context, key entity.StockKey) (int64, error)
	// Total suma de todas las particiones del ítem.
	Total(ctx context.Context, itemID string) (int64, error)
	ListByItem(ctx context.Context, itemID string) ([]entity.StockBalance, error)
	// Add aplica delta a la partición y devuelve el saldo resultante.
	Add(ctx context.Context, key entity.StockKey, delta int64, at time.Time) (int64, error)
}
