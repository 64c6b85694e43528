package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
	"github.com/jhoicas/inventario-produccion/pkg/metrics"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Antes de llamar a fn adquiere los bloqueos de lockKeys en orden estable; los libera al
// hacer Commit o Rollback. Si un bloqueo no se obtiene a tiempo devuelve ConcurrencyConflictError.
type TxRunner interface {
	Run(ctx context.Context, lockKeys []string, fn func(r repository.Repos) error) error
}

// ResultLabel traduce un error del núcleo a la etiqueta de resultado de las métricas.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, domain.ErrInvalidInput):
		return metrics.ResultInvalid
	case errors.Is(err, domain.ErrNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, domain.ErrInvalidState):
		return metrics.ResultInvalidState
	case errors.Is(err, domain.ErrInsufficientStock):
		return metrics.ResultInsufficientStock
	case errors.Is(err, domain.ErrConflict):
		return metrics.ResultConflict
	default:
		return metrics.ResultError
	}
}
