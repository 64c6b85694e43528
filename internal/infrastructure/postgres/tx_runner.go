package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-produccion/internal/application/inventory"
	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
	"github.com/jhoicas/inventario-produccion/pkg/metrics"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout <= 0 deja el valor del servidor.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia una transacción, toma los advisory locks de lockKeys en orden, ejecuta fn
// con repos atados a la tx y hace Commit o Rollback. Los locks se liberan al terminar la tx.
func (r *TxRunner) Run(ctx context.Context, lockKeys []string, fn func(repository.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		// SET no acepta parámetros posicionales.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}
	for _, key := range entity.SortedLockKeys(lockKeys) {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return conflictOr("lock "+key, fmt.Errorf("advisory lock: %w", err))
		}
	}

	if err := fn(NewRepos(tx)); err != nil {
		return conflictOr("transaction", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return conflictOr("commit", fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// conflictOr traduce timeouts de bloqueo y deadlocks a ConcurrencyConflictError.
func conflictOr(op string, err error) error {
	if !isLockConflict(err) {
		return err
	}
	metrics.LockConflicts.Inc()
	return &domain.ConcurrencyConflictError{Operation: op, Err: err}
}
