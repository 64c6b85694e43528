// Package memory implementa los repositorios y el TxRunner en memoria.
// Respeta el mismo contrato que el adaptador PostgreSQL: las escrituras de una
// transacción se aplican al confirmar y se descartan si fn devuelve error, y los
// bloqueos por clave se adquieren en orden con espera acotada.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
	"github.com/jhoicas/inventario-produccion/pkg/metrics"
)

// DefaultLockTimeout espera máxima por un bloqueo si no se configura otra.
const DefaultLockTimeout = 5 * time.Second

// Store almacén en memoria para desarrollo y pruebas.
type Store struct {
	mu          sync.RWMutex
	state       *state
	locks       *keyLocker
	lockTimeout time.Duration
}

// NewStore crea un almacén vacío. lockTimeout <= 0 usa DefaultLockTimeout.
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Store{
		state:       newState(),
		locks:       newKeyLocker(),
		lockTimeout: lockTimeout,
	}
}

// Repos repositorios fuera de transacción: cada escritura se confirma de inmediato.
func (s *Store) Repos() repository.Repos {
	return reposFor(&view{store: s})
}

// Run ejecuta fn con repositorios transaccionales después de tomar los bloqueos de keys.
func (s *Store) Run(ctx context.Context, keys []string, fn func(r repository.Repos) error) error {
	release, err := s.locks.acquire(ctx, entity.SortedLockKeys(keys), s.lockTimeout)
	if err != nil {
		return err
	}
	defer release()

	s.mu.RLock()
	tx := &txState{st: s.state.clone()}
	s.mu.RUnlock()

	if err := fn(reposFor(&view{store: s, tx: tx})); err != nil {
		return err
	}

	s.mu.Lock()
	for _, op := range tx.ops {
		op(s.state)
	}
	s.mu.Unlock()
	return nil
}

// txState copia privada del estado más las operaciones a reaplicar al confirmar.
// Los bloqueos por clave garantizan que ninguna otra transacción toca las mismas particiones,
// por eso reaplicar (sumar deltas, agregar filas) sobre el estado confirmado es correcto.
type txState struct {
	st  *state
	ops []func(*state)
}

// view acceso a los datos: dentro de una transacción o directo sobre el estado confirmado.
type view struct {
	store *Store
	tx    *txState
}

func (v *view) read(fn func(s *state)) {
	if v.tx != nil {
		fn(v.tx.st)
		return
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	fn(v.store.state)
}

func (v *view) write(op func(s *state)) {
	if v.tx != nil {
		op(v.tx.st)
		v.tx.ops = append(v.tx.ops, op)
		return
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	op(v.store.state)
}

// keyLocker semáforos por clave con espera acotada.
type keyLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newKeyLocker() *keyLocker {
	return &keyLocker{slots: make(map[string]chan struct{})}
}

func (l *keyLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// acquire toma las claves en el orden recibido (ya ordenadas). Si alguna no se obtiene antes
// del timeout libera las tomadas y devuelve ConcurrencyConflictError.
func (l *keyLocker) acquire(ctx context.Context, keys []string, timeout time.Duration) (func(), error) {
	held := make([]chan struct{}, 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}
	if len(keys) == 0 {
		return release, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for _, key := range keys {
		ch := l.slot(key)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-timer.C:
			release()
			metrics.LockConflicts.Inc()
			return nil, &domain.ConcurrencyConflictError{Operation: "bloqueo " + key, Err: errors.New("tiempo de espera agotado")}
		case <-ctx.Done():
			release()
			metrics.LockConflicts.Inc()
			return nil, &domain.ConcurrencyConflictError{Operation: "bloqueo " + key, Err: ctx.Err()}
		}
	}
	return release, nil
}
