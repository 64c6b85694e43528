package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
	"github.com/jhoicas/inventario-produccion/internal/infrastructure/memory"
)

func movement(id, item string, qty int64, at time.Time) *entity.StockMovement {
	return &entity.StockMovement{ID: id, ItemID: item, Quantity: qty, Kind: entity.MovementKindAdjustment, CreatedAt: at}
}

func TestRun_CommitAplicaEscrituras(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(time.Second)
	key := entity.StockKey{ItemID: "A"}

	err := store.Run(ctx, []string{key.LockKey()}, func(r repository.Repos) error {
		require.NoError(t, r.Movements.Create(ctx, movement("m1", "A", 7, time.Now())))
		bal, err := r.Balances.Add(ctx, key, 7, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(7), bal, "la transacción ve sus propias escrituras")
		return nil
	})
	require.NoError(t, err)

	got, err := store.Repos().Balances.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)
}

func TestRun_ErrorDescartaEscrituras(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(time.Second)
	key := entity.StockKey{ItemID: "A"}
	boom := errors.New("fallo")

	err := store.Run(ctx, []string{key.LockKey()}, func(r repository.Repos) error {
		require.NoError(t, r.Movements.Create(ctx, movement("m1", "A", 5, time.Now())))
		_, err := r.Balances.Add(ctx, key, 5, time.Now())
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := store.Repos().Balances.Get(ctx, key)
	assert.Zero(t, got)
	movs, _ := store.Repos().Movements.List(ctx, repository.MovementFilter{ItemID: "A"})
	assert.Empty(t, movs, "ningún movimiento sobrevive al rollback")
}

func TestRun_BloqueoOcupadoDevuelveConflicto(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(50 * time.Millisecond)
	key := entity.StockKey{ItemID: "A"}.LockKey()

	holding := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = store.Run(ctx, []string{key}, func(repository.Repos) error {
			close(holding)
			<-done
			return nil
		})
	}()
	<-holding

	err := store.Run(ctx, []string{key}, func(repository.Repos) error { return nil })
	close(done)

	var conflict *domain.ConcurrencyConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRun_ClavesDistintasNoSeBloquean(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(50 * time.Millisecond)

	holding := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = store.Run(ctx, []string{"stock:A:"}, func(repository.Repos) error {
			close(holding)
			<-done
			return nil
		})
	}()
	<-holding
	defer close(done)

	err := store.Run(ctx, []string{"stock:B:"}, func(repository.Repos) error { return nil })
	assert.NoError(t, err)
}

func TestMovements_ListOrdenYFiltros(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore(0).Repos()
	base := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	require.NoError(t, repos.Movements.Create(ctx, movement("m3", "A", -2, base.Add(2*time.Hour))))
	require.NoError(t, repos.Movements.Create(ctx, movement("m1", "A", 10, base)))
	require.NoError(t, repos.Movements.Create(ctx, movement("m2", "B", 4, base.Add(time.Hour))))

	all, err := repos.Movements.List(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"m1", "m2", "m3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	from := base.Add(30 * time.Minute)
	onlyA, err := repos.Movements.List(ctx, repository.MovementFilter{ItemID: "A", From: &from})
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, "m3", onlyA[0].ID)

	page, err := repos.Movements.List(ctx, repository.MovementFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "m2", page[0].ID)
}

func TestBOM_UpsertConservaPosicion(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore(0).Repos()

	require.NoError(t, repos.BOM.Upsert(ctx, &entity.BOMLine{ManufacturedID: "X", IngredientID: "A", QuantityPerUnit: decimal.NewFromInt(1)}))
	require.NoError(t, repos.BOM.Upsert(ctx, &entity.BOMLine{ManufacturedID: "X", IngredientID: "B", QuantityPerUnit: decimal.NewFromInt(2)}))
	require.NoError(t, repos.BOM.Upsert(ctx, &entity.BOMLine{ManufacturedID: "X", IngredientID: "A", QuantityPerUnit: decimal.NewFromInt(3)}))

	lines, err := repos.BOM.ListByManufactured(ctx, "X")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "A", lines[0].IngredientID)
	assert.True(t, lines[0].QuantityPerUnit.Equal(decimal.NewFromInt(3)))

	removed, err := repos.BOM.Delete(ctx, "X", "A")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repos.BOM.Delete(ctx, "X", "A")
	require.NoError(t, err)
	assert.False(t, removed)
}
