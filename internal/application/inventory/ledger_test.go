package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-produccion/internal/application/inventory"
	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
	"github.com/jhoicas/inventario-produccion/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-produccion/pkg/config"
	"github.com/jhoicas/inventario-produccion/pkg/logger"
)

type fixture struct {
	ctx     context.Context
	repos   repository.Repos
	ledger  *inventory.StockLedger
	adjust  *inventory.AdjustmentUseCase
	advisor *inventory.ReplenishmentUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(time.Second)
	repos := store.Repos()
	log := logger.NewNop()
	ledger := inventory.NewStockLedger(repos, store, log)
	return &fixture{
		ctx:     context.Background(),
		repos:   repos,
		ledger:  ledger,
		adjust:  inventory.NewAdjustmentUseCase(repos, store, ledger, log),
		advisor: inventory.NewReplenishmentUseCase(repos, config.ReplenishmentConfig{
			DefaultLeadTimeDays: 7,
			MaxMultiplier:       2,
			LookbackDays:        90,
			DefaultReorderQty:   10,
		}, log),
	}
}

func (f *fixture) item(t *testing.T, id string, opts ...func(*entity.Item)) *entity.Item {
	t.Helper()
	it := &entity.Item{ID: id, SKU: "SKU-" + id, Name: id, UnitMeasure: "und", Category: entity.CategoryRawMaterial}
	for _, o := range opts {
		o(it)
	}
	require.NoError(t, f.repos.Items.Create(f.ctx, it))
	return it
}

func byColor(it *entity.Item) { it.TrackedByColor = true }

func minStock(n int64) func(*entity.Item) { return func(it *entity.Item) { it.MinStock = n } }

func (f *fixture) record(t *testing.T, itemID string, qty int64, kind, color string) *entity.StockMovement {
	t.Helper()
	mov, err := f.ledger.Record(f.ctx, inventory.RecordInput{ItemID: itemID, Quantity: qty, Kind: kind, ColorID: color})
	require.NoError(t, err)
	return mov
}

func TestLedger_SaldoEsSumaDeMovimientos(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A")

	f.record(t, "A", 10, entity.MovementKindInbound, "")
	f.record(t, "A", -3, entity.MovementKindOutbound, "")
	f.record(t, "A", 5, entity.MovementKindAdjustment, "")
	f.record(t, "A", -4, entity.MovementKindProduction, "")

	bal, err := f.ledger.Balance(f.ctx, "A", "")
	require.NoError(t, err)

	movs, err := f.ledger.ListMovements(f.ctx, repository.MovementFilter{ItemID: "A"})
	require.NoError(t, err)
	var sum int64
	for _, m := range movs {
		sum += m.Quantity
	}
	assert.Equal(t, int64(8), bal)
	assert.Equal(t, sum, bal, "el saldo es la suma de los movimientos")

	report, err := f.ledger.Audit(f.ctx, "A")
	require.NoError(t, err)
	assert.True(t, report.Balanced)
	assert.Equal(t, int64(8), report.Total)
}

func TestLedger_ParticionPorColor(t *testing.T) {
	f := newFixture(t)
	f.item(t, "TELA", byColor)

	f.record(t, "TELA", 5, entity.MovementKindInbound, "rojo")
	f.record(t, "TELA", 3, entity.MovementKindInbound, "azul")
	f.record(t, "TELA", -1, entity.MovementKindOutbound, "rojo")

	total, err := f.ledger.Balance(f.ctx, "TELA", "")
	require.NoError(t, err)
	rojo, _ := f.ledger.Balance(f.ctx, "TELA", "rojo")
	azul, _ := f.ledger.Balance(f.ctx, "TELA", "azul")
	assert.Equal(t, int64(4), rojo)
	assert.Equal(t, int64(3), azul)
	assert.Equal(t, rojo+azul, total, "el total es la suma de los colores")

	colors, err := f.ledger.BalancesByColor(f.ctx, "TELA")
	require.NoError(t, err)
	require.Len(t, colors, 2)
	assert.Equal(t, "azul", colors[0].ColorID)
	assert.Equal(t, "rojo", colors[1].ColorID)
}

func TestLedger_ValidaAntesDeEscribir(t *testing.T) {
	f := newFixture(t)
	f.item(t, "TELA", byColor)

	cases := []struct {
		name string
		in   inventory.RecordInput
		want error
	}{
		{"sin color en ítem por color", inventory.RecordInput{ItemID: "TELA", Quantity: 1, Kind: entity.MovementKindInbound}, domain.ErrInvalidInput},
		{"cantidad cero", inventory.RecordInput{ItemID: "TELA", Quantity: 0, Kind: entity.MovementKindInbound, ColorID: "rojo"}, domain.ErrInvalidInput},
		{"tipo desconocido", inventory.RecordInput{ItemID: "TELA", Quantity: 1, Kind: "transfer", ColorID: "rojo"}, domain.ErrInvalidInput},
		{"ítem inexistente", inventory.RecordInput{ItemID: "NOPE", Quantity: 1, Kind: entity.MovementKindInbound}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ledger.Record(f.ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	movs, err := f.ledger.ListMovements(f.ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestLedger_ColorIgnoradoEnItemSinColor(t *testing.T) {
	f := newFixture(t)
	f.item(t, "TORNILLO")

	mov := f.record(t, "TORNILLO", 100, entity.MovementKindInbound, "rojo")
	assert.Empty(t, mov.ColorID)

	colors, err := f.ledger.BalancesByColor(f.ctx, "TORNILLO")
	require.NoError(t, err)
	require.Len(t, colors, 1)
	assert.Empty(t, colors[0].ColorID)
	assert.Equal(t, int64(100), colors[0].Quantity)
}

func TestLedger_ListMovementsRangoInvertido(t *testing.T) {
	f := newFixture(t)
	from := time.Now()
	to := from.Add(-time.Hour)

	_, err := f.ledger.ListMovements(f.ctx, repository.MovementFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjust_PuedeDejarSaldoNegativo(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A")

	mov, err := f.adjust.Adjust(f.ctx, inventory.AdjustInput{ItemID: "A", Quantity: -3, Note: "merma"})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementKindAdjustment, mov.Kind)

	bal, _ := f.ledger.Balance(f.ctx, "A", "")
	assert.Equal(t, int64(-3), bal)
}

func TestAdjust_KitNoTieneStockPropio(t *testing.T) {
	f := newFixture(t)
	f.item(t, "COMEDOR", func(it *entity.Item) {
		it.Category = entity.CategoryManufactured
		it.ManufacturedKind = entity.ManufacturedKindKit
	})

	mov, err := f.adjust.Adjust(f.ctx, inventory.AdjustInput{ItemID: "COMEDOR", Quantity: 5})
	var invalid *domain.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "item_id", invalid.Field)
	assert.Nil(t, mov)

	_, err = f.ledger.Record(f.ctx, inventory.RecordInput{ItemID: "COMEDOR", Quantity: 5, Kind: entity.MovementKindInbound})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	movs, err := f.ledger.ListMovements(f.ctx, repository.MovementFilter{ItemID: "COMEDOR"})
	require.NoError(t, err)
	assert.Empty(t, movs)
	bal, err := f.ledger.Balance(f.ctx, "COMEDOR", "")
	require.NoError(t, err)
	assert.Zero(t, bal)
}

func TestLedger_CantidadFueraDeRango(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A")

	for _, qty := range []int64{entity.MaxQuantity + 1, -entity.MaxQuantity - 1, 1 << 62} {
		_, err := f.ledger.Record(f.ctx, inventory.RecordInput{ItemID: "A", Quantity: qty, Kind: entity.MovementKindAdjustment})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad %d", qty)
	}
	_, err := f.adjust.Dispatch(f.ctx, inventory.DispatchInput{ItemID: "A", Quantity: entity.MaxQuantity + 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	res := f.adjust.Reconcile(f.ctx, []inventory.ReconcileRow{{ItemID: "A", CountedBalance: 1 << 62}})
	assert.Zero(t, res.ProcessedCount)
	assert.Len(t, res.Errors, 1)

	f.record(t, "A", entity.MaxQuantity, entity.MovementKindInbound, "")
	bal, err := f.ledger.Balance(f.ctx, "A", "")
	require.NoError(t, err)
	assert.Equal(t, entity.MaxQuantity, bal, "el tope exacto se acepta")
}

func TestDispatch_StockInsuficienteNoEscribe(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A")
	f.record(t, "A", 3, entity.MovementKindInbound, "")

	_, err := f.adjust.Dispatch(f.ctx, inventory.DispatchInput{ItemID: "A", Quantity: 5, Origin: "venta-1"})
	var short *domain.InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, int64(5), short.Required)
	assert.Equal(t, int64(3), short.Available)

	movs, _ := f.ledger.ListMovements(f.ctx, repository.MovementFilter{Origin: "venta-1"})
	assert.Empty(t, movs)

	mov, err := f.adjust.Dispatch(f.ctx, inventory.DispatchInput{ItemID: "A", Quantity: 3, Origin: "venta-2"})
	require.NoError(t, err)
	assert.Equal(t, int64(-3), mov.Quantity)
	assert.Equal(t, entity.MovementKindOutbound, mov.Kind)
}

func TestReconcile_FallaParcial(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"A", "B", "C", "D"} {
		f.item(t, id)
		f.record(t, id, 10, entity.MovementKindInbound, "")
	}

	res := f.adjust.Reconcile(f.ctx, []inventory.ReconcileRow{
		{ItemID: "A", CountedBalance: 12},
		{ItemID: "B", CountedBalance: 7},
		{ItemID: "NOPE", CountedBalance: 3},
		{ItemID: "C", CountedBalance: 10},
		{ItemID: "D", CountedBalance: 0},
	})

	assert.Equal(t, 4, res.ProcessedCount)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "NOPE")

	for id, want := range map[string]int64{"A": 12, "B": 7, "C": 10, "D": 0} {
		bal, err := f.ledger.Balance(f.ctx, id, "")
		require.NoError(t, err)
		assert.Equal(t, want, bal, "saldo conciliado de %s", id)
	}

	// C ya cuadraba: no genera movimiento.
	movs, _ := f.ledger.ListMovements(f.ctx, repository.MovementFilter{ItemID: "C", Kind: entity.MovementKindAdjustment})
	assert.Empty(t, movs)
}

func TestReconcile_ColorRequerido(t *testing.T) {
	f := newFixture(t)
	f.item(t, "TELA", byColor)

	res := f.adjust.Reconcile(f.ctx, []inventory.ReconcileRow{
		{ItemID: "TELA", CountedBalance: 4},
		{ItemID: "TELA", ColorID: "rojo", CountedBalance: 4},
	})
	assert.Equal(t, 1, res.ProcessedCount)
	assert.Len(t, res.Errors, 1)

	rojo, _ := f.ledger.Balance(f.ctx, "TELA", "rojo")
	assert.Equal(t, int64(4), rojo)
}
