package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
)

func TestSuggestThresholds_SinHistoria(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A")

	got, err := f.advisor.SuggestThresholds(f.ctx, "A", 0)
	require.NoError(t, err)
	assert.True(t, got.AvgDailyConsumption.IsZero())
	assert.Zero(t, got.SuggestedMin)
	assert.Zero(t, got.SuggestedMax)
	assert.Zero(t, got.DaysOfHistory)
	assert.NotEmpty(t, got.Message, "sin historia se explica en lugar de fallar")
}

func TestSuggestThresholds_ConConsumo(t *testing.T) {
	f := newFixture(t)
	lead := 5
	f.item(t, "A", func(it *entity.Item) { it.LeadTimeDays = &lead })
	f.record(t, "A", 100, entity.MovementKindInbound, "")
	f.record(t, "A", -20, entity.MovementKindOutbound, "")
	f.record(t, "A", -10, entity.MovementKindProduction, "")
	f.record(t, "A", -50, entity.MovementKindAdjustment, "") // los ajustes no son consumo

	got, err := f.advisor.SuggestThresholds(f.ctx, "A", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, got.DaysOfHistory, "historia de hoy cuenta como un día")
	assert.True(t, got.AvgDailyConsumption.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, int64(150), got.SuggestedMin, "30/día * 5 días")
	assert.Equal(t, int64(300), got.SuggestedMax)
	assert.Equal(t, 5, got.LeadTimeDays)
}

func TestSuggestThresholds_HistoriaDesdePrimerMovimiento(t *testing.T) {
	f := newFixture(t)
	f.item(t, "A")
	// Una entrada de hace diez días abre la historia aunque no sea consumo.
	require.NoError(t, f.repos.Movements.Create(f.ctx, &entity.StockMovement{
		ID: "m-inicial", ItemID: "A", Quantity: 100, Kind: entity.MovementKindInbound,
		CreatedAt: time.Now().AddDate(0, 0, -10),
	}))
	f.record(t, "A", -20, entity.MovementKindOutbound, "")

	got, err := f.advisor.SuggestThresholds(f.ctx, "A", 30)
	require.NoError(t, err)
	assert.Equal(t, 10, got.DaysOfHistory)
	assert.True(t, got.AvgDailyConsumption.Equal(decimal.NewFromInt(2)), "20 unidades en 10 días")
}

func TestLowStockReport_OrdenPorDeficit(t *testing.T) {
	f := newFixture(t)
	maxD := int64(40)
	f.item(t, "A", minStock(10))
	f.item(t, "B", minStock(5))
	f.item(t, "C")
	f.item(t, "D", minStock(20), func(it *entity.Item) { it.MaxStock = &maxD })
	f.item(t, "KIT", minStock(5), func(it *entity.Item) {
		it.Category = entity.CategoryManufactured
		it.ManufacturedKind = entity.ManufacturedKindKit
	})

	f.record(t, "A", 4, entity.MovementKindInbound, "")
	f.record(t, "B", 20, entity.MovementKindInbound, "")
	f.record(t, "C", -2, entity.MovementKindAdjustment, "")
	f.record(t, "D", 5, entity.MovementKindInbound, "")

	rows, err := f.advisor.LowStockReport(f.ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3, "B está sobre el mínimo y el kit no tiene stock propio")

	assert.Equal(t, "D", rows[0].ItemID)
	assert.Equal(t, int64(15), rows[0].Deficit)
	assert.Equal(t, int64(35), rows[0].SuggestedOrderQty, "sin consumo repone hasta el máximo")
	assert.Equal(t, 1, rows[0].Priority)

	assert.Equal(t, "A", rows[1].ItemID)
	assert.Equal(t, int64(10), rows[1].SuggestedOrderQty, "heurística por defecto")

	assert.Equal(t, "C", rows[2].ItemID, "mínimo cero solo alerta con saldo negativo")
	assert.Equal(t, 3, rows[2].Priority)
	for _, r := range rows {
		assert.NotEmpty(t, r.Message)
	}
}
