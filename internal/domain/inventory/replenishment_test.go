package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-produccion/internal/domain/inventory"
)

func TestHistoryDays(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	tenDaysAgo := now.AddDate(0, 0, -10)
	longAgo := now.AddDate(-1, 0, 0)
	anHourAgo := now.Add(-time.Hour)

	assert.Equal(t, 0, inventory.HistoryDays(nil, now, 90))
	assert.Equal(t, 10, inventory.HistoryDays(&tenDaysAgo, now, 90))
	assert.Equal(t, 90, inventory.HistoryDays(&longAgo, now, 90), "la ventana limita la historia")
	assert.Equal(t, 1, inventory.HistoryDays(&anHourAgo, now, 90), "mínimo un día si hay historia")
}

func TestSuggestThresholds(t *testing.T) {
	th := inventory.SuggestThresholds(300, 30, 7, decimal.NewFromInt(2))
	assert.True(t, th.AvgDailyConsumption.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, int64(70), th.SuggestedMin)
	assert.Equal(t, int64(140), th.SuggestedMax)
	assert.Equal(t, 30, th.DaysOfHistory)

	empty := inventory.SuggestThresholds(0, 0, 7, decimal.NewFromInt(2))
	assert.True(t, empty.AvgDailyConsumption.IsZero())
	assert.Zero(t, empty.SuggestedMin)
	assert.Zero(t, empty.DaysOfHistory)
}

func TestReorderQuantity(t *testing.T) {
	maxStock := int64(50)
	avg := decimal.RequireFromString("2.5")

	assert.Equal(t, int64(45), inventory.ReorderQuantity(5, 10, &maxStock, avg, 7, 10), "max(50-5, 2.5*7=18)")
	smallMax := int64(20)
	assert.Equal(t, int64(30), inventory.ReorderQuantity(5, 10, &smallMax, decimal.NewFromInt(6), 5, 10), "max(20-5, 6*5=30)")
	assert.Equal(t, int64(18), inventory.ReorderQuantity(5, 10, nil, avg, 7, 10), "sin máximo usa consumo")
	assert.Equal(t, int64(45), inventory.ReorderQuantity(5, 10, &maxStock, decimal.Zero, 7, 10), "sin consumo usa máximo - saldo")
	assert.Equal(t, int64(10), inventory.ReorderQuantity(5, 10, nil, decimal.Zero, 7, 10), "heurística por defecto")
	assert.Equal(t, int64(15), inventory.ReorderQuantity(-5, 10, nil, decimal.Zero, 7, 10), "cubre al menos el déficit")
}
