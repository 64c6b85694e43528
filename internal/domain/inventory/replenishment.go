package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Thresholds umbrales sugeridos a partir del consumo histórico.
type Thresholds struct {
	AvgDailyConsumption decimal.Decimal
	SuggestedMin        int64
	SuggestedMax        int64
	DaysOfHistory       int
}

// HistoryDays días de historia efectivos: desde el primer movimiento (o el inicio de la ventana,
// lo que sea más reciente) hasta now, con mínimo 1 si hay historia.
func HistoryDays(firstMovement *time.Time, now time.Time, lookbackDays int) int {
	if firstMovement == nil {
		return 0
	}
	start := now.AddDate(0, 0, -lookbackDays)
	if firstMovement.After(start) {
		start = *firstMovement
	}
	days := int(now.Sub(start).Hours() / 24)
	if days < 1 {
		days = 1
	}
	if days > lookbackDays {
		days = lookbackDays
	}
	return days
}

// SuggestThresholds mínimo = consumo diario * lead time; máximo = mínimo * multiplicador.
// Los resultados se redondean hacia arriba a unidades enteras.
func SuggestThresholds(consumed int64, days, leadTimeDays int, multiplier decimal.Decimal) Thresholds {
	if days <= 0 {
		return Thresholds{AvgDailyConsumption: decimal.Zero}
	}
	avg := decimal.NewFromInt(consumed).Div(decimal.NewFromInt(int64(days)))
	minExact := avg.Mul(decimal.NewFromInt(int64(leadTimeDays)))
	maxExact := minExact.Mul(multiplier)
	return Thresholds{
		AvgDailyConsumption: avg.Round(4),
		SuggestedMin:        minExact.Ceil().IntPart(),
		SuggestedMax:        maxExact.Ceil().IntPart(),
		DaysOfHistory:       days,
	}
}

// ReorderQuantity cantidad sugerida de compra para un ítem bajo mínimo:
// max(máximo - saldo, consumo diario * lead time) si hay datos; si no, máximo - saldo;
// si tampoco hay máximo, max(mínimo - saldo, fallback).
func ReorderQuantity(balance, minStock int64, maxStock *int64, avgDaily decimal.Decimal, leadTimeDays int, fallback int64) int64 {
	var qty int64
	byConsumption := avgDaily.Mul(decimal.NewFromInt(int64(leadTimeDays))).Ceil().IntPart()
	switch {
	case avgDaily.IsPositive() && maxStock != nil:
		qty = max(*maxStock-balance, byConsumption)
	case avgDaily.IsPositive():
		qty = max(minStock-balance, byConsumption)
	case maxStock != nil:
		qty = *maxStock - balance
	default:
		qty = max(minStock-balance, fallback)
	}
	if qty < 0 {
		return 0
	}
	return qty
}
