package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/inventario-produccion/internal/application/dto"
	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-produccion/internal/domain/inventory"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
	"github.com/jhoicas/inventario-produccion/pkg/config"
	"github.com/jhoicas/inventario-produccion/pkg/logger"
	"github.com/jhoicas/inventario-produccion/pkg/metrics"
)

const itemPageSize = 200

// ReplenishmentUseCase sugiere umbrales de stock y genera el reporte de stock bajo
// a partir del consumo histórico registrado en el libro.
type ReplenishmentUseCase struct {
	repos   repository.Repos
	cfg     config.ReplenishmentConfig
	log     *logger.Logger
	printer *message.Printer
	group   singleflight.Group
	now     func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(repos repository.Repos, cfg config.ReplenishmentConfig, log *logger.Logger) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		repos:   repos,
		cfg:     cfg,
		log:     log.Component("replenishment"),
		printer: message.NewPrinter(language.LatinAmericanSpanish),
		now:     time.Now,
	}
}

// SuggestThresholds calcula consumo diario promedio y mínimo/máximo sugeridos.
// Sin historia devuelve ceros con un mensaje explicativo; nunca falla por falta de datos.
// lookbackDays <= 0 usa la ventana configurada.
func (uc *ReplenishmentUseCase) SuggestThresholds(ctx context.Context, itemID string, lookbackDays int) (*dto.ThresholdSuggestionDTO, error) {
	if lookbackDays < 0 {
		return nil, domain.Invalid("lookback_days", "no puede ser negativo")
	}
	if lookbackDays == 0 {
		lookbackDays = uc.cfg.LookbackDays
	}
	item, err := LoadItem(ctx, uc.repos, itemID)
	if err != nil {
		return nil, err
	}
	leadTime := uc.leadTime(item)
	th, err := uc.thresholds(ctx, item, lookbackDays)
	if err != nil {
		return nil, err
	}

	out := &dto.ThresholdSuggestionDTO{
		ItemID:              item.ID,
		AvgDailyConsumption: th.AvgDailyConsumption,
		SuggestedMin:        th.SuggestedMin,
		SuggestedMax:        th.SuggestedMax,
		DaysOfHistory:       th.DaysOfHistory,
		LeadTimeDays:        leadTime,
	}
	switch {
	case th.DaysOfHistory == 0:
		out.Message = uc.printer.Sprintf("El ítem %s no tiene movimientos en los últimos %d días; no hay consumo para sugerir umbrales.", item.SKU, lookbackDays)
	case th.AvgDailyConsumption.IsZero():
		out.Message = uc.printer.Sprintf("Sin consumo registrado en %d días de historia.", th.DaysOfHistory)
	default:
		out.Message = uc.printer.Sprintf("Consumo promedio de %s unidades/día en %d días; lead time de %d días.",
			th.AvgDailyConsumption.StringFixed(2), th.DaysOfHistory, leadTime)
	}
	return out, nil
}

func (uc *ReplenishmentUseCase) thresholds(ctx context.Context, item *entity.Item, lookbackDays int) (domaininv.Thresholds, error) {
	now := uc.now()
	stats, err := uc.repos.Movements.Consumption(ctx, item.ID, now.AddDate(0, 0, -lookbackDays))
	if err != nil {
		return domaininv.Thresholds{}, err
	}
	days := domaininv.HistoryDays(stats.FirstMovementAt, now, lookbackDays)
	multiplier := decimal.NewFromFloat(uc.cfg.MaxMultiplier)
	return domaininv.SuggestThresholds(stats.Consumed, days, uc.leadTime(item), multiplier), nil
}

func (uc *ReplenishmentUseCase) leadTime(item *entity.Item) int {
	if item.LeadTimeDays != nil && *item.LeadTimeDays > 0 {
		return *item.LeadTimeDays
	}
	return uc.cfg.DefaultLeadTimeDays
}

// LowStockReport devuelve los ítems con saldo en o bajo su mínimo configurado, con la cantidad
// sugerida de compra y un ranking de prioridad (1 = mayor déficit).
// Llamadas concurrentes comparten un único cálculo.
func (uc *ReplenishmentUseCase) LowStockReport(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	v, err, shared := uc.group.Do("low-stock", func() (any, error) {
		defer metrics.ObserveSince("low_stock_report", time.Now())
		return uc.buildLowStockReport(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		uc.log.Debug().Msg("reporte de stock bajo compartido entre solicitudes")
	}
	rows := v.([]dto.ReplenishmentSuggestionDTO)
	out := make([]dto.ReplenishmentSuggestionDTO, len(rows))
	copy(out, rows)
	return out, nil
}

func (uc *ReplenishmentUseCase) buildLowStockReport(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	suggestions := []dto.ReplenishmentSuggestionDTO{}
	for offset := 0; ; offset += itemPageSize {
		items, err := uc.repos.Items.List(ctx, itemPageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			row, ok, err := uc.lowStockRow(ctx, item)
			if err != nil {
				return nil, err
			}
			if ok {
				suggestions = append(suggestions, row)
			}
		}
		if len(items) < itemPageSize {
			break
		}
	}

	// Mayor déficit primero; empate por SKU para un orden estable.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.Deficit != b.Deficit {
			return a.Deficit > b.Deficit
		}
		return a.SKU < b.SKU
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}

	uc.log.Info().Int("items", len(suggestions)).Msg("reporte de stock bajo generado")
	return suggestions, nil
}

func (uc *ReplenishmentUseCase) lowStockRow(ctx context.Context, item *entity.Item) (dto.ReplenishmentSuggestionDTO, bool, error) {
	if item.IsKit() {
		return dto.ReplenishmentSuggestionDTO{}, false, nil
	}
	balance, err := uc.repos.Balances.Total(ctx, item.ID)
	if err != nil {
		return dto.ReplenishmentSuggestionDTO{}, false, err
	}
	// Un mínimo de 0 solo alerta si el saldo quedó negativo.
	if balance > item.MinStock || (item.MinStock == 0 && balance >= 0) {
		return dto.ReplenishmentSuggestionDTO{}, false, nil
	}

	th, err := uc.thresholds(ctx, item, uc.cfg.LookbackDays)
	if err != nil {
		return dto.ReplenishmentSuggestionDTO{}, false, err
	}
	leadTime := uc.leadTime(item)
	qty := domaininv.ReorderQuantity(balance, item.MinStock, item.MaxStock, th.AvgDailyConsumption, leadTime, uc.cfg.DefaultReorderQty)

	var msg string
	switch {
	case th.AvgDailyConsumption.IsPositive():
		msg = uc.printer.Sprintf("Saldo %d bajo el mínimo %d; consumo de %s/día durante %d días de lead time.",
			balance, item.MinStock, th.AvgDailyConsumption.StringFixed(2), leadTime)
	case item.MaxStock != nil:
		msg = uc.printer.Sprintf("Saldo %d bajo el mínimo %d; se repone hasta el máximo %d.", balance, item.MinStock, *item.MaxStock)
	default:
		msg = uc.printer.Sprintf("Saldo %d bajo el mínimo %d; sin consumo ni máximo, se sugiere la cantidad por defecto.", balance, item.MinStock)
	}

	return dto.ReplenishmentSuggestionDTO{
		ItemID:              item.ID,
		SKU:                 item.SKU,
		ItemName:            item.Name,
		CurrentStock:        balance,
		MinStock:            item.MinStock,
		MaxStock:            item.MaxStock,
		Deficit:             item.MinStock - balance,
		AvgDailyConsumption: th.AvgDailyConsumption,
		LeadTimeDays:        leadTime,
		SuggestedOrderQty:   qty,
		Message:             msg,
	}, true, nil
}
