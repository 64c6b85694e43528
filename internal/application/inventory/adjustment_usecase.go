package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
	"github.com/jhoicas/inventario-produccion/pkg/logger"
	"github.com/jhoicas/inventario-produccion/pkg/metrics"
)

// AdjustInput ajuste manual de stock.
type AdjustInput struct {
	ItemID   string
	Quantity int64 // con signo
	ColorID  string
	Note     string
}

// DispatchInput salida de stock (venta, despacho) con verificación de suficiencia.
type DispatchInput struct {
	ItemID   string
	Quantity int64 // positiva; se registra con signo negativo
	ColorID  string
	Origin   string
	Note     string
}

// ReconcileRow conteo físico de un ítem (y color si aplica).
type ReconcileRow struct {
	ItemID         string
	ColorID        string
	CountedBalance int64
}

// ReconcileResult resultado de la conciliación masiva. Los errores por fila no abortan el lote.
type ReconcileResult struct {
	ProcessedCount int
	Errors         []string
}

// AdjustmentUseCase ajustes manuales, salidas y conciliación contra conteo físico.
type AdjustmentUseCase struct {
	repos  repository.Repos
	tx     TxRunner
	ledger *StockLedger
	log    *logger.Logger
}

// NewAdjustmentUseCase construye el caso de uso de ajustes.
func NewAdjustmentUseCase(repos repository.Repos, tx TxRunner, ledger *StockLedger, log *logger.Logger) *AdjustmentUseCase {
	return &AdjustmentUseCase{repos: repos, tx: tx, ledger: ledger, log: log.Component("adjustments")}
}

// Adjust registra un movimiento de tipo adjustment. Puede dejar el saldo negativo:
// el ajuste refleja la realidad física, no una política de stock.
func (uc *AdjustmentUseCase) Adjust(ctx context.Context, in AdjustInput) (*entity.StockMovement, error) {
	mov, err := uc.ledger.Record(ctx, RecordInput{
		ItemID:   in.ItemID,
		Quantity: in.Quantity,
		Kind:     entity.MovementKindAdjustment,
		ColorID:  in.ColorID,
		Origin:   "ajuste-manual",
		Note:     in.Note,
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("item_id", in.ItemID).Msg("ajuste rechazado")
		return nil, err
	}
	uc.log.Info().
		Str("item_id", mov.ItemID).
		Str("color_id", mov.ColorID).
		Int64("quantity", mov.Quantity).
		Msg("ajuste registrado")
	return mov, nil
}

// Dispatch registra una salida verificando el saldo dentro del mismo bloqueo por ítem+color
// que usa la ejecución de producción; así una venta y una producción nunca consumen el mismo stock.
func (uc *AdjustmentUseCase) Dispatch(ctx context.Context, in DispatchInput) (*entity.StockMovement, error) {
	defer metrics.ObserveSince("dispatch", time.Now())

	if in.Quantity <= 0 {
		return nil, domain.Invalid("quantity", "debe ser positiva")
	}
	if in.Quantity > entity.MaxQuantity {
		return nil, domain.Invalid("quantity", fmt.Sprintf("máximo %d", entity.MaxQuantity))
	}
	item, err := LoadItem(ctx, uc.repos, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item.IsKit() {
		return nil, domain.Invalid("item_id", fmt.Sprintf("el kit %s no tiene stock propio", item.ID))
	}
	if item.TrackedByColor && in.ColorID == "" {
		return nil, domain.Invalid("color_id", fmt.Sprintf("el ítem %s se controla por color", item.ID))
	}
	key := entity.StockKey{ItemID: item.ID, ColorID: item.StockColor(in.ColorID)}

	var mov *entity.StockMovement
	err = uc.tx.Run(ctx, []string{key.LockKey()}, func(r repository.Repos) error {
		available, err := r.Balances.Get(ctx, key)
		if err != nil {
			return err
		}
		if available < in.Quantity {
			return &domain.InsufficientStockError{
				ItemID:    item.ID,
				ColorID:   key.ColorID,
				Required:  in.Quantity,
				Available: available,
			}
		}
		mov, err = uc.ledger.RecordInTx(ctx, r, item, RecordInput{
			ItemID:   item.ID,
			Quantity: -in.Quantity,
			Kind:     entity.MovementKindOutbound,
			ColorID:  in.ColorID,
			Origin:   in.Origin,
			Note:     in.Note,
		})
		return err
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("item_id", item.ID).Str("origin", in.Origin).Msg("salida rechazada")
		return nil, err
	}
	CountMovements(mov)
	uc.log.Info().
		Str("item_id", mov.ItemID).
		Str("color_id", mov.ColorID).
		Str("origin", mov.Origin).
		Int64("quantity", in.Quantity).
		Msg("salida registrada")
	return mov, nil
}

// Reconcile ajusta cada ítem al saldo contado. Cada fila corre en su propia transacción:
// el fallo de una fila se informa en Errors y no revierte las demás.
func (uc *AdjustmentUseCase) Reconcile(ctx context.Context, rows []ReconcileRow) ReconcileResult {
	defer metrics.ObserveSince("reconcile", time.Now())

	res := ReconcileResult{Errors: []string{}}
	for i, row := range rows {
		err := uc.reconcileRow(ctx, row)
		metrics.ReconcileRows.WithLabelValues(ResultLabel(err)).Inc()
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("fila %d (ítem %s): %v", i+1, row.ItemID, err))
			continue
		}
		res.ProcessedCount++
	}
	uc.log.Info().
		Int("rows", len(rows)).
		Int("processed", res.ProcessedCount).
		Int("errors", len(res.Errors)).
		Msg("conciliación procesada")
	return res
}

func (uc *AdjustmentUseCase) reconcileRow(ctx context.Context, row ReconcileRow) error {
	if row.CountedBalance > entity.MaxQuantity || row.CountedBalance < -entity.MaxQuantity {
		return domain.Invalid("counted_balance", fmt.Sprintf("máximo %d", entity.MaxQuantity))
	}
	item, err := LoadItem(ctx, uc.repos, row.ItemID)
	if err != nil {
		return err
	}
	if item.IsKit() {
		return domain.Invalid("item_id", fmt.Sprintf("el kit %s no tiene stock propio", item.ID))
	}
	if item.TrackedByColor && row.ColorID == "" {
		return domain.Invalid("color_id", fmt.Sprintf("el ítem %s se controla por color", item.ID))
	}
	key := entity.StockKey{ItemID: item.ID, ColorID: item.StockColor(row.ColorID)}

	var mov *entity.StockMovement
	err = uc.tx.Run(ctx, []string{key.LockKey()}, func(r repository.Repos) error {
		current, err := r.Balances.Get(ctx, key)
		if err != nil {
			return err
		}
		delta := row.CountedBalance - current
		if delta == 0 {
			return nil
		}
		mov, err = uc.ledger.RecordInTx(ctx, r, item, RecordInput{
			ItemID:   item.ID,
			Quantity: delta,
			Kind:     entity.MovementKindAdjustment,
			ColorID:  row.ColorID,
			Origin:   "conciliacion",
			Note:     fmt.Sprintf("conteo físico %d (saldo previo %d)", row.CountedBalance, current),
		})
		return err
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalidInput) {
			uc.log.Error().Err(err).Str("item_id", item.ID).Msg("error conciliando ítem")
		}
		return err
	}
	CountMovements(mov)
	return nil
}
