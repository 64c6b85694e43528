package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resultados usados como etiqueta.
const (
	ResultOK                = "ok"
	ResultInvalid           = "invalid"
	ResultNotFound          = "not_found"
	ResultInvalidState      = "invalid_state"
	ResultInsufficientStock = "insufficient_stock"
	ResultConflict          = "conflict"
	ResultError             = "error"
)

var (
	// MovementsTotal movimientos registrados en el libro por tipo.
	MovementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_movements_total",
		Help: "Movimientos de stock registrados por tipo",
	}, []string{"kind"})

	// ProductionExecutions ejecuciones de órdenes de producción por resultado.
	ProductionExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "production_executions_total",
		Help: "Ejecuciones de órdenes de producción por resultado",
	}, []string{"result"})

	// PurchaseReceipts lotes de recepción de compras por resultado.
	PurchaseReceipts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_receipts_total",
		Help: "Recepciones de órdenes de compra por resultado",
	}, []string{"result"})

	// ReconcileRows filas de conciliación procesadas por resultado.
	ReconcileRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_rows_total",
		Help: "Filas de conciliación de stock por resultado",
	}, []string{"result"})

	// LockConflicts bloqueos de stock que no se resolvieron esperando.
	LockConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_lock_conflicts_total",
		Help: "Conflictos de concurrencia en bloqueos de stock",
	})

	// OperationDuration latencia de las operaciones del núcleo.
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "operation_duration_seconds",
		Help:    "Duración de las operaciones de inventario en segundos",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms a ~4s
	}, []string{"operation"})
)

// ObserveSince registra la duración de una operación iniciada en start.
func ObserveSince(operation string, start time.Time) {
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
