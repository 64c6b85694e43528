package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentRequest body para POST /api/inventory/adjustments.
type AdjustmentRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int64  `json:"quantity" validate:"required,min=-1000000000000,max=1000000000000"` // con signo, distinto de cero
	ColorID  string `json:"color_id,omitempty"`
	Note     string `json:"note,omitempty" validate:"max=500"`
}

// OutboundRequest body para POST /api/inventory/outbound (venta o despacho).
type OutboundRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gt=0,max=1000000000000"`
	ColorID  string `json:"color_id,omitempty"`
	Origin   string `json:"origin,omitempty" validate:"max=120"`
	Note     string `json:"note,omitempty" validate:"max=500"`
}

// ReconcileRowRequest conteo físico de un ítem.
type ReconcileRowRequest struct {
	ItemID         string `json:"item_id"`
	ColorID        string `json:"color_id,omitempty"`
	CountedBalance int64  `json:"counted_balance"`
}

// ReconcileRequest body para POST /api/inventory/reconciliations.
// Las filas no se validan aquí: cada fila inválida se informa en la respuesta.
type ReconcileRequest struct {
	Items []ReconcileRowRequest `json:"items" validate:"required,min=1"`
}

// ReconcileResponse filas procesadas y errores por fila.
type ReconcileResponse struct {
	ProcessedCount int      `json:"processed_count"`
	Errors         []string `json:"errors"`
}

// MovementResponse movimiento del libro.
type MovementResponse struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	ColorID   string    `json:"color_id,omitempty"`
	Quantity  int64     `json:"quantity"`
	Kind      string    `json:"kind"`
	Origin    string    `json:"origin,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MovementListQuery parámetros de GET /api/inventory/movements.
type MovementListQuery struct {
	ItemID  string `query:"item_id"`
	ColorID string `query:"color_id"`
	Kind    string `query:"kind" validate:"omitempty,oneof=inbound outbound adjustment production"`
	Origin  string `query:"origin"`
	From    string `query:"from"` // RFC3339 o YYYY-MM-DD
	To      string `query:"to"`
	Limit   int    `query:"limit" validate:"min=0,max=1000"`
	Offset  int    `query:"offset" validate:"min=0"`
}

// BalanceResponse saldo de un ítem (o de un color).
type BalanceResponse struct {
	ItemID   string `json:"item_id"`
	ColorID  string `json:"color_id,omitempty"`
	Quantity int64  `json:"quantity"`
}

// ColorBalanceDTO saldo por color.
type ColorBalanceDTO struct {
	ColorID  string `json:"color_id"`
	Quantity int64  `json:"quantity"`
}

// AuditRowDTO comparación por color entre libro y saldo materializado.
type AuditRowDTO struct {
	ColorID      string `json:"color_id"`
	Ledger       int64  `json:"ledger"`
	Materialized int64  `json:"materialized"`
	Drift        int64  `json:"drift"`
}

// AuditResponse resultado de la auditoría de un ítem.
type AuditResponse struct {
	ItemID   string        `json:"item_id"`
	Balanced bool          `json:"balanced"`
	Total    int64         `json:"total"`
	Rows     []AuditRowDTO `json:"rows"`
}

// ThresholdSuggestionDTO umbrales sugeridos para un ítem a partir de su consumo.
type ThresholdSuggestionDTO struct {
	ItemID              string          `json:"item_id"`
	AvgDailyConsumption decimal.Decimal `json:"avg_daily_consumption"`
	SuggestedMin        int64           `json:"suggested_min"`
	SuggestedMax        int64           `json:"suggested_max"`
	DaysOfHistory       int             `json:"days_of_history"`
	LeadTimeDays        int             `json:"lead_time_days"`
	Message             string          `json:"message,omitempty"`
}

// ReplenishmentSuggestionDTO fila del reporte de stock bajo: un ítem con saldo en o bajo su mínimo.
type ReplenishmentSuggestionDTO struct {
	ItemID              string          `json:"item_id"`
	SKU                 string          `json:"sku"`
	ItemName            string          `json:"item_name"`
	CurrentStock        int64           `json:"current_stock"`
	MinStock            int64           `json:"min_stock"`
	MaxStock            *int64          `json:"max_stock,omitempty"`
	Deficit             int64           `json:"deficit"` // MinStock - CurrentStock
	AvgDailyConsumption decimal.Decimal `json:"avg_daily_consumption"`
	LeadTimeDays        int             `json:"lead_time_days"`
	SuggestedOrderQty   int64           `json:"suggested_order_qty"`
	Message             string          `json:"message"`
	Priority            int             `json:"priority"` // 1 = más urgente
}
