package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseLineRequest línea de la orden de compra.
type PurchaseLineRequest struct {
	ItemID          string          `json:"item_id" validate:"required"`
	ColorID         string          `json:"color_id,omitempty"`
	OrderedQuantity int64           `json:"ordered_quantity" validate:"gt=0,max=1000000000000"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID string                `json:"supplier_id" validate:"required"`
	Kind       string                `json:"kind" validate:"required,oneof=ordered received-directly"`
	ExpectedAt *time.Time            `json:"expected_at,omitempty"`
	Lines      []PurchaseLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReceiptRequest cantidad recibida ahora para una línea.
type ReceiptRequest struct {
	LineID   string `json:"line_id" validate:"required"`
	Quantity int64  `json:"quantity" validate:"min=0,max=1000000000000"`
}

// ReceivePurchaseOrderRequest body para POST /api/purchase-orders/:id/receipts.
type ReceivePurchaseOrderRequest struct {
	Receipts []ReceiptRequest `json:"receipts" validate:"required,min=1,dive"`
}

// PurchaseLineDTO línea en respuestas.
type PurchaseLineDTO struct {
	ID               string          `json:"id"`
	ItemID           string          `json:"item_id"`
	ColorID          string          `json:"color_id,omitempty"`
	OrderedQuantity  int64           `json:"ordered_quantity"`
	ReceivedQuantity int64           `json:"received_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	OverReceived     bool            `json:"over_received"`
}

// PurchaseOrderResponse orden de compra con sus líneas.
type PurchaseOrderResponse struct {
	ID         string            `json:"id"`
	SupplierID string            `json:"supplier_id"`
	Kind       string            `json:"kind"`
	Status     string            `json:"status"`
	ExpectedAt *time.Time        `json:"expected_at,omitempty"`
	Lines      []PurchaseLineDTO `json:"lines"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ReceiptResponse orden actualizada más las líneas sobre-recibidas en este lote.
type ReceiptResponse struct {
	Order             PurchaseOrderResponse `json:"order"`
	OverReceivedLines []string              `json:"over_received_lines"`
	MovementsRecorded int                   `json:"movements_recorded"`
}
