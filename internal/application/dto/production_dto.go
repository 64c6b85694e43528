package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BOMLineRequest body para PUT /api/bom/:item_id/lines/:ingredient_id.
type BOMLineRequest struct {
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// BOMLineDTO línea de receta.
type BOMLineDTO struct {
	IngredientID    string          `json:"ingredient_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
	Position        int             `json:"position"`
}

// BOMResponse receta completa de un ítem fabricado.
type BOMResponse struct {
	ItemID string       `json:"item_id"`
	Lines  []BOMLineDTO `json:"lines"`
}

// ProducibleResponse cantidad fabricable y cuello de botella.
type ProducibleResponse struct {
	ItemID       string  `json:"item_id"`
	ColorID      string  `json:"color_id,omitempty"`
	Quantity     int64   `json:"quantity"`
	BottleneckID *string `json:"bottleneck_item_id"`
}

// RequirementRequest ítem y cantidad a verificar.
type RequirementRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gt=0,max=1000000000000"`
}

// ColorCheckRequest body para POST /api/production/color-check.
type ColorCheckRequest struct {
	ColorID      string               `json:"color_id" validate:"required"`
	Requirements []RequirementRequest `json:"requirements" validate:"required,min=1,dive"`
}

// ShortageDTO faltante en el color consultado.
type ShortageDTO struct {
	ItemID           string `json:"item_id"`
	Required         int64  `json:"required"`
	AvailableInColor int64  `json:"available_in_color"`
}

// ColorCheckResponse resultado de la conferencia de stock por color.
type ColorCheckResponse struct {
	ColorID                   string        `json:"color_id"`
	Sufficient                bool          `json:"sufficient"`
	Shortages                 []ShortageDTO `json:"shortages"`
	ColorsWithSufficientStock []string      `json:"colors_with_sufficient_stock"`
}

// OrderItemRequest ítem de la orden de producción.
type OrderItemRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=manufactured kit"`
	Quantity int64  `json:"quantity" validate:"gt=0,max=1000000000000"`
}

// CreateProductionOrderRequest body para POST /api/production/orders.
type CreateProductionOrderRequest struct {
	ColorID string             `json:"color_id,omitempty"`
	Note    string             `json:"note,omitempty" validate:"max=500"`
	Items   []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderItemDTO ítem de la orden en respuestas.
type OrderItemDTO struct {
	ID       string `json:"id"`
	ItemID   string `json:"item_id"`
	Role     string `json:"role"`
	Quantity int64  `json:"quantity"`
	Position int    `json:"position"`
}

// ProductionOrderResponse orden de producción con sus ítems.
type ProductionOrderResponse struct {
	ID          string         `json:"id"`
	ColorID     string         `json:"color_id,omitempty"`
	Status      string         `json:"status"`
	Note        string         `json:"note,omitempty"`
	Items       []OrderItemDTO `json:"items"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}
