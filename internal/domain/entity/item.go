package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de ítem.
const (
	CategoryResale       = "resale"
	CategoryRawMaterial  = "raw-material"
	CategoryManufactured = "manufactured"
)

// Subtipos de ítem fabricado. Un kit nunca recibe una entrada de stock propia.
const (
	ManufacturedKindStandard = "manufactured"
	ManufacturedKindKit      = "kit"
)

// Item representa un SKU controlado. Lo crea la gestión de catálogo (externa);
// el núcleo de inventario solo lo referencia.
type Item struct {
	ID               string
	SKU              string
	Name             string
	UnitMeasure      string
	Category         string
	ManufacturedKind string // solo aplica a Category == manufactured
	MinStock         int64
	MaxStock         *int64
	LeadTimeDays     *int // lead time promedio de compra/fabricación
	Width            *decimal.Decimal
	Height           *decimal.Decimal
	Depth            *decimal.Decimal
	Weight           *decimal.Decimal
	TrackedByColor   bool // stock separado por color/variante
	CreatedAt        time.Time
}

// IsManufactured indica si el ítem se fabrica (incluye kits).
func (i *Item) IsManufactured() bool {
	return i.Category == CategoryManufactured
}

// IsKit indica si el ítem es un kit (agrupación sin stock propio).
func (i *Item) IsKit() bool {
	return i.IsManufactured() && i.ManufacturedKind == ManufacturedKindKit
}

// StockColor devuelve el color con el que se particiona el stock del ítem:
// el color dado si el ítem se controla por color, vacío en otro caso.
func (i *Item) StockColor(colorID string) string {
	if i.TrackedByColor {
		return colorID
	}
	return ""
}

// ValidCategory indica si la categoría es conocida.
func ValidCategory(c string) bool {
	switch c {
	case CategoryResale, CategoryRawMaterial, CategoryManufactured:
		return true
	}
	return false
}
