package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementKindInbound    = "inbound"    // entrada (recepción de compra)
	MovementKindOutbound   = "outbound"   // salida (venta, despacho)
	MovementKindAdjustment = "adjustment" // ajuste manual o conciliación
	MovementKindProduction = "production" // consumo de insumos o entrada de producto terminado
)

// MaxQuantity tope de unidades de un movimiento, línea u orden; mantiene las sumas de saldos
// lejos del límite de int64.
const MaxQuantity int64 = 1_000_000_000_000

// ValidMovementKind indica si el tipo de movimiento es conocido.
func ValidMovementKind(k string) bool {
	switch k {
	case MovementKindInbound, MovementKindOutbound, MovementKindAdjustment, MovementKindProduction:
		return true
	}
	return false
}

// StockMovement hecho inmutable del libro de inventario.
// Nunca se actualiza ni se elimina: las correcciones son movimientos compensatorios.
type StockMovement struct {
	ID        string
	ItemID    string
	ColorID   string // vacío si el ítem no se controla por color
	Quantity  int64  // positivo entrada, negativo salida
	Kind      string
	Origin    string // orden de producción, orden de compra, etc.
	Note      string
	CreatedAt time.Time
}
