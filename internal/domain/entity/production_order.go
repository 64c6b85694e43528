package entity

import "time"

// Estados de la orden de producción. completed es terminal.
const (
	ProductionStatusPending   = "pending"
	ProductionStatusCompleted = "completed"
)

// Roles de un ítem dentro de la orden.
const (
	OrderItemRoleManufactured = "manufactured"
	OrderItemRoleKit          = "kit"
)

// ProductionOrder orden de producción de uno o varios ítems.
type ProductionOrder struct {
	ID          string
	ColorID     string // opcional: color de los insumos a consumir
	Status      string
	Note        string
	Items       []ProductionOrderItem
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// ProductionOrderItem fila de la orden. Un kit no genera movimiento de stock propio.
type ProductionOrderItem struct {
	ID       string
	OrderID  string
	ItemID   string
	Role     string
	Quantity int64
	Position int
}

// HasManufactured indica si la orden tiene al menos un ítem con rol manufactured.
func (o *ProductionOrder) HasManufactured() bool {
	for _, it := range o.Items {
		if it.Role == OrderItemRoleManufactured {
			return true
		}
	}
	return false
}
