package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de orden de compra.
const (
	PurchaseKindOrdered          = "ordered"           // con fecha de entrega esperada
	PurchaseKindReceivedDirectly = "received-directly" // recibida al crearse
)

// Estados de la orden de compra (derivados de las líneas).
const (
	PurchaseStatusOpen              = "open"
	PurchaseStatusPartiallyReceived = "partially-received"
	PurchaseStatusReceived          = "received"
)

// PurchaseOrder orden de compra a un proveedor.
type PurchaseOrder struct {
	ID         string
	SupplierID string
	Kind       string
	Status     string
	ExpectedAt *time.Time
	Lines      []PurchaseOrderLine
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PurchaseOrderLine línea de la orden con lo recibido hasta ahora.
type PurchaseOrderLine struct {
	ID               string
	OrderID          string
	ItemID           string
	ColorID          string
	OrderedQuantity  int64
	UnitPrice        decimal.Decimal
	ReceivedQuantity int64
	Position         int
}

// FullyReceived indica si la línea recibió al menos lo pedido.
func (l PurchaseOrderLine) FullyReceived() bool {
	return l.ReceivedQuantity >= l.OrderedQuantity
}

// OverReceived indica si la línea recibió más de lo pedido.
func (l PurchaseOrderLine) OverReceived() bool {
	return l.ReceivedQuantity > l.OrderedQuantity
}

// Line busca una línea por ID.
func (o *PurchaseOrder) Line(id string) (*PurchaseOrderLine, bool) {
	for i := range o.Lines {
		if o.Lines[i].ID == id {
			return &o.Lines[i], true
		}
	}
	return nil, false
}
