package inventory

import "github.com/jhoicas/inventario-produccion/internal/domain/entity"

// PurchaseStatus deriva el estado de la orden de compra a partir de sus líneas:
// todas recibidas completas => received; alguna con recepción => partially-received; si no, open.
// La sobre-recepción no altera el estado; se informa aparte.
func PurchaseStatus(lines []entity.PurchaseOrderLine) string {
	if len(lines) == 0 {
		return entity.PurchaseStatusOpen
	}
	all := true
	some := false
	for _, l := range lines {
		if !l.FullyReceived() {
			all = false
		}
		if l.ReceivedQuantity > 0 {
			some = true
		}
	}
	switch {
	case all:
		return entity.PurchaseStatusReceived
	case some:
		return entity.PurchaseStatusPartiallyReceived
	default:
		return entity.PurchaseStatusOpen
	}
}
