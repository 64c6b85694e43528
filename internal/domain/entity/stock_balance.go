package entity

import (
	"sort"
	"time"
)

// StockBalance saldo de un ítem (y color) materializado a partir de los movimientos.
// Se actualiza en la misma transacción que cada inserción en el libro.
type StockBalance struct {
	ItemID    string
	ColorID   string
	Quantity  int64
	UpdatedAt time.Time
}

// StockKey identifica una partición de stock: ítem + color (vacío si no aplica).
type StockKey struct {
	ItemID  string
	ColorID string
}

// LockKey clave de bloqueo por partición de stock.
func (k StockKey) LockKey() string {
	return "stock:" + k.ItemID + ":" + k.ColorID
}

// ProductionOrderLockKey clave de bloqueo de una orden de producción.
func ProductionOrderLockKey(id string) string { return "production-order:" + id }

// BOMLockKey serializa la edición de recetas (la detección de ciclos lee varias recetas).
const BOMLockKey = "bom"

// PurchaseOrderLockKey clave de bloqueo de una orden de compra.
func PurchaseOrderLockKey(id string) string { return "purchase-order:" + id }

// SortedLockKeys elimina duplicados y ordena las claves para adquirir bloqueos
// siempre en el mismo orden (evita deadlocks entre órdenes que comparten insumos).
func SortedLockKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
