package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	"github.com/jhoicas/inventario-produccion/internal/domain/inventory"
)

func lines(pairs ...int64) []entity.PurchaseOrderLine {
	var out []entity.PurchaseOrderLine
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, entity.PurchaseOrderLine{OrderedQuantity: pairs[i], ReceivedQuantity: pairs[i+1]})
	}
	return out
}

func TestPurchaseStatus(t *testing.T) {
	cases := []struct {
		name  string
		lines []entity.PurchaseOrderLine
		want  string
	}{
		{"sin recepción", lines(10, 0, 5, 0), entity.PurchaseStatusOpen},
		{"parcial", lines(10, 6, 5, 0), entity.PurchaseStatusPartiallyReceived},
		{"completa", lines(10, 10, 5, 5), entity.PurchaseStatusReceived},
		{"sobre-recepción completa", lines(10, 10, 5, 6), entity.PurchaseStatusReceived},
		{"sobre-recepción con otra línea pendiente", lines(10, 0, 5, 7), entity.PurchaseStatusPartiallyReceived},
		{"sin líneas", nil, entity.PurchaseStatusOpen},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, inventory.PurchaseStatus(tc.lines))
		})
	}
}
