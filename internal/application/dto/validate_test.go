package dto_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-produccion/internal/application/dto"
	"github.com/jhoicas/inventario-produccion/internal/domain"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		in     any
		field  string
		reason string
	}{
		{"item requerido", &dto.AdjustmentRequest{Quantity: 2}, "item_id", "requerido"},
		{"salida positiva", &dto.OutboundRequest{ItemID: "A"}, "quantity", "debe ser mayor que 0"},
		{"rol desconocido", &dto.CreateProductionOrderRequest{Items: []dto.OrderItemRequest{
			{ItemID: "A", Role: "otro", Quantity: 1},
		}}, "items[0].role", "debe ser uno de [manufactured kit]"},
		{"sin líneas", &dto.CreatePurchaseOrderRequest{SupplierID: "P", Kind: "ordered"}, "lines", "requerido"},
		{"recepción negativa", &dto.ReceivePurchaseOrderRequest{Receipts: []dto.ReceiptRequest{
			{LineID: "L1", Quantity: -1},
		}}, "receipts[0].quantity", "mínimo 0"},
		{"orden fuera de rango", &dto.CreateProductionOrderRequest{Items: []dto.OrderItemRequest{
			{ItemID: "CAJA", Role: "manufactured", Quantity: 1<<61 + 1},
		}}, "items[0].quantity", "máximo 1000000000000"},
		{"ajuste fuera de rango", &dto.AdjustmentRequest{ItemID: "A", Quantity: -2_000_000_000_000}, "quantity", "mínimo -1000000000000"},
		{"recepción fuera de rango", &dto.ReceivePurchaseOrderRequest{Receipts: []dto.ReceiptRequest{
			{LineID: "L1", Quantity: 1 << 62},
		}}, "receipts[0].quantity", "máximo 1000000000000"},
		{"límite de página", &dto.MovementListQuery{Limit: 5000}, "limit", "máximo 1000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := dto.Validate(tc.in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
			assert.Equal(t, tc.reason, ve.Reason)
		})
	}
}

func TestValidate_Valido(t *testing.T) {
	assert.NoError(t, dto.Validate(&dto.AdjustmentRequest{ItemID: "A", Quantity: -3}))
	assert.NoError(t, dto.Validate(&dto.ReceivePurchaseOrderRequest{Receipts: []dto.ReceiptRequest{{LineID: "L1"}}}))
}
