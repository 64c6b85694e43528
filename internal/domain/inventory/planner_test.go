package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	"github.com/jhoicas/inventario-produccion/internal/domain/inventory"
)

func bom(manufactured string, pairs ...any) []entity.BOMLine {
	var lines []entity.BOMLine
	for i := 0; i+1 < len(pairs); i += 2 {
		lines = append(lines, entity.BOMLine{
			ManufacturedID:  manufactured,
			IngredientID:    pairs[i].(string),
			QuantityPerUnit: decimal.RequireFromString(pairs[i+1].(string)),
			Position:        i/2 + 1,
		})
	}
	return lines
}

func TestProducibleQuantity_Cuello(t *testing.T) {
	// {A:10, B:7} con receta {A: 2/u, B: 1/u} => 5 unidades, cuello A.
	res := inventory.ProducibleQuantity(bom("X", "A", "2", "B", "1"), map[string]int64{"A": 10, "B": 7})
	assert.Equal(t, int64(5), res.Quantity)
	assert.Equal(t, "A", res.BottleneckID)
}

func TestProducibleQuantity_RecetaVacia(t *testing.T) {
	res := inventory.ProducibleQuantity(nil, map[string]int64{"A": 10})
	assert.Equal(t, int64(0), res.Quantity)
	assert.Empty(t, res.BottleneckID)
}

func TestProducibleQuantity_EmpatePrimeraLinea(t *testing.T) {
	res := inventory.ProducibleQuantity(bom("X", "B", "1", "A", "1"), map[string]int64{"A": 4, "B": 4})
	assert.Equal(t, int64(4), res.Quantity)
	assert.Equal(t, "B", res.BottleneckID, "en empate gana la primera línea almacenada")
}

func TestProducibleQuantity_Fraccionario(t *testing.T) {
	// 0.5 por unidad con saldo 3 => 6 unidades; 0.3 con saldo 1 => 3 (1/0.3 = 3.33)
	res := inventory.ProducibleQuantity(bom("X", "A", "0.5", "B", "0.3"), map[string]int64{"A": 3, "B": 1})
	assert.Equal(t, int64(3), res.Quantity)
	assert.Equal(t, "B", res.BottleneckID)
}

func TestUnitsCoveredBy(t *testing.T) {
	cases := []struct {
		balance int64
		perUnit string
		want    int64
	}{
		{10, "3", 3},
		{9, "1.5", 6},
		{0, "1", 0},
		{-4, "1", 0},
		{7, "0.25", 28},
	}
	for _, tc := range cases {
		got := inventory.UnitsCoveredBy(tc.balance, decimal.RequireFromString(tc.perUnit))
		assert.Equal(t, tc.want, got, "saldo %d / %s", tc.balance, tc.perUnit)
	}
}

func TestExpandProductionOrder_AgregaInsumosCompartidos(t *testing.T) {
	boms := map[string][]entity.BOMLine{
		"MESA":  bom("MESA", "TABLA", "1", "TORNILLO", "8"),
		"SILLA": bom("SILLA", "TORNILLO", "4", "TELA", "0.5"),
	}
	items := []entity.ProductionOrderItem{
		{ItemID: "MESA", Role: entity.OrderItemRoleManufactured, Quantity: 2},
		{ItemID: "SILLA", Role: entity.OrderItemRoleManufactured, Quantity: 3},
		{ItemID: "COMEDOR", Role: entity.OrderItemRoleKit, Quantity: 1},
	}
	reqs, err := inventory.ExpandProductionOrder(items, boms)
	require.NoError(t, err)

	if assert.Len(t, reqs, 3) {
		assert.Equal(t, "TABLA", reqs[0].ItemID)
		assert.Equal(t, int64(2), reqs[0].Quantity)
		assert.Equal(t, "TORNILLO", reqs[1].ItemID)
		assert.Equal(t, int64(28), reqs[1].Quantity, "2*8 + 3*4 en un solo requerimiento")
		assert.Equal(t, "TELA", reqs[2].ItemID)
		assert.True(t, reqs[2].Exact.Equal(decimal.RequireFromString("1.5")))
		assert.Equal(t, int64(2), reqs[2].Quantity, "1.5 se redondea hacia arriba")
	}
}

func TestExpandProductionOrder_RequerimientoFueraDeRango(t *testing.T) {
	boms := map[string][]entity.BOMLine{"CAJA": bom("CAJA", "TORNILLO", "8")}
	items := []entity.ProductionOrderItem{
		{ItemID: "CAJA", Role: entity.OrderItemRoleManufactured, Quantity: 1<<61 + 1},
	}

	reqs, err := inventory.ExpandProductionOrder(items, boms)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "8 * (2^61+1) no cabe en int64 y no se trunca")
	assert.Nil(t, reqs)

	agg := inventory.NewAggregator()
	agg.Add("TORNILLO", decimal.NewFromInt(entity.MaxQuantity))
	_, err = agg.Requirements()
	assert.NoError(t, err, "el máximo exacto se acepta")
	agg.Add("TORNILLO", decimal.RequireFromString("0.1"))
	_, err = agg.Requirements()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
