package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	"github.com/jhoicas/inventario-produccion/internal/domain/inventory"
)

func TestValidateBOMLine(t *testing.T) {
	cases := []struct {
		name string
		line entity.BOMLine
		ok   bool
	}{
		{"válida", entity.BOMLine{ManufacturedID: "MESA", IngredientID: "TABLA", QuantityPerUnit: decimal.NewFromInt(2)}, true},
		{"fraccionaria", entity.BOMLine{ManufacturedID: "MESA", IngredientID: "TELA", QuantityPerUnit: decimal.RequireFromString("0.5")}, true},
		{"autorreferencia", entity.BOMLine{ManufacturedID: "MESA", IngredientID: "MESA", QuantityPerUnit: decimal.NewFromInt(1)}, false},
		{"cantidad cero", entity.BOMLine{ManufacturedID: "MESA", IngredientID: "TABLA", QuantityPerUnit: decimal.Zero}, false},
		{"cantidad negativa", entity.BOMLine{ManufacturedID: "MESA", IngredientID: "TABLA", QuantityPerUnit: decimal.NewFromInt(-1)}, false},
		{"sin insumo", entity.BOMLine{ManufacturedID: "MESA", QuantityPerUnit: decimal.NewFromInt(1)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := inventory.ValidateBOMLine(tc.line)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestPathTo(t *testing.T) {
	graph := map[string][]string{
		"MESA":    {"TABLERO", "PATA"},
		"TABLERO": {"TABLA", "TORNILLO"},
		"PATA":    {"TUBO"},
	}
	ingredients := func(id string) ([]string, error) { return graph[id], nil }

	path, err := inventory.PathTo("MESA", "TORNILLO", ingredients)
	require.NoError(t, err)
	assert.Equal(t, []string{"MESA", "TABLERO", "TORNILLO"}, path)

	path, err = inventory.PathTo("PATA", "TABLA", ingredients)
	require.NoError(t, err)
	assert.Nil(t, path, "PATA no llega a TABLA")

	boom := errors.New("fallo de lectura")
	_, err = inventory.PathTo("MESA", "X", func(string) ([]string, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}
