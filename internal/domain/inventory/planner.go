package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
)

// Producible resultado del cálculo de cantidad fabricable.
type Producible struct {
	Quantity     int64
	BottleneckID string // vacío si la receta está vacía
}

// ProducibleQuantity calcula cuántas unidades se pueden fabricar con el stock dado.
// Por cada línea: floor(saldo / cantidad_por_unidad) en aritmética racional;
// el resultado es el mínimo entre líneas y el insumo que lo alcanza es el cuello de botella
// (empates: primera línea en orden de almacenamiento). Receta vacía => 0.
func ProducibleQuantity(lines []entity.BOMLine, balances map[string]int64) Producible {
	var res Producible
	for i, line := range lines {
		q := UnitsCoveredBy(balances[line.IngredientID], line.QuantityPerUnit)
		if i == 0 || q < res.Quantity {
			res.Quantity = q
			res.BottleneckID = line.IngredientID
		}
	}
	return res
}

// UnitsCoveredBy devuelve floor(balance / perUnit); saldos no positivos cubren 0 unidades.
func UnitsCoveredBy(balance int64, perUnit decimal.Decimal) int64 {
	if balance <= 0 || !perUnit.IsPositive() {
		return 0
	}
	// QuoRem con precisión 0 da el cociente entero exacto (sin redondeo previo).
	q, _ := decimal.NewFromInt(balance).QuoRem(perUnit, 0)
	return q.IntPart()
}
