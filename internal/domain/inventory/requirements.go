package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
)

// Requirement consumo agregado de un insumo.
type Requirement struct {
	ItemID   string
	Exact    decimal.Decimal // cantidad racional exacta
	Quantity int64           // unidades enteras a consumir (techo de Exact)
}

// Aggregator suma requerimientos por ítem conservando el orden de primera aparición.
type Aggregator struct {
	order []string
	exact map[string]decimal.Decimal
}

// NewAggregator crea un agregador vacío.
func NewAggregator() *Aggregator {
	return &Aggregator{exact: make(map[string]decimal.Decimal)}
}

// Add acumula qty para el ítem.
func (a *Aggregator) Add(itemID string, qty decimal.Decimal) {
	cur, ok := a.exact[itemID]
	if !ok {
		a.order = append(a.order, itemID)
	}
	a.exact[itemID] = cur.Add(qty)
}

// AddBOM acumula las líneas de la receta multiplicadas por la cantidad ordenada.
func (a *Aggregator) AddBOM(lines []entity.BOMLine, quantity int64) {
	q := decimal.NewFromInt(quantity)
	for _, line := range lines {
		a.Add(line.IngredientID, line.QuantityPerUnit.Mul(q))
	}
}

// Requirements devuelve los requerimientos redondeados hacia arriba a unidades enteras.
// Un requerimiento por encima de entity.MaxQuantity es un ValidationError: no se trunca.
func (a *Aggregator) Requirements() ([]Requirement, error) {
	limit := decimal.NewFromInt(entity.MaxQuantity)
	out := make([]Requirement, 0, len(a.order))
	for _, id := range a.order {
		exact := a.exact[id].Ceil()
		if exact.GreaterThan(limit) {
			return nil, domain.Invalid("quantity", fmt.Sprintf("el requerimiento de %s (%s) supera el máximo de %d unidades", id, exact.String(), entity.MaxQuantity))
		}
		out = append(out, Requirement{ItemID: id, Exact: a.exact[id], Quantity: exact.IntPart()})
	}
	return out, nil
}

// ExpandProductionOrder agrega el consumo de insumos de todos los ítems manufactured de la orden.
// Los kits no aportan consumo propio: su armado ya está cubierto por los ítems fabricados.
func ExpandProductionOrder(items []entity.ProductionOrderItem, bomByItem map[string][]entity.BOMLine) ([]Requirement, error) {
	agg := NewAggregator()
	for _, it := range items {
		if it.Role != entity.OrderItemRoleManufactured {
			continue
		}
		agg.AddBOM(bomByItem[it.ItemID], it.Quantity)
	}
	return agg.Requirements()
}
