package memory

import (
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
)

// state datos confirmados (o la copia privada de una transacción).
type state struct {
	items      map[string]*entity.Item
	itemOrder  []string
	movements  []entity.StockMovement
	balances   map[entity.StockKey]entity.StockBalance
	bom        map[string][]entity.BOMLine
	bomSeq     int
	production map[string]*entity.ProductionOrder
	purchase   map[string]*entity.PurchaseOrder
}

func newState() *state {
	return &state{
		items:      make(map[string]*entity.Item),
		balances:   make(map[entity.StockKey]entity.StockBalance),
		bom:        make(map[string][]entity.BOMLine),
		production: make(map[string]*entity.ProductionOrder),
		purchase:   make(map[string]*entity.PurchaseOrder),
	}
}

// clone copia profunda de todo lo que una transacción puede modificar.
// Los ítems no se modifican nunca, se comparten.
func (s *state) clone() *state {
	c := &state{
		items:      make(map[string]*entity.Item, len(s.items)),
		itemOrder:  append([]string(nil), s.itemOrder...),
		movements:  append([]entity.StockMovement(nil), s.movements...),
		balances:   make(map[entity.StockKey]entity.StockBalance, len(s.balances)),
		bom:        make(map[string][]entity.BOMLine, len(s.bom)),
		bomSeq:     s.bomSeq,
		production: make(map[string]*entity.ProductionOrder, len(s.production)),
		purchase:   make(map[string]*entity.PurchaseOrder, len(s.purchase)),
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.bom {
		c.bom[k] = append([]entity.BOMLine(nil), v...)
	}
	for k, v := range s.production {
		c.production[k] = cloneProductionOrder(v)
	}
	for k, v := range s.purchase {
		c.purchase[k] = clonePurchaseOrder(v)
	}
	return c
}

func cloneProductionOrder(o *entity.ProductionOrder) *entity.ProductionOrder {
	c := *o
	c.Items = append([]entity.ProductionOrderItem(nil), o.Items...)
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func clonePurchaseOrder(o *entity.PurchaseOrder) *entity.PurchaseOrder {
	c := *o
	c.Lines = append([]entity.PurchaseOrderLine(nil), o.Lines...)
	if o.ExpectedAt != nil {
		t := *o.ExpectedAt
		c.ExpectedAt = &t
	}
	return &c
}
