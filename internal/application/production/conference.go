package production

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	appinv "github.com/jhoicas/inventario-produccion/internal/application/inventory"
	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-produccion/internal/domain/inventory"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
	"github.com/jhoicas/inventario-produccion/pkg/logger"
)

// RequirementInput ítem y cantidad a verificar.
type RequirementInput struct {
	ItemID   string
	Quantity int64
}

// Shortage faltante de un ítem en el color consultado.
type Shortage struct {
	ItemID           string
	Required         int64
	AvailableInColor int64
}

// ConferenceResult resultado de la conferencia de stock por color.
// ColorsWithSufficientStock es orientativo: no reserva stock.
type ConferenceResult struct {
	ColorID                   string
	Sufficient                bool
	Shortages                 []Shortage
	ColorsWithSufficientStock []string
}

// ColorStockConferencer verifica, antes de producir o vender, si los requerimientos se cubren
// con el stock de un color y, si no, qué colores sí alcanzan.
type ColorStockConferencer struct {
	repos repository.Repos
	log   *logger.Logger
}

// NewColorStockConferencer construye el verificador.
func NewColorStockConferencer(repos repository.Repos, log *logger.Logger) *ColorStockConferencer {
	return &ColorStockConferencer{repos: repos, log: log.Component("color_conference")}
}

// Check expande cada requerimiento a través de las recetas de los ítems fabricados sin stock
// propio por color y compara cada insumo con su saldo en colorID.
func (c *ColorStockConferencer) Check(ctx context.Context, colorID string, reqs []RequirementInput) (*ConferenceResult, error) {
	if colorID == "" {
		return nil, domain.Invalid("color_id", "requerido")
	}
	if len(reqs) == 0 {
		return nil, domain.Invalid("requirements", "se requiere al menos un ítem")
	}
	agg := domaininv.NewAggregator()
	for i, req := range reqs {
		if req.Quantity <= 0 {
			return nil, domain.Invalid(fmt.Sprintf("requirements[%d].quantity", i), "debe ser positiva")
		}
		item, err := appinv.LoadItem(ctx, c.repos, req.ItemID)
		if err != nil {
			return nil, err
		}
		if item.IsKit() {
			return nil, domain.Invalid(fmt.Sprintf("requirements[%d].item_id", i), fmt.Sprintf("el kit %s no tiene stock propio", item.ID))
		}
		if err := c.expand(ctx, item, decimal.NewFromInt(req.Quantity), agg, map[string]bool{}); err != nil {
			return nil, err
		}
	}
	merged, err := agg.Requirements()
	if err != nil {
		return nil, err
	}
	return c.evaluate(ctx, colorID, merged)
}

// CheckOrder verifica los insumos directos de una orden pendiente en el color de la orden,
// con la misma expansión que usa la ejecución.
func (c *ColorStockConferencer) CheckOrder(ctx context.Context, orderID string) (*ConferenceResult, error) {
	order, err := c.repos.ProductionOrders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NotFound("orden de producción", orderID)
	}
	if order.ColorID == "" {
		return nil, domain.Invalid("color_id", fmt.Sprintf("la orden %s no especifica color", order.ID))
	}
	boms, err := loadBOMs(ctx, c.repos, order.Items)
	if err != nil {
		return nil, err
	}
	reqs, err := domaininv.ExpandProductionOrder(order.Items, boms)
	if err != nil {
		return nil, err
	}
	return c.evaluate(ctx, order.ColorID, reqs)
}

// expand baja por la receta solo si el ítem es fabricado, no se controla por color y tiene receta;
// en otro caso el ítem se verifica con su propio saldo.
func (c *ColorStockConferencer) expand(ctx context.Context, item *entity.Item, qty decimal.Decimal, agg *domaininv.Aggregator, visiting map[string]bool) error {
	if !item.IsManufactured() || item.TrackedByColor {
		agg.Add(item.ID, qty)
		return nil
	}
	lines, err := c.repos.BOM.ListByManufactured(ctx, item.ID)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		agg.Add(item.ID, qty)
		return nil
	}
	if visiting[item.ID] {
		return domain.Invalid("item_id", fmt.Sprintf("ciclo en la receta de %s", item.ID))
	}
	visiting[item.ID] = true
	defer delete(visiting, item.ID)

	for _, line := range lines {
		ingredient, err := appinv.LoadItem(ctx, c.repos, line.IngredientID)
		if err != nil {
			return err
		}
		if err := c.expand(ctx, ingredient, line.QuantityPerUnit.Mul(qty), agg, visiting); err != nil {
			return err
		}
	}
	return nil
}

func (c *ColorStockConferencer) evaluate(ctx context.Context, colorID string, reqs []domaininv.Requirement) (*ConferenceResult, error) {
	ids := make([]string, len(reqs))
	for i, r := range reqs {
		ids[i] = r.ItemID
	}
	items, err := appinv.LoadItems(ctx, c.repos, ids)
	if err != nil {
		return nil, err
	}

	shortages, err := c.shortages(ctx, colorID, reqs, items)
	if err != nil {
		return nil, err
	}
	res := &ConferenceResult{
		ColorID:                   colorID,
		Sufficient:                len(shortages) == 0,
		Shortages:                 shortages,
		ColorsWithSufficientStock: []string{},
	}
	if res.Sufficient {
		return res, nil
	}

	candidates, err := c.candidateColors(ctx, shortages, items)
	if err != nil {
		return nil, err
	}
	for _, color := range candidates {
		if color == colorID {
			continue
		}
		alt, err := c.shortages(ctx, color, reqs, items)
		if err != nil {
			return nil, err
		}
		if len(alt) == 0 {
			res.ColorsWithSufficientStock = append(res.ColorsWithSufficientStock, color)
		}
	}

	c.log.Debug().
		Str("color_id", colorID).
		Int("shortages", len(shortages)).
		Strs("alternatives", res.ColorsWithSufficientStock).
		Msg("conferencia de color con faltantes")
	return res, nil
}

func (c *ColorStockConferencer) shortages(ctx context.Context, colorID string, reqs []domaininv.Requirement, items map[string]*entity.Item) ([]Shortage, error) {
	out := []Shortage{}
	for _, req := range reqs {
		available, err := appinv.BalanceOf(ctx, c.repos, items[req.ItemID], colorID)
		if err != nil {
			return nil, err
		}
		if available < req.Quantity {
			out = append(out, Shortage{ItemID: req.ItemID, Required: req.Quantity, AvailableInColor: available})
		}
	}
	return out, nil
}

// candidateColors colores con historia en los ítems faltantes controlados por color, ordenados.
func (c *ColorStockConferencer) candidateColors(ctx context.Context, shortages []Shortage, items map[string]*entity.Item) ([]string, error) {
	seen := make(map[string]struct{})
	for _, s := range shortages {
		if !items[s.ItemID].TrackedByColor {
			continue
		}
		balances, err := c.repos.Balances.ListByItem(ctx, s.ItemID)
		if err != nil {
			return nil, err
		}
		for _, b := range balances {
			if b.ColorID != "" {
				seen[b.ColorID] = struct{}{}
			}
		}
	}
	colors := make([]string, 0, len(seen))
	for color := range seen {
		colors = append(colors, color)
	}
	sort.Strings(colors)
	return colors, nil
}

// loadBOMs recetas de los ítems fabricados de la orden.
func loadBOMs(ctx context.Context, r repository.Repos, items []entity.ProductionOrderItem) (map[string][]entity.BOMLine, error) {
	boms := make(map[string][]entity.BOMLine)
	for _, it := range items {
		if it.Role != entity.OrderItemRoleManufactured {
			continue
		}
		if _, ok := boms[it.ItemID]; ok {
			continue
		}
		lines, err := r.BOM.ListByManufactured(ctx, it.ItemID)
		if err != nil {
			return nil, err
		}
		boms[it.ItemID] = lines
	}
	return boms, nil
}
