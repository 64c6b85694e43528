package production

import (
	"context"

	appinv "github.com/jhoicas/inventario-produccion/internal/application/inventory"
	domaininv "github.com/jhoicas/inventario-produccion/internal/domain/inventory"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
)

// ProducibleResult cantidad fabricable de un ítem con el stock actual.
type ProducibleResult struct {
	ItemID       string
	ColorID      string
	Quantity     int64
	BottleneckID string // vacío si la receta está vacía
}

// PlannerUseCase responde cuántas unidades de un ítem se pueden fabricar ahora. Solo lectura.
type PlannerUseCase struct {
	repos repository.Repos
}

// NewPlannerUseCase construye el planificador.
func NewPlannerUseCase(repos repository.Repos) *PlannerUseCase {
	return &PlannerUseCase{repos: repos}
}

// ProducibleQuantity calcula el mínimo floor(saldo / cantidad_por_unidad) entre las líneas de la receta.
// Con colorID los insumos controlados por color usan el saldo de ese color; el resto, su saldo total.
func (uc *PlannerUseCase) ProducibleQuantity(ctx context.Context, itemID, colorID string) (*ProducibleResult, error) {
	item, err := appinv.LoadItem(ctx, uc.repos, itemID)
	if err != nil {
		return nil, err
	}
	lines, err := uc.repos.BOM.ListByManufactured(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	res := &ProducibleResult{ItemID: item.ID, ColorID: colorID}
	if len(lines) == 0 {
		return res, nil
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.IngredientID
	}
	ingredients, err := appinv.LoadItems(ctx, uc.repos, ids)
	if err != nil {
		return nil, err
	}
	balances := make(map[string]int64, len(lines))
	for _, id := range ids {
		if _, ok := balances[id]; ok {
			continue
		}
		b, err := appinv.BalanceOf(ctx, uc.repos, ingredients[id], colorID)
		if err != nil {
			return nil, err
		}
		balances[id] = b
	}

	p := domaininv.ProducibleQuantity(lines, balances)
	res.Quantity = p.Quantity
	res.BottleneckID = p.BottleneckID
	return res, nil
}
