package production

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	appinv "github.com/jhoicas/inventario-produccion/internal/application/inventory"
	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-produccion/internal/domain/inventory"
	"github.com/jhoicas/inventario-produccion/internal/domain/repository"
	"github.com/jhoicas/inventario-produccion/pkg/logger"
)

// BOMUseCase mantenimiento de recetas (listas de materiales).
type BOMUseCase struct {
	repos repository.Repos
	tx    appinv.TxRunner
	log   *logger.Logger
}

// NewBOMUseCase construye el caso de uso de recetas.
func NewBOMUseCase(repos repository.Repos, tx appinv.TxRunner, log *logger.Logger) *BOMUseCase {
	return &BOMUseCase{repos: repos, tx: tx, log: log.Component("bom")}
}

// GetBOM líneas de la receta en orden de almacenamiento.
func (uc *BOMUseCase) GetBOM(ctx context.Context, manufacturedID string) ([]entity.BOMLine, error) {
	if _, err := appinv.LoadItem(ctx, uc.repos, manufacturedID); err != nil {
		return nil, err
	}
	return uc.repos.BOM.ListByManufactured(ctx, manufacturedID)
}

// SetLine inserta o actualiza una línea. Rechaza autorreferencias, cantidades no positivas,
// insumos que sean kits y líneas que cerrarían un ciclo entre recetas.
func (uc *BOMUseCase) SetLine(ctx context.Context, manufacturedID, ingredientID string, qtyPerUnit decimal.Decimal) (*entity.BOMLine, error) {
	line := entity.BOMLine{ManufacturedID: manufacturedID, IngredientID: ingredientID, QuantityPerUnit: qtyPerUnit}
	if err := domaininv.ValidateBOMLine(line); err != nil {
		return nil, err
	}
	items, err := appinv.LoadItems(ctx, uc.repos, []string{manufacturedID, ingredientID})
	if err != nil {
		return nil, err
	}
	manufactured, ingredient := items[manufacturedID], items[ingredientID]
	if !manufactured.IsManufactured() || manufactured.IsKit() {
		return nil, domain.Invalid("item_id", fmt.Sprintf("el ítem %s no es fabricado; no admite receta", manufactured.ID))
	}
	if ingredient.IsKit() {
		return nil, domain.Invalid("ingredient_id", fmt.Sprintf("el kit %s no tiene stock propio y no puede ser insumo", ingredient.ID))
	}

	err = uc.tx.Run(ctx, []string{entity.BOMLockKey}, func(r repository.Repos) error {
		ingredientsOf := func(id string) ([]string, error) {
			lines, err := r.BOM.ListByManufactured(ctx, id)
			if err != nil {
				return nil, err
			}
			ids := make([]string, len(lines))
			for i, l := range lines {
				ids[i] = l.IngredientID
			}
			return ids, nil
		}
		path, err := domaininv.PathTo(ingredientID, manufacturedID, ingredientsOf)
		if err != nil {
			return err
		}
		if path != nil {
			return domain.Invalid("ingredient_id", fmt.Sprintf("la línea crea un ciclo: %s -> %s",
				manufacturedID, strings.Join(path, " -> ")))
		}
		return r.BOM.Upsert(ctx, &line)
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("item_id", manufacturedID).Str("ingredient_id", ingredientID).Msg("línea de receta rechazada")
		return nil, err
	}
	uc.log.Info().
		Str("item_id", manufacturedID).
		Str("ingredient_id", ingredientID).
		Str("quantity_per_unit", qtyPerUnit.String()).
		Msg("línea de receta guardada")
	return &line, nil
}

// RemoveLine elimina una línea; NotFoundError si no existía.
func (uc *BOMUseCase) RemoveLine(ctx context.Context, manufacturedID, ingredientID string) error {
	if manufacturedID == "" || ingredientID == "" {
		return domain.Invalid("ingredient_id", "requerido")
	}
	var removed bool
	err := uc.tx.Run(ctx, []string{entity.BOMLockKey}, func(r repository.Repos) error {
		var err error
		removed, err = r.BOM.Delete(ctx, manufacturedID, ingredientID)
		return err
	})
	if err != nil {
		return err
	}
	if !removed {
		return domain.NotFound("línea de receta", manufacturedID+"/"+ingredientID)
	}
	uc.log.Info().Str("item_id", manufacturedID).Str("ingredient_id", ingredientID).Msg("línea de receta eliminada")
	return nil
}
