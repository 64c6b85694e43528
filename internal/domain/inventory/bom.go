package inventory

import (
	"fmt"

	"github.com/jhoicas/inventario-produccion/internal/domain"
	"github.com/jhoicas/inventario-produccion/internal/domain/entity"
)

// ValidateBOMLine reglas propias de la línea: sin autorreferencia y cantidad positiva.
func ValidateBOMLine(line entity.BOMLine) error {
	if line.ManufacturedID == "" {
		return domain.Invalid("manufactured_id", "requerido")
	}
	if line.IngredientID == "" {
		return domain.Invalid("ingredient_id", "requerido")
	}
	if line.ManufacturedID == line.IngredientID {
		return domain.Invalid("ingredient_id", fmt.Sprintf("el ítem %s no puede ser insumo de sí mismo", line.ManufacturedID))
	}
	if !line.QuantityPerUnit.IsPositive() {
		return domain.Invalid("quantity_per_unit", "debe ser mayor que cero")
	}
	return nil
}

// IngredientsFunc devuelve los insumos directos de un ítem (vacío si no tiene receta).
type IngredientsFunc func(itemID string) ([]string, error)

// PathTo busca con DFS un camino de insumos desde from hasta target.
// Agregar la línea target -> from cierra un ciclo si y solo si el camino existe;
// se devuelve el camino (from ... target) o nil.
func PathTo(from, target string, ingredientsOf IngredientsFunc) ([]string, error) {
	visited := make(map[string]bool)
	var path []string

	var dfs func(current string) (bool, error)
	dfs = func(current string) (bool, error) {
		visited[current] = true
		path = append(path, current)
		if current == target {
			return true, nil
		}
		children, err := ingredientsOf(current)
		if err != nil {
			return false, err
		}
		for _, child := range children {
			if visited[child] {
				continue
			}
			found, err := dfs(child)
			if err != nil || found {
				return found, err
			}
		}
		path = path[:len(path)-1]
		return false, nil
	}

	found, err := dfs(from)
	if err != nil || !found {
		return nil, err
	}
	return path, nil
}
