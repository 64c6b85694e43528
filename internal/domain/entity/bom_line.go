package entity

import (
	"github.com/shopspring/decimal"
)

// BOMLine línea de la lista de materiales: cantidad de insumo por unidad fabricada.
type BOMLine struct {
	ManufacturedID  string
	IngredientID    string
	QuantityPerUnit decimal.Decimal // racional positivo (ej. 0.5 por unidad)
	Position        int             // orden de almacenamiento, estable para mostrar
}
