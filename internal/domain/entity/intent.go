package entity

import "github.com/shopspring/decimal"

// Acciones que puede devolver el clasificador de lenguaje natural.
const (
	ActionCreate  = "CREAR"
	ActionSale    = "VENTA"
	ActionBuy     = "COMPRA"
	ActionQuery   = "CONSULTA"
	ActionUpdate  = "ACTUALIZAR"
	ActionList    = "LISTAR"
	ActionUnknown = "DESCONOCIDO"
)

// Criterios de la acción LISTAR.
const (
	CriterionLocation   = "ubicacion"
	CriterionExpiration = "vencimiento"
	CriterionLowStock   = "stock_bajo"
	CriterionAll        = "todos"
)

// Intent es la intención estructurada que produce el clasificador externo.
// Los campos opcionales son punteros: nil significa "no mencionado", que no
// es lo mismo que cero o string vacío (ACTUALIZAR trata la ausencia como
// "sin cambio" y el cero como "poner en cero").
type Intent struct {
	Action     string
	Product    *string
	NewName    *string
	NewSKU     *string
	Quantity   *int
	Price      *decimal.Decimal
	Cost       *decimal.Decimal
	Category   *string
	Unit       *string
	Expiration *string
	Location   *string
	Criterion  *string
}

// QuantityOr devuelve la cantidad mencionada o def si no vino en la intención.
func (i Intent) QuantityOr(def int) int {
	if i.Quantity != nil {
		return *i.Quantity
	}
	return def
}

// StringOr helper para campos opcionales de texto.
func StringOr(p *string, def string) string {
	if p != nil && *p != "" {
		return *p
	}
	return def
}
