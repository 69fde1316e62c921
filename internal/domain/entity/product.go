package entity

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Columnas de la tabla INVENTARIO (1-based; la fila 1 es el encabezado).
const (
	ColProductID  = 1  // A: id interno opaco, asignado al crear
	ColSKU        = 2  // B: SKU (mayúsculas, no garantizado único)
	ColName       = 3  // C: nombre visible
	ColCategory   = 4  // D
	ColStock      = 5  // E: entero >= 0
	ColUnit       = 6  // F
	ColCost       = 7  // G
	ColPrice      = 8  // H
	ColExpiration = 9  // I: fecha ISO opcional
	ColLocation   = 10 // J
)

// Valores por defecto de clasificación.
const (
	DefaultCategory = "General"
	DefaultUnit     = "UND"
)

// Product representa una fila de la tabla INVENTARIO de una pyme.
// El id interno es inmutable; SKU y nombre pueden cambiar vía ACTUALIZAR.
type Product struct {
	ID         string
	SKU        string
	Name       string
	Category   string
	Stock      int
	Unit       string
	Cost       decimal.Decimal
	Price      decimal.Decimal
	Expiration string // YYYY-MM-DD, vacío si no aplica
	Location   string
}

// ProductFromRow arma un Product desde los valores crudos de una fila.
// Tolera filas cortas o celdas no numéricas (hojas legadas parcialmente
// pobladas): los campos ausentes quedan en su valor cero.
func ProductFromRow(values []string) Product {
	get := func(col int) string {
		if col-1 < len(values) {
			return values[col-1]
		}
		return ""
	}
	stock, _ := strconv.Atoi(get(ColStock))
	cost, err := decimal.NewFromString(get(ColCost))
	if err != nil {
		cost = decimal.Zero
	}
	price, err := decimal.NewFromString(get(ColPrice))
	if err != nil {
		price = decimal.Zero
	}
	return Product{
		ID:         get(ColProductID),
		SKU:        get(ColSKU),
		Name:       get(ColName),
		Category:   get(ColCategory),
		Stock:      stock,
		Unit:       get(ColUnit),
		Cost:       cost,
		Price:      price,
		Expiration: get(ColExpiration),
		Location:   get(ColLocation),
	}
}

// Row serializa el producto en el orden de columnas de INVENTARIO.
func (p Product) Row() []string {
	return []string{
		p.ID,
		p.SKU,
		p.Name,
		p.Category,
		strconv.Itoa(p.Stock),
		p.Unit,
		p.Cost.String(),
		p.Price.String(),
		p.Expiration,
		p.Location,
	}
}
