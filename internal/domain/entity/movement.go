package entity

import (
	"strconv"
	"time"
)

// Tipos de movimiento del historial (tabla MOVIMIENTOS).
const (
	MovementCreation   = "CREACION" // stock inicial de un producto nuevo
	MovementSale       = "VENTA"    // cantidad negativa
	MovementPurchase   = "COMPRA"   // cantidad positiva
	MovementAdjustment = "AJUSTE"   // corrección manual vía ACTUALIZAR
)

// Movement es una entrada inmutable del historial de movimientos.
// Nunca se edita ni se borra: la tabla es solo-agregar.
type Movement struct {
	Timestamp     time.Time
	TransactionID string
	Type          string
	SKU           string
	Name          string
	Quantity      int // con signo: ventas negativas, entradas positivas
	Actor         string
	Notes         string
}

// Row serializa el movimiento en el orden de columnas de MOVIMIENTOS.
func (m Movement) Row() []string {
	return []string{
		m.Timestamp.Format("2006-01-02 15:04:05"),
		m.TransactionID,
		m.Type,
		m.SKU,
		m.Name,
		strconv.Itoa(m.Quantity),
		m.Actor,
		m.Notes,
	}
}
