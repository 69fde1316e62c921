// Package repository define los puertos de persistencia del dominio.
// El almacén real es un documento de celdas (Google Sheets u otro similar):
// no ofrece transacciones multi-celda ni bloqueo optimista, cada escritura
// es una llamada independiente.
package repository

import "context"

// Table es una tabla direccionada por celda. Filas y columnas son 1-based;
// la fila 1 siempre es encabezado y todo recorrido debe saltarla.
type Table interface {
	// Cell lee una celda. Celda vacía o fuera de rango devuelve "".
	Cell(ctx context.Context, row, col int) (string, error)
	// RowValues lee una fila completa (puede venir corta si hay celdas vacías al final).
	RowValues(ctx context.Context, row int) ([]string, error)
	// ColValues lee una columna completa, encabezado incluido.
	ColValues(ctx context.Context, col int) ([]string, error)
	// Rows lee todas las filas con valores, encabezado incluido.
	Rows(ctx context.Context) ([][]string, error)
	// UpdateCell sobreescribe una celda.
	UpdateCell(ctx context.Context, row, col int, value string) error
	// AppendRow agrega una fila al final.
	AppendRow(ctx context.Context, values []string) error
	// FindInColumn devuelve la primera fila cuya celda en col es exactamente
	// value (sensible a mayúsculas), o 0 si no existe. Salta el encabezado.
	FindInColumn(ctx context.Context, col int, value string) (int, error)
}

// Nombres de las tablas dentro de cada libro.
const (
	SheetInventory = "INVENTARIO"
	SheetMovements = "MOVIMIENTOS"
	SheetDirectory = "USUARIOS_PYMES"
)

// Store abre tablas de un libro concreto. Se construye explícitamente en el
// arranque y se inyecta; no hay cliente global.
type Store interface {
	Table(ctx context.Context, bookID, name string) (Table, error)
}
