package usecase_test

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/pymebot/inventario-bot/internal/domain/repository"
)

// memTable es un doble en memoria de repository.Table con la misma semántica
// del almacén real: 1-based, fila 1 encabezado, celdas fuera de rango vacías.
type memTable struct {
	mu         sync.Mutex
	rows       [][]string
	failReads  bool // simula caída del almacén en lecturas
	failWrites bool // simula caída del almacén en escrituras
}

var errStoreDown = errors.New("almacén no disponible")

var _ repository.Table = (*memTable)(nil)

func newMemTable(header []string, rows ...[]string) *memTable {
	all := make([][]string, 0, len(rows)+1)
	all = append(all, header)
	for _, r := range rows {
		all = append(all, append([]string(nil), r...))
	}
	return &memTable{rows: all}
}

func (t *memTable) Cell(_ context.Context, row, col int) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failReads {
		return "", errStoreDown
	}
	if row-1 >= len(t.rows) || col-1 >= len(t.rows[row-1]) {
		return "", nil
	}
	return t.rows[row-1][col-1], nil
}

func (t *memTable) RowValues(_ context.Context, row int) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failReads {
		return nil, errStoreDown
	}
	if row-1 >= len(t.rows) {
		return nil, nil
	}
	return append([]string(nil), t.rows[row-1]...), nil
}

func (t *memTable) ColValues(_ context.Context, col int) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failReads {
		return nil, errStoreDown
	}
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		if col-1 < len(r) {
			out[i] = r[col-1]
		}
	}
	return out, nil
}

func (t *memTable) Rows(_ context.Context) ([][]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failReads {
		return nil, errStoreDown
	}
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (t *memTable) UpdateCell(_ context.Context, row, col int, value string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failWrites {
		return errStoreDown
	}
	for row-1 >= len(t.rows) {
		t.rows = append(t.rows, nil)
	}
	for col-1 >= len(t.rows[row-1]) {
		t.rows[row-1] = append(t.rows[row-1], "")
	}
	t.rows[row-1][col-1] = value
	return nil
}

func (t *memTable) AppendRow(_ context.Context, values []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failWrites {
		return errStoreDown
	}
	t.rows = append(t.rows, append([]string(nil), values...))
	return nil
}

func (t *memTable) FindInColumn(_ context.Context, col int, value string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failReads {
		return 0, errStoreDown
	}
	for i, r := range t.rows {
		if i == 0 {
			continue
		}
		if col-1 < len(r) && r[col-1] == value {
			return i + 1, nil
		}
	}
	return 0, nil
}

// snapshot copia todas las filas para comparar estado antes/después.
func (t *memTable) snapshot() [][]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func (t *memTable) rowCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Helpers para armar intenciones con campos opcionales.

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func decPtr(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}
