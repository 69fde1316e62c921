package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/sheets/v4"

	"github.com/pymebot/inventario-bot/internal/domain/repository"
)

var _ repository.Store = (*Client)(nil)

// Table abre una tabla (pestaña) de un libro. No valida existencia aquí: la
// primera lectura fallará con el error del API si la pestaña no existe.
func (c *Client) Table(_ context.Context, bookID, name string) (repository.Table, error) {
	if bookID == "" {
		return nil, fmt.Errorf("sheets: id de libro vacío")
	}
	return &sheetTable{svc: c.sheets, bookID: bookID, sheet: name}, nil
}

var _ repository.Table = (*sheetTable)(nil)

// sheetTable adapta una pestaña de un spreadsheet al puerto repository.Table.
// Cada método es una llamada independiente al API: el backend no ofrece
// transacciones multi-celda, y dos escrituras consecutivas pueden intercalarse
// con las de otro caller (last-write-wins asumido por el dominio).
type sheetTable struct {
	svc    *sheets.Service
	bookID string
	sheet  string
}

// colLetter convierte un índice 1-based a letra de columna (A..Z alcanza:
// las tablas de este sistema tienen a lo sumo 10 columnas).
func colLetter(col int) string {
	return string(rune('A' + col - 1))
}

func (t *sheetTable) Cell(ctx context.Context, row, col int) (string, error) {
	rng := fmt.Sprintf("%s!%s%d", t.sheet, colLetter(col), row)
	resp, err := t.svc.Spreadsheets.Values.Get(t.bookID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("sheets: leer celda %s: %w", rng, err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return "", nil
	}
	return fmt.Sprint(resp.Values[0][0]), nil
}

func (t *sheetTable) RowValues(ctx context.Context, row int) ([]string, error) {
	rng := fmt.Sprintf("%s!%d:%d", t.sheet, row, row)
	resp, err := t.svc.Spreadsheets.Values.Get(t.bookID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: leer fila %d: %w", row, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return toStrings(resp.Values[0]), nil
}

func (t *sheetTable) ColValues(ctx context.Context, col int) ([]string, error) {
	letter := colLetter(col)
	rng := fmt.Sprintf("%s!%s:%s", t.sheet, letter, letter)
	resp, err := t.svc.Spreadsheets.Values.Get(t.bookID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: leer columna %s: %w", letter, err)
	}
	out := make([]string, len(resp.Values))
	for i, r := range resp.Values {
		if len(r) > 0 {
			out[i] = fmt.Sprint(r[0])
		}
	}
	return out, nil
}

func (t *sheetTable) Rows(ctx context.Context) ([][]string, error) {
	resp, err := t.svc.Spreadsheets.Values.Get(t.bookID, t.sheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: leer tabla %s: %w", t.sheet, err)
	}
	out := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		out[i] = toStrings(r)
	}
	return out, nil
}

func (t *sheetTable) UpdateCell(ctx context.Context, row, col int, value string) error {
	rng := fmt.Sprintf("%s!%s%d", t.sheet, colLetter(col), row)
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := t.svc.Spreadsheets.Values.Update(t.bookID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: escribir celda %s: %w", rng, err)
	}
	return nil
}

func (t *sheetTable) AppendRow(ctx context.Context, values []string) error {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := t.svc.Spreadsheets.Values.Append(t.bookID, t.sheet, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: agregar fila a %s: %w", t.sheet, err)
	}
	return nil
}

// FindInColumn busca por igualdad exacta recorriendo la columna: el API de
// valores no expone búsqueda indexada, pero una sola lectura de columna es
// más barata que leer la tabla completa.
func (t *sheetTable) FindInColumn(ctx context.Context, col int, value string) (int, error) {
	values, err := t.ColValues(ctx, col)
	if err != nil {
		return 0, err
	}
	for i, v := range values {
		if i == 0 {
			continue // encabezado
		}
		if v == value {
			return i + 1, nil
		}
	}
	return 0, nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}
