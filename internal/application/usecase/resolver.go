package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/pymebot/inventario-bot/internal/domain"
	"github.com/pymebot/inventario-bot/internal/domain/entity"
	"github.com/pymebot/inventario-bot/pkg/texto"
)

// productRef identifica un producto resuelto. Además de la fila observada en
// el escaneo guarda el id interno (columna A): las mutaciones relocalizan la
// fila por id justo antes de escribir, porque un append concurrente puede
// desplazar posiciones entre la lectura y la escritura.
type productRef struct {
	row  int
	id   string // vacío en filas legadas sin id
	name string
}

// findProduct busca un producto por texto libre o SKU. Orden estricto de
// niveles, gana el primero:
//
//  1. SKU exacto (normalizado)
//  2. Nombre exacto (normalizado)
//  3. Nombre parcial (substring), solo si exactOnly es false
//
// Si ningún nivel coincide devuelve un error que envuelve domain.ErrNotFound.
// Un fallo de E/S del almacén se devuelve como error ordinario, distinguible
// del "no encontrado" genuino mediante errors.Is.
func (uc *InventoryUseCase) findProduct(ctx context.Context, query string, exactOnly bool) (*productRef, error) {
	skus, err := uc.inv.ColValues(ctx, entity.ColSKU)
	if err != nil {
		return nil, fmt.Errorf("leer columna SKU: %w", err)
	}
	names, err := uc.inv.ColValues(ctx, entity.ColName)
	if err != nil {
		return nil, fmt.Errorf("leer columna nombres: %w", err)
	}
	queryNorm := texto.Normalize(query)

	// 1. SKU exacto: la llave más específica siempre gana.
	for i, sku := range skus {
		if i == 0 {
			continue // encabezado
		}
		if texto.Normalize(sku) == queryNorm {
			name := "Producto sin nombre"
			if i < len(names) && names[i] != "" {
				name = names[i]
			}
			return uc.refFor(ctx, i+1, name)
		}
	}

	// 2. Nombre exacto.
	for i, name := range names {
		if i == 0 {
			continue
		}
		if texto.Normalize(name) == queryNorm {
			return uc.refFor(ctx, i+1, name)
		}
	}

	// 3. Nombre parcial: tolerancia conversacional a costa de precisión.
	if !exactOnly {
		for i, name := range names {
			if i == 0 {
				continue
			}
			if strings.Contains(texto.Normalize(name), queryNorm) {
				return uc.refFor(ctx, i+1, name)
			}
		}
	}

	return nil, fmt.Errorf("producto %q: %w", query, domain.ErrNotFound)
}

// refFor completa la referencia leyendo el id interno de la fila encontrada.
func (uc *InventoryUseCase) refFor(ctx context.Context, row int, name string) (*productRef, error) {
	id, err := uc.inv.Cell(ctx, row, entity.ColProductID)
	if err != nil {
		return nil, fmt.Errorf("leer id de la fila %d: %w", row, err)
	}
	return &productRef{row: row, id: id, name: name}, nil
}

// locateRow devuelve la fila vigente del producto, buscando por id interno
// cuando existe y cayendo a la fila del escaneo para filas legadas sin id.
func (uc *InventoryUseCase) locateRow(ctx context.Context, ref *productRef) (int, error) {
	if ref.id == "" {
		return ref.row, nil
	}
	row, err := uc.inv.FindInColumn(ctx, entity.ColProductID, ref.id)
	if err != nil {
		return 0, fmt.Errorf("relocalizar producto %s: %w", ref.id, err)
	}
	if row == 0 {
		return ref.row, nil
	}
	return row, nil
}
