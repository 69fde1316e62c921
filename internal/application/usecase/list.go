package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pymebot/inventario-bot/internal/domain/entity"
	"github.com/pymebot/inventario-bot/pkg/markdown"
	"github.com/pymebot/inventario-bot/pkg/texto"
)

// Tope de productos por listado, para no exceder el límite de mensaje del canal.
const maxListItems = 30

// Ventana de alerta para el criterio "vencimiento".
const expirationWindow = 30 * 24 * time.Hour

// list enumera productos según el criterio de la intención:
// ubicacion, vencimiento, stock_bajo o todos.
func (uc *InventoryUseCase) list(ctx context.Context, intent *entity.Intent) (string, error) {
	criterion := entity.StringOr(intent.Criterion, "")

	rows, err := uc.inv.Rows(ctx)
	if err != nil {
		return "", fmt.Errorf("leer inventario: %w", err)
	}
	products := make([]entity.Product, 0, len(rows))
	for i, r := range rows {
		if i == 0 {
			continue // encabezado
		}
		products = append(products, entity.ProductFromRow(r))
	}

	var title string
	var selected []entity.Product

	switch criterion {
	case entity.CriterionLocation:
		loc := entity.StringOr(intent.Location, "")
		if loc == "" {
			return `❓ Dime qué ubicación quieres revisar \(ej: 'Qué hay en la Bodega'\)\.`, nil
		}
		locNorm := texto.Normalize(loc)
		for _, p := range products {
			if p.Location != "" && strings.Contains(texto.Normalize(p.Location), locNorm) {
				selected = append(selected, p)
			}
		}
		title = fmt.Sprintf("📍 *Productos en %s*", markdown.Escape(loc))

	case entity.CriterionExpiration:
		limit := time.Now().Add(expirationWindow)
		for _, p := range products {
			if p.Expiration == "" {
				continue
			}
			exp, err := time.Parse("2006-01-02", p.Expiration)
			if err != nil {
				continue // fechas ilegibles no entran al listado
			}
			if exp.Before(limit) {
				selected = append(selected, p)
			}
		}
		// Lo más urgente primero.
		sort.SliceStable(selected, func(i, j int) bool {
			return selected[i].Expiration < selected[j].Expiration
		})
		title = "📅 *Productos por vencer*"

	case entity.CriterionLowStock:
		for _, p := range products {
			if p.Stock <= uc.lowStock {
				selected = append(selected, p)
			}
		}
		title = "📉 *Productos con stock bajo*"

	case entity.CriterionAll:
		selected = products
		title = "📋 *Inventario completo*"

	default:
		return `❓ No entendí qué quieres listar \(ubicación, vencimiento, stock bajo o todos\)\.`, nil
	}

	if len(selected) == 0 {
		return `🔍 No encontré productos para ese criterio\.`, nil
	}

	var b strings.Builder
	b.WriteString(title)
	total := len(selected)
	if total > maxListItems {
		selected = selected[:maxListItems]
	}
	for _, p := range selected {
		b.WriteString(fmt.Sprintf("\n• %s \\| Stock: %d %s",
			markdown.Escape(p.Name), p.Stock, markdown.Escape(p.Unit)))
		switch criterion {
		case entity.CriterionExpiration:
			b.WriteString(` \| 📅 ` + markdown.Escape(p.Expiration))
		case entity.CriterionAll, entity.CriterionLowStock:
			if p.Location != "" {
				b.WriteString(` \| 📍 ` + markdown.Escape(p.Location))
			}
		}
	}
	if total > maxListItems {
		b.WriteString(fmt.Sprintf("\n… y %d más", total-maxListItems))
	}
	return b.String(), nil
}
