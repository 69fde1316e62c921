// Package usecase contiene el núcleo de la aplicación: el enrutador de
// intenciones, el resolutor de productos, las mutaciones del inventario,
// el historial de movimientos y el directorio de pymes.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pymebot/inventario-bot/internal/domain"
	"github.com/pymebot/inventario-bot/internal/domain/entity"
	"github.com/pymebot/inventario-bot/internal/domain/repository"
	"github.com/pymebot/inventario-bot/pkg/logger"
	"github.com/pymebot/inventario-bot/pkg/markdown"
)

// Mensajes fijos. Los caracteres reservados de MarkdownV2 van escapados a mano.
const (
	msgNoEntendi     = `🤷‍♂️ No entendí qué quieres hacer\. Intenta: 'Vendí 2 artículos'\.`
	msgFaltaProducto = `❌ Necesito que me digas el nombre del producto\.`
	msgErrorTecnico  = `💥 Ocurrió un error técnico actualizando tu inventario\.`
	msgNoReconocido  = `Comando no reconocido\.`
)

// tituloEspanol capitaliza al estilo español. El Caser de x/text guarda
// estado entre llamadas, así que se construye uno por invocación.
func tituloEspanol(s string) string {
	return cases.Title(language.Spanish).String(s)
}

// InventoryUseCase opera el inventario de una pyme: un libro con las tablas
// INVENTARIO y MOVIMIENTOS. Se construye por petición con las tablas de la
// pyme resuelta; no guarda estado propio entre invocaciones.
type InventoryUseCase struct {
	inv      repository.Table
	mov      repository.Table
	lowStock int
	log      *logger.Logger
}

// NewInventoryUseCase construye el caso de uso sobre las dos tablas de la pyme.
// lowStock es el umbral de "stock bajo" para LISTAR.
func NewInventoryUseCase(inv, mov repository.Table, lowStock int, log *logger.Logger) *InventoryUseCase {
	return &InventoryUseCase{inv: inv, mov: mov, lowStock: lowStock, log: log}
}

// Process despacha una intención estructurada y devuelve siempre un único
// texto de respuesta listo para el canal. Nunca propaga errores: cualquier
// fallo del almacén se convierte en el mensaje genérico de error técnico.
// Como máximo muta un registro por invocación.
func (uc *InventoryUseCase) Process(ctx context.Context, intent *entity.Intent, actor string) string {
	if intent == nil || intent.Action == entity.ActionUnknown {
		uc.log.Warn().Str("actor", actor).Msg("acción desconocida recibida")
		return msgNoEntendi
	}

	if intent.Action == entity.ActionList {
		resp, err := uc.list(ctx, intent)
		if err != nil {
			uc.log.Error().Err(err).Msg("error listando inventario")
			return msgErrorTecnico
		}
		return resp
	}

	product := entity.StringOr(intent.Product, "")
	if product == "" {
		uc.log.Warn().Str("accion", intent.Action).Msg("falta el nombre del producto en la intención")
		return msgFaltaProducto
	}

	// Inferencia habilitada (exacta > parcial) para todas las acciones,
	// incluidas CREAR (detección de duplicados) y ACTUALIZAR. El "no
	// encontrado" viaja como domain.ErrNotFound; solo los demás errores
	// son fallos del almacén.
	ref, err := uc.findProduct(ctx, product, false)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		uc.log.Error().Err(err).Str("producto", product).Msg("error consultando el almacén durante la búsqueda")
		return msgErrorTecnico
	}

	var resp string
	switch intent.Action {
	case entity.ActionCreate:
		if ref != nil {
			uc.log.Warn().Str("existente", ref.name).Msg("intento de crear producto duplicado")
			return fmt.Sprintf(`⚠️ Ya encontré un producto similar: *%s*\. Usa otro nombre si es diferente\.`, markdown.Escape(ref.name))
		}
		resp, err = uc.create(ctx, product, intent, actor)

	case entity.ActionSale, entity.ActionBuy, entity.ActionQuery, entity.ActionUpdate:
		if ref == nil {
			return fmt.Sprintf(`❌ No encontré nada relacionado con '%s' en tu inventario\.`, markdown.Escape(product))
		}
		switch intent.Action {
		case entity.ActionSale:
			resp, err = uc.sell(ctx, ref, intent.QuantityOr(1), actor)
		case entity.ActionBuy:
			resp, err = uc.buy(ctx, ref, intent.QuantityOr(1), actor)
		case entity.ActionQuery:
			resp, err = uc.query(ctx, ref)
		case entity.ActionUpdate:
			resp, err = uc.update(ctx, ref, intent, actor)
		}

	default:
		uc.log.Warn().Str("accion", intent.Action).Msg("comando no reconocido")
		return msgNoReconocido
	}

	if err != nil {
		uc.log.Error().Err(err).Str("accion", intent.Action).Str("producto", product).Msg("error procesando acción")
		return msgErrorTecnico
	}
	return resp
}

// create agrega una fila nueva con id opaco y SKU derivado. Si el stock
// inicial es mayor a cero deja constancia en el historial.
func (uc *InventoryUseCase) create(ctx context.Context, name string, intent *entity.Intent, actor string) (string, error) {
	id := uuid.NewString()[:8]
	sku := "GEN-" + strings.ToUpper(id[:4])
	stock := intent.QuantityOr(1)

	price := decimal.Zero
	if intent.Price != nil {
		price = *intent.Price
	}
	cost := decimal.Zero
	if intent.Cost != nil {
		cost = *intent.Cost
	}

	p := entity.Product{
		ID:         id,
		SKU:        sku,
		Name:       name,
		Category:   entity.StringOr(intent.Category, entity.DefaultCategory),
		Stock:      stock,
		Unit:       entity.StringOr(intent.Unit, entity.DefaultUnit),
		Cost:       cost,
		Price:      price,
		Expiration: entity.StringOr(intent.Expiration, ""),
		Location:   entity.StringOr(intent.Location, ""),
	}
	if err := uc.inv.AppendRow(ctx, p.Row()); err != nil {
		return "", fmt.Errorf("crear producto: %w", err)
	}

	if stock > 0 {
		uc.logMovement(ctx, entity.MovementCreation, sku, name, stock, actor, "Stock Inicial")
	}

	expMsg := ""
	if p.Expiration != "" {
		expMsg = fmt.Sprintf(` \| 📅 Vence: %s`, markdown.Escape(p.Expiration))
	}
	locMsg := ""
	if p.Location != "" {
		locMsg = fmt.Sprintf("\n📍 Ubicación: %s", markdown.Escape(p.Location))
	}
	return fmt.Sprintf("🆕 *Producto Creado*\n"+
		"📦 %s\n"+
		`📂 Cat: %s \| 📏 Unidad: %s`+"\n"+
		"💰 Costo: $%s\n"+
		"💲 Precio: $%s%s%s\n"+
		"🔢 Stock inicial: %d",
		markdown.Escape(name),
		markdown.Escape(p.Category), markdown.Escape(p.Unit),
		markdown.Escape(cost.String()),
		markdown.Escape(price.String()), expMsg, locMsg,
		stock,
	), nil
}

// sell descuenta stock. Si la cantidad supera el stock actual no escribe
// nada y responde con ambos números.
func (uc *InventoryUseCase) sell(ctx context.Context, ref *productRef, qty int, actor string) (string, error) {
	row, err := uc.locateRow(ctx, ref)
	if err != nil {
		return "", err
	}
	current, err := uc.readStock(ctx, row)
	if err != nil {
		return "", err
	}

	if current < qty {
		uc.log.Warn().Str("producto", ref.name).Int("actual", current).Int("solicitado", qty).Msg("stock insuficiente")
		return fmt.Sprintf("⚠️ *Stock Insuficiente*\nProducto: %s\nTienes: %d\nIntentas vender: %d",
			markdown.Escape(ref.name), current, qty), nil
	}

	newStock := current - qty
	if err := uc.inv.UpdateCell(ctx, row, entity.ColStock, strconv.Itoa(newStock)); err != nil {
		return "", fmt.Errorf("actualizar stock: %w", err)
	}

	sku, _ := uc.inv.Cell(ctx, row, entity.ColSKU)
	uc.logMovement(ctx, entity.MovementSale, sku, ref.name, -qty, actor, "")

	return fmt.Sprintf("✅ *Venta Registrada*\n🔻 %s\nStock: %d ➡ %d",
		markdown.Escape(ref.name), current, newStock), nil
}

// buy incrementa stock sin tope superior.
func (uc *InventoryUseCase) buy(ctx context.Context, ref *productRef, qty int, actor string) (string, error) {
	row, err := uc.locateRow(ctx, ref)
	if err != nil {
		return "", err
	}
	current, err := uc.readStock(ctx, row)
	if err != nil {
		return "", err
	}

	newStock := current + qty
	if err := uc.inv.UpdateCell(ctx, row, entity.ColStock, strconv.Itoa(newStock)); err != nil {
		return "", fmt.Errorf("actualizar stock: %w", err)
	}

	sku, _ := uc.inv.Cell(ctx, row, entity.ColSKU)
	uc.logMovement(ctx, entity.MovementPurchase, sku, ref.name, qty, actor, "")

	return fmt.Sprintf("✅ *Entrada Registrada*\n🟢 %s\nStock: %d ➡ %d",
		markdown.Escape(ref.name), current, newStock), nil
}

// query arma un snapshot de solo lectura, con marcadores para celdas
// ausentes en filas legadas cortas.
func (uc *InventoryUseCase) query(ctx context.Context, ref *productRef) (string, error) {
	row, err := uc.locateRow(ctx, ref)
	if err != nil {
		return "", err
	}
	values, err := uc.inv.RowValues(ctx, row)
	if err != nil {
		return "", fmt.Errorf("leer fila del producto: %w", err)
	}

	get := func(col int, def string) string {
		if col-1 < len(values) && values[col-1] != "" {
			return values[col-1]
		}
		return def
	}
	sku := get(entity.ColSKU, "??")
	category := get(entity.ColCategory, "-")
	stock := get(entity.ColStock, "0")
	unit := get(entity.ColUnit, entity.DefaultUnit)
	cost := get(entity.ColCost, "0")
	price := get(entity.ColPrice, "0")
	expiration := get(entity.ColExpiration, "")
	location := get(entity.ColLocation, "")

	expMsg := ""
	if expiration != "" {
		expMsg = fmt.Sprintf("\n📅 Vence: %s", markdown.Escape(expiration))
	}
	locMsg := ""
	if location != "" {
		locMsg = fmt.Sprintf("\n📍 Ubicación: %s", markdown.Escape(location))
	}
	return fmt.Sprintf("📦 *Consulta de Inventario*\n"+
		"📝 Producto: %s\n"+
		`📂 Cat: %s \| 🏷 SKU: %s`+"\n"+
		"🔢 Stock: %s %s\n"+
		"💰 Costo: $%s\n"+
		"💲 Precio: $%s%s%s",
		markdown.Escape(ref.name),
		markdown.Escape(category), markdown.Escape(sku),
		markdown.Escape(stock), markdown.Escape(unit),
		markdown.Escape(cost),
		markdown.Escape(price),
		expMsg, locMsg,
	), nil
}

// update sobreescribe campo por campo los datos presentes en la intención.
// Cada escritura es una llamada independiente al almacén: un fallo a mitad
// de camino deja los campos ya escritos aplicados, sin rollback.
func (uc *InventoryUseCase) update(ctx context.Context, ref *productRef, intent *entity.Intent, actor string) (string, error) {
	row, err := uc.locateRow(ctx, ref)
	if err != nil {
		return "", err
	}
	name := ref.name
	var updates []string

	// Los numéricos distinguen ausencia de cero: nil es "sin cambio",
	// cero explícito sí escribe.
	if intent.Price != nil {
		if err := uc.inv.UpdateCell(ctx, row, entity.ColPrice, intent.Price.String()); err != nil {
			return "", fmt.Errorf("actualizar precio: %w", err)
		}
		updates = append(updates, "Precio: $"+markdown.Escape(intent.Price.String()))
	}
	if intent.Cost != nil {
		if err := uc.inv.UpdateCell(ctx, row, entity.ColCost, intent.Cost.String()); err != nil {
			return "", fmt.Errorf("actualizar costo: %w", err)
		}
		updates = append(updates, "Costo: $"+markdown.Escape(intent.Cost.String()))
	}
	if intent.Quantity != nil {
		if err := uc.inv.UpdateCell(ctx, row, entity.ColStock, strconv.Itoa(*intent.Quantity)); err != nil {
			return "", fmt.Errorf("ajustar stock: %w", err)
		}
		// Un ajuste manual de stock queda en el historial como AJUSTE,
		// distinguible de ventas y compras.
		sku, _ := uc.inv.Cell(ctx, row, entity.ColSKU)
		uc.logMovement(ctx, entity.MovementAdjustment, sku, name, *intent.Quantity, actor, "Corrección Manual")
		updates = append(updates, "Stock: "+strconv.Itoa(*intent.Quantity))
	}
	if cat := entity.StringOr(intent.Category, ""); cat != "" {
		if err := uc.inv.UpdateCell(ctx, row, entity.ColCategory, tituloEspanol(cat)); err != nil {
			return "", fmt.Errorf("actualizar categoría: %w", err)
		}
		updates = append(updates, "Cat: "+markdown.Escape(cat))
	}
	if exp := entity.StringOr(intent.Expiration, ""); exp != "" {
		if err := uc.inv.UpdateCell(ctx, row, entity.ColExpiration, exp); err != nil {
			return "", fmt.Errorf("actualizar vencimiento: %w", err)
		}
		updates = append(updates, "Vence: "+markdown.Escape(exp))
	}
	if loc := entity.StringOr(intent.Location, ""); loc != "" {
		if err := uc.inv.UpdateCell(ctx, row, entity.ColLocation, loc); err != nil {
			return "", fmt.Errorf("actualizar ubicación: %w", err)
		}
		updates = append(updates, "Ubicación: "+markdown.Escape(loc))
	}
	if newName := entity.StringOr(intent.NewName, ""); newName != "" {
		if err := uc.inv.UpdateCell(ctx, row, entity.ColName, newName); err != nil {
			return "", fmt.Errorf("renombrar producto: %w", err)
		}
		updates = append(updates, "Nombre: "+markdown.Escape(newName))
		name = newName
	}
	if newSKU := entity.StringOr(intent.NewSKU, ""); newSKU != "" {
		upper := strings.ToUpper(newSKU)
		if err := uc.inv.UpdateCell(ctx, row, entity.ColSKU, upper); err != nil {
			return "", fmt.Errorf("actualizar SKU: %w", err)
		}
		updates = append(updates, "SKU: "+markdown.Escape(upper))
	}

	if len(updates) == 0 {
		return fmt.Sprintf(`⚠️ Entendí que quieres actualizar *%s*, pero no me dijiste qué cambiar \(precio, stock, etc\)\.`,
			markdown.Escape(name)), nil
	}
	return fmt.Sprintf("✅ *Producto Actualizado*\n📝 %s\nCambios: %s",
		markdown.Escape(name), strings.Join(updates, ", ")), nil
}

// readStock lee el stock actual de una fila; celda vacía cuenta como cero.
func (uc *InventoryUseCase) readStock(ctx context.Context, row int) (int, error) {
	raw, err := uc.inv.Cell(ctx, row, entity.ColStock)
	if err != nil {
		return 0, fmt.Errorf("leer stock: %w", err)
	}
	if raw == "" {
		return 0, nil
	}
	stock, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("stock no numérico %q: %w", raw, err)
	}
	return stock, nil
}

// logMovement agrega la entrada de auditoría. Es best-effort: si el append
// falla solo se deja registro operacional, la mutación del inventario ya
// aplicada no se revierte.
func (uc *InventoryUseCase) logMovement(ctx context.Context, movType, sku, name string, qty int, actor, notes string) {
	m := entity.Movement{
		Timestamp:     time.Now(),
		TransactionID: uuid.NewString()[:6],
		Type:          movType,
		SKU:           sku,
		Name:          name,
		Quantity:      qty,
		Actor:         actor,
		Notes:         notes,
	}
	if err := uc.mov.AppendRow(ctx, m.Row()); err != nil {
		uc.log.Warn().Err(err).Str("tipo", movType).Str("sku", sku).
			Msg("no se pudo registrar el movimiento; el inventario ya quedó actualizado")
	}
}
