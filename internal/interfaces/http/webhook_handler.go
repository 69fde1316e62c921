// Package http expone la superficie HTTP del bot: el webhook de Telegram y
// la API administrativa de pymes.
package http

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pymebot/inventario-bot/internal/application/ports"
	"github.com/pymebot/inventario-bot/internal/application/usecase"
	"github.com/pymebot/inventario-bot/internal/domain"
	"github.com/pymebot/inventario-bot/internal/domain/repository"
	"github.com/pymebot/inventario-bot/internal/infrastructure/telegram"
	"github.com/pymebot/inventario-bot/pkg/logger"
	"github.com/pymebot/inventario-bot/pkg/markdown"
)

// Tiempo máximo de procesamiento de una actualización en segundo plano.
const updateTimeout = 60 * time.Second

// WebhookHandler procesa las actualizaciones de Telegram. Cada mensaje se
// atiende en su propia goroutine; el único estado compartido entre mensajes
// concurrentes es el almacén de documentos.
type WebhookHandler struct {
	tenants    *usecase.TenantUseCase
	store      repository.Store
	classifier ports.IntentClassifier
	sender     ports.Messenger
	lowStock   int
	log        *logger.Logger
}

// NewWebhookHandler construye el handler del webhook.
func NewWebhookHandler(
	tenants *usecase.TenantUseCase,
	store repository.Store,
	classifier ports.IntentClassifier,
	sender ports.Messenger,
	lowStock int,
	log *logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		tenants:    tenants,
		store:      store,
		classifier: classifier,
		sender:     sender,
		lowStock:   lowStock,
		log:        log,
	}
}

// Handle recibe la actualización, responde 200 de inmediato y procesa en
// segundo plano: Telegram reintenta el webhook si no obtiene respuesta rápida.
func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	var update telegram.Update
	if err := c.BodyParser(&update); err != nil {
		h.log.Warn().Err(err).Msg("webhook: cuerpo ilegible, se ignora")
		return c.JSON(fiber.Map{"status": "ok"})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
		defer cancel()
		h.processUpdate(ctx, update)
	}()

	return c.JSON(fiber.Map{"status": "ok"})
}

// processUpdate es el flujo principal del bot para un mensaje.
func (h *WebhookHandler) processUpdate(ctx context.Context, update telegram.Update) {
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)
	if chatID == 0 || text == "" {
		return // actualizaciones sin texto (fotos, stickers, ediciones) se ignoran
	}

	callerID := strconv.FormatInt(update.Message.From.ID, 10)
	userName := update.Message.From.FirstName
	if userName == "" {
		userName = "Usuario"
	}
	log := h.log.With().Int64("chat_id", chatID).Str("caller", callerID).Logger()

	tenant, err := h.tenants.ResolveByCaller(ctx, callerID)
	if err != nil {
		// Caller sin pyme vinculada: solo se atiende el flujo de vinculación.
		if errors.Is(err, domain.ErrTenantNotFound) {
			h.handleUnlinked(ctx, chatID, callerID, userName, text)
			return
		}
		log.Error().Err(err).Msg("webhook: error resolviendo pyme")
		h.reply(ctx, chatID, `💥 Ocurrió un error técnico\. Intenta de nuevo en un momento\.`)
		return
	}

	intent := h.classifier.Classify(ctx, text)

	inv, err := h.store.Table(ctx, tenant.LedgerSheet, repository.SheetInventory)
	if err != nil {
		log.Error().Err(err).Msg("webhook: error abriendo tabla de inventario")
		h.reply(ctx, chatID, `💥 No se pudo acceder al inventario de tu negocio\.`)
		return
	}
	mov, err := h.store.Table(ctx, tenant.LedgerSheet, repository.SheetMovements)
	if err != nil {
		log.Error().Err(err).Msg("webhook: error abriendo tabla de movimientos")
		h.reply(ctx, chatID, `💥 No se pudo acceder al inventario de tu negocio\.`)
		return
	}

	inventoryUC := usecase.NewInventoryUseCase(inv, mov, h.lowStock, h.log)
	response := inventoryUC.Process(ctx, intent, userName)
	h.reply(ctx, chatID, response)
}

// handleUnlinked atiende a callers no registrados: `/conectar TOKEN` o el
// saludo con instrucciones.
func (h *WebhookHandler) handleUnlinked(ctx context.Context, chatID int64, callerID, userName, text string) {
	if strings.HasPrefix(text, "/conectar") {
		parts := strings.Fields(text)
		if len(parts) < 2 {
			h.reply(ctx, chatID, "⚠️ Debes enviar el token\\. Ejemplo: `/conectar AB123`")
			return
		}
		_, msg := h.tenants.Link(ctx, callerID, parts[1])
		h.reply(ctx, chatID, msg)
		return
	}
	h.reply(ctx, chatID, fmt.Sprintf(
		"👋 Hola %s\\. No tienes un negocio vinculado\\.\n"+
			"Si ya compraste el software, envía tu token así:\n`/conectar TU_CODIGO`",
		markdown.Escape(userName)))
}

func (h *WebhookHandler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.sender.SendMessage(ctx, chatID, text); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("webhook: error enviando respuesta")
	}
}
