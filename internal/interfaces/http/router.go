package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Webhook *WebhookHandler
	Admin   *AdminHandler
	AppName string
}

// Router registra las rutas del bot.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	// Telegram envía las actualizaciones aquí.
	app.Post("/webhook/telegram", deps.Webhook.Handle)

	// Alta de pymes (operador del SaaS).
	admin := app.Group("/admin")
	admin.Post("/pymes", deps.Admin.CreateTenant)
}
