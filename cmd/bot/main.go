package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/pymebot/inventario-bot/internal/application/usecase"
	"github.com/pymebot/inventario-bot/internal/domain/repository"
	infraai "github.com/pymebot/inventario-bot/internal/infrastructure/ai"
	"github.com/pymebot/inventario-bot/internal/infrastructure/sheets"
	"github.com/pymebot/inventario-bot/internal/infrastructure/telegram"
	httpRouter "github.com/pymebot/inventario-bot/internal/interfaces/http"
	"github.com/pymebot/inventario-bot/pkg/config"
	"github.com/pymebot/inventario-bot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando bot")

	ctx := context.Background()
	client, err := sheets.NewClient(ctx, cfg.Google.CredentialsFile, cfg.Google.TokenFile)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Google Sheets")
	}

	// El libro maestro se abre una vez al arranque: si las credenciales o el
	// id están mal, es mejor fallar aquí que en el primer mensaje.
	directory, err := client.Table(ctx, cfg.Google.AdminSheetID, repository.SheetDirectory)
	if err != nil {
		log.Fatal().Err(err).Msg("apertura del libro maestro")
	}

	provisioner := sheets.NewProvisioner(client, cfg.Google.TemplateSheetID, cfg.Google.DriveFolderID)
	tenantUC := usecase.NewTenantUseCase(directory, provisioner, log)

	classifier := infraai.NewGroqService(cfg.Groq.APIKey, cfg.Groq.Model, log)
	sender := telegram.NewSender(cfg.Telegram.BotToken)

	webhookHandler := httpRouter.NewWebhookHandler(
		tenantUC, client, classifier, sender,
		cfg.Inventory.LowStockThreshold, log,
	)
	adminHandler := httpRouter.NewAdminHandler(tenantUC, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Webhook: webhookHandler,
		Admin:   adminHandler,
		AppName: cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("bot detenido")
}
