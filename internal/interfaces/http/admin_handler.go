package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pymebot/inventario-bot/internal/application/dto"
	"github.com/pymebot/inventario-bot/internal/application/usecase"
	"github.com/pymebot/inventario-bot/pkg/logger"
)

// AdminHandler expone el alta de pymes para el operador del SaaS.
type AdminHandler struct {
	tenants *usecase.TenantUseCase
	log     *logger.Logger
}

// NewAdminHandler construye el handler administrativo.
func NewAdminHandler(tenants *usecase.TenantUseCase, log *logger.Logger) *AdminHandler {
	return &AdminHandler{tenants: tenants, log: log}
}

// CreateTenant aprovisiona una pyme nueva: copia la plantilla de inventario,
// genera el token de invitación y la registra en el directorio maestro.
func (h *AdminHandler) CreateTenant(c *fiber.Ctx) error {
	var in dto.CreateTenantRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.BusinessName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "nombre_negocio es requerido"})
	}

	out, err := h.tenants.CreateTenant(c.Context(), in.BusinessName, in.BusinessType, in.AdminTelegramID)
	if err != nil {
		h.log.Error().Err(err).Str("pyme", in.BusinessName).Msg("admin: error creando pyme")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "fallo al crear la infraestructura de la pyme"})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
