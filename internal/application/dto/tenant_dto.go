// Package dto estructuras de entrada/salida de la API administrativa.
package dto

// CreateTenantRequest petición para aprovisionar una pyme nueva.
type CreateTenantRequest struct {
	BusinessName    string `json:"nombre_negocio"`
	BusinessType    string `json:"tipo_negocio"`
	AdminTelegramID string `json:"admin_telegram_id"`
}

// CreateTenantResponse datos de acceso de la pyme recién creada.
type CreateTenantResponse struct {
	Token   string `json:"token"`
	SheetID string `json:"sheet_id"`
	URL     string `json:"url"`
}

// ErrorResponse respuesta de error estándar de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
