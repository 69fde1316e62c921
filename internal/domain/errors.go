package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrInvalidToken   = errors.New("token de vinculación inválido")
	ErrTenantNotFound = errors.New("pyme no encontrada")
)
