// Package ports define los puertos de salida hacia colaboradores externos.
// La aplicación solo conoce estos contratos, nunca los adaptadores concretos.
package ports

import (
	"context"

	"github.com/pymebot/inventario-bot/internal/domain/entity"
)

// IntentClassifier convierte texto libre del usuario en una intención
// estructurada. Cualquier fallo del clasificador debe materializarse como
// una intención con acción DESCONOCIDO, nunca como error: el núcleo trata
// ambos casos de forma idéntica.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) *entity.Intent
}

// Messenger envía la respuesta final al canal de chat. El texto ya viene
// escapado para MarkdownV2.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// SheetProvisioner copia la plantilla de inventario para una pyme nueva y
// devuelve el id del libro creado. Lo usa solo el flujo de aprovisionamiento.
type SheetProvisioner interface {
	CopyTemplate(ctx context.Context, title string) (string, error)
}
