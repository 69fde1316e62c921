// Package telegram implementa el envío de respuestas vía Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pymebot/inventario-bot/internal/application/ports"
)

var _ ports.Messenger = (*Sender)(nil)

// Sender envía mensajes por la Bot API de Telegram con parse_mode MarkdownV2.
// La entrega/reintentos más allá de una llamada HTTP no son responsabilidad
// de este adaptador.
type Sender struct {
	botToken   string
	baseURL    string
	httpClient *http.Client
}

// NewSender construye el adaptador con el token del bot.
func NewSender(botToken string) *Sender {
	return &Sender{
		botToken: botToken,
		baseURL:  "https://api.telegram.org",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage envía el texto (ya escapado para MarkdownV2) al chat indicado.
func (s *Sender) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload := sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "MarkdownV2",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: serializar mensaje: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: enviar mensaje: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
	if err != nil {
		return fmt.Errorf("telegram: leer respuesta: %w", err)
	}
	var out sendMessageResponse
	if err := json.Unmarshal(rawBody, &out); err != nil {
		return fmt.Errorf("telegram: respuesta ilegible (HTTP %d): %w", resp.StatusCode, err)
	}
	if !out.OK {
		return fmt.Errorf("telegram: sendMessage rechazado (HTTP %d): %s", resp.StatusCode, out.Description)
	}
	return nil
}

// Update es la actualización entrante que Telegram envía al webhook.
// Solo se modelan los campos que el bot consume.
type Update struct {
	Message struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From struct {
			ID        int64  `json:"id"`
			FirstName string `json:"first_name"`
		} `json:"from"`
	} `json:"message"`
}
