// Package ai implementa el clasificador de intenciones sobre la API de Groq.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pymebot/inventario-bot/internal/application/ports"
	"github.com/pymebot/inventario-bot/internal/domain/entity"
	"github.com/pymebot/inventario-bot/pkg/logger"
)

// Verificar en tiempo de compilación que GroqService implementa el puerto.
var _ ports.IntentClassifier = (*GroqService)(nil)

const (
	groqChatCompletionsURL = "https://api.groq.com/openai/v1/chat/completions"

	// systemPrompt define el contrato de extracción. response_format json_object
	// obliga al modelo a devolver JSON puro, sin bloques de markdown.
	systemPrompt = `Eres un asistente de inventario experto. Tu misión es estructurar datos en JSON.

ACCIONES POSIBLES:
1. VENTA: Salida de mercancía.
2. COMPRA: Entrada de mercancía.
3. CONSULTA: Preguntar stock, precio o buscar producto.
4. CREAR: Registrar nuevo producto con precio.
5. ACTUALIZAR: Modificar datos de un producto existente (precio, stock, nombre, etc).
6. LISTAR: Mostrar múltiples productos según un criterio (ubicación, vencimiento, stock bajo, todos).
7. DESCONOCIDO: Texto sin sentido comercial.

REGLAS DE EXTRACCIÓN:
- "producto": Nombre limpio (ej: "Cemento Argos").
- "precio": Número entero sin símbolos.
- "precio_compra": Costo de adquisición o compra al proveedor (si se menciona).
- "cantidad": Stock inicial o cantidad a operar.
- "ubicacion": Lugar físico de almacenamiento (ej: "Estante 1", "Cajón B", "Bodega").

REGLAS DE INFERENCIA (SOLO PARA ACCIÓN 'CREAR'):
- "categoria": Clasifica el producto lógicamente (Herramientas, Materiales, Eléctricos, Pinturas, Plomería, Hogar).
- "unidad": Unidad de medida estándar: cables/cuerdas -> "MTS", cemento/yeso -> "BULTO",
  líquidos -> "GALON" o "LITRO", pisos -> "M2", si no es obvio -> "UND".

REGLAS PARA "ACTUALIZAR":
- "producto": El nombre actual para buscarlo.
- "nuevo_nombre": Solo si el usuario pide cambiar el nombre explícitamente.
- "nuevo_sku": Si el usuario pide cambiar el código SKU o referencia.
- "precio" / "precio_compra" / "cantidad" / "ubicacion": solo si se menciona el cambio.

REGLAS PARA "LISTAR":
- "criterio": "ubicacion", "vencimiento", "stock_bajo" o "todos".
- "ubicacion": Extraer el nombre del lugar si el criterio es ubicacion.

REGLA PARA "fecha_vencimiento":
- Solo si el usuario menciona una fecha explícita de caducidad.
- Formato de salida obligatorio: YYYY-MM-DD.

EJEMPLOS:
- "Crea Martillo de Bola a 25000" -> {"accion": "CREAR", "producto": "Martillo de Bola", "precio": 25000, "cantidad": 0, "categoria": "Herramientas", "unidad": "UND"}
- "Vendí 2 galones de thinner" -> {"accion": "VENTA", "producto": "thinner", "cantidad": 2}
- "¿Cuánto vale el tubo pvc?" -> {"accion": "CONSULTA", "producto": "tubo pvc"}
- "Actualiza precio de Martillo a 30000" -> {"accion": "ACTUALIZAR", "producto": "Martillo", "precio": 30000}
- "Qué hay en la Bodega" -> {"accion": "LISTAR", "criterio": "ubicacion", "ubicacion": "Bodega"}
- "Qué se está acabando" -> {"accion": "LISTAR", "criterio": "stock_bajo"}`
)

// GroqService adaptador del clasificador sobre la API OpenAI-compatible de
// Groq. Usa net/http de la librería estándar; no requiere SDK.
type GroqService struct {
	apiKey     string
	model      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewGroqService construye el adaptador. model suele ser "llama-3.1-8b-instant".
func NewGroqService(apiKey, model string, log *logger.Logger) *GroqService {
	return &GroqService{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		log: log,
	}
}

// ── Protocolo chat/completions ────────────────────────────────────────────────

type groqRequest struct {
	Model          string        `json:"model"`
	Messages       []groqMessage `json:"messages"`
	Temperature    float32       `json:"temperature"`
	ResponseFormat groqFormat    `json:"response_format"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqFormat struct {
	Type string `json:"type"` // "json_object" -> JSON puro garantizado
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// intentPayload es el JSON que esperamos del modelo. Los campos van como
// RawMessage porque el modelo a veces devuelve números donde se espera
// texto y viceversa; la coerción se hace campo por campo.
type intentPayload struct {
	Accion           string          `json:"accion"`
	Producto         json.RawMessage `json:"producto"`
	NuevoNombre      json.RawMessage `json:"nuevo_nombre"`
	NuevoSKU         json.RawMessage `json:"nuevo_sku"`
	Cantidad         json.RawMessage `json:"cantidad"`
	Precio           json.RawMessage `json:"precio"`
	PrecioCompra     json.RawMessage `json:"precio_compra"`
	Categoria        json.RawMessage `json:"categoria"`
	Unidad           json.RawMessage `json:"unidad"`
	FechaVencimiento json.RawMessage `json:"fecha_vencimiento"`
	Ubicacion        json.RawMessage `json:"ubicacion"`
	Criterio         json.RawMessage `json:"criterio"`
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// Classify convierte el texto libre del usuario en una intención
// estructurada. Nunca devuelve error: cualquier fallo (red, API, JSON
// ilegible) se materializa como acción DESCONOCIDO, que el núcleo trata
// igual que un texto incomprensible.
func (s *GroqService) Classify(ctx context.Context, text string) *entity.Intent {
	unknown := &entity.Intent{Action: entity.ActionUnknown}

	if s.apiKey == "" {
		s.log.Error().Msg("clasificador: GROQ_API_KEY no configurado")
		return unknown
	}

	payload := groqRequest{
		Model: s.model,
		Messages: []groqMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature:    0,
		ResponseFormat: groqFormat{Type: "json_object"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Msg("clasificador: serializar request")
		return unknown
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, groqChatCompletionsURL, bytes.NewReader(body))
	if err != nil {
		s.log.Error().Err(err).Msg("clasificador: crear HTTP request")
		return unknown
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Error().Err(err).Msg("clasificador: llamada HTTP fallida")
		return unknown
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		s.log.Error().Err(err).Msg("clasificador: leer respuesta")
		return unknown
	}

	var groqResp groqResponse
	if err := json.Unmarshal(rawBody, &groqResp); err != nil || groqResp.Error != nil || len(groqResp.Choices) == 0 {
		s.log.Error().Int("status", resp.StatusCode).Str("body", string(rawBody)).Msg("clasificador: respuesta inválida de Groq")
		return unknown
	}

	content := groqResp.Choices[0].Message.Content
	s.log.Debug().Str("raw", content).Msg("clasificador: respuesta cruda del modelo")

	var p intentPayload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		s.log.Error().Err(err).Str("raw", content).Msg("clasificador: JSON del modelo ilegible")
		return unknown
	}

	return p.toIntent()
}

// toIntent coerciona el payload a la intención del dominio. La distinción
// ausente vs cero se preserva: un campo omitido o null queda en nil.
func (p intentPayload) toIntent() *entity.Intent {
	action := strings.ToUpper(strings.TrimSpace(p.Accion))
	switch action {
	case entity.ActionCreate, entity.ActionSale, entity.ActionBuy,
		entity.ActionQuery, entity.ActionUpdate, entity.ActionList:
	default:
		action = entity.ActionUnknown
	}
	return &entity.Intent{
		Action:     action,
		Product:    asString(p.Producto),
		NewName:    asString(p.NuevoNombre),
		NewSKU:     asString(p.NuevoSKU),
		Quantity:   asInt(p.Cantidad),
		Price:      asDecimal(p.Precio),
		Cost:       asDecimal(p.PrecioCompra),
		Category:   asString(p.Categoria),
		Unit:       asString(p.Unidad),
		Expiration: asString(p.FechaVencimiento),
		Location:   asString(p.Ubicacion),
		Criterion:  asString(p.Criterio),
	}
}

// asString acepta string o número (el modelo a veces manda "4*50" o 12 donde
// va texto) y lo devuelve como texto. null/ausente -> nil.
func asString(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil
		}
		return &s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		s := n.String()
		return &s
	}
	return nil
}

// asInt acepta número o string numérico. Decimales se truncan.
func asInt(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			i := int(v)
			return &i
		}
		if f, err := n.Float64(); err == nil {
			i := int(f)
			return &i
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return &v
		}
	}
	return nil
}

// asDecimal acepta número o string numérico.
func asDecimal(raw json.RawMessage) *decimal.Decimal {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return &d
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
			return &d
		}
	}
	return nil
}
