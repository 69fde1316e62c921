// Package config carga la configuración de la aplicación vía Viper
// (variables de entorno y opcionalmente un archivo .env).
package config

import (
	"fmt"
	"strconv"

	"github.com/spf13/viper"
)

// Config agrupa toda la configuración del bot.
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Telegram  TelegramConfig
	Groq      GroqConfig
	Google    GoogleConfig
	Inventory InventoryConfig
}

// AppConfig configuración general.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig servidor HTTP (webhook + admin).
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TelegramConfig credenciales del bot de Telegram.
type TelegramConfig struct {
	BotToken string
}

// GroqConfig acceso al clasificador de intenciones (LLM de Groq).
type GroqConfig struct {
	APIKey string
	Model  string
}

// GoogleConfig acceso a Google Sheets/Drive.
// CredentialsFile es el client_secret OAuth y TokenFile el token ya emitido;
// la obtención/renovación del token es un proceso externo a esta aplicación.
type GoogleConfig struct {
	CredentialsFile string
	TokenFile       string
	AdminSheetID    string // libro maestro con la tabla USUARIOS_PYMES
	TemplateSheetID string // plantilla que se copia al aprovisionar una pyme
	DriveFolderID   string // carpeta destino de los libros nuevos
}

// InventoryConfig parámetros de negocio del inventario.
type InventoryConfig struct {
	LowStockThreshold int // stock <= umbral cuenta como "stock bajo" en LISTAR
}

// Load lee la configuración desde variables de entorno, con un archivo .env
// opcional en el directorio de trabajo. Las env vars tienen prioridad.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "inventario-bot"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Telegram: TelegramConfig{
			BotToken: getString(v, "TELEGRAM_BOT_TOKEN", ""),
		},
		Groq: GroqConfig{
			APIKey: getString(v, "GROQ_API_KEY", ""),
			Model:  getString(v, "GROQ_MODEL", "llama-3.1-8b-instant"),
		},
		Google: GoogleConfig{
			CredentialsFile: getString(v, "GOOGLE_CREDENTIALS_FILE", "client_secret.json"),
			TokenFile:       getString(v, "GOOGLE_TOKEN_FILE", "token.json"),
			AdminSheetID:    getString(v, "ADMIN_SHEET_ID", ""),
			TemplateSheetID: getString(v, "TEMPLATE_SHEET_ID", ""),
			DriveFolderID:   getString(v, "DRIVE_FOLDER_ID", ""),
		},
		Inventory: InventoryConfig{
			LowStockThreshold: getInt(v, "LOW_STOCK_THRESHOLD", 5),
		},
	}

	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("config: TELEGRAM_BOT_TOKEN es obligatorio")
	}
	if cfg.Google.AdminSheetID == "" {
		return nil, fmt.Errorf("config: ADMIN_SHEET_ID es obligatorio")
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
