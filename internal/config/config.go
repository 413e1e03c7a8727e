package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	LogLevel string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	Gateway GatewayConfig
	Billing BillingConfig
}

// GatewayConfig configures the external payment gateway client.
type GatewayConfig struct {
	BaseURL       string
	ClientID      string
	Timeout       time.Duration
	WebhookSecret string
	// UseMock swaps the HTTP client for a locally-synthesized one so
	// development and staging stay usable without live credentials.
	UseMock bool
}

// BillingConfig carries school billing defaults.
type BillingConfig struct {
	TuitionDueDay int
	SalaryDueDay  int
	// DefaultPayer is the designated school payer used as the invoice
	// customer for expense and income entries without a natural counterparty.
	DefaultPayer PayerConfig
}

// PayerConfig identifies an invoice customer.
type PayerConfig struct {
	Name     string
	Document string
	Email    string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "escolar"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: environment,
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		DBType:      getenv("DATABASE_TYPE", "postgres"),
		DBHost:      getenv("DATABASE_HOST", "localhost"),
		DBPort:      getenv("DATABASE_PORT", "5432"),
		DBName:      getenv("DATABASE_NAME", "escolar"),
		DBUser:      getenv("DATABASE_USER", "postgres"),
		DBPassword:  getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:   getenv("DATABASE_SSLMODE", "disable"),
		Gateway: GatewayConfig{
			BaseURL:       getenv("GATEWAY_BASE_URL", "https://matls-clients.api.stage.cora.com.br"),
			ClientID:      strings.TrimSpace(getenv("GATEWAY_CLIENT_ID", "")),
			Timeout:       getenvDuration("GATEWAY_TIMEOUT", 15*time.Second),
			WebhookSecret: strings.TrimSpace(getenv("GATEWAY_WEBHOOK_SECRET", "")),
			UseMock:       getenvBool("GATEWAY_USE_MOCK", environment != "production"),
		},
		Billing: BillingConfig{
			TuitionDueDay: int(getenvInt64("BILLING_TUITION_DUE_DAY", 10)),
			SalaryDueDay:  int(getenvInt64("BILLING_SALARY_DUE_DAY", 5)),
			DefaultPayer: PayerConfig{
				Name:     getenv("BILLING_DEFAULT_PAYER_NAME", "Administracao Escolar"),
				Document: getenv("BILLING_DEFAULT_PAYER_DOCUMENT", "00000000000"),
				Email:    getenv("BILLING_DEFAULT_PAYER_EMAIL", "admin@escola.example"),
			},
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
