package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/webchat/chat-relay/internal/pkg/retry"
)

const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr         string        `env:"SERVER_ADDR" envDefault:":3000"`
	ServerReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	ServerWriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"5m"`
	CORSAllowedOrigin  string        `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Relay and upstream configuration
	RelayCfg    RelayConfig        `envPrefix:"RELAY_"`
	N8NCfg      N8NConfig          `envPrefix:"N8N_"`
	WebhookHTTP HTTPClientConfig   `envPrefix:"WEBHOOK_"`
	RAGCfg      RAGConnectorConfig `envPrefix:"RAG_"`

	// Conversation store configuration
	StoreCfg StoreConfig `envPrefix:"STORE_"`

	// File upload configuration
	UploadCfg UploadConfig `envPrefix:"UPLOAD_"`

	// Auth configuration
	AuthCfg AuthConfig `envPrefix:"AUTH_"`

	// Rate limiting
	RateLimitCfg RateLimitConfig `envPrefix:"RATE_LIMIT_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// RelayConfig drives the chat relay. The model webhooks are fixed per
// deployment; an unset one makes requests for that model fail with a
// configuration error.
type RelayConfig struct {
	ChunkDelay       time.Duration `env:"CHUNK_DELAY" envDefault:"30ms"`
	ErrorMessage     string        `env:"ERROR_MESSAGE" envDefault:"Error al conectar con el backend. Por favor, intenta de nuevo."`
	OpenAIWebhookURL string        `env:"OPENAI_WEBHOOK_URL"`
	GeminiWebhookURL string        `env:"GEMINI_WEBHOOK_URL"`
}

// N8NConfig describes the default webhook and the upload form. BaseURL and
// WebhookPath are optional at startup; a request that needs them fails with
// a configuration error.
type N8NConfig struct {
	BaseURL       string `env:"BASE_URL"`
	WebhookPath   string `env:"WEBHOOK_PATH"`
	UploadFormURL string `env:"UPLOAD_FORM_URL" envDefault:"https://sswebhookss.joaobr.site/form/82848bc4-5ea2-4e5a-8bb6-3c09b94a8c5d"`
	AuthHeader    string `env:"AUTH_HEADER" envDefault:"Authorization"`
	AuthValue     string `env:"AUTH_VALUE"`
}

// DefaultWebhookURL joins BaseURL and WebhookPath, or returns "" when either
// is unset.
func (c N8NConfig) DefaultWebhookURL() string {
	if c.BaseURL == "" || c.WebhookPath == "" {
		return ""
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(c.WebhookPath, "/")
}

type RAGConnectorConfig struct {
	HTTPClientConfig
	AskEndpoint    string               `env:"ASK_ENDPOINT" envDefault:"/ask_chatbot/{chatbot_id}"`
	BuildEndpoint  string               `env:"BUILD_ENDPOINT" envDefault:"/build_chatbot"`
	StatusEndpoint string               `env:"STATUS_ENDPOINT" envDefault:"/chatbot_status/{chatbot_id}"`
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"120s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"120s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL" envDefault:"http://localhost:5001"`
}

type StoreConfig struct {
	Driver   string `env:"DRIVER" envDefault:"file"`
	FilePath string `env:"FILE_PATH" envDefault:"conversations.json"`

	// Postgres driver only
	DatabaseURL         string        `env:"DATABASE_URL"`
	MigrationsPath      string        `env:"MIGRATIONS_PATH" envDefault:"file://internal/repository/migrations"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"1"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

// UploadConfig holds file upload limits and the n8n notification policy
type UploadConfig struct {
	Dir         string               `env:"DIR" envDefault:"uploads"`
	MaxFileSize int64                `env:"MAX_FILE_SIZE" envDefault:"20971520"` // 20 MiB
	Notify      bool                 `env:"NOTIFY" envDefault:"true"`
	Retry       pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type AuthConfig struct {
	Required  bool          `env:"REQUIRED" envDefault:"false"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

type RateLimitConfig struct {
	Requests int           `env:"REQUESTS" envDefault:"30"`
	Window   time.Duration `env:"WINDOW" envDefault:"1m"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the configuration from the process environment and validates it.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.RelayCfg.ChunkDelay < 0 || cfg.RelayCfg.ChunkDelay > time.Second {
		errors = append(errors, fmt.Sprintf("RELAY_CHUNK_DELAY must be between 0 and 1s, got %s", cfg.RelayCfg.ChunkDelay))
	}

	switch cfg.StoreCfg.Driver {
	case StoreDriverFile:
		if cfg.StoreCfg.FilePath == "" {
			errors = append(errors, "STORE_FILE_PATH is required for the file store")
		}
	case StoreDriverPostgres:
		if cfg.StoreCfg.DatabaseURL == "" {
			errors = append(errors, "STORE_DATABASE_URL is required for the postgres store")
		}
		if cfg.StoreCfg.DBMaxConns < 1 || cfg.StoreCfg.DBMaxConns > 200 {
			errors = append(errors, fmt.Sprintf("STORE_DB_MAX_CONNS must be between 1 and 200, got %d", cfg.StoreCfg.DBMaxConns))
		}
		if cfg.StoreCfg.DBMinConns < 0 || cfg.StoreCfg.DBMinConns > cfg.StoreCfg.DBMaxConns {
			errors = append(errors, fmt.Sprintf("STORE_DB_MIN_CONNS must be between 0 and STORE_DB_MAX_CONNS(%d), got %d", cfg.StoreCfg.DBMaxConns, cfg.StoreCfg.DBMinConns))
		}
	default:
		errors = append(errors, fmt.Sprintf("STORE_DRIVER must be %q or %q, got %q", StoreDriverFile, StoreDriverPostgres, cfg.StoreCfg.Driver))
	}

	if cfg.UploadCfg.MaxFileSize <= 0 {
		errors = append(errors, fmt.Sprintf("UPLOAD_MAX_FILE_SIZE must be positive, got %d", cfg.UploadCfg.MaxFileSize))
	}

	if cfg.AuthCfg.Required && cfg.AuthCfg.JWTSecret == "" {
		errors = append(errors, "AUTH_JWT_SECRET is required when AUTH_REQUIRED is set")
	}

	if cfg.RateLimitCfg.Requests < 1 {
		errors = append(errors, fmt.Sprintf("RATE_LIMIT_REQUESTS must be positive, got %d", cfg.RateLimitCfg.Requests))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
