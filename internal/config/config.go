package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	AppEnv   string
	HTTPAddr string
	NodeID   int64

	DB         DBConfig
	Redis      RedisConfig
	Annotation AnnotationConfig
	Vault      VaultConfig
	GoCardless GoCardlessConfig
	Tracing    TracingConfig
}

type DBConfig struct {
	Driver string
	DSN    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AnnotationConfig struct {
	CacheTTL time.Duration
}

type VaultConfig struct {
	Provider string
	AESKey   string
}

// TracingConfig enables OTLP/HTTP span export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string
	SampleRatio float64
}

// GoCardlessConfig seeds the gateway config of tenants that have none stored.
type GoCardlessConfig struct {
	AccessToken string
	Environment string
	BaseURL     string
	Timeout     time.Duration
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, EnvProduction)
}

// AdapterConfig renders the fallback gateway config in the shape the
// gateway factory reads. It returns nil when no access token is set.
func (c GoCardlessConfig) AdapterConfig() map[string]any {
	if strings.TrimSpace(c.AccessToken) == "" {
		return nil
	}
	out := map[string]any{
		"access_token": c.AccessToken,
		"environment":  c.Environment,
	}
	if c.BaseURL != "" {
		out["base_url"] = c.BaseURL
	}
	if c.Timeout > 0 {
		out["timeout"] = c.Timeout.String()
	}
	return out
}

// Load reads .env (when present), an optional config.yaml and the process
// environment, in increasing order of precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("NODE_ID", 1)
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_DSN", "host=localhost user=postgres password=postgres dbname=directdebit port=5432 sslmode=disable")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ANNOTATION_CACHE_TTL", "10m")
	v.SetDefault("VAULT_PROVIDER", "aes")
	v.SetDefault("GOCARDLESS_ENVIRONMENT", "sandbox")
	v.SetDefault("GOCARDLESS_TIMEOUT", "30s")
	v.SetDefault("OTEL_TRACES_SAMPLE_RATIO", 1.0)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		AppEnv:   strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		HTTPAddr: v.GetString("HTTP_ADDR"),
		NodeID:   v.GetInt64("NODE_ID"),
		DB: DBConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			DSN:    v.GetString("DB_DSN"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Annotation: AnnotationConfig{
			CacheTTL: v.GetDuration("ANNOTATION_CACHE_TTL"),
		},
		Vault: VaultConfig{
			Provider: v.GetString("VAULT_PROVIDER"),
			AESKey:   v.GetString("ENCRYPTION_KEY"),
		},
		GoCardless: GoCardlessConfig{
			AccessToken: strings.TrimSpace(v.GetString("GOCARDLESS_ACCESS_TOKEN")),
			Environment: strings.ToLower(strings.TrimSpace(v.GetString("GOCARDLESS_ENVIRONMENT"))),
			BaseURL:     strings.TrimSpace(v.GetString("GOCARDLESS_BASE_URL")),
			Timeout:     v.GetDuration("GOCARDLESS_TIMEOUT"),
		},
		Tracing: TracingConfig{
			Endpoint:    strings.TrimSpace(v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")),
			SampleRatio: v.GetFloat64("OTEL_TRACES_SAMPLE_RATIO"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DB.Driver)
	}
	switch c.GoCardless.Environment {
	case "sandbox", "live":
	default:
		return fmt.Errorf("config: unsupported GOCARDLESS_ENVIRONMENT %q", c.GoCardless.Environment)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("config: OTEL_TRACES_SAMPLE_RATIO must be between 0 and 1")
	}
	if c.NodeID < 0 || c.NodeID > 1023 {
		return fmt.Errorf("config: NODE_ID must be between 0 and 1023")
	}
	return nil
}
