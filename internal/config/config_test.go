package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOCARDLESS_ACCESS_TOKEN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "sandbox", cfg.GoCardless.Environment)
	assert.Equal(t, 30*time.Second, cfg.GoCardless.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Annotation.CacheTTL)
	assert.Nil(t, cfg.GoCardless.AdapterConfig())
	assert.Empty(t, cfg.Tracing.Endpoint)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("GOCARDLESS_ACCESS_TOKEN", " live_token ")
	t.Setenv("GOCARDLESS_ENVIRONMENT", "LIVE")
	t.Setenv("GOCARDLESS_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DB.Driver)

	adapterCfg := cfg.GoCardless.AdapterConfig()
	require.NotNil(t, adapterCfg)
	assert.Equal(t, "live_token", adapterCfg["access_token"])
	assert.Equal(t, "live", adapterCfg["environment"])
	assert.Equal(t, "5s", adapterCfg["timeout"])
}

func TestLoad_RejectsUnknownEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOCARDLESS_ENVIRONMENT", "staging")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Tracing(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4318")
	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "0.25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://collector:4318", cfg.Tracing.Endpoint)
	assert.InDelta(t, 0.25, cfg.Tracing.SampleRatio, 1e-9)

	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "2")
	_, err = Load()
	require.Error(t, err)
}
