package gocardless

import (
	"net/http"
	"strings"
	"time"

	gcsdk "github.com/gocardless/gocardless-pro-go/v4"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
)

const (
	EnvironmentLive    = "live"
	EnvironmentSandbox = "sandbox"

	defaultTimeout = 30 * time.Second
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return domain.ProviderGoCardless
}

// NewAdapter expects access_token and optionally environment, base_url and
// timeout in the adapter config.
func (f *Factory) NewAdapter(cfg domain.AdapterConfig) (domain.Gateway, error) {
	token, _ := readString(cfg.Config, "access_token")
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrMissingCredentials
	}

	environment, _ := readString(cfg.Config, "environment")
	environment = strings.ToLower(strings.TrimSpace(environment))
	if environment == "" {
		environment = EnvironmentSandbox
	}

	baseURL, _ := readString(cfg.Config, "base_url")
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		switch environment {
		case EnvironmentLive:
			baseURL = gcsdk.LiveEndpoint
		case EnvironmentSandbox:
			baseURL = gcsdk.SandboxEndpoint
		default:
			return nil, domain.ErrInvalidConfig
		}
	}

	timeout := defaultTimeout
	if raw, ok := readString(cfg.Config, "timeout"); ok && strings.TrimSpace(raw) != "" {
		parsed, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil || parsed <= 0 {
			return nil, domain.ErrInvalidConfig
		}
		timeout = parsed
	}

	sdkConfig, err := gcsdk.NewConfig(token,
		gcsdk.WithEndpoint(baseURL),
		gcsdk.WithClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, domain.ErrInvalidConfig
	}
	client, err := gcsdk.New(sdkConfig)
	if err != nil {
		return nil, domain.ErrInvalidConfig
	}

	return &Adapter{
		environment: environment,
		endpoint:    baseURL,
		client:      client,
	}, nil
}

func readString(config map[string]any, key string) (string, bool) {
	value, ok := config[key]
	if !ok {
		return "", false
	}
	switch cast := value.(type) {
	case string:
		return cast, true
	case []byte:
		return string(cast), true
	default:
		return "", false
	}
}
