package vault

import (
	"github.com/railzwaylabs/directdebit/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("security.vault",
	fx.Provide(NewFromConfig),
)

// NewFromConfig returns nil when no encryption key is configured; stored
// provider configs are then unreadable and the env fallback is used.
func NewFromConfig(cfg config.Config, log *zap.Logger) (Provider, error) {
	if cfg.Vault.AESKey == "" {
		log.Named("security.vault").Warn("ENCRYPTION_KEY not set; stored provider configs are disabled")
		return nil, nil
	}
	return New(Config{Provider: cfg.Vault.Provider, AESKey: cfg.Vault.AESKey})
}
