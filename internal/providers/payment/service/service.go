package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/directdebit/internal/clock"
	"github.com/railzwaylabs/directdebit/internal/config"
	"github.com/railzwaylabs/directdebit/internal/payment/adapters"
	paymentdomain "github.com/railzwaylabs/directdebit/internal/payment/domain"
	"github.com/railzwaylabs/directdebit/internal/providers/payment/domain"
	"github.com/railzwaylabs/directdebit/internal/security/vault"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Repo     domain.Repository
	Adapters *adapters.Registry
	Vault    vault.Provider `optional:"true"`
	Node     *snowflake.Node
	Clock    clock.Clock
	Cfg      config.Config
	Log      *zap.Logger
}

type Service struct {
	repo     domain.Repository
	adapters *adapters.Registry
	vault    vault.Provider
	node     *snowflake.Node
	clock    clock.Clock
	fallback map[string]map[string]any
	log      *zap.Logger
}

func New(p Params) domain.Service {
	fallback := map[string]map[string]any{}
	if cfg := p.Cfg.GoCardless.AdapterConfig(); cfg != nil {
		fallback[paymentdomain.ProviderGoCardless] = cfg
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Service{
		repo:     p.Repo,
		adapters: p.Adapters,
		vault:    p.Vault,
		node:     p.Node,
		clock:    clk,
		fallback: fallback,
		log:      p.Log.Named("paymentprovider.service"),
	}
}

func (s *Service) GetActiveProviderConfig(ctx context.Context, orgID snowflake.ID, provider string) (map[string]any, error) {
	provider = normalizeProvider(provider)
	if provider == "" {
		return nil, paymentdomain.ErrInvalidProvider
	}

	row, err := s.repo.FindActive(ctx, nil, orgID, provider)
	if err != nil {
		return nil, err
	}
	if row == nil {
		if cfg, ok := s.fallback[provider]; ok {
			s.log.Debug("using fallback provider config",
				zap.String("org_id", orgID.String()),
				zap.String("provider", provider),
			)
			return copyConfig(cfg), nil
		}
		return nil, domain.ErrConfigNotFound
	}
	return s.decrypt(row.Config)
}

func (s *Service) UpsertProviderConfig(ctx context.Context, orgID snowflake.ID, provider string, cfg map[string]any) error {
	provider = normalizeProvider(provider)
	if orgID == 0 || provider == "" {
		return paymentdomain.ErrInvalidProvider
	}
	if !s.adapters.ProviderExists(provider) {
		return paymentdomain.ErrProviderNotFound
	}
	if _, err := s.adapters.NewAdapter(provider, paymentdomain.AdapterConfig{
		Provider: provider,
		Config:   cfg,
	}); err != nil {
		return err
	}
	if s.vault == nil {
		return domain.ErrEncryptionKeyMissing
	}

	plain, err := json.Marshal(cfg)
	if err != nil {
		return paymentdomain.ErrInvalidConfig
	}
	sealed, err := s.vault.Encrypt(plain)
	if err != nil {
		return err
	}

	now := s.clock.Now(ctx)
	row := &domain.ProviderConfig{
		ID:        s.node.Generate(),
		OrgID:     orgID,
		Provider:  provider,
		Config:    datatypes.JSON(sealed),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Upsert(ctx, nil, row); err != nil {
		return err
	}

	s.log.Info("provider config stored",
		zap.String("org_id", orgID.String()),
		zap.String("provider", provider),
	)
	return nil
}

func (s *Service) decrypt(sealed datatypes.JSON) (map[string]any, error) {
	if s.vault == nil {
		return nil, domain.ErrEncryptionKeyMissing
	}
	if len(sealed) == 0 {
		return nil, paymentdomain.ErrInvalidConfig
	}
	plain, err := s.vault.Decrypt(sealed)
	if err != nil {
		return nil, paymentdomain.ErrInvalidConfig
	}
	var out map[string]any
	if err := json.Unmarshal(plain, &out); err != nil || len(out) == 0 {
		return nil, paymentdomain.ErrInvalidConfig
	}
	return out, nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func copyConfig(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
