package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/directdebit/internal/payment/adapters"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
	providerdomain "github.com/railzwaylabs/directdebit/internal/providers/payment/domain"
	"go.uber.org/fx"
)

type GatewayResolverParams struct {
	fx.In

	Registry        *adapters.Registry
	ProviderService providerdomain.Service
}

type gatewayResolver struct {
	registry        *adapters.Registry
	providerService providerdomain.Service
}

// NewGatewayResolver builds a gateway client per call from the tenant's
// stored provider config. No client is shared across tenants.
func NewGatewayResolver(p GatewayResolverParams) domain.GatewayResolver {
	return &gatewayResolver{
		registry:        p.Registry,
		providerService: p.ProviderService,
	}
}

func (r *gatewayResolver) Resolve(ctx context.Context, orgID snowflake.ID) (domain.Gateway, error) {
	cfg, err := r.providerService.GetActiveProviderConfig(ctx, orgID, domain.ProviderGoCardless)
	if err != nil {
		if errors.Is(err, providerdomain.ErrConfigNotFound) {
			return nil, fmt.Errorf("%w: no %s config for org %s", domain.ErrMissingCredentials, domain.ProviderGoCardless, orgID)
		}
		return nil, err
	}
	return r.registry.NewAdapter(domain.ProviderGoCardless, domain.AdapterConfig{
		Provider: domain.ProviderGoCardless,
		Config:   cfg,
	})
}
