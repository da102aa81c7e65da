package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

const ProviderGoCardless = "gocardless"

// Gateway is the synchronous RPC surface the engine needs from the
// direct-debit gateway.
type Gateway interface {
	CreatePayment(ctx context.Context, params CreatePaymentParams) (*GatewayPayment, error)
	GetMandate(ctx context.Context, mandateID string) (*Mandate, error)
	// ListPayments returns every payment of the customer, draining all pages.
	ListPayments(ctx context.Context, customerID string) ([]GatewayPayment, error)
	CreateRedirectFlow(ctx context.Context, params CreateRedirectFlowParams) (*RedirectFlow, error)
	CompleteRedirectFlow(ctx context.Context, redirectFlowID, sessionToken string) (*RedirectFlow, error)
}

type AdapterConfig struct {
	Provider string
	Config   map[string]any
}

type AdapterFactory interface {
	Provider() string
	NewAdapter(config AdapterConfig) (Gateway, error)
}

// GatewayResolver returns the gateway client configured for a tenant.
type GatewayResolver interface {
	Resolve(ctx context.Context, orgID snowflake.ID) (Gateway, error)
}

type GatewayResolverFunc func(ctx context.Context, orgID snowflake.ID) (Gateway, error)

func (f GatewayResolverFunc) Resolve(ctx context.Context, orgID snowflake.ID) (Gateway, error) {
	return f(ctx, orgID)
}
