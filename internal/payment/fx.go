package payment

import (
	"github.com/railzwaylabs/directdebit/internal/payment/adapters"
	"github.com/railzwaylabs/directdebit/internal/payment/adapters/gocardless"
	paymentservice "github.com/railzwaylabs/directdebit/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment",
	fx.Provide(NewRegistry),
	paymentservice.Module,
)

// NewRegistry lists the gateway adapters a tenant can be configured with.
func NewRegistry() *adapters.Registry {
	return adapters.NewRegistry(
		gocardless.NewFactory(),
	)
}
