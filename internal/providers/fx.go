package providers

import (
	"github.com/railzwaylabs/directdebit/internal/providers/payment"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	payment.Module,
)
