package service

import (
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(
		NewMetrics,
		NewGatewayResolver,
		NewMandateLocator,
		NewOrchestrator,
		NewProvisioning,
		NewReconciler,
		func(o *Orchestrator) domain.TransactionService { return o },
		func(p *Provisioning) domain.ProvisioningService { return p },
		func(r *Reconciler) domain.ReconciliationService { return r },
	),
)
