package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/railzwaylabs/directdebit/internal/payment/currency"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ReconcilerParams struct {
	fx.In

	Locator  *MandateLocator
	Gateways domain.GatewayResolver
	Log      *zap.Logger
	Metrics  *Metrics `optional:"true"`
}

// Reconciler rebuilds the transaction history of a billing payment from the
// gateway, matching gateway payments by the kbPaymentId metadata written at
// creation time.
type Reconciler struct {
	locator  *MandateLocator
	gateways domain.GatewayResolver
	log      *zap.Logger
	metrics  *Metrics
}

func NewReconciler(p ReconcilerParams) *Reconciler {
	return &Reconciler{
		locator:  p.Locator,
		gateways: p.Gateways,
		log:      p.Log.Named("payment.reconciler"),
		metrics:  p.Metrics,
	}
}

func (r *Reconciler) ListTransactions(ctx context.Context, orgID snowflake.ID, accountID, paymentID uuid.UUID) ([]domain.TransactionResult, error) {
	mandateID, ok, err := r.locator.ResolveMandate(ctx, orgID, accountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.TransactionResult{}, nil
	}

	gateway, err := r.gateways.Resolve(ctx, orgID)
	if err != nil {
		return nil, err
	}

	mandate, err := gateway.GetMandate(ctx, mandateID)
	r.metrics.observeGatewayCall("get_mandate", err)
	if err != nil {
		return nil, err
	}

	payments, err := gateway.ListPayments(ctx, mandate.CustomerID)
	r.metrics.observeGatewayCall("list_payments", err)
	if err != nil {
		return nil, err
	}

	results := make([]domain.TransactionResult, 0)
	for _, payment := range payments {
		if !payment.MatchesPayment(paymentID.String()) {
			continue
		}

		unsupported := false
		amount, err := currency.FromMinorUnits(payment.Amount, payment.Currency)
		if err != nil {
			r.log.Warn("gateway payment has an unsupported currency; reporting minor units",
				zap.String("gateway_payment_id", payment.ID),
				zap.String("currency", string(payment.Currency)),
				zap.Error(err),
			)
			amount = decimal.NewFromInt(payment.Amount)
			unsupported = true
		}

		// Payments created outside this service may carry a malformed
		// transaction id; those are reported with the nil uuid.
		transactionID, err := uuid.Parse(payment.TransactionRef())
		if err != nil {
			transactionID = uuid.Nil
		}

		result := domain.TransactionResult{
			PaymentID:     paymentID,
			TransactionID: transactionID,
			Kind:          domain.TransactionKindPurchase,
			Amount:        amount,
			Currency:      string(payment.Currency),
			Status:        payment.Status.BillingStatus(),
			ReferenceID:   payment.ID,
			CreatedDate:   payment.CreatedAt,
			Properties: map[string]string{
				domain.PropertyMandateID:     mandateID,
				domain.PropertyCustomerID:    mandate.CustomerID,
				domain.PropertyGatewayStatus: string(payment.Status),
			},
		}
		if unsupported {
			result.Properties[domain.PropertyUnsupportedCurrency] = "true"
		}
		if !payment.CreatedAt.IsZero() {
			effective := payment.CreatedAt
			result.EffectiveDate = &effective
		}
		results = append(results, result)
	}

	r.log.Debug("reconciled payment",
		zap.String("org_id", orgID.String()),
		zap.String("payment_id", paymentID.String()),
		zap.Int("gateway_payments", len(payments)),
		zap.Int("matched", len(results)),
	)
	return results, nil
}

func (r *Reconciler) SearchPayments(context.Context, snowflake.ID, string) ([]domain.TransactionResult, error) {
	return nil, fmt.Errorf("%w: payment search", domain.ErrUnsupportedOperation)
}
