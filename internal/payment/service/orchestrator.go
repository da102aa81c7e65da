package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/directdebit/internal/clock"
	"github.com/railzwaylabs/directdebit/internal/payment/currency"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type OrchestratorParams struct {
	fx.In

	Locator  *MandateLocator
	Gateways domain.GatewayResolver
	Clock    clock.Clock
	Log      *zap.Logger
	Metrics  *Metrics     `optional:"true"`
	Tracer   trace.Tracer `optional:"true"`
}

// Orchestrator executes billing transactions against the direct-debit
// gateway. Only PURCHASE reaches the gateway; the other kinds complete as
// CANCELED without side effects.
type Orchestrator struct {
	locator  *MandateLocator
	gateways domain.GatewayResolver
	clock    clock.Clock
	log      *zap.Logger
	metrics  *Metrics
	tracer   trace.Tracer
}

func NewOrchestrator(p OrchestratorParams) *Orchestrator {
	tracer := p.Tracer
	if tracer == nil {
		tracer = otel.Tracer("directdebit/payment")
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Orchestrator{
		locator:  p.Locator,
		gateways: p.Gateways,
		clock:    clk,
		log:      p.Log.Named("payment.orchestrator"),
		metrics:  p.Metrics,
		tracer:   tracer,
	}
}

func (o *Orchestrator) Execute(ctx context.Context, req domain.TransactionRequest) (*domain.TransactionResult, error) {
	ctx, span := o.tracer.Start(ctx, "payment.Execute", trace.WithAttributes(
		attribute.String("org_id", req.OrgID.String()),
		attribute.String("account_id", req.AccountID.String()),
		attribute.String("kind", string(req.Kind)),
	))
	defer span.End()

	var (
		result *domain.TransactionResult
		err    error
	)
	switch req.Kind {
	case domain.TransactionKindPurchase:
		result, err = o.purchase(ctx, req)
	case domain.TransactionKindAuthorize,
		domain.TransactionKindCapture,
		domain.TransactionKindVoid,
		domain.TransactionKindCredit,
		domain.TransactionKindRefund:
		result = o.unsupported(ctx, req)
	default:
		err = fmt.Errorf("%w: transaction kind %q", domain.ErrUnsupportedOperation, req.Kind)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("status", string(result.Status)))
	o.metrics.observeTransaction(req.Kind, result.Status)
	return result, nil
}

func (o *Orchestrator) purchase(ctx context.Context, req domain.TransactionRequest) (*domain.TransactionResult, error) {
	log := o.log.With(
		zap.String("org_id", req.OrgID.String()),
		zap.String("account_id", req.AccountID.String()),
		zap.String("payment_id", req.PaymentID.String()),
		zap.String("transaction_id", req.TransactionID.String()),
	)

	mandateID, ok, err := o.locator.ResolveMandate(ctx, req.OrgID, req.AccountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Info("no mandate on account; purchase canceled")
		return o.newResult(ctx, req, domain.TransactionStatusCanceled), nil
	}

	gatewayCurrency, err := currency.ToGatewayCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	amount, err := currency.ToMinorUnits(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	idempotencyKey := req.Property(domain.PropertyIdempotencyKey)
	if idempotencyKey == "" {
		log.Warn("purchase without idempotency key; retries may double charge")
	}

	gateway, err := o.gateways.Resolve(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}

	payment, err := gateway.CreatePayment(ctx, domain.CreatePaymentParams{
		Amount:         amount,
		Currency:       gatewayCurrency,
		MandateID:      mandateID,
		IdempotencyKey: idempotencyKey,
		Metadata: map[string]string{
			domain.MetadataPaymentID:     req.PaymentID.String(),
			domain.MetadataTransactionID: req.TransactionID.String(),
		},
	})
	o.metrics.observeGatewayCall("create_payment", err)
	if err != nil {
		var gatewayErr *domain.GatewayError
		if !errors.As(err, &gatewayErr) {
			return nil, err
		}
		log.Warn("gateway rejected payment",
			zap.String("code", gatewayErr.Code),
			zap.String("type", gatewayErr.Type),
			zap.String("request_id", gatewayErr.RequestID),
			zap.String("message", gatewayErr.Message),
		)
		result := o.newResult(ctx, req, domain.TransactionStatusError)
		result.GatewayError = gatewayErr.Message
		result.GatewayErrorCode = gatewayErr.Code
		return result, nil
	}

	log.Info("payment created",
		zap.String("gateway_payment_id", payment.ID),
		zap.String("gateway_status", string(payment.Status)),
	)

	result := o.newResult(ctx, req, domain.TransactionStatusProcessed)
	result.ReferenceID = payment.ID
	effective := payment.CreatedAt
	if effective.IsZero() {
		effective = result.CreatedDate
	}
	result.EffectiveDate = &effective
	result.Properties[domain.PropertyPaymentID] = payment.ID
	if payment.Status != "" {
		result.Properties[domain.PropertyGatewayStatus] = string(payment.Status)
	}
	return result, nil
}

func (o *Orchestrator) unsupported(ctx context.Context, req domain.TransactionRequest) *domain.TransactionResult {
	o.log.Debug("transaction kind not supported by direct debit",
		zap.String("kind", string(req.Kind)),
		zap.String("payment_id", req.PaymentID.String()),
	)
	result := o.newResult(ctx, req, domain.TransactionStatusCanceled)
	result.Properties[domain.PropertyUnsupported] = "true"
	return result
}

func (o *Orchestrator) newResult(ctx context.Context, req domain.TransactionRequest, status domain.TransactionStatus) *domain.TransactionResult {
	return &domain.TransactionResult{
		PaymentID:     req.PaymentID,
		TransactionID: req.TransactionID,
		Kind:          req.Kind,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Status:        status,
		CreatedDate:   o.clock.Now(ctx),
		Properties:    map[string]string{},
	}
}

func (o *Orchestrator) ProcessNotification(ctx context.Context, orgID snowflake.ID, payload []byte) error {
	o.log.Debug("ignoring gateway notification",
		zap.String("org_id", orgID.String()),
		zap.Int("bytes", len(payload)),
	)
	return fmt.Errorf("%w: notifications", domain.ErrUnsupportedOperation)
}
