package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	annotationdomain "github.com/railzwaylabs/directdebit/internal/annotation/domain"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ProvisioningParams struct {
	fx.In

	Locator  *MandateLocator
	Store    annotationdomain.Store
	Gateways domain.GatewayResolver
	Log      *zap.Logger
	Metrics  *Metrics `optional:"true"`
}

// Provisioning runs the hosted mandate setup: a redirect flow is created,
// the customer authorizes it on the gateway's page, and completing the flow
// stores the resulting mandate on the account.
type Provisioning struct {
	locator  *MandateLocator
	store    annotationdomain.Store
	gateways domain.GatewayResolver
	log      *zap.Logger
	metrics  *Metrics
}

func NewProvisioning(p ProvisioningParams) *Provisioning {
	return &Provisioning{
		locator:  p.Locator,
		store:    p.Store,
		gateways: p.Gateways,
		log:      p.Log.Named("payment.provisioning"),
		metrics:  p.Metrics,
	}
}

func (s *Provisioning) Initiate(ctx context.Context, req domain.InitiateRequest) (*domain.RedirectFlow, error) {
	if req.AccountID == uuid.Nil {
		return nil, domain.ErrInvalidAccount
	}
	if strings.TrimSpace(req.SessionToken) == "" || strings.TrimSpace(req.SuccessRedirectURL) == "" {
		return nil, domain.ErrInvalidRedirectFlow
	}

	gateway, err := s.gateways.Resolve(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}

	params := domain.CreateRedirectFlowParams{
		Description:        req.Description,
		SessionToken:       req.SessionToken,
		SuccessRedirectURL: req.SuccessRedirectURL,
	}
	if !req.Customer.IsEmpty() {
		customer := req.Customer
		params.PrefilledCustomer = &customer
	}

	flow, err := gateway.CreateRedirectFlow(ctx, params)
	s.metrics.observeGatewayCall("create_redirect_flow", err)
	if err != nil {
		return nil, err
	}

	s.log.Info("redirect flow created",
		zap.String("org_id", req.OrgID.String()),
		zap.String("account_id", req.AccountID.String()),
		zap.String("redirect_flow_id", flow.ID),
	)
	return flow, nil
}

func (s *Provisioning) Finalize(ctx context.Context, req domain.FinalizeRequest) (string, error) {
	if req.AccountID == uuid.Nil {
		return "", domain.ErrInvalidAccount
	}
	if strings.TrimSpace(req.RedirectFlowID) == "" {
		return "", domain.ErrInvalidRedirectFlow
	}

	gateway, err := s.gateways.Resolve(ctx, req.OrgID)
	if err != nil {
		return "", err
	}

	flow, err := gateway.CompleteRedirectFlow(ctx, req.RedirectFlowID, req.SessionToken)
	s.metrics.observeGatewayCall("complete_redirect_flow", err)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRedirectFlowCompletion, err)
	}
	mandateID := strings.TrimSpace(flow.MandateID)
	if mandateID == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrRedirectFlowCompletion, domain.ErrInvalidGatewayResponse)
	}

	log := s.log.With(
		zap.String("org_id", req.OrgID.String()),
		zap.String("account_id", req.AccountID.String()),
		zap.String("redirect_flow_id", req.RedirectFlowID),
		zap.String("mandate_id", mandateID),
	)

	if existing, ok, err := s.locator.ResolveMandate(ctx, req.OrgID, req.AccountID); err == nil && ok {
		log.Warn("account already has a mandate; the existing one stays in use", zap.String("existing_mandate_id", existing))
	}

	err = s.store.Add(ctx, &annotationdomain.Annotation{
		OrgID:     req.OrgID,
		AccountID: req.AccountID,
		Tag:       domain.MandateAnnotationTag,
		Value:     mandateID,
	})
	if err != nil {
		log.Error("mandate created on gateway but not stored; mandate is orphaned", zap.Error(err))
		return "", fmt.Errorf("%w: %w", domain.ErrMandatePersistence, err)
	}

	log.Info("mandate stored", zap.String("customer_id", flow.CustomerID))
	return mandateID, nil
}

func (s *Provisioning) PaymentMethodDetail(ctx context.Context, orgID snowflake.ID, accountID, paymentMethodID uuid.UUID) (*domain.PaymentMethodDetail, error) {
	mandateID, _, err := s.locator.ResolveMandate(ctx, orgID, accountID)
	if err != nil {
		return nil, err
	}
	return &domain.PaymentMethodDetail{
		AccountID:       accountID,
		PaymentMethodID: paymentMethodID,
		ExternalKey:     mandateID,
		IsDefault:       false,
	}, nil
}

func (s *Provisioning) ListPaymentMethods(context.Context, snowflake.ID, uuid.UUID) ([]domain.PaymentMethodDetail, error) {
	return []domain.PaymentMethodDetail{}, nil
}

func (s *Provisioning) DeletePaymentMethod(context.Context, snowflake.ID, uuid.UUID, uuid.UUID) error {
	return nil
}

func (s *Provisioning) SetDefaultPaymentMethod(context.Context, snowflake.ID, uuid.UUID, uuid.UUID) error {
	return nil
}

func (s *Provisioning) ResetPaymentMethods(context.Context, snowflake.ID, uuid.UUID) error {
	return nil
}

func (s *Provisioning) SearchPaymentMethods(context.Context, snowflake.ID, string) ([]domain.PaymentMethodDetail, error) {
	return nil, fmt.Errorf("%w: payment method search", domain.ErrUnsupportedOperation)
}
