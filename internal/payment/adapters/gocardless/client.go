package gocardless

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gcsdk "github.com/gocardless/gocardless-pro-go/v4"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
)

const listPageSize = 500

// Adapter maps the gateway port onto the GoCardless Pro client of one
// tenant.
type Adapter struct {
	environment string
	endpoint    string
	client      *gcsdk.Service
}

func (a *Adapter) Environment() string {
	return a.environment
}

func (a *Adapter) Endpoint() string {
	return a.endpoint
}

func (a *Adapter) CreatePayment(ctx context.Context, params domain.CreatePaymentParams) (*domain.GatewayPayment, error) {
	if strings.TrimSpace(params.MandateID) == "" {
		return nil, errors.New("gocardless: mandate id is required")
	}

	create := gcsdk.PaymentCreateParams{
		Amount:   int(params.Amount),
		Currency: string(params.Currency),
		Links:    gcsdk.PaymentCreateParamsLinks{Mandate: params.MandateID},
		Metadata: toSDKMetadata(params.Metadata),
	}
	var opts []gcsdk.RequestOption
	if key := strings.TrimSpace(params.IdempotencyKey); key != "" {
		opts = append(opts, gcsdk.WithIdempotencyKey(key))
	}

	payment, err := a.client.Payments.Create(ctx, create, opts...)
	if err != nil {
		return nil, mapError("create payment", err)
	}
	if payment == nil || strings.TrimSpace(payment.Id) == "" {
		return nil, domain.ErrInvalidGatewayResponse
	}
	out := toGatewayPayment(*payment)
	return &out, nil
}

func (a *Adapter) GetMandate(ctx context.Context, mandateID string) (*domain.Mandate, error) {
	mandateID = strings.TrimSpace(mandateID)
	if mandateID == "" {
		return nil, errors.New("gocardless: mandate id is required")
	}

	mandate, err := a.client.Mandates.Get(ctx, mandateID)
	if err != nil {
		return nil, mapError("get mandate", err)
	}
	if mandate == nil || mandate.Links == nil || strings.TrimSpace(mandate.Links.Customer) == "" {
		return nil, domain.ErrInvalidGatewayResponse
	}
	return &domain.Mandate{
		ID:         mandate.Id,
		Status:     mandate.Status,
		CustomerID: mandate.Links.Customer,
	}, nil
}

// ListPayments drains every cursor page. A page repeating an already seen
// payment means the cursor is not advancing.
func (a *Adapter) ListPayments(ctx context.Context, customerID string) ([]domain.GatewayPayment, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, errors.New("gocardless: customer id is required")
	}

	var (
		payments []domain.GatewayPayment
		seen     = map[string]struct{}{}
	)
	iter := a.client.Payments.All(ctx, gcsdk.PaymentListParams{
		Customer: customerID,
		Limit:    listPageSize,
	})
	for iter.Next() {
		page, err := iter.Value(ctx)
		if err != nil {
			return nil, mapError("list payments", err)
		}
		if page == nil || len(page.Payments) == 0 {
			break
		}
		for _, item := range page.Payments {
			if _, dup := seen[item.Id]; dup {
				return nil, fmt.Errorf("%w: payment %s returned twice while paging", domain.ErrInvalidGatewayResponse, item.Id)
			}
			seen[item.Id] = struct{}{}
			payments = append(payments, toGatewayPayment(item))
		}
	}
	return payments, nil
}

func (a *Adapter) CreateRedirectFlow(ctx context.Context, params domain.CreateRedirectFlowParams) (*domain.RedirectFlow, error) {
	create := gcsdk.RedirectFlowCreateParams{
		Description:        params.Description,
		SessionToken:       params.SessionToken,
		SuccessRedirectUrl: params.SuccessRedirectURL,
	}
	if c := params.PrefilledCustomer; c != nil && !c.IsEmpty() {
		create.PrefilledCustomer = &gcsdk.RedirectFlowCreateParamsPrefilledCustomer{
			GivenName:    c.GivenName,
			FamilyName:   c.FamilyName,
			Email:        c.Email,
			AddressLine1: c.AddressLine1,
			City:         c.City,
			PostalCode:   c.PostalCode,
		}
	}

	flow, err := a.client.RedirectFlows.Create(ctx, create)
	if err != nil {
		return nil, mapError("create redirect flow", err)
	}
	if flow == nil || strings.TrimSpace(flow.Id) == "" || strings.TrimSpace(flow.RedirectUrl) == "" {
		return nil, domain.ErrInvalidGatewayResponse
	}
	out := toRedirectFlow(*flow)
	return &out, nil
}

func (a *Adapter) CompleteRedirectFlow(ctx context.Context, redirectFlowID, sessionToken string) (*domain.RedirectFlow, error) {
	redirectFlowID = strings.TrimSpace(redirectFlowID)
	if redirectFlowID == "" {
		return nil, domain.ErrInvalidRedirectFlow
	}

	flow, err := a.client.RedirectFlows.Complete(ctx, redirectFlowID, gcsdk.RedirectFlowCompleteParams{
		SessionToken: sessionToken,
	})
	if err != nil {
		return nil, mapError("complete redirect flow", err)
	}
	if flow == nil {
		return nil, domain.ErrInvalidGatewayResponse
	}
	out := toRedirectFlow(*flow)
	return &out, nil
}

// mapError turns API rejections into *domain.GatewayError. Anything else is
// a transport failure and is returned wrapped.
func mapError(op string, err error) error {
	var apiErr *gcsdk.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("gocardless %s: %w", op, err)
	}

	gatewayErr := &domain.GatewayError{
		StatusCode: apiErr.Code,
		Code:       strconv.Itoa(apiErr.Code),
		Type:       apiErr.Type,
		Message:    apiErr.Message,
		RequestID:  apiErr.RequestID,
	}
	if len(apiErr.Errors) > 0 {
		gatewayErr.Reason = apiErr.Errors[0].Message
	}
	return gatewayErr
}

func toSDKMetadata(in map[string]string) map[string]interface{} {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func fromSDKMetadata(in map[string]interface{}) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch cast := v.(type) {
		case string:
			out[k] = cast
		case nil:
		default:
			out[k] = fmt.Sprint(cast)
		}
	}
	return out
}

func parseTimestamp(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func toGatewayPayment(item gcsdk.Payment) domain.GatewayPayment {
	return domain.GatewayPayment{
		ID:        item.Id,
		Status:    domain.GatewayPaymentStatus(item.Status),
		Amount:    int64(item.Amount),
		Currency:  domain.GatewayCurrency(strings.ToUpper(item.Currency)),
		CreatedAt: parseTimestamp(item.CreatedAt),
		Metadata:  fromSDKMetadata(item.Metadata),
	}
}

func toRedirectFlow(item gcsdk.RedirectFlow) domain.RedirectFlow {
	flow := domain.RedirectFlow{
		ID:                 item.Id,
		RedirectURL:        item.RedirectUrl,
		SessionToken:       item.SessionToken,
		Description:        item.Description,
		SuccessRedirectURL: item.SuccessRedirectUrl,
		CreatedAt:          parseTimestamp(item.CreatedAt),
	}
	if item.Links != nil {
		flow.MandateID = item.Links.Mandate
		flow.CustomerID = item.Links.Customer
	}
	return flow
}
