package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

type TransactionService interface {
	Execute(ctx context.Context, req TransactionRequest) (*TransactionResult, error)
	// ProcessNotification always fails with ErrUnsupportedOperation; gateway
	// events are not consumed.
	ProcessNotification(ctx context.Context, orgID snowflake.ID, payload []byte) error
}

type ProvisioningService interface {
	Initiate(ctx context.Context, req InitiateRequest) (*RedirectFlow, error)
	// Finalize completes the redirect flow and stores the resulting mandate id
	// on the account. It returns the mandate id.
	Finalize(ctx context.Context, req FinalizeRequest) (string, error)
	PaymentMethodDetail(ctx context.Context, orgID snowflake.ID, accountID, paymentMethodID uuid.UUID) (*PaymentMethodDetail, error)
	ListPaymentMethods(ctx context.Context, orgID snowflake.ID, accountID uuid.UUID) ([]PaymentMethodDetail, error)
	DeletePaymentMethod(ctx context.Context, orgID snowflake.ID, accountID, paymentMethodID uuid.UUID) error
	SetDefaultPaymentMethod(ctx context.Context, orgID snowflake.ID, accountID, paymentMethodID uuid.UUID) error
	ResetPaymentMethods(ctx context.Context, orgID snowflake.ID, accountID uuid.UUID) error
	SearchPaymentMethods(ctx context.Context, orgID snowflake.ID, query string) ([]PaymentMethodDetail, error)
}

type ReconciliationService interface {
	ListTransactions(ctx context.Context, orgID snowflake.ID, accountID, paymentID uuid.UUID) ([]TransactionResult, error)
	SearchPayments(ctx context.Context, orgID snowflake.ID, query string) ([]TransactionResult, error)
}

var (
	ErrInvalidProvider        = errors.New("invalid_provider")
	ErrProviderNotFound       = errors.New("provider_not_found")
	ErrInvalidConfig          = errors.New("invalid_config")
	ErrMissingCredentials     = errors.New("missing_credentials")
	ErrUnsupportedCurrency    = errors.New("unsupported_currency")
	ErrAmountNotRepresentable = errors.New("amount_not_representable")
	ErrUnsupportedOperation   = errors.New("unsupported_operation")
	ErrInvalidAccount         = errors.New("invalid_account")
	ErrInvalidRedirectFlow    = errors.New("invalid_redirect_flow")
	ErrRedirectFlowCompletion = errors.New("redirect_flow_completion_failed")
	ErrMandatePersistence     = errors.New("mandate_persistence_failed")
	ErrInvalidGatewayResponse = errors.New("invalid_gateway_response")
)

// IsConfigurationError reports errors that abort a call and must never be
// retried.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingCredentials) ||
		errors.Is(err, ErrUnsupportedCurrency) ||
		errors.Is(err, ErrAmountNotRepresentable)
}
