package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MandateAnnotationTag is the account annotation holding the mandate id.
const MandateAnnotationTag = "GOCARDLESS_MANDATE_ID"

// Property keys read from requests and written to results.
const (
	PropertyIdempotencyKey  = "idempotencykey"
	PropertyPaymentID       = "paymentId"
	PropertyMandateID       = "mandateId"
	PropertyCustomerID      = "customerId"
	PropertyGatewayStatus   = "gocardlessstatus"
	PropertyUnsupported     = "unsupported"
	PropertyRedirectFlowID  = "redirect_flow_id"
	PropertySessionToken    = "session_token"
	PropertySuccessURL      = "success_redirect_url"
	PropertyFlowDescription = "redirect_flow_description"

	// Set when the gateway reports a currency with no known exponent. The
	// result amount is then the raw minor-unit count.
	PropertyUnsupportedCurrency = "unsupportedcurrency"
)

// Hosted checkout defaults used when the caller leaves a field empty.
const (
	DefaultSuccessRedirectURL = "https://developer.gocardless.com/example-redirect-uri/"
	DefaultFlowDescription    = "Kill Bill payment"
	DefaultSessionToken       = "killbill_token"
)

type TransactionKind string

const (
	TransactionKindAuthorize TransactionKind = "AUTHORIZE"
	TransactionKindCapture   TransactionKind = "CAPTURE"
	TransactionKindPurchase  TransactionKind = "PURCHASE"
	TransactionKindVoid      TransactionKind = "VOID"
	TransactionKindCredit    TransactionKind = "CREDIT"
	TransactionKindRefund    TransactionKind = "REFUND"
)

func ParseTransactionKind(raw string) (TransactionKind, bool) {
	kind := TransactionKind(strings.ToUpper(strings.TrimSpace(raw)))
	switch kind {
	case TransactionKindAuthorize, TransactionKindCapture, TransactionKindPurchase,
		TransactionKindVoid, TransactionKindCredit, TransactionKindRefund:
		return kind, true
	}
	return "", false
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusProcessed TransactionStatus = "PROCESSED"
	TransactionStatusError     TransactionStatus = "ERROR"
	TransactionStatusCanceled  TransactionStatus = "CANCELED"
	TransactionStatusUndefined TransactionStatus = "UNDEFINED"
)

type TransactionRequest struct {
	OrgID           snowflake.ID
	AccountID       uuid.UUID
	PaymentID       uuid.UUID
	TransactionID   uuid.UUID
	PaymentMethodID uuid.UUID
	Kind            TransactionKind
	Amount          decimal.Decimal
	Currency        string
	Properties      map[string]string
}

func (r TransactionRequest) Property(key string) string {
	if r.Properties == nil {
		return ""
	}
	return strings.TrimSpace(r.Properties[key])
}

// TransactionResult is the billing-side record of one transaction attempt.
// ReferenceID is empty and EffectiveDate nil when no gateway payment exists.
type TransactionResult struct {
	PaymentID        uuid.UUID         `json:"payment_id"`
	TransactionID    uuid.UUID         `json:"transaction_id"`
	Kind             TransactionKind   `json:"kind"`
	Amount           decimal.Decimal   `json:"amount"`
	Currency         string            `json:"currency,omitempty"`
	Status           TransactionStatus `json:"status"`
	GatewayError     string            `json:"gateway_error,omitempty"`
	GatewayErrorCode string            `json:"gateway_error_code,omitempty"`
	ReferenceID      string            `json:"reference_id,omitempty"`
	CreatedDate      time.Time         `json:"created_date"`
	EffectiveDate    *time.Time        `json:"effective_date,omitempty"`
	Properties       map[string]string `json:"properties,omitempty"`
}

type InitiateRequest struct {
	OrgID              snowflake.ID
	AccountID          uuid.UUID
	Description        string
	SessionToken       string
	SuccessRedirectURL string
	Customer           PrefilledCustomer
}

type FinalizeRequest struct {
	OrgID          snowflake.ID
	AccountID      uuid.UUID
	RedirectFlowID string
	SessionToken   string
}

// PaymentMethodDetail describes the direct-debit payment method of an
// account. ExternalKey carries the mandate id once provisioned.
type PaymentMethodDetail struct {
	AccountID       uuid.UUID `json:"account_id"`
	PaymentMethodID uuid.UUID `json:"payment_method_id"`
	ExternalKey     string    `json:"external_key,omitempty"`
	IsDefault       bool      `json:"is_default"`
}
