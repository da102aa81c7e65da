package domain

import (
	"fmt"
	"strings"
	"time"
)

// GatewayCurrency is a currency code accepted by the gateway.
type GatewayCurrency string

const (
	GatewayCurrencyUSD GatewayCurrency = "USD"
	GatewayCurrencyAUD GatewayCurrency = "AUD"
	GatewayCurrencyCAD GatewayCurrency = "CAD"
	GatewayCurrencyDKK GatewayCurrency = "DKK"
	GatewayCurrencyEUR GatewayCurrency = "EUR"
	GatewayCurrencyGBP GatewayCurrency = "GBP"
	GatewayCurrencyNZD GatewayCurrency = "NZD"
	GatewayCurrencySEK GatewayCurrency = "SEK"
)

// Metadata keys written on every gateway payment and read back during
// reconciliation. They are the only correlation between the two systems.
const (
	MetadataPaymentID     = "kbPaymentId"
	MetadataTransactionID = "kbTransactionId"
)

type CreatePaymentParams struct {
	Amount         int64
	Currency       GatewayCurrency
	MandateID      string
	IdempotencyKey string
	Metadata       map[string]string
}

type GatewayPayment struct {
	ID        string
	Status    GatewayPaymentStatus
	Amount    int64
	Currency  GatewayCurrency
	CreatedAt time.Time
	Metadata  map[string]string
}

// MatchesPayment reports whether the payment was created for the given
// billing payment id.
func (p GatewayPayment) MatchesPayment(paymentID string) bool {
	if paymentID == "" || p.Metadata == nil {
		return false
	}
	value, ok := p.Metadata[MetadataPaymentID]
	if !ok {
		return false
	}
	return value == paymentID
}

func (p GatewayPayment) TransactionRef() string {
	if p.Metadata == nil {
		return ""
	}
	return strings.TrimSpace(p.Metadata[MetadataTransactionID])
}

type Mandate struct {
	ID         string
	Status     string
	CustomerID string
}

type PrefilledCustomer struct {
	GivenName    string `json:"given_name,omitempty"`
	FamilyName   string `json:"family_name,omitempty"`
	Email        string `json:"email,omitempty"`
	AddressLine1 string `json:"address_line1,omitempty"`
	City         string `json:"city,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
}

func (c PrefilledCustomer) IsEmpty() bool {
	return c == PrefilledCustomer{}
}

type CreateRedirectFlowParams struct {
	Description        string
	SessionToken       string
	SuccessRedirectURL string
	PrefilledCustomer  *PrefilledCustomer
}

// RedirectFlow is a hosted mandate-setup session. MandateID and CustomerID
// are only populated once the flow has been completed.
type RedirectFlow struct {
	ID                 string
	RedirectURL        string
	SessionToken       string
	Description        string
	SuccessRedirectURL string
	MandateID          string
	CustomerID         string
	CreatedAt          time.Time
}

// GatewayError is an explicit rejection returned by the gateway API.
type GatewayError struct {
	StatusCode int
	Code       string
	Type       string
	Message    string
	Reason     string
	RequestID  string
}

func (e *GatewayError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("gateway error %s (%s): %s [%s]", e.Code, e.Type, e.Message, e.Reason)
	}
	return fmt.Sprintf("gateway error %s (%s): %s", e.Code, e.Type, e.Message)
}
