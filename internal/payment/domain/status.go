package domain

// GatewayPaymentStatus is the asynchronous settlement state of a gateway
// payment.
type GatewayPaymentStatus string

const (
	GatewayStatusPendingCustomerApproval GatewayPaymentStatus = "pending_customer_approval"
	GatewayStatusPendingSubmission       GatewayPaymentStatus = "pending_submission"
	GatewayStatusSubmitted               GatewayPaymentStatus = "submitted"
	GatewayStatusConfirmed               GatewayPaymentStatus = "confirmed"
	GatewayStatusPaidOut                 GatewayPaymentStatus = "paid_out"
	GatewayStatusCancelled               GatewayPaymentStatus = "cancelled"
	GatewayStatusCustomerApprovalDenied  GatewayPaymentStatus = "customer_approval_denied"
	GatewayStatusFailed                  GatewayPaymentStatus = "failed"
	GatewayStatusChargedBack             GatewayPaymentStatus = "charged_back"
)

// GatewayPaymentStatuses lists every status the gateway documents.
var GatewayPaymentStatuses = []GatewayPaymentStatus{
	GatewayStatusPendingCustomerApproval,
	GatewayStatusPendingSubmission,
	GatewayStatusSubmitted,
	GatewayStatusConfirmed,
	GatewayStatusPaidOut,
	GatewayStatusCancelled,
	GatewayStatusCustomerApprovalDenied,
	GatewayStatusFailed,
	GatewayStatusChargedBack,
}

// BillingStatus maps the gateway status onto the billing status model.
// Unknown values map to UNDEFINED.
//
// cancelled and charged_back are product-policy decisions: a chargeback does
// not un-book the original charge, and a cancelled payment was never attempted.
func (s GatewayPaymentStatus) BillingStatus() TransactionStatus {
	switch s {
	case GatewayStatusPendingCustomerApproval,
		GatewayStatusPendingSubmission,
		GatewayStatusSubmitted:
		return TransactionStatusPending
	case GatewayStatusConfirmed, GatewayStatusPaidOut:
		return TransactionStatusProcessed
	case GatewayStatusCancelled, GatewayStatusCustomerApprovalDenied:
		return TransactionStatusCanceled
	case GatewayStatusFailed:
		return TransactionStatusError
	case GatewayStatusChargedBack:
		return TransactionStatusProcessed
	default:
		return TransactionStatusUndefined
	}
}
