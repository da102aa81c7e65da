package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	annotationdomain "github.com/railzwaylabs/directdebit/internal/annotation/domain"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
	providerdomain "github.com/railzwaylabs/directdebit/internal/providers/payment/domain"
)

type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return e.Message }

var (
	ErrOrgRequired = &APIError{Status: http.StatusUnauthorized, Code: "org_required", Message: "X-Org-ID header is required"}
	ErrNotFound    = &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}
)

func invalidRequestError() *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid request"}
}

func invalidFieldError(field string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid " + field}
}

// AbortWithError maps err onto an HTTP status and aborts the request with a
// JSON error body.
func AbortWithError(c *gin.Context, err error) {
	apiErr := toAPIError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
}

func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var gatewayErr *domain.GatewayError
	switch {
	case errors.Is(err, domain.ErrInvalidAccount),
		errors.Is(err, domain.ErrInvalidRedirectFlow),
		errors.Is(err, domain.ErrInvalidProvider),
		errors.Is(err, annotationdomain.ErrInvalidAnnotation):
		return &APIError{Status: http.StatusBadRequest, Code: errorCode(err), Message: err.Error()}
	case errors.Is(err, domain.ErrUnsupportedCurrency),
		errors.Is(err, domain.ErrAmountNotRepresentable):
		return &APIError{Status: http.StatusUnprocessableEntity, Code: errorCode(err), Message: err.Error()}
	case errors.Is(err, domain.ErrProviderNotFound),
		errors.Is(err, providerdomain.ErrConfigNotFound):
		return &APIError{Status: http.StatusNotFound, Code: errorCode(err), Message: err.Error()}
	case errors.Is(err, domain.ErrUnsupportedOperation):
		return &APIError{Status: http.StatusNotImplemented, Code: domain.ErrUnsupportedOperation.Error(), Message: err.Error()}
	case errors.Is(err, domain.ErrRedirectFlowCompletion),
		errors.Is(err, domain.ErrInvalidGatewayResponse),
		errors.As(err, &gatewayErr):
		return &APIError{Status: http.StatusBadGateway, Code: errorCode(err), Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidConfig),
		errors.Is(err, domain.ErrMissingCredentials),
		errors.Is(err, providerdomain.ErrEncryptionKeyMissing),
		errors.Is(err, domain.ErrMandatePersistence):
		return &APIError{Status: http.StatusInternalServerError, Code: errorCode(err), Message: err.Error()}
	default:
		return &APIError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "internal error"}
	}
}

var knownErrors = []error{
	domain.ErrInvalidAccount,
	domain.ErrInvalidRedirectFlow,
	domain.ErrInvalidProvider,
	domain.ErrProviderNotFound,
	domain.ErrUnsupportedCurrency,
	domain.ErrAmountNotRepresentable,
	domain.ErrRedirectFlowCompletion,
	domain.ErrInvalidGatewayResponse,
	domain.ErrInvalidConfig,
	domain.ErrMissingCredentials,
	domain.ErrMandatePersistence,
	annotationdomain.ErrInvalidAnnotation,
	providerdomain.ErrConfigNotFound,
	providerdomain.ErrEncryptionKeyMissing,
}

func errorCode(err error) string {
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "gateway_error"
}
