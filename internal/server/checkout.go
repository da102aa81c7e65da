package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
)

type createCheckoutRequest struct {
	AccountID          string                    `json:"account_id" binding:"required"`
	SuccessRedirectURL string                    `json:"success_redirect_url"`
	Description        string                    `json:"redirect_flow_description"`
	SessionToken       string                    `json:"session_token"`
	Customer           *domain.PrefilledCustomer `json:"customer"`
}

type checkoutResponse struct {
	AccountID      string `json:"account_id"`
	FormURL        string `json:"form_url"`
	RedirectFlowID string `json:"redirect_flow_id"`
}

// CreateCheckout starts a hosted mandate setup for an account.
// POST /api/checkout
func (s *Server) CreateCheckout(c *gin.Context) {
	orgID := s.orgIDFromContext(c)
	if orgID == 0 {
		AbortWithError(c, ErrOrgRequired)
		return
	}

	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	accountID, err := uuid.Parse(strings.TrimSpace(req.AccountID))
	if err != nil {
		AbortWithError(c, domain.ErrInvalidAccount)
		return
	}

	input := domain.InitiateRequest{
		OrgID:              orgID,
		AccountID:          accountID,
		Description:        valueOrDefault(req.Description, domain.DefaultFlowDescription),
		SessionToken:       valueOrDefault(req.SessionToken, domain.DefaultSessionToken),
		SuccessRedirectURL: valueOrDefault(req.SuccessRedirectURL, domain.DefaultSuccessRedirectURL),
	}
	if req.Customer != nil {
		input.Customer = *req.Customer
	}

	flow, err := s.provisioningSvc.Initiate(c.Request.Context(), input)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, checkoutResponse{
		AccountID:      accountID.String(),
		FormURL:        flow.RedirectURL,
		RedirectFlowID: flow.ID,
	})
}

func valueOrDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
