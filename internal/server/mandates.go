package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
)

type finalizeMandateRequest struct {
	RedirectFlowID string `json:"redirect_flow_id" binding:"required"`
	SessionToken   string `json:"session_token"`
}

// FinalizeMandate completes a redirect flow once the customer returns from
// the hosted page.
// POST /api/accounts/:id/mandates
func (s *Server) FinalizeMandate(c *gin.Context) {
	orgID := s.orgIDFromContext(c)
	if orgID == 0 {
		AbortWithError(c, ErrOrgRequired)
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		AbortWithError(c, domain.ErrInvalidAccount)
		return
	}

	var req finalizeMandateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	mandateID, err := s.provisioningSvc.Finalize(c.Request.Context(), domain.FinalizeRequest{
		OrgID:          orgID,
		AccountID:      accountID,
		RedirectFlowID: strings.TrimSpace(req.RedirectFlowID),
		SessionToken:   valueOrDefault(req.SessionToken, domain.DefaultSessionToken),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, gin.H{
		"account_id": accountID.String(),
		"mandate_id": mandateID,
	})
}
