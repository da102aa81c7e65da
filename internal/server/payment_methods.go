package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
)

// GET /api/accounts/:id/payment-methods
func (s *Server) ListPaymentMethods(c *gin.Context) {
	orgID := s.orgIDFromContext(c)
	accountID, ok := accountIDParam(c)
	if !ok {
		return
	}

	methods, err := s.provisioningSvc.ListPaymentMethods(c.Request.Context(), orgID, accountID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if methods == nil {
		methods = []domain.PaymentMethodDetail{}
	}
	respondData(c, methods)
}

// GET /api/accounts/:id/payment-methods/:pm_id
func (s *Server) GetPaymentMethod(c *gin.Context) {
	orgID := s.orgIDFromContext(c)
	accountID, pmID, ok := paymentMethodParams(c)
	if !ok {
		return
	}

	detail, err := s.provisioningSvc.PaymentMethodDetail(c.Request.Context(), orgID, accountID, pmID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, detail)
}

// DELETE /api/accounts/:id/payment-methods/:pm_id
func (s *Server) DeletePaymentMethod(c *gin.Context) {
	orgID := s.orgIDFromContext(c)
	accountID, pmID, ok := paymentMethodParams(c)
	if !ok {
		return
	}

	if err := s.provisioningSvc.DeletePaymentMethod(c.Request.Context(), orgID, accountID, pmID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/accounts/:id/payment-methods/:pm_id/default
func (s *Server) SetDefaultPaymentMethod(c *gin.Context) {
	orgID := s.orgIDFromContext(c)
	accountID, pmID, ok := paymentMethodParams(c)
	if !ok {
		return
	}

	if err := s.provisioningSvc.SetDefaultPaymentMethod(c.Request.Context(), orgID, accountID, pmID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /api/accounts/:id/payment-methods
func (s *Server) ResetPaymentMethods(c *gin.Context) {
	orgID := s.orgIDFromContext(c)
	accountID, ok := accountIDParam(c)
	if !ok {
		return
	}

	if err := s.provisioningSvc.ResetPaymentMethods(c.Request.Context(), orgID, accountID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/payment-methods/search
func (s *Server) SearchPaymentMethods(c *gin.Context) {
	methods, err := s.provisioningSvc.SearchPaymentMethods(c.Request.Context(), s.orgIDFromContext(c), c.Query("q"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, methods)
}

func accountIDParam(c *gin.Context) (uuid.UUID, bool) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		AbortWithError(c, domain.ErrInvalidAccount)
		return uuid.Nil, false
	}
	return accountID, true
}

func paymentMethodParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	accountID, ok := accountIDParam(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	pmID, err := uuid.Parse(c.Param("pm_id"))
	if err != nil {
		AbortWithError(c, invalidFieldError("payment method id"))
		return uuid.Nil, uuid.Nil, false
	}
	return accountID, pmID, true
}
