package server

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
	"github.com/shopspring/decimal"
)

type executeTransactionRequest struct {
	AccountID       string            `json:"account_id" binding:"required"`
	PaymentID       string            `json:"payment_id" binding:"required"`
	TransactionID   string            `json:"transaction_id" binding:"required"`
	PaymentMethodID string            `json:"payment_method_id"`
	Kind            string            `json:"kind" binding:"required"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        string            `json:"currency" binding:"required"`
	Properties      map[string]string `json:"properties"`
}

// ExecuteTransaction
// POST /api/transactions
func (s *Server) ExecuteTransaction(c *gin.Context) {
	orgID := s.orgIDFromContext(c)
	if orgID == 0 {
		AbortWithError(c, ErrOrgRequired)
		return
	}

	var req executeTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	kind, ok := domain.ParseTransactionKind(req.Kind)
	if !ok {
		AbortWithError(c, invalidFieldError("kind"))
		return
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		AbortWithError(c, domain.ErrInvalidAccount)
		return
	}
	paymentID, err := uuid.Parse(req.PaymentID)
	if err != nil {
		AbortWithError(c, invalidFieldError("payment_id"))
		return
	}
	transactionID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		AbortWithError(c, invalidFieldError("transaction_id"))
		return
	}
	var paymentMethodID uuid.UUID
	if req.PaymentMethodID != "" {
		paymentMethodID, err = uuid.Parse(req.PaymentMethodID)
		if err != nil {
			AbortWithError(c, invalidFieldError("payment_method_id"))
			return
		}
	}

	result, err := s.transactionSvc.Execute(c.Request.Context(), domain.TransactionRequest{
		OrgID:           orgID,
		AccountID:       accountID,
		PaymentID:       paymentID,
		TransactionID:   transactionID,
		PaymentMethodID: paymentMethodID,
		Kind:            kind,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Properties:      withIdempotencyKey(c, req.Properties),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, result)
}

// ListTransactions reports the gateway's view of a billing payment.
// GET /api/accounts/:id/payments/:payment_id/transactions
func (s *Server) ListTransactions(c *gin.Context) {
	orgID := s.orgIDFromContext(c)
	accountID, ok := accountIDParam(c)
	if !ok {
		return
	}
	paymentID, err := uuid.Parse(c.Param("payment_id"))
	if err != nil {
		AbortWithError(c, invalidFieldError("payment_id"))
		return
	}

	results, err := s.reconciliationSvc.ListTransactions(c.Request.Context(), orgID, accountID, paymentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if results == nil {
		results = []domain.TransactionResult{}
	}
	respondData(c, results)
}

// GET /api/payments/search
func (s *Server) SearchPayments(c *gin.Context) {
	results, err := s.reconciliationSvc.SearchPayments(c.Request.Context(), s.orgIDFromContext(c), c.Query("q"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, results)
}
