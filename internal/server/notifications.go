package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxNotificationBytes = 1 << 20

// ProcessNotification accepts gateway event deliveries. Events are not
// consumed yet, so the service answers with unsupported_operation.
// POST /api/notifications
func (s *Server) ProcessNotification(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxNotificationBytes))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.transactionSvc.ProcessNotification(c.Request.Context(), s.orgIDFromContext(c), payload); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
