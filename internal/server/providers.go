package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type upsertProviderConfigRequest struct {
	Config map[string]any `json:"config" binding:"required"`
}

// UpsertProviderConfig validates and stores sealed gateway credentials for
// the tenant. The stored config is never echoed back.
// PUT /api/providers/:provider/config
func (s *Server) UpsertProviderConfig(c *gin.Context) {
	orgID := s.orgIDFromContext(c)
	if orgID == 0 {
		AbortWithError(c, ErrOrgRequired)
		return
	}

	var req upsertProviderConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.providerConfigSvc.UpsertProviderConfig(c.Request.Context(), orgID, c.Param("provider"), req.Config); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
