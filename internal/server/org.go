package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const contextOrgIDKey = "org_id"

// OrgRequired selects the tenant from the X-Org-ID header.
func (s *Server) OrgRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("X-Org-ID"))
		if raw == "" {
			AbortWithError(c, ErrOrgRequired)
			return
		}
		orgID, err := snowflake.ParseString(raw)
		if err != nil || orgID <= 0 {
			AbortWithError(c, invalidFieldError("X-Org-ID"))
			return
		}
		c.Set(contextOrgIDKey, orgID)
		c.Next()
	}
}

func (s *Server) orgIDFromContext(c *gin.Context) snowflake.ID {
	value, ok := c.Get(contextOrgIDKey)
	if !ok {
		return 0
	}
	orgID, _ := value.(snowflake.ID)
	return orgID
}
