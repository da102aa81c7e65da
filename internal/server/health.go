package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GET /health
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TenantHealth checks that the tenant's gateway config resolves into a
// usable client. No gateway call is made.
// GET /health/tenant
func (s *Server) TenantHealth(c *gin.Context) {
	orgID := s.orgIDFromContext(c)

	gateway, err := s.gateways.Resolve(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := gin.H{"status": "ok", "org_id": orgID.String()}
	if env, ok := gateway.(interface{ Environment() string }); ok {
		resp["environment"] = env.Environment()
	}
	if ep, ok := gateway.(interface{ Endpoint() string }); ok {
		resp["endpoint"] = ep.Endpoint()
	}
	respondData(c, resp)
}

// GET /metrics
func (s *Server) Metrics(c *gin.Context) {
	gatherer := s.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}).ServeHTTP(c.Writer, c.Request)
}
