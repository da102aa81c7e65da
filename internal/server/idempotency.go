package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
)

func idempotencyKeyFromHeader(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("Idempotency-Key"))
}

// withIdempotencyKey copies the Idempotency-Key header into the transaction
// properties unless the body already carries one.
func withIdempotencyKey(c *gin.Context, properties map[string]string) map[string]string {
	out := make(map[string]string, len(properties)+1)
	for k, v := range properties {
		out[k] = v
	}
	if strings.TrimSpace(out[domain.PropertyIdempotencyKey]) == "" {
		if key := idempotencyKeyFromHeader(c); key != "" {
			out[domain.PropertyIdempotencyKey] = key
		}
	}
	return out
}
