package middleware

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/SscSPs/estate_ledger/internal/utils/credentials"
	"github.com/gin-gonic/gin"
)

// TriggerKeyHeader carries the shared secret of the scheduled billing trigger.
const TriggerKeyHeader = "X-Trigger-Key"

// TriggerKeyAuth authenticates the out-of-band scheduler by comparing the header
// against a bcrypt hash. On success the request runs as domain.SystemActor.
func TriggerKeyAuth(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromContext(c)
		if keyHash == "" {
			logger.Error("Billing trigger called but no trigger key hash is configured")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Trigger endpoint is not configured", "fatal": true})
			return
		}
		key := c.GetHeader(TriggerKeyHeader)
		if !credentials.CheckTriggerKey(key, keyHash) {
			logger.Warn("Invalid trigger key", slog.String("ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid trigger key"})
			return
		}
		c.Set(string(actorKey), domain.SystemActor)
		c.Request = c.Request.WithContext(WithActor(c.Request.Context(), domain.SystemActor))
		c.Next()
	}
}
