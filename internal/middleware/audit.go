package middleware

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rehasoft/rehab-center-api/internal/models"
	"github.com/rehasoft/rehab-center-api/internal/repository"
)

// ActorHeader identifies the staff member behind a request. Identity
// verification happens upstream of this service.
const ActorHeader = "X-Actor-ID"

// Audit creates a middleware that records audit logs after successful
// state-changing requests.
func Audit(repo *repository.AuditRepository, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		var actorID *string
		if actor := c.GetHeader(ActorHeader); actor != "" {
			actorID = &actor
		}
		var resourceID *string
		if id := c.Param("id"); id != "" {
			resourceID = &id
		}

		detail, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		_ = repo.Create(c.Request.Context(), &models.AuditLog{
			ActorID:    actorID,
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			Detail:     detail,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
		})
	}
}
