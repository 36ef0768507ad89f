package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/fileproxy/component"
)

// HealthChecker returns health for the registered components.
type HealthChecker func(ctx context.Context) []component.Health

// HealthResponse is the /health body.
type HealthResponse struct {
	Status      string             `json:"status"`
	Service     string             `json:"service"`
	AuthEnabled bool               `json:"auth_enabled"`
	Timestamp   string             `json:"timestamp"`
	Components  []component.Health `json:"components"`
}

// Health reports aggregated component health. Any unhealthy component
// turns the response into 503.
func Health(serviceName string, authEnabled bool, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Status:      string(component.StatusHealthy),
			Service:     serviceName,
			AuthEnabled: authEnabled,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			Components:  []component.Health{},
		}
		if checker != nil {
			resp.Components = checker(c.Request.Context())
		}
		for _, h := range resp.Components {
			switch h.Status {
			case component.StatusUnhealthy:
				resp.Status = string(component.StatusUnhealthy)
			case component.StatusDegraded:
				if resp.Status != string(component.StatusUnhealthy) {
					resp.Status = string(component.StatusDegraded)
				}
			}
		}

		code := http.StatusOK
		if resp.Status == string(component.StatusUnhealthy) {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, resp)
	}
}
