package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports readiness of a single dependency.
type HealthChecker func() error

// RegisterHealth registers liveness and readiness endpoints on the router.
// Liveness always succeeds once the process serves traffic; readiness runs
// the provided dependency checkers.
func RegisterHealth(r gin.IRoutes, checkers map[string]HealthChecker) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/readyz", func(c *gin.Context) {
		details := make(map[string]string, len(checkers))
		healthy := true
		for name, check := range checkers {
			if err := check(); err != nil {
				healthy = false
				details[name] = err.Error()
			} else {
				details[name] = "ok"
			}
		}
		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": details})
	})
}
