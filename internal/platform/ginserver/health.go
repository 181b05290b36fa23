package ginserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// RegisterHealthRoute adds GET /health, returning
// {"status": "healthy", "service": "..."}.
func RegisterHealthRoute(router *gin.Engine, serviceName string) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Service: serviceName})
	})
}
