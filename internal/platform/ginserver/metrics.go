package ginserver

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterMetricsRoute adds GET /metrics, serving the process's
// Prometheus counters.
func RegisterMetricsRoute(router *gin.Engine) {
	handler := promhttp.Handler()
	router.GET("/metrics", gin.WrapH(handler))
}
