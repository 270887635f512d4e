package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookmarket/pkg/metrics"
)

// Metrics 记录请求数、耗时与并发数
// route使用gin注册的路由模板，未匹配的路由归为unmatched
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.HTTPRequestsInProgress.Inc()
		defer metrics.HTTPRequestsInProgress.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.IncCounterVec(metrics.HTTPRequestsTotal, c.Request.Method, route, strconv.Itoa(c.Writer.Status()))
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
