package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xiebiao/bookmarket/pkg/tracing"
)

// RequestIDHeader 请求ID响应头，客户端提供时沿用
const RequestIDHeader = "X-Request-ID"

// Logger 请求日志中间件
// 记录方法、路由、状态码、耗时与客户端IP，不记录请求体与Token
// 超过slowThreshold的请求额外输出WARN
func Logger(slowThreshold time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		ctx := c.Request.Context()
		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", latency,
			"client_ip", c.ClientIP(),
		}
		if traceID := tracing.ExtractTraceID(ctx); traceID != "" {
			attrs = append(attrs, "trace_id", traceID)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			slog.ErrorContext(ctx, "http request", attrs...)
		case status >= 400:
			slog.WarnContext(ctx, "http request", attrs...)
		default:
			slog.InfoContext(ctx, "http request", attrs...)
		}

		if slowThreshold > 0 && latency > slowThreshold {
			slog.WarnContext(ctx, "slow request", "request_id", requestID, "method", c.Request.Method, "path", c.Request.URL.Path, "latency", latency)
		}
	}
}
