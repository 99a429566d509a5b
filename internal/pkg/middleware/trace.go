package middleware

import (
	"civic_feed/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	TraceHeader    = "X-Trace-ID"
	ContextTraceID = response.TraceKey

	maxTraceIDLen = 64
)

// TraceMiddleware 透传或生成请求追踪ID
// 上游传入的 id 过长时丢弃，避免日志被撑爆
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceHeader)
		if traceID == "" || len(traceID) > maxTraceIDLen {
			traceID = uuid.NewString()
		}

		c.Set(ContextTraceID, traceID)
		c.Header(TraceHeader, traceID)
		c.Next()
	}
}
