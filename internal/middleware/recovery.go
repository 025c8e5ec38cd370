package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/haierkeys/fast-note-share-service/pkg/app"
	"github.com/haierkeys/fast-note-share-service/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger logs a panic with its stack and answers with an opaque 500.
// The panic value never reaches the client.
// RecoveryWithLogger 记录 panic 及堆栈并返回不透明的 500，panic 内容不会返回给客户端
func RecoveryWithLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				fields := []zap.Field{
					zap.String("router", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("query", c.Request.URL.RawQuery),
					zap.String("ip", c.ClientIP()),
					zap.String("user-agent", c.Request.UserAgent()),
					zap.String("traceId", GetTraceIDFromGin(c)),
					zap.String("stack", string(debug.Stack())),
				}
				if e, ok := err.(error); ok {
					fields = append(fields, zap.Error(e))
				} else {
					fields = append(fields, zap.String("panic_value", fmt.Sprintf("%v", err)))
				}
				logger.Error("Recovered from panic", fields...)

				app.NewResponse(c).ToResponse(code.ErrorServerInternal)
				c.Abort()
			}
		}()

		c.Next()
	}
}
