// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"

	"github.com/haierkeys/fast-note-share-service/internal/app"
	"github.com/haierkeys/fast-note-share-service/internal/middleware"
	"github.com/haierkeys/fast-note-share-service/pkg/code"
	"github.com/haierkeys/fast-note-share-service/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// logError 记录处理失败；客户端错误记为 warn，其余记为 error
func (h *Handler) logError(ctx context.Context, method string, err error) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String(logger.FieldTraceID, middleware.GetTraceID(ctx)),
	}
	var c *code.Code
	if errors.As(err, &c) && c.StatusCode() < 500 {
		h.App.Logger().Warn(method, fields...)
		return
	}
	h.App.Logger().Error(method, fields...)
}
