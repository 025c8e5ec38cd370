package api_router

import (
	"github.com/haierkeys/fast-note-share-service/internal/app"
	pkgapp "github.com/haierkeys/fast-note-share-service/pkg/app"
	"github.com/haierkeys/fast-note-share-service/pkg/code"
	apperrors "github.com/haierkeys/fast-note-share-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ShareHandler 公开分享 API 路由处理器，无需登录
type ShareHandler struct {
	*Handler
}

// NewShareHandler 创建 ShareHandler 实例
func NewShareHandler(a *app.App) *ShareHandler {
	return &ShareHandler{Handler: NewHandler(a)}
}

// ByToken 通过分享 Token 获取公开笔记
// 笔记不存在或未公开时一律返回 404
// GET /api/notes/share/:token
func (h *ShareHandler) ByToken(c *gin.Context) {
	ctx := c.Request.Context()
	note, err := h.App.NoteService.ResolveByToken(ctx, c.Param("token"))
	if err != nil {
		h.logError(ctx, "ShareHandler.ByToken", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// BySlug 通过自定义短链获取公开笔记
// GET /api/notes/slug/:slug
func (h *ShareHandler) BySlug(c *gin.Context) {
	ctx := c.Request.Context()
	note, err := h.App.NoteService.ResolveBySlug(ctx, c.Param("slug"))
	if err != nil {
		h.logError(ctx, "ShareHandler.BySlug", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}
