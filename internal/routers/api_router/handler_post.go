package api_router

import (
	"github.com/haierkeys/fast-note-share-service/internal/app"
	"github.com/haierkeys/fast-note-share-service/internal/dto"
	pkgapp "github.com/haierkeys/fast-note-share-service/pkg/app"
	"github.com/haierkeys/fast-note-share-service/pkg/code"
	apperrors "github.com/haierkeys/fast-note-share-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// PostHandler 博客文章 API 路由处理器
type PostHandler struct {
	*Handler
}

// NewPostHandler 创建 PostHandler 实例
func NewPostHandler(a *app.App) *PostHandler {
	return &PostHandler{Handler: NewHandler(a)}
}

// Create 创建文章
// POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.PostCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	post, err := h.App.PostService.Create(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "PostHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessCreate.WithData(post))
}

// Update 更新文章
// PUT /api/posts
func (h *PostHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.PostUpdateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	post, err := h.App.PostService.Update(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "PostHandler.Update", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessUpdate.WithData(post))
}

// Delete 删除文章
// DELETE /api/posts
func (h *PostHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.PostDeleteRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	if err := h.App.PostService.Delete(ctx, pkgapp.GetUID(c), params.ID); err != nil {
		h.logError(ctx, "PostHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessDelete)
}

// Get 按短链获取文章，草稿仅作者可见
// GET /api/post/:slug
func (h *PostHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	post, err := h.App.PostService.Get(ctx, pkgapp.GetUID(c), c.Param("slug"))
	if err != nil {
		h.logError(ctx, "PostHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(post))
}

// List 已发布文章列表
// GET /api/posts
func (h *PostHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.PostListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	list, total, err := h.App.PostService.List(ctx, params, pkgapp.GetPage(c), pkgapp.GetPageSize(c))
	if err != nil {
		h.logError(ctx, "PostHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponseList(code.Success, list, int(total))
}

// Related 相关文章
// 同语言、至少共享一个标签的已发布文章，按共享标签数和更新时间排序
// GET /api/post/:slug/related
func (h *PostHandler) Related(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.PostRelatedRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	list, err := h.App.PostService.Related(ctx, c.Param("slug"), params.Limit)
	if err != nil {
		h.logError(ctx, "PostHandler.Related", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(list))
}
