package dto

import "github.com/haierkeys/fast-note-share-service/pkg/timex"

// PostCreateRequest 创建文章请求参数
type PostCreateRequest struct {
	Title       string   `json:"title" form:"title" binding:"required"`
	Slug        string   `json:"slug" form:"slug" binding:"required,slug"`
	Summary     string   `json:"summary" form:"summary" binding:"max=512"`
	Content     string   `json:"content" form:"content"`
	Language    string   `json:"language" form:"language" binding:"required,langtag"`
	Tags        []string `json:"tags" form:"tags" binding:"max=20,dive,min=1,max=32"`
	IsPublished bool     `json:"isPublished" form:"isPublished"`
}

// PostUpdateRequest 更新文章请求参数
type PostUpdateRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
	PostCreateRequest
}

// PostDeleteRequest 删除文章请求参数
type PostDeleteRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}

// PostListRequest 文章列表筛选参数
type PostListRequest struct {
	Language string `json:"language" form:"language"`
	Tag      string `json:"tag" form:"tag"`
}

// PostRelatedRequest 相关文章请求参数
type PostRelatedRequest struct {
	Limit int `json:"limit" form:"limit" binding:"omitempty,min=1,max=20"`
}

// PostDTO 文章数据传输对象
type PostDTO struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content,omitempty"`
	Language    string     `json:"language"`
	Tags        []string   `json:"tags"`
	IsPublished bool       `json:"isPublished"`
	CreatedAt   timex.Time `json:"createdAt"`
	UpdatedAt   timex.Time `json:"updatedAt"`
}
