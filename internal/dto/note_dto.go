// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import "github.com/haierkeys/fast-note-share-service/pkg/timex"

// NoteCreateRequest Request parameters for creating a note
// 创建笔记请求参数
// CustomSlug 为 nil 表示未提供；格式由服务层校验
type NoteCreateRequest struct {
	Title      string  `json:"title" form:"title" binding:"required"`
	Content    string  `json:"content" form:"content"`
	Language   string  `json:"language" form:"language" binding:"required"`
	IsPublic   bool    `json:"isPublic" form:"isPublic"`
	CustomSlug *string `json:"customSlug" form:"customSlug"`
}

// NoteUpdateRequest Request parameters for updating a note
// 更新笔记请求参数；CustomSlug 为 nil 时保留原短链，为 "" 时清除
type NoteUpdateRequest struct {
	ID         string  `json:"id" form:"id" binding:"required"`
	Title      string  `json:"title" form:"title" binding:"required"`
	Content    string  `json:"content" form:"content"`
	Language   string  `json:"language" form:"language" binding:"required"`
	IsPublic   bool    `json:"isPublic" form:"isPublic"`
	CustomSlug *string `json:"customSlug" form:"customSlug"`
}

// NoteGetRequest 获取/删除单条笔记请求参数
type NoteGetRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}

// NoteListRequest 笔记列表请求参数（分页参数由 page/pageSize 查询参数提供）
type NoteListRequest struct {
	Keyword string `json:"keyword" form:"keyword"`
}

// NoteDTO Note data transfer object
// NoteDTO 笔记数据传输对象；shareToken 与 customSlug 仅在公开时非空
type NoteDTO struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Language   string     `json:"language"`
	IsPublic   bool       `json:"isPublic"`
	ShareToken *string    `json:"shareToken"`
	CustomSlug *string    `json:"customSlug"`
	ViewCount  int64      `json:"viewCount"`
	CreatedAt  timex.Time `json:"createdAt"`
	UpdatedAt  timex.Time `json:"updatedAt"`
}
