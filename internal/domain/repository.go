// Package domain 定义领域模型和接口
package domain

import "context"

// NoteRepository 笔记仓储接口，软删除的笔记对所有查询不可见
type NoteRepository interface {
	// GetByID 根据ID获取笔记，uid 为 0 时不校验所有者
	GetByID(ctx context.Context, id string, uid int64) (*Note, error)

	// GetBySlug 根据自定义短链获取笔记（不论是否公开）
	GetBySlug(ctx context.Context, slug string) (*Note, error)

	// GetPublicByToken 根据分享 Token 获取公开笔记，is_public 与 token 在同一查询中匹配
	GetPublicByToken(ctx context.Context, token string) (*Note, error)

	// GetPublicBySlug 根据自定义短链获取公开笔记
	GetPublicBySlug(ctx context.Context, slug string) (*Note, error)

	// Create 创建笔记
	Create(ctx context.Context, note *Note) (*Note, error)

	// Update 更新笔记的全部可变字段
	Update(ctx context.Context, note *Note) (*Note, error)

	// SoftDelete 标记删除并释放自定义短链
	SoftDelete(ctx context.Context, id string, uid int64) error

	// List 分页获取所有者的笔记列表
	List(ctx context.Context, filter NoteListFilter) ([]*Note, error)

	// Count 获取所有者的笔记数量
	Count(ctx context.Context, filter NoteListFilter) (int64, error)

	// IncrViewCount 批量累加访问计数
	IncrViewCount(ctx context.Context, increments map[string]int64) error

	// DeletePhysicalByTime 物理删除早于 timestamp（毫秒）被软删除的笔记
	DeletePhysicalByTime(ctx context.Context, timestamp int64) (int64, error)
}

// UserRepository 用户仓储接口
type UserRepository interface {
	GetByUID(ctx context.Context, uid int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	UpdatePassword(ctx context.Context, password string, uid int64) error
}

// PostRepository 博客文章仓储接口
type PostRepository interface {
	GetByID(ctx context.Context, id string) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	Create(ctx context.Context, post *Post) (*Post, error)
	Update(ctx context.Context, post *Post) (*Post, error)
	Delete(ctx context.Context, id string, uid int64) error
	List(ctx context.Context, filter PostListFilter) ([]*Post, error)
	Count(ctx context.Context, filter PostListFilter) (int64, error)
	// ListPublishedByLanguage 获取某语言下全部已发布文章，用于相关文章计算
	ListPublishedByLanguage(ctx context.Context, language string) ([]*Post, error)
}
