package domain

import (
	"errors"
	"time"
)

var (
	ErrPostNotFound      = errors.New("post not found")
	ErrDuplicatePostSlug = errors.New("post slug already exists")
)

// Post 博客文章领域模型
type Post struct {
	ID          string
	UID         int64
	Title       string
	Slug        string
	Summary     string
	Content     string
	Language    string
	Tags        []string
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SharedTags counts the tags both posts carry
// SharedTags 统计两篇文章共有的标签数
func (p *Post) SharedTags(other *Post) int {
	if len(p.Tags) == 0 || len(other.Tags) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(p.Tags))
	for _, t := range p.Tags {
		set[t] = struct{}{}
	}
	n := 0
	for _, t := range other.Tags {
		if _, ok := set[t]; ok {
			n++
			delete(set, t)
		}
	}
	return n
}

// PostListFilter 文章列表筛选条件
type PostListFilter struct {
	Language      string
	Tag           string
	PublishedOnly bool
	Page          int
	PageSize      int
}
