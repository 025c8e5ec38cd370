// Package domain 定义领域模型和接口
package domain

import (
	"errors"
	"time"
)

var (
	ErrNoteNotFound        = errors.New("note not found")
	ErrDuplicateShareToken = errors.New("share token already exists")
	ErrDuplicateSlug       = errors.New("custom slug already exists")
)

// SharingState is the public visibility of a note
// SharingState 笔记的公开状态
type SharingState int

const (
	// SharingNeverPublished 从未公开，没有分享 Token
	SharingNeverPublished SharingState = iota
	// SharingPublished 公开中，可通过 Token 访问
	SharingPublished
	// SharingUnpublished 曾公开后转为私有，Token 保留但不可访问
	SharingUnpublished
)

func (s SharingState) String() string {
	switch s {
	case SharingPublished:
		return "published"
	case SharingUnpublished:
		return "unpublished"
	default:
		return "never_published"
	}
}

// Sharing is a note's visibility together with the share token it owns.
// A token, once assigned, stays with the note for its whole life.
// Sharing 笔记的公开状态及其持有的分享 Token；Token 一经分配终身不变
type Sharing struct {
	state SharingState
	token string
}

// SharingFrom rebuilds the variant from the two stored columns
// SharingFrom 由存储的 is_public 与 share_token 两列还原状态
func SharingFrom(isPublic bool, token *string) Sharing {
	var t string
	if token != nil {
		t = *token
	}
	switch {
	case isPublic:
		return Sharing{state: SharingPublished, token: t}
	case t != "":
		return Sharing{state: SharingUnpublished, token: t}
	default:
		return Sharing{state: SharingNeverPublished}
	}
}

func (s Sharing) State() SharingState { return s.state }

func (s Sharing) IsPublic() bool { return s.state == SharingPublished }

// HasToken reports whether a token was ever allocated
func (s Sharing) HasToken() bool { return s.token != "" }

// Token returns the allocated token, empty when never published
func (s Sharing) Token() string { return s.token }

// Publish makes the note public. fresh is used only when no token was ever
// allocated; an existing token is reused.
// Publish 转为公开；仅在从未分配 Token 时使用 fresh，已有 Token 则沿用
func (s Sharing) Publish(fresh string) Sharing {
	if s.token == "" {
		s.token = fresh
	}
	s.state = SharingPublished
	return s
}

// Unpublish makes the note private and keeps the token
// Unpublish 转为私有并保留 Token
func (s Sharing) Unpublish() Sharing {
	if s.token == "" {
		return Sharing{state: SharingNeverPublished}
	}
	return Sharing{state: SharingUnpublished, token: s.token}
}

// StoredToken is the value persisted in the share_token column
// StoredToken 写入 share_token 列的值
func (s Sharing) StoredToken() *string {
	if s.token == "" {
		return nil
	}
	t := s.token
	return &t
}

// PublicToken is the token exposed to callers, nil unless public
// PublicToken 对外暴露的 Token，非公开时为 nil
func (s Sharing) PublicToken() *string {
	if !s.IsPublic() {
		return nil
	}
	return s.StoredToken()
}

// Note 笔记领域模型
type Note struct {
	ID         string
	UID        int64
	Title      string
	Content    string
	Language   string
	Sharing    Sharing
	CustomSlug *string
	ViewCount  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsPublic 判断笔记是否公开
func (n *Note) IsPublic() bool {
	return n.Sharing.IsPublic()
}

// PublicSlug 对外暴露的自定义短链，非公开时为 nil
func (n *Note) PublicSlug() *string {
	if !n.IsPublic() || n.CustomSlug == nil {
		return nil
	}
	s := *n.CustomSlug
	return &s
}

// NoteListFilter 笔记列表筛选条件
type NoteListFilter struct {
	UID      int64
	Keyword  string
	Page     int
	PageSize int
}
