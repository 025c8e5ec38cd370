package model

import (
	"github.com/haierkeys/fast-note-share-service/pkg/timex"

	"gorm.io/gorm"
)

const TableNameNote = "note"

// Note mapped from table <note>
// share_token 与 custom_slug 为唯一索引，NULL 不受约束
type Note struct {
	ID         string         `gorm:"column:id;primaryKey;size:36" json:"id" form:"id"`
	UID        int64          `gorm:"column:uid;not null;index:idx_note_uid" json:"uid" form:"uid"`
	Title      string         `gorm:"column:title;size:255;not null" json:"title" form:"title"`
	Content    string         `gorm:"column:content;type:text" json:"content" form:"content"`
	Language   string         `gorm:"column:language;size:16;not null" json:"language" form:"language"`
	IsPublic   bool           `gorm:"column:is_public;not null;default:false" json:"isPublic" form:"isPublic"`
	ShareToken *string        `gorm:"column:share_token;size:64;uniqueIndex:uk_note_share_token" json:"shareToken" form:"shareToken"`
	CustomSlug *string        `gorm:"column:custom_slug;size:50;uniqueIndex:uk_note_custom_slug" json:"customSlug" form:"customSlug"`
	ViewCount  int64          `gorm:"column:view_count;not null;default:0" json:"viewCount" form:"viewCount"`
	CreatedAt  timex.Time     `gorm:"column:created_at;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt  timex.Time     `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index:idx_note_deleted_at" json:"-" form:"-"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}
