package model

import "github.com/haierkeys/fast-note-share-service/pkg/timex"

const TableNamePost = "post"

// Post mapped from table <post>
// Tags 以 JSON 数组字符串存储
type Post struct {
	ID          string     `gorm:"column:id;primaryKey;size:36" json:"id" form:"id"`
	UID         int64      `gorm:"column:uid;not null;index:idx_post_uid" json:"uid" form:"uid"`
	Title       string     `gorm:"column:title;size:255;not null" json:"title" form:"title"`
	Slug        string     `gorm:"column:slug;size:50;not null;uniqueIndex:uk_post_slug" json:"slug" form:"slug"`
	Summary     string     `gorm:"column:summary;size:512" json:"summary" form:"summary"`
	Content     string     `gorm:"column:content;type:text" json:"content" form:"content"`
	Language    string     `gorm:"column:language;size:16;not null;index:idx_post_lang_pub,priority:1" json:"language" form:"language"`
	Tags        string     `gorm:"column:tags;type:text" json:"tags" form:"tags"`
	IsPublished bool       `gorm:"column:is_published;not null;default:false;index:idx_post_lang_pub,priority:2" json:"isPublished" form:"isPublished"`
	CreatedAt   timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt   timex.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName Post's table name
func (*Post) TableName() string {
	return TableNamePost
}
