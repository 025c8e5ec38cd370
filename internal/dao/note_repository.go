package dao

import (
	"context"
	"time"

	"github.com/haierkeys/fast-note-share-service/internal/domain"
	"github.com/haierkeys/fast-note-share-service/internal/model"
	"github.com/haierkeys/fast-note-share-service/pkg/app"
	"github.com/haierkeys/fast-note-share-service/pkg/timex"

	"gorm.io/gorm"
)

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

var _ domain.NoteRepository = (*noteRepository)(nil)

// session 获取笔记表会话（首次使用时迁移）
func (r *noteRepository) session(ctx context.Context) *gorm.DB {
	return r.dao.UseWithOnceFunc(ctx, func(g *gorm.DB) {
		_ = model.AutoMigrate(g, "Note")
	}, "note#note")
}

func (r *noteRepository) note(ctx context.Context) *gorm.DB {
	return r.session(ctx).Model(&model.Note{})
}

// toDomain 将数据库模型转换为领域模型
func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}
	return &domain.Note{
		ID:         m.ID,
		UID:        m.UID,
		Title:      m.Title,
		Content:    m.Content,
		Language:   m.Language,
		Sharing:    domain.SharingFrom(m.IsPublic, m.ShareToken),
		CustomSlug: m.CustomSlug,
		ViewCount:  m.ViewCount,
		CreatedAt:  time.Time(m.CreatedAt),
		UpdatedAt:  time.Time(m.UpdatedAt),
	}
}

// toModel 将领域模型转换为数据库模型
func (r *noteRepository) toModel(n *domain.Note) *model.Note {
	if n == nil {
		return nil
	}
	return &model.Note{
		ID:         n.ID,
		UID:        n.UID,
		Title:      n.Title,
		Content:    n.Content,
		Language:   n.Language,
		IsPublic:   n.Sharing.IsPublic(),
		ShareToken: n.Sharing.StoredToken(),
		CustomSlug: n.CustomSlug,
		ViewCount:  n.ViewCount,
		CreatedAt:  timex.Time(n.CreatedAt),
		UpdatedAt:  timex.Time(n.UpdatedAt),
	}
}

func (r *noteRepository) first(db *gorm.DB) (*domain.Note, error) {
	var m model.Note
	if err := db.Take(&m).Error; err != nil {
		return nil, notFound(err, domain.ErrNoteNotFound)
	}
	return r.toDomain(&m), nil
}

// GetByID 根据ID获取笔记
func (r *noteRepository) GetByID(ctx context.Context, id string, uid int64) (*domain.Note, error) {
	db := r.note(ctx).Where("id = ?", id)
	if uid > 0 {
		db = db.Where("uid = ?", uid)
	}
	return r.first(db)
}

// GetBySlug 根据自定义短链获取笔记
func (r *noteRepository) GetBySlug(ctx context.Context, slug string) (*domain.Note, error) {
	return r.first(r.note(ctx).Where("custom_slug = ?", slug))
}

// GetPublicByToken 根据分享 Token 获取公开笔记
func (r *noteRepository) GetPublicByToken(ctx context.Context, token string) (*domain.Note, error) {
	return r.first(r.note(ctx).Where("share_token = ? AND is_public = ?", token, true))
}

// GetPublicBySlug 根据自定义短链获取公开笔记
func (r *noteRepository) GetPublicBySlug(ctx context.Context, slug string) (*domain.Note, error) {
	return r.first(r.note(ctx).Where("custom_slug = ? AND is_public = ?", slug, true))
}

// duplicateCause tells which unique index a failed write hit. The slug index is
// checked by lookup; anything else on this table is the share token.
// duplicateCause 判断写入命中了哪个唯一索引：先查短链，否则视为分享 Token 冲突
func (r *noteRepository) duplicateCause(ctx context.Context, n *domain.Note) error {
	if n.CustomSlug != nil {
		if holder, err := r.GetBySlug(ctx, *n.CustomSlug); err == nil && holder.ID != n.ID {
			return domain.ErrDuplicateSlug
		}
	}
	return domain.ErrDuplicateShareToken
}

// Create 创建笔记
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m := r.toModel(note)
	now := timex.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := r.session(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, r.duplicateCause(ctx, note)
		}
		return nil, err
	}
	return r.toDomain(m), nil
}

// Update 更新笔记
func (r *noteRepository) Update(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m := r.toModel(note)
	m.UpdatedAt = timex.Now()

	err := r.note(ctx).
		Where("id = ? AND uid = ?", m.ID, m.UID).
		Select("title", "content", "language", "is_public", "share_token", "custom_slug", "updated_at").
		Updates(m).Error
	if err != nil {
		if isDuplicateKey(err) {
			return nil, r.duplicateCause(ctx, note)
		}
		return nil, err
	}
	// RowsAffected 为 0 时可能只是值未变化（MySQL），以查询结果为准
	return r.GetByID(ctx, m.ID, m.UID)
}

// SoftDelete 标记删除并释放自定义短链
func (r *noteRepository) SoftDelete(ctx context.Context, id string, uid int64) error {
	var affected int64
	err := r.session(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&model.Note{}).Where("id = ? AND uid = ?", id, uid)
		if err := q.Updates(map[string]interface{}{
			"custom_slug": nil,
			"is_public":   false,
			"updated_at":  timex.Now(),
		}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND uid = ?", id, uid).Delete(&model.Note{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (r *noteRepository) filtered(ctx context.Context, filter domain.NoteListFilter) *gorm.DB {
	db := r.note(ctx).Where("uid = ?", filter.UID)
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("title LIKE ? OR content LIKE ?", like, like)
	}
	return db
}

// List 分页获取笔记列表，按更新时间倒序
func (r *noteRepository) List(ctx context.Context, filter domain.NoteListFilter) ([]*domain.Note, error) {
	var ms []*model.Note
	err := r.filtered(ctx, filter).
		Order("updated_at DESC").
		Limit(filter.PageSize).
		Offset(app.GetPageOffset(filter.Page, filter.PageSize)).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	list := make([]*domain.Note, 0, len(ms))
	for _, m := range ms {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// Count 获取笔记数量
func (r *noteRepository) Count(ctx context.Context, filter domain.NoteListFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

// IncrViewCount 批量累加访问计数
func (r *noteRepository) IncrViewCount(ctx context.Context, increments map[string]int64) error {
	if len(increments) == 0 {
		return nil
	}
	return r.session(ctx).Transaction(func(tx *gorm.DB) error {
		for id, n := range increments {
			if n <= 0 {
				continue
			}
			err := tx.Model(&model.Note{}).
				Where("id = ?", id).
				UpdateColumn("view_count", gorm.Expr("view_count + ?", n)).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// DeletePhysicalByTime 物理删除早于 timestamp（毫秒）被软删除的笔记
func (r *noteRepository) DeletePhysicalByTime(ctx context.Context, timestamp int64) (int64, error) {
	cutoff := time.UnixMilli(timestamp)
	res := r.session(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Delete(&model.Note{})
	return res.RowsAffected, res.Error
}
