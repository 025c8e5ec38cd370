package dao

import (
	"context"
	"time"

	"github.com/haierkeys/fast-note-share-service/internal/domain"
	"github.com/haierkeys/fast-note-share-service/internal/model"
	"github.com/haierkeys/fast-note-share-service/pkg/app"
	"github.com/haierkeys/fast-note-share-service/pkg/convert"
	"github.com/haierkeys/fast-note-share-service/pkg/timex"

	"gorm.io/gorm"
)

// postRepository 实现 domain.PostRepository 接口
type postRepository struct {
	dao *Dao
}

// NewPostRepository 创建 PostRepository 实例
func NewPostRepository(dao *Dao) domain.PostRepository {
	return &postRepository{dao: dao}
}

var _ domain.PostRepository = (*postRepository)(nil)

func (r *postRepository) post(ctx context.Context) *gorm.DB {
	return r.dao.UseWithOnceFunc(ctx, func(g *gorm.DB) {
		_ = model.AutoMigrate(g, "Post")
	}, "post#post")
}

func (r *postRepository) toDomain(m *model.Post) *domain.Post {
	if m == nil {
		return nil
	}
	// 标签列损坏时按无标签处理
	tags, _ := convert.JSONToStrings(m.Tags)
	return &domain.Post{
		ID:          m.ID,
		UID:         m.UID,
		Title:       m.Title,
		Slug:        m.Slug,
		Summary:     m.Summary,
		Content:     m.Content,
		Language:    m.Language,
		Tags:        tags,
		IsPublished: m.IsPublished,
		CreatedAt:   time.Time(m.CreatedAt),
		UpdatedAt:   time.Time(m.UpdatedAt),
	}
}

func (r *postRepository) toModel(p *domain.Post) *model.Post {
	if p == nil {
		return nil
	}
	return &model.Post{
		ID:          p.ID,
		UID:         p.UID,
		Title:       p.Title,
		Slug:        p.Slug,
		Summary:     p.Summary,
		Content:     p.Content,
		Language:    p.Language,
		Tags:        convert.StringsToJSON(p.Tags),
		IsPublished: p.IsPublished,
		CreatedAt:   timex.Time(p.CreatedAt),
		UpdatedAt:   timex.Time(p.UpdatedAt),
	}
}

func (r *postRepository) toDomains(ms []*model.Post) []*domain.Post {
	list := make([]*domain.Post, 0, len(ms))
	for _, m := range ms {
		list = append(list, r.toDomain(m))
	}
	return list
}

func (r *postRepository) first(db *gorm.DB) (*domain.Post, error) {
	var m model.Post
	if err := db.Take(&m).Error; err != nil {
		return nil, notFound(err, domain.ErrPostNotFound)
	}
	return r.toDomain(&m), nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	return r.first(r.post(ctx).Where("id = ?", id))
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return r.first(r.post(ctx).Where("slug = ?", slug))
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	m := r.toModel(post)
	now := timex.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := r.post(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, domain.ErrDuplicatePostSlug
		}
		return nil, err
	}
	return r.toDomain(m), nil
}

func (r *postRepository) Update(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	m := r.toModel(post)
	m.UpdatedAt = timex.Now()

	err := r.post(ctx).Model(&model.Post{}).
		Where("id = ? AND uid = ?", m.ID, m.UID).
		Select("title", "slug", "summary", "content", "language", "tags", "is_published", "updated_at").
		Updates(m).Error
	if err != nil {
		if isDuplicateKey(err) {
			return nil, domain.ErrDuplicatePostSlug
		}
		return nil, err
	}
	return r.GetByID(ctx, m.ID)
}

func (r *postRepository) Delete(ctx context.Context, id string, uid int64) error {
	res := r.post(ctx).Where("id = ? AND uid = ?", id, uid).Delete(&model.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) filtered(ctx context.Context, filter domain.PostListFilter) *gorm.DB {
	db := r.post(ctx).Model(&model.Post{})
	if filter.PublishedOnly {
		db = db.Where("is_published = ?", true)
	}
	if filter.Language != "" {
		db = db.Where("language = ?", filter.Language)
	}
	if filter.Tag != "" {
		// tags 列为 JSON 数组文本，按带引号的完整元素匹配
		db = db.Where("tags LIKE ?", `%"`+filter.Tag+`"%`)
	}
	return db
}

// List 分页获取文章列表，按创建时间倒序
func (r *postRepository) List(ctx context.Context, filter domain.PostListFilter) ([]*domain.Post, error) {
	var ms []*model.Post
	err := r.filtered(ctx, filter).
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(app.GetPageOffset(filter.Page, filter.PageSize)).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return r.toDomains(ms), nil
}

func (r *postRepository) Count(ctx context.Context, filter domain.PostListFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

func (r *postRepository) ListPublishedByLanguage(ctx context.Context, language string) ([]*domain.Post, error) {
	var ms []*model.Post
	err := r.post(ctx).
		Where("is_published = ? AND language = ?", true, language).
		Order("created_at DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return r.toDomains(ms), nil
}
