package service

import (
	"context"
	"sort"
	"strings"

	"github.com/haierkeys/fast-note-share-service/internal/domain"
	"github.com/haierkeys/fast-note-share-service/internal/dto"
	"github.com/haierkeys/fast-note-share-service/pkg/code"
	"github.com/haierkeys/fast-note-share-service/pkg/convert"
	"github.com/haierkeys/fast-note-share-service/pkg/logger"
	"github.com/haierkeys/fast-note-share-service/pkg/timex"
	"github.com/haierkeys/fast-note-share-service/pkg/util"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultRelatedLimit 相关文章默认数量
const DefaultRelatedLimit = 5

// PostService 博客文章业务服务接口
type PostService interface {
	Create(ctx context.Context, uid int64, params *dto.PostCreateRequest) (*dto.PostDTO, error)
	Update(ctx context.Context, uid int64, params *dto.PostUpdateRequest) (*dto.PostDTO, error)
	Delete(ctx context.Context, uid int64, id string) error

	// Get 按短链获取文章，未发布的文章仅作者可见
	Get(ctx context.Context, uid int64, slug string) (*dto.PostDTO, error)

	// List 分页获取已发布文章
	List(ctx context.Context, params *dto.PostListRequest, page, pageSize int) ([]*dto.PostDTO, int64, error)

	// Related 获取同语言且共享标签的已发布文章，按共享标签数和更新时间排序
	Related(ctx context.Context, slug string, limit int) ([]*dto.PostDTO, error)
}

type postService struct {
	postRepo domain.PostRepository
	logger   *zap.Logger
}

var _ PostService = (*postService)(nil)

// NewPostService 创建 PostService 实例
func NewPostService(postRepo domain.PostRepository, logger *zap.Logger) PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postService{postRepo: postRepo, logger: logger}
}

func (s *postService) domainToDTO(p *domain.Post, withContent bool) *dto.PostDTO {
	if p == nil {
		return nil
	}
	out := &dto.PostDTO{}
	convert.StructAssign(p, out)
	out.CreatedAt = timex.Time(p.CreatedAt)
	out.UpdatedAt = timex.Time(p.UpdatedAt)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if !withContent {
		out.Content = ""
	}
	return out
}

// validatePost 校验文章字段，返回归一化后的语言和去重后的标签
func validatePost(params *dto.PostCreateRequest) (string, []string, error) {
	if strings.TrimSpace(params.Title) == "" {
		return "", nil, code.ErrorPostTitleEmpty
	}
	if !util.IsValidSlug(params.Slug) {
		return "", nil, code.ErrorPostSlugInvalid
	}
	lang, ok := domain.NormalizeLanguage(params.Language)
	if !ok {
		return "", nil, code.ErrorNoteLanguageInvalid.WithDetails("language=" + params.Language)
	}

	seen := make(map[string]struct{}, len(params.Tags))
	tags := make([]string, 0, len(params.Tags))
	for _, t := range params.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return lang, tags, nil
}

// loadOwned 加载文章并校验所有者，非作者一律视为不存在
func (s *postService) loadOwned(ctx context.Context, uid int64, id string) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return nil, code.ErrorPostNotFound
		}
		return nil, errors.Wrap(err, "load post")
	}
	if post.UID != uid {
		return nil, code.ErrorPostNotFound
	}
	return post, nil
}

func (s *postService) Create(ctx context.Context, uid int64, params *dto.PostCreateRequest) (*dto.PostDTO, error) {
	lang, tags, err := validatePost(params)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.Create(ctx, &domain.Post{
		ID:          uuid.NewString(),
		UID:         uid,
		Title:       params.Title,
		Slug:        params.Slug,
		Summary:     params.Summary,
		Content:     params.Content,
		Language:    lang,
		Tags:        tags,
		IsPublished: params.IsPublished,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicatePostSlug) {
			return nil, code.ErrorPostSlugConflict.WithDetails("slug=" + params.Slug)
		}
		return nil, errors.Wrap(err, "create post")
	}

	s.logger.Info("post created",
		zap.Int64(logger.FieldUID, uid),
		zap.String(logger.FieldPostID, post.ID),
		zap.String(logger.FieldSlug, post.Slug))
	return s.domainToDTO(post, true), nil
}

func (s *postService) Update(ctx context.Context, uid int64, params *dto.PostUpdateRequest) (*dto.PostDTO, error) {
	lang, tags, err := validatePost(&params.PostCreateRequest)
	if err != nil {
		return nil, err
	}

	post, err := s.loadOwned(ctx, uid, params.ID)
	if err != nil {
		return nil, err
	}

	post.Title = params.Title
	post.Slug = params.Slug
	post.Summary = params.Summary
	post.Content = params.Content
	post.Language = lang
	post.Tags = tags
	post.IsPublished = params.IsPublished

	updated, err := s.postRepo.Update(ctx, post)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicatePostSlug):
			return nil, code.ErrorPostSlugConflict.WithDetails("slug=" + params.Slug)
		case errors.Is(err, domain.ErrPostNotFound):
			return nil, code.ErrorPostNotFound
		}
		return nil, errors.Wrap(err, "update post")
	}
	return s.domainToDTO(updated, true), nil
}

func (s *postService) Delete(ctx context.Context, uid int64, id string) error {
	if _, err := s.loadOwned(ctx, uid, id); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, id, uid); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return code.ErrorPostNotFound
		}
		return errors.Wrap(err, "delete post")
	}
	s.logger.Info("post deleted", zap.Int64(logger.FieldUID, uid), zap.String(logger.FieldPostID, id))
	return nil
}

func (s *postService) Get(ctx context.Context, uid int64, slug string) (*dto.PostDTO, error) {
	if !util.IsValidSlug(slug) {
		return nil, code.ErrorPostNotFound
	}
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return nil, code.ErrorPostNotFound
		}
		return nil, errors.Wrap(err, "get post")
	}
	// 草稿仅作者可见，uid 为 0 表示匿名访问
	if !post.IsPublished && (uid == 0 || post.UID != uid) {
		return nil, code.ErrorPostNotFound
	}
	return s.domainToDTO(post, true), nil
}

func (s *postService) List(ctx context.Context, params *dto.PostListRequest, page, pageSize int) ([]*dto.PostDTO, int64, error) {
	filter := domain.PostListFilter{PublishedOnly: true, Page: page, PageSize: pageSize}
	if params != nil {
		if params.Language != "" {
			lang, ok := domain.NormalizeLanguage(params.Language)
			if !ok {
				return nil, 0, code.ErrorNoteLanguageInvalid.WithDetails("language=" + params.Language)
			}
			filter.Language = lang
		}
		filter.Tag = strings.ToLower(strings.TrimSpace(params.Tag))
	}

	posts, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list posts")
	}
	count, err := s.postRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count posts")
	}

	list := make([]*dto.PostDTO, 0, len(posts))
	for _, p := range posts {
		list = append(list, s.domainToDTO(p, false))
	}
	return list, count, nil
}

func (s *postService) Related(ctx context.Context, slug string, limit int) ([]*dto.PostDTO, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	if !util.IsValidSlug(slug) {
		return nil, code.ErrorPostNotFound
	}

	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return nil, code.ErrorPostNotFound
		}
		return nil, errors.Wrap(err, "get post")
	}
	if !post.IsPublished {
		return nil, code.ErrorPostNotFound
	}

	candidates, err := s.postRepo.ListPublishedByLanguage(ctx, post.Language)
	if err != nil {
		return nil, errors.Wrap(err, "list related posts")
	}

	type scored struct {
		post   *domain.Post
		shared int
	}
	var ranked []scored
	for _, c := range candidates {
		if c.ID == post.ID {
			continue
		}
		if n := post.SharedTags(c); n > 0 {
			ranked = append(ranked, scored{post: c, shared: n})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].shared != ranked[j].shared {
			return ranked[i].shared > ranked[j].shared
		}
		return ranked[i].post.UpdatedAt.After(ranked[j].post.UpdatedAt)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	list := make([]*dto.PostDTO, 0, len(ranked))
	for _, r := range ranked {
		list = append(list, s.domainToDTO(r.post, false))
	}
	return list, nil
}
