package service

import (
	"context"
	"strings"
	"time"

	"github.com/haierkeys/fast-note-share-service/internal/cache"
	"github.com/haierkeys/fast-note-share-service/internal/domain"
	"github.com/haierkeys/fast-note-share-service/internal/dto"
	"github.com/haierkeys/fast-note-share-service/pkg/code"
	"github.com/haierkeys/fast-note-share-service/pkg/logger"
	"github.com/haierkeys/fast-note-share-service/pkg/timex"
	"github.com/haierkeys/fast-note-share-service/pkg/util"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultShareTokenLength 分享 Token 默认长度
	DefaultShareTokenLength = 32
	// MaxShareTokenLength 分享 Token 最大长度，与 share_token 列宽一致
	MaxShareTokenLength = 64
	// maxTokenAttempts Token 唯一索引冲突时的最大分配次数
	maxTokenAttempts = 3
)

// NoteService 笔记及其公开地址（分享 Token、自定义短链）的业务服务
type NoteService interface {
	// Create 创建笔记，公开时分配分享 Token
	Create(ctx context.Context, uid int64, params *dto.NoteCreateRequest) (*dto.NoteDTO, error)

	// Update 更新笔记并协调公开状态、Token 与短链
	Update(ctx context.Context, uid int64, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error)

	// Get 获取所有者的单条笔记
	Get(ctx context.Context, uid int64, id string) (*dto.NoteDTO, error)

	// List 分页获取所有者的笔记
	List(ctx context.Context, uid int64, params *dto.NoteListRequest, page, pageSize int) ([]*dto.NoteDTO, int64, error)

	// Delete 软删除笔记，公开地址立即失效，短链被释放
	Delete(ctx context.Context, uid int64, id string) error

	// ResolveByToken 通过分享 Token 获取公开笔记
	ResolveByToken(ctx context.Context, token string) (*dto.NoteDTO, error)

	// ResolveBySlug 通过自定义短链获取公开笔记
	ResolveBySlug(ctx context.Context, slug string) (*dto.NoteDTO, error)

	// Shutdown 停止访问计数落库循环并写入剩余计数
	Shutdown(ctx context.Context) error
}

// WriteSerializer runs writes of one owner one at a time
// WriteSerializer 串行执行同一所有者的写操作
type WriteSerializer interface {
	Execute(ctx context.Context, uid int64, fn func() error) error
}

// TokenGenerator 生成分享 Token
type TokenGenerator func() (string, error)

// NoteServiceOption 笔记服务可选项
type NoteServiceOption func(*noteService)

// WithShareCache 设置分享地址缓存
func WithShareCache(c cache.ShareCache) NoteServiceOption {
	return func(s *noteService) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithWriteSerializer 设置按所有者串行化写操作的执行器
func WithWriteSerializer(w WriteSerializer) NoteServiceOption {
	return func(s *noteService) {
		s.writer = w
	}
}

// WithTokenGenerator 替换分享 Token 生成器
func WithTokenGenerator(g TokenGenerator) NoteServiceOption {
	return func(s *noteService) {
		if g != nil {
			s.newToken = g
		}
	}
}

// noteService 实现 NoteService 接口
type noteService struct {
	noteRepo domain.NoteRepository
	cache    cache.ShareCache
	writer   WriteSerializer
	newToken TokenGenerator
	sf       singleflight.Group
	logger   *zap.Logger
	views    *viewBuffer
}

var _ NoteService = (*noteService)(nil)

// NewNoteService 创建 NoteService 实例，并启动访问计数落库循环
func NewNoteService(noteRepo domain.NoteRepository, logger *zap.Logger, config *ServiceConfig, opts ...NoteServiceOption) NoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	tokenLength := DefaultShareTokenLength
	flushInterval := 5 * time.Minute
	if config != nil {
		if config.App.ShareTokenLength > 0 {
			tokenLength = min(config.App.ShareTokenLength, MaxShareTokenLength)
		}
		flushInterval = util.ParseDurationOr(config.App.ViewFlushInterval, flushInterval)
	}

	s := &noteService{
		noteRepo: noteRepo,
		cache:    cache.NoopCache{},
		newToken: func() (string, error) { return util.SecureRandomString(tokenLength) },
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.views = newViewBuffer(noteRepo.IncrViewCount, flushInterval, logger)
	return s
}

// domainToDTO 将领域模型转换为 DTO，非公开笔记不暴露 Token 与短链
func (s *noteService) domainToDTO(n *domain.Note) *dto.NoteDTO {
	if n == nil {
		return nil
	}
	return &dto.NoteDTO{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		Language:   n.Language,
		IsPublic:   n.IsPublic(),
		ShareToken: n.Sharing.PublicToken(),
		CustomSlug: n.PublicSlug(),
		ViewCount:  n.ViewCount,
		CreatedAt:  timex.Time(n.CreatedAt),
		UpdatedAt:  timex.Time(n.UpdatedAt),
	}
}

// validateNote checks title and language and returns the normalized language
// validateNote 校验标题与语言，返回归一化后的语言
func validateNote(title, language string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", code.ErrorNoteTitleRequired
	}
	lang, ok := domain.NormalizeLanguage(language)
	if !ok {
		return "", code.ErrorNoteLanguageInvalid.WithDetails("language=" + language)
	}
	return lang, nil
}

// serialize 通过写队列执行写操作，未配置时直接执行
func (s *noteService) serialize(ctx context.Context, uid int64, fn func() error) error {
	if s.writer == nil {
		return fn()
	}
	return s.writer.Execute(ctx, uid, fn)
}

// ensureSlugFree fails with a conflict when another note holds slug
// ensureSlugFree 短链被其他笔记占用时返回冲突
func (s *noteService) ensureSlugFree(ctx context.Context, slug, selfID string) error {
	holder, err := s.noteRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return nil
		}
		return errors.Wrap(err, "check custom slug")
	}
	if holder.ID != selfID {
		return code.ErrorNoteSlugConflict.WithDetails("customSlug=" + slug)
	}
	return nil
}

// save persists note in the requested visibility. A first publish allocates a fresh
// token and retries allocation when the token index reports a collision.
// save 按目标可见性保存笔记；首次公开时分配新 Token，Token 唯一索引冲突时重新分配
func (s *noteService) save(ctx context.Context, note *domain.Note, public bool,
	store func(context.Context, *domain.Note) (*domain.Note, error)) (*domain.Note, error) {

	allocating := public && !note.Sharing.HasToken()
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		candidate := *note
		switch {
		case allocating:
			token, err := s.newToken()
			if err != nil {
				return nil, errors.Wrap(err, "generate share token")
			}
			candidate.Sharing = note.Sharing.Publish(token)
		case public:
			candidate.Sharing = note.Sharing.Publish("")
		default:
			candidate.Sharing = note.Sharing.Unpublish()
		}

		saved, err := store(ctx, &candidate)
		switch {
		case err == nil:
			return saved, nil
		case errors.Is(err, domain.ErrDuplicateSlug):
			return nil, code.ErrorNoteSlugConflict
		case errors.Is(err, domain.ErrDuplicateShareToken) && allocating:
			shareTokenCollisions.Inc()
			s.logger.Warn("share token collision, retrying", zap.Int("attempt", attempt+1))
			continue
		case errors.Is(err, domain.ErrNoteNotFound):
			return nil, code.ErrorNoteNotFound
		default:
			return nil, errors.Wrap(err, "save note")
		}
	}
	return nil, code.ErrorShareTokenAllocate
}

// Create 创建笔记
// 1. 提供短链时，无论是否公开都先检查全局唯一
// 2. 公开时分配新 Token，私有笔记不保存短链
func (s *noteService) Create(ctx context.Context, uid int64, params *dto.NoteCreateRequest) (*dto.NoteDTO, error) {
	lang, err := validateNote(params.Title, params.Language)
	if err != nil {
		return nil, err
	}

	var slug *string
	if params.CustomSlug != nil {
		// 创建时空字符串不表示“无短链”，与其它非法短链一样拒绝
		if !util.IsValidSlug(*params.CustomSlug) {
			return nil, code.ErrorNoteSlugInvalid
		}
		slug = params.CustomSlug
	}

	note := &domain.Note{
		ID:       uuid.NewString(),
		UID:      uid,
		Title:    params.Title,
		Content:  params.Content,
		Language: lang,
		Sharing:  domain.SharingFrom(false, nil),
	}

	var created *domain.Note
	err = s.serialize(ctx, uid, func() error {
		if slug != nil {
			if err := s.ensureSlugFree(ctx, *slug, note.ID); err != nil {
				return err
			}
			if params.IsPublic {
				note.CustomSlug = slug
			}
		}
		var err error
		created, err = s.save(ctx, note, params.IsPublic, s.noteRepo.Create)
		return err
	})
	noteWriteTotal.WithLabelValues("create", writeResult(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.logger.Info("note created",
		zap.Int64(logger.FieldUID, uid),
		zap.String(logger.FieldNoteID, created.ID),
		zap.Bool("public", created.IsPublic()))
	return s.domainToDTO(created), nil
}

// Update 更新笔记
// Token：首次公开时分配，已有 Token 一律沿用，转为私有时保留但不对外暴露
// 短链：仅公开时保留；新短链优先，未提供时沿用原短链，显式传入 "" 时清除
func (s *noteService) Update(ctx context.Context, uid int64, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error) {
	lang, err := validateNote(params.Title, params.Language)
	if err != nil {
		return nil, err
	}

	var newSlug *string
	clearSlug := false
	if params.CustomSlug != nil {
		if *params.CustomSlug == "" {
			clearSlug = true
		} else if !util.IsValidSlug(*params.CustomSlug) {
			return nil, code.ErrorNoteSlugInvalid
		} else {
			newSlug = params.CustomSlug
		}
	}

	var existing, updated *domain.Note
	err = s.serialize(ctx, uid, func() error {
		var err error
		existing, err = s.noteRepo.GetByID(ctx, params.ID, uid)
		if err != nil {
			if errors.Is(err, domain.ErrNoteNotFound) {
				return code.ErrorNoteNotFound
			}
			return errors.Wrap(err, "load note")
		}

		if newSlug != nil && (existing.CustomSlug == nil || *existing.CustomSlug != *newSlug) {
			if err := s.ensureSlugFree(ctx, *newSlug, existing.ID); err != nil {
				return err
			}
		}

		next := *existing
		next.Title = params.Title
		next.Content = params.Content
		next.Language = lang
		switch {
		case !params.IsPublic, clearSlug:
			next.CustomSlug = nil
		case newSlug != nil:
			next.CustomSlug = newSlug
		}

		updated, err = s.save(ctx, &next, params.IsPublic, s.noteRepo.Update)
		return err
	})
	noteWriteTotal.WithLabelValues("update", writeResult(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, existing, updated)
	s.logger.Info("note updated",
		zap.Int64(logger.FieldUID, uid),
		zap.String(logger.FieldNoteID, updated.ID),
		zap.String("sharing", updated.Sharing.State().String()))
	return s.domainToDTO(updated), nil
}

// invalidate 清除笔记旧/新公开地址的缓存
func (s *noteService) invalidate(ctx context.Context, notes ...*domain.Note) {
	var tokens, slugs []string
	for _, n := range notes {
		if n == nil {
			continue
		}
		if n.Sharing.HasToken() {
			tokens = append(tokens, n.Sharing.Token())
		}
		if n.CustomSlug != nil {
			slugs = append(slugs, *n.CustomSlug)
		}
	}
	s.cache.Invalidate(ctx, cache.KindToken, tokens...)
	s.cache.Invalidate(ctx, cache.KindSlug, slugs...)
}

// Get 获取所有者的单条笔记
func (s *noteService) Get(ctx context.Context, uid int64, id string) (*dto.NoteDTO, error) {
	note, err := s.noteRepo.GetByID(ctx, id, uid)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, errors.Wrap(err, "get note")
	}
	return s.domainToDTO(note), nil
}

// List 分页获取所有者的笔记
func (s *noteService) List(ctx context.Context, uid int64, params *dto.NoteListRequest, page, pageSize int) ([]*dto.NoteDTO, int64, error) {
	filter := domain.NoteListFilter{UID: uid, Page: page, PageSize: pageSize}
	if params != nil {
		filter.Keyword = strings.TrimSpace(params.Keyword)
	}

	notes, err := s.noteRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list notes")
	}
	count, err := s.noteRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count notes")
	}

	list := make([]*dto.NoteDTO, 0, len(notes))
	for _, n := range notes {
		list = append(list, s.domainToDTO(n))
	}
	return list, count, nil
}

// Delete 软删除笔记
func (s *noteService) Delete(ctx context.Context, uid int64, id string) error {
	var existing *domain.Note
	err := s.serialize(ctx, uid, func() error {
		var err error
		existing, err = s.noteRepo.GetByID(ctx, id, uid)
		if err != nil {
			if errors.Is(err, domain.ErrNoteNotFound) {
				return code.ErrorNoteNotFound
			}
			return errors.Wrap(err, "load note")
		}
		if err := s.noteRepo.SoftDelete(ctx, id, uid); err != nil {
			if errors.Is(err, domain.ErrNoteNotFound) {
				return code.ErrorNoteNotFound
			}
			return errors.Wrap(err, "delete note")
		}
		return nil
	})
	noteWriteTotal.WithLabelValues("delete", writeResult(err)).Inc()
	if err != nil {
		return err
	}

	s.invalidate(ctx, existing)
	s.logger.Info("note deleted", zap.Int64(logger.FieldUID, uid), zap.String(logger.FieldNoteID, id))
	return nil
}

// Shutdown 停止访问计数落库循环并写入剩余计数
func (s *noteService) Shutdown(ctx context.Context) error {
	return s.views.Shutdown(ctx)
}
