// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/fast-note-share-service/internal/cache"
	"github.com/haierkeys/fast-note-share-service/internal/dao"
	"github.com/haierkeys/fast-note-share-service/internal/domain"
	"github.com/haierkeys/fast-note-share-service/internal/service"
	pkgapp "github.com/haierkeys/fast-note-share-service/pkg/app"
	"github.com/haierkeys/fast-note-share-service/pkg/workerpool"
	"github.com/haierkeys/fast-note-share-service/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao
	Cache  cache.ShareCache

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager

	// Repository 层
	NoteRepo domain.NoteRepository
	UserRepo domain.UserRepository
	PostRepo domain.PostRepository

	// Service 层
	NoteService service.NoteService
	UserService service.UserService
	PostService service.PostService

	// 基础设施组件
	TokenManager pkgapp.TokenManager

	// StartTime 启动时间，用于健康检查
	StartTime time.Time

	// 关闭控制
	shutdownCh chan struct{}
	shutdown   sync.Once
}

// Option App 可选项
type Option func(*App)

// WithShareCache 注入分享地址缓存，未注入时按配置创建
func WithShareCache(c cache.ShareCache) Option {
	return func(a *App) {
		a.Cache = c
	}
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	// 初始化 Worker Pool
	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(wpConfig, logger)

	// 初始化 Write Queue Manager
	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(wqConfig, logger)

	// 初始化分享地址缓存；Redis 不可用时退化为无缓存
	if a.Cache == nil {
		a.Cache = cache.NoopCache{}
		if cfg.Redis.URL != "" {
			rc, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.Prefix, cfg.GetRedisTTL(), logger)
			if err != nil {
				logger.Warn("redis unavailable, share cache disabled", zap.Error(err))
			} else {
				a.Cache = rc
			}
		}
	}

	// 初始化 DAO
	a.Dao = dao.New(db, cfg.Database.AutoMigrate, logger)

	// 初始化 TokenManager
	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey:   cfg.Security.AuthTokenKey,
		Issuer:      pkgapp.DefaultTokenIssuer,
		Expiry:      cfg.GetTokenExpiry(),
		ResetExpiry: cfg.GetResetTokenExpiry(),
	})

	// 初始化 Repository 层
	a.NoteRepo = dao.NewNoteRepository(a.Dao)
	a.UserRepo = dao.NewUserRepository(a.Dao)
	a.PostRepo = dao.NewPostRepository(a.Dao)

	// 创建 ServiceConfig（从 AppConfig 提取 Service 层需要的配置）
	svcConfig := &service.ServiceConfig{
		User: service.UserServiceConfig{
			RegisterIsEnable: cfg.User.RegisterIsEnable,
			ResetPasswordURL: cfg.User.ResetPasswordURL,
		},
		App: service.AppServiceConfig{
			SoftDeleteRetentionTime: cfg.App.SoftDeleteRetentionTime,
			ViewFlushInterval:       cfg.App.ViewFlushInterval,
			ShareTokenLength:        cfg.App.ShareTokenLength,
		},
	}

	mailer := service.NewMailer(service.MailConfig{
		Host:               cfg.Mail.Host,
		Port:               cfg.Mail.Port,
		Username:           cfg.Mail.Username,
		Password:           cfg.Mail.Password,
		From:               cfg.Mail.From,
		InsecureSkipVerify: cfg.Mail.InsecureSkipVerify,
	}, logger)

	// 初始化 Service 层（依赖注入）
	a.NoteService = service.NewNoteService(a.NoteRepo, logger, svcConfig,
		service.WithShareCache(a.Cache),
		service.WithWriteSerializer(a.writeQueueMgr),
	)
	a.UserService = service.NewUserService(a.UserRepo, a.TokenManager, mailer, a.workerPool, logger, svcConfig)
	a.PostService = service.NewPostService(a.PostRepo, logger)

	logger.Info("App container initialized successfully",
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity))

	return a, nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// Ping 检查数据库连接
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// SubmitTask 提交任务到 Worker Pool 并等待完成
func (a *App) SubmitTask(ctx context.Context, name string, task func(context.Context) error) error {
	return a.workerPool.Submit(ctx, name, task)
}

// WorkerPool 获取 Worker Pool
func (a *App) WorkerPool() *workerpool.Pool {
	return a.workerPool
}

// WriteQueueManager 获取 Write Queue Manager
func (a *App) WriteQueueManager() *writequeue.Manager {
	return a.writeQueueMgr
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：访问计数 -> Worker Pool -> Write Queue Manager -> 缓存 -> 数据库
func (a *App) Shutdown(ctx context.Context) error {
	first := false
	a.shutdown.Do(func() {
		first = true
		close(a.shutdownCh)
	})
	if !first {
		return nil
	}

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	a.logger.Info("App container shutting down...")
	var errs []error

	// 0. 写入剩余的访问计数
	if a.NoteService != nil {
		if err := a.NoteService.Shutdown(ctx); err != nil {
			a.logger.Warn("note service shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("note service shutdown: %w", err))
		}
	}

	// 1. 关闭 Worker Pool（停止接受新任务，等待现有任务完成）
	if a.workerPool != nil {
		if err := a.workerPool.Shutdown(ctx); err != nil {
			a.logger.Warn("Worker pool shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("worker pool shutdown: %w", err))
		}
	}

	// 2. 关闭 Write Queue Manager（排空所有队列）
	if a.writeQueueMgr != nil {
		if err := a.writeQueueMgr.Shutdown(ctx); err != nil {
			a.logger.Warn("write queue manager shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("write queue manager shutdown: %w", err))
		}
	}

	// 3. 关闭缓存
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache close: %w", err))
		}
	}

	// 4. 关闭数据库连接
	if a.Dao != nil {
		if err := a.Dao.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			a.logger.Info("Database connection closed")
		}
	}

	if len(errs) > 0 {
		a.logger.Warn("App container shutdown completed with errors", zap.Int("errorCount", len(errs)))
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}
