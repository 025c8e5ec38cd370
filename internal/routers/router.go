package routers

import (
	"time"

	"github.com/haierkeys/fast-note-share-service/internal/app"
	"github.com/haierkeys/fast-note-share-service/internal/middleware"
	"github.com/haierkeys/fast-note-share-service/internal/routers/api_router"
	"github.com/haierkeys/fast-note-share-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// newMethodLimiters 按路径前缀创建令牌桶：登录注册类接口与公开分享接口分别限流
func newMethodLimiters(cfg app.RateLimitConfig) limiter.Face {
	l := limiter.NewMethodLimiter()
	if cfg.Auth > 0 {
		l.AddBuckets(limiter.BucketRule{
			Key:          "/api/user",
			FillInterval: time.Second,
			Capacity:     cfg.Auth,
			Quantum:      cfg.Auth,
		})
	}
	if cfg.Share > 0 {
		for _, key := range []string{"/api/notes/share", "/api/notes/slug"} {
			l.AddBuckets(limiter.BucketRule{
				Key:          key,
				FillInterval: time.Second,
				Capacity:     cfg.Share,
				Quantum:      cfg.Share,
			})
		}
	}
	return l
}

func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header)) // Trace ID 中间件
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))
		api.Use(middleware.RateLimiter(newMethodLimiters(cfg.RateLimit)))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.Cors())
		api.Use(middleware.LangWithTranslator(uni))

		// 创建 Handlers（注入 App Container）
		userHandler := api_router.NewUserHandler(appContainer)
		noteHandler := api_router.NewNoteHandler(appContainer)
		shareHandler := api_router.NewShareHandler(appContainer)
		postHandler := api_router.NewPostHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)

		// 无需认证
		api.GET("/health", healthHandler.Check)
		api.GET("/version", versionHandler.ServerVersion)

		api.POST("/user/register", userHandler.Register)
		api.POST("/user/login", userHandler.Login)
		api.POST("/user/password/forgot", userHandler.ForgotPassword)
		api.POST("/user/password/reset", userHandler.ResetPassword)

		api.GET("/notes/share/:token", shareHandler.ByToken)
		api.GET("/notes/slug/:slug", shareHandler.BySlug)

		optional := api.Group("", middleware.OptionalUserAuthToken(appContainer.TokenManager))
		optional.GET("/posts", postHandler.List)
		optional.GET("/post/:slug", postHandler.Get)
		optional.GET("/post/:slug/related", postHandler.Related)

		// 需要登录
		auth := api.Group("", middleware.UserAuthToken(appContainer.TokenManager))
		auth.POST("/user/change_password", userHandler.ChangePassword)
		auth.GET("/user/info", userHandler.Info)

		auth.POST("/notes", noteHandler.Create)
		auth.PUT("/notes", noteHandler.Update)
		auth.GET("/notes", noteHandler.List)
		auth.GET("/note", noteHandler.Get)
		auth.DELETE("/note", noteHandler.Delete)

		auth.POST("/posts", postHandler.Create)
		auth.PUT("/posts", postHandler.Update)
		auth.DELETE("/posts", postHandler.Delete)
	}

	r.Use(middleware.Cors())
	r.NoRoute(middleware.NoFound())

	return r
}
