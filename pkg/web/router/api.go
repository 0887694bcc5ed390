package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app/server"

	"eventshare-web/pkg/common/config"
	pages "eventshare-web/pkg/core/app"
	"eventshare-web/pkg/web/handler"
	"eventshare-web/pkg/web/middleware"
	"eventshare-web/pkg/web/view"
)

// Deps 路由依赖
type Deps struct {
	Pages  *pages.Pages
	Photos handler.PhotoSource
	Checks []handler.ComponentCheck
}

// RegisterAPIs 注册所有页面路由，ctx 结束时停止限流器
func RegisterAPIs(ctx context.Context, h *server.Hertz, cfg *config.Config, deps Deps) {
	cookies := handler.CookieOptions{Secure: cfg.IsProd()}
	healthHandler := handler.NewHealthCheckHandler(deps.Checks...)
	catalogHandler := handler.NewCatalogHandler(deps.Pages, cookies)
	authHandler := handler.NewAuthHandler(catalogHandler)
	galleryHandler := handler.NewGalleryHandler(deps.Pages, deps.Photos, cfg.Upload.MaxFileSize, cookies)

	h.SetHTMLTemplate(view.Templates())

	// 注册全局中间件（按执行顺序）
	h.Use(
		middleware.RecoveryMiddleware(cfg),
		middleware.LoggerMiddleware(),
		middleware.SecurityCheckMiddleware(cfg.Middleware.Security),
		middleware.CORSMiddleware(cfg.Middleware.CORS),
		middleware.RateLimitMiddleware(
			ctx,
			cfg.Middleware.RateLimit.Rate,
			cfg.Middleware.RateLimit.Interval,
		),
	)

	// 基础接口组
	h.GET("/health", healthHandler.AdvancedHealthCheck)

	// 活动列表页
	h.GET("/", catalogHandler.Index)
	h.GET("/me", catalogHandler.Me)
	h.POST("/edit/cancel", catalogHandler.CancelEdit)
	eventGroup := h.Group("/events")
	{
		eventGroup.POST("", catalogHandler.Submit)
		eventGroup.POST("/:id/edit", catalogHandler.BeginEdit)
		eventGroup.POST("/:id/delete", catalogHandler.Delete)
		eventGroup.POST("/:id/participate", catalogHandler.Participate)
		eventGroup.POST("/:id/cancel", catalogHandler.CancelParticipation)
		eventGroup.POST("/:id/gallery", catalogHandler.OpenGallery)
	}

	authGroup := h.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// 相册页
	galleryGroup := h.Group("/gallery")
	{
		galleryGroup.GET("", galleryHandler.Show)
		galleryGroup.POST("/select", galleryHandler.Select)
		galleryGroup.POST("/upload", galleryHandler.Upload)
		galleryGroup.POST("/reset", galleryHandler.Reset)
		galleryGroup.POST("/photos/:id/delete", galleryHandler.DeletePhoto)
		galleryGroup.GET("/file/:filename", galleryHandler.File)
	}
}
