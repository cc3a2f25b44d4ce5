package router

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/gin-blog/config"
	_ "github.com/d60-Lab/gin-blog/docs"
	"github.com/d60-Lab/gin-blog/internal/api/handler"
	"github.com/d60-Lab/gin-blog/internal/api/middleware"
	"github.com/d60-Lab/gin-blog/internal/auth"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

// Setup 注册中间件与全部路由
func Setup(cfg *config.Config, h *handler.Handler, tokens *auth.TokenIssuer) (*gin.Engine, error) {
	gin.SetMode(cfg.Server.Mode)
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logger())
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.NoRoute(func(c *gin.Context) { response.NotFound(c, "route not found") })

	limiter := middleware.NewKeyedLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
	requireAuth := middleware.RequireAuth(tokens)
	admin := func(next gin.HandlerFunc) []gin.HandlerFunc {
		return []gin.HandlerFunc{requireAuth, middleware.AdminOnly(), next}
	}

	v1 := r.Group("/api/v1", middleware.OptionalAuth(tokens))
	{
		authGroup := v1.Group("/auth")
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", middleware.RateLimit(limiter), h.Login)

		posts := v1.Group("/posts")
		posts.GET("", h.ListPosts)
		posts.POST("", admin(h.CreatePost)...)
		posts.GET("/:id", h.GetPost)
		posts.PUT("/:id", admin(h.UpdatePost)...)
		posts.DELETE("/:id", admin(h.DeletePost)...)
		posts.GET("/:id/edit", admin(h.EditPostForm)...)
		posts.GET("/:id/tags", h.ListPostTags)
		posts.DELETE("/:id/tags/:tag_name", admin(h.RemovePostTag)...)
		posts.POST("/:id/comments-toggle", admin(h.ToggleComments)...)
		posts.GET("/:id/comments", h.ListComments)
		posts.POST("/:id/comments", middleware.RateLimit(limiter), h.CreateComment)
		posts.POST("/:id/comments/:comment_id/toggle", admin(h.ToggleComment)...)

		v1.GET("/tags", h.ListTags)
		v1.GET("/tags/:name/posts", h.ListTagPosts)
		v1.GET("/search", h.Search)

		v1.GET("/about", h.About)
		v1.GET("/users/:username", h.GetUser)
		v1.PUT("/users/:id", admin(h.AdminUpdateUser)...)
		v1.PUT("/profile", requireAuth, h.UpdateProfile)
	}
	return r, nil
}
