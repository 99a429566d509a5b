package post

import (
	"errors"
	"fmt"

	"civic_feed/internal/domain/post/handler"
	"civic_feed/internal/domain/post/model"
	"civic_feed/internal/domain/post/repository"
	"civic_feed/internal/domain/post/service"
	"civic_feed/internal/pkg/middleware"
	"civic_feed/internal/pkg/registry"
	"civic_feed/pkg/database"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// PostModule 动态模块：点赞账本与评论
type PostModule struct{}

func init() {
	registry.Register(&PostModule{})
}

func (m *PostModule) Name() string {
	return "post"
}

func (m *PostModule) Priority() int {
	return 10
}

func (m *PostModule) Init(ctx *registry.ModuleContext) error {
	if ctx.Users == nil || ctx.Events == nil {
		return errors.New("post module requires the user directory and event bus")
	}

	if ctx.Config.Database.AutoMigrate {
		if err := ctx.DB.AutoMigrate(&model.Post{}, &model.Like{}, &model.Comment{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}

	// 1. 依赖注入
	x, err := database.SQLX(ctx.DB)
	if err != nil {
		return fmt.Errorf("likers query: %w", err)
	}
	log := ctx.NamedLogger("post")
	cfg := ctx.Config.Engagement

	postRepo := repository.NewPostRepository(ctx.DB)
	likeRepo := repository.NewLikeRepository(ctx.DB)
	commentRepo := repository.NewCommentRepository(ctx.DB)

	postService := service.NewPostService(postRepo, likeRepo, ctx.Users, ctx.Events, log)
	likeService := service.NewLikeService(postRepo, likeRepo, repository.NewLikersQuery(x), ctx.Users, ctx.Events,
		service.PageLimits{Default: cfg.LikersDefaultSize, Max: cfg.LikersMaxSize}, log)
	commentService := service.NewCommentService(postRepo, commentRepo, ctx.Users, ctx.Events, log)

	h := handler.NewPostHandler(postService, likeService, commentService, log)

	// 2. 路由注册
	limiter := middleware.NewRateLimiter(rate.Limit(ctx.Config.RateLimit.RPS), ctx.Config.RateLimit.Burst)
	setupRoutes(ctx.Router, h, limiter)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PostHandler, limiter *middleware.RateLimiter) {
	g := r.Group("/posts")

	// 匿名可读，登录后带上 isLikedByCurrentUser
	public := g.Group("")
	public.Use(middleware.OptionalAuthMiddleware())
	{
		public.GET("/:id", h.GetPost)
		public.GET("/:id/likers", h.GetLikers)
		public.GET("/:id/comments", h.GetComments)
	}

	// User interactions (Requires Login)
	auth := g.Group("")
	auth.Use(middleware.AuthMiddleware(), middleware.RateLimitMiddleware(limiter))
	{
		auth.POST("", h.PublishPost)
		auth.POST("/:id/like", h.Like)
		auth.DELETE("/:id/unlike", h.Unlike)
		auth.POST("/:id/comments", h.AddComment)
	}
}
