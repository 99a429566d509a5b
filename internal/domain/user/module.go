package user

import (
	"fmt"

	"civic_feed/internal/domain/user/handler"
	"civic_feed/internal/domain/user/model"
	"civic_feed/internal/domain/user/repository"
	"civic_feed/internal/domain/user/service"
	"civic_feed/internal/pkg/registry"
	"civic_feed/pkg/cache"

	"github.com/gin-gonic/gin"
)

// UserModule 用户模块
// 用户数据由身份子系统维护，这里只提供只读的用户目录
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// 用户模块优先级最高，因为其他模块依赖用户目录
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	if ctx.Config.Database.AutoMigrate {
		if err := ctx.DB.AutoMigrate(&model.User{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}

	// 1. 依赖注入
	c := ctx.Cache
	if c == nil {
		c = cache.NewMemoryCache()
	}
	userRepo := repository.NewUserRepository(ctx.DB)
	directory := service.NewDirectory(userRepo, c, ctx.Config.Engagement.UserCacheTTL, ctx.NamedLogger("user"))
	ctx.Users = directory

	// 2. 路由注册
	setupRoutes(ctx.Router, handler.NewUserHandler(directory))
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.UserHandler) {
	r.GET("/users/:id", h.GetUser)
}
