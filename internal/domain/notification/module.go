package notification

import (
	"errors"
	"fmt"

	"civic_feed/internal/domain/notification/handler"
	"civic_feed/internal/domain/notification/model"
	"civic_feed/internal/domain/notification/repository"
	"civic_feed/internal/domain/notification/service"
	"civic_feed/internal/pkg/middleware"
	"civic_feed/internal/pkg/registry"
)

// NotificationModule 通知模块：订阅评论、发布事件，生成评论/回复/提及通知
type NotificationModule struct{}

func init() {
	registry.Register(&NotificationModule{})
}

func (m *NotificationModule) Name() string {
	return "notification"
}

func (m *NotificationModule) Priority() int {
	return 20
}

func (m *NotificationModule) Init(ctx *registry.ModuleContext) error {
	if ctx.Users == nil || ctx.Events == nil {
		return errors.New("notification module requires the user directory and event bus")
	}
	if ctx.Config.Database.AutoMigrate {
		if err := ctx.DB.AutoMigrate(&model.Notification{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}
	log := ctx.NamedLogger("notification")

	repo := repository.NewNotificationRepository(ctx.DB)

	var recorder service.Recorder
	if ctx.Metrics != nil {
		recorder = ctx.Metrics
	}
	dispatcher := service.NewDispatcher(repo, recorder)
	mentions := service.NewMentionResolver(ctx.Users, dispatcher)
	service.NewSubscriber(dispatcher, mentions, ctx.Users, log).Register(ctx.Events)

	h := handler.NewNotificationHandler(service.NewNotificationService(repo), log)
	g := ctx.Router.Group("/notifications")
	g.Use(middleware.AuthMiddleware())
	g.GET("", h.ListNotifications)
	return nil
}
