package service

import (
	"context"

	"civic_feed/internal/domain/notification/model"
	"civic_feed/internal/domain/notification/repository"
	"civic_feed/pkg/utils"
)

// NotificationPage 通知分页结果
type NotificationPage struct {
	Notifications []model.Notification `json:"notifications"`
	Pagination    utils.PageMeta       `json:"pagination"`
}

type NotificationService interface {
	ListNotifications(ctx context.Context, userID string, page utils.Pagination) (*NotificationPage, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// ListNotifications 当前用户的通知，按时间倒序
func (s *notificationService) ListNotifications(ctx context.Context, userID string, page utils.Pagination) (*NotificationPage, error) {
	offset, limit := page.GetPageOffset()
	list, total, err := s.repo.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Notification{}
	}
	return &NotificationPage{
		Notifications: list,
		Pagination:    page.Meta(total),
	}, nil
}
