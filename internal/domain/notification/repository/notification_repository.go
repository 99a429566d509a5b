package repository

import (
	"context"

	"civic_feed/internal/domain/notification/model"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	// CreateNotifications 单条 INSERT 批量写入，要么全部成功要么全部失败
	CreateNotifications(ctx context.Context, batch []model.Notification) error
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Notification, int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateNotifications(ctx context.Context, batch []model.Notification) error {
	if len(batch) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&batch).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Notification, int64, error) {
	var list []model.Notification
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if int64(offset) >= total {
		return []model.Notification{}, total, nil
	}
	if err := query.Order("created_at desc, id desc").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
