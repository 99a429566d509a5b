package service

import (
	"context"

	"civic_feed/internal/domain/notification/model"
	"civic_feed/internal/domain/notification/repository"
)

// Recorder 通知计数，由 metrics 实现
type Recorder interface {
	RecordNotifications(notificationType string, n int)
}

// Dispatcher 只负责写入通知记录
// 是否通知行为人本人由调用方判断
type Dispatcher interface {
	Notify(ctx context.Context, n model.Notification) error
	NotifyBatch(ctx context.Context, batch []model.Notification) error
}

type dispatcher struct {
	repo     repository.NotificationRepository
	recorder Recorder
}

func NewDispatcher(repo repository.NotificationRepository, recorder Recorder) Dispatcher {
	return &dispatcher{repo: repo, recorder: recorder}
}

func (d *dispatcher) Notify(ctx context.Context, n model.Notification) error {
	return d.NotifyBatch(ctx, []model.Notification{n})
}

func (d *dispatcher) NotifyBatch(ctx context.Context, batch []model.Notification) error {
	if len(batch) == 0 {
		return nil
	}
	if err := d.repo.CreateNotifications(ctx, batch); err != nil {
		return err
	}

	if d.recorder != nil {
		counts := make(map[model.NotificationType]int)
		for _, n := range batch {
			counts[n.Type]++
		}
		for t, c := range counts {
			d.recorder.RecordNotifications(string(t), c)
		}
	}
	return nil
}
