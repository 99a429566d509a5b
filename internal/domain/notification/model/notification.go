package model

import (
	baseModel "civic_feed/pkg/model"
)

type NotificationType string

const (
	TypeNewComment NotificationType = "new_comment"
	TypeNewReply   NotificationType = "new_reply"
	TypeMention    NotificationType = "mention"
)

// Notification 通知记录
// 本服务只负责创建，已读状态由其他子系统修改
type Notification struct {
	baseModel.BaseModel
	UserID    string           `gorm:"type:uuid;index;not null" json:"userId"` // 接收人
	ActorID   string           `gorm:"type:uuid;index" json:"actorId,omitempty"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Title     string           `gorm:"not null" json:"title"`
	Content   string           `gorm:"type:text" json:"content"`
	ActionURL string           `json:"actionUrl,omitempty"`
	IsRead    bool             `gorm:"default:false;index" json:"isRead"`
}
