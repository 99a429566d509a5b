package model

import "time"

// 角色
const (
	RoleCitizen  = "citizen"
	RoleOfficial = "official"
	RoleAdmin    = "admin"
)

// User 用户模型
// 用户由身份子系统维护，本服务只读
type User struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Handle      *string   `gorm:"uniqueIndex" json:"handle,omitempty"` // 存储时统一小写
	DisplayName string    `json:"displayName"`
	Role        string    `gorm:"default:'citizen'" json:"role"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Summary 附加在动态、评论、点赞列表上的作者信息
type Summary struct {
	ID          string `json:"id"`
	Handle      string `json:"handle,omitempty"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Verified    bool   `json:"verified"`
}

// ToSummary 转换为作者信息
func (u *User) ToSummary() Summary {
	s := Summary{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Verified:    u.Verified,
	}
	if u.Handle != nil {
		s.Handle = *u.Handle
	}
	return s
}

// HandleRef 提及解析结果
type HandleRef struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
}
