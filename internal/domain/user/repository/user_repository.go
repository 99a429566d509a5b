package repository

import (
	"context"
	"errors"

	"civic_feed/internal/domain/user/model"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("user not found")

// UserRepository 接口定义
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.User, error)
	FindByHandles(ctx context.Context, handles []string, excludingID string) ([]model.HandleRef, error)
}

// userRepository 实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建新的仓库实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID 根据ID获取用户
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDs 批量获取用户，不存在的 ID 直接忽略
func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []model.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindByHandles 按 handle 查找用户，排除 excludingID
// handles 需由调用方折叠为小写（见 notification/service.ExtractMentions），这里不再二次处理
func (r *userRepository) FindByHandles(ctx context.Context, handles []string, excludingID string) ([]model.HandleRef, error) {
	if len(handles) == 0 {
		return nil, nil
	}

	var refs []model.HandleRef
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("id, handle").
		Where("LOWER(handle) IN ?", handles).
		Where("id <> ?", excludingID).
		Order("handle asc").
		Scan(&refs).Error
	if err != nil {
		return nil, err
	}
	return refs, nil
}
