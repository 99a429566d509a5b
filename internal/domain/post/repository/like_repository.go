package repository

import (
	"context"

	"civic_feed/internal/domain/post/model"
	"civic_feed/pkg/database"

	"gorm.io/gorm"
)

// LikeRepository 点赞记录
// 唯一性完全依赖 (user_id, post_id) 主键，不做应用层加锁
type LikeRepository interface {
	CreateLike(ctx context.Context, userID, postID string) error
	DeleteLike(ctx context.Context, userID, postID string) error
	CountLikes(ctx context.Context, postID string) (int64, error)
	LikeExists(ctx context.Context, userID, postID string) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// CreateLike 插入点赞，主键冲突时返回 ErrDuplicate
func (r *likeRepository) CreateLike(ctx context.Context, userID, postID string) error {
	like := &model.Like{UserID: userID, PostID: postID}
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// DeleteLike 删除点赞，没有命中任何行时返回 ErrNotFound
func (r *likeRepository) DeleteLike(ctx context.Context, userID, postID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.Like{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *likeRepository) CountLikes(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *likeRepository) LikeExists(ctx context.Context, userID, postID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}
