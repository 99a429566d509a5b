package repository

import (
	"context"
	"errors"

	"civic_feed/internal/domain/post/model"

	"gorm.io/gorm"
)

type CommentRepository interface {
	// CreateComment 在同一事务中插入评论并递增计数：
	// 一级评论递增动态的 comments，回复递增父评论的 reply_count
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentWithAncestry(ctx context.Context, id string) (*model.CommentAncestry, error)
	ListByPost(ctx context.Context, postID string) ([]model.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}

		if comment.IsTopLevel() {
			return incrementPostCommentCount(tx, comment.PostID)
		}
		return incrementReplyCount(tx, *comment.ParentID)
	})
}

func incrementPostCommentCount(tx *gorm.DB, postID string) error {
	result := tx.Model(&model.Post{}).
		Where("id = ?", postID).
		UpdateColumn("comments", gorm.Expr("comments + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func incrementReplyCount(tx *gorm.DB, commentID string) error {
	result := tx.Model(&model.Comment{}).
		Where("id = ?", commentID).
		UpdateColumn("reply_count", gorm.Expr("reply_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCommentWithAncestry 读取评论及其父评论（父评论自身的 parent_id 一并带出）
func (r *commentRepository) GetCommentWithAncestry(ctx context.Context, id string) (*model.CommentAncestry, error) {
	db := r.db.WithContext(ctx)

	var comment model.Comment
	if err := db.Where("id = ?", id).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ancestry := &model.CommentAncestry{Comment: comment}
	if comment.IsTopLevel() {
		return ancestry, nil
	}

	var parent model.Comment
	if err := db.Where("id = ?", *comment.ParentID).First(&parent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 父评论丢失时按一级评论处理
			return ancestry, nil
		}
		return nil, err
	}
	ancestry.Parent = &parent
	return ancestry, nil
}

// ListByPost 按时间正序返回动态下的全部评论，由上层组装成树
func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at asc, id asc").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
