package service

import (
	"context"
	"errors"

	"civic_feed/internal/domain/post/model"
	"civic_feed/internal/domain/post/repository"
	userModel "civic_feed/internal/domain/user/model"
	userService "civic_feed/internal/domain/user/service"
	"civic_feed/internal/pkg/event"
	"civic_feed/pkg/utils"

	"go.uber.org/zap"
)

// PageLimits 分页默认值与上限
type PageLimits struct {
	Default int
	Max     int
}

// LikeService 点赞账本
type LikeService interface {
	Like(ctx context.Context, postID, userID string) (*model.PostView, error)
	Unlike(ctx context.Context, postID, userID string) (*model.PostView, error)
	GetLikers(ctx context.Context, postID string, page utils.Pagination) (*model.LikersPage, error)
}

type likeService struct {
	posts  repository.PostRepository
	likes  repository.LikeRepository
	likers repository.LikersQuery
	views  *postViews
	events EventPublisher
	limits PageLimits
}

func NewLikeService(
	posts repository.PostRepository,
	likes repository.LikeRepository,
	likers repository.LikersQuery,
	users userService.Directory,
	events EventPublisher,
	limits PageLimits,
	log *zap.Logger,
) LikeService {
	if limits.Default <= 0 {
		limits.Default = 10
	}
	if limits.Max < limits.Default {
		limits.Max = limits.Default
	}
	return &likeService{
		posts:  posts,
		likes:  likes,
		likers: likers,
		views:  newPostViews(likes, users, log),
		events: events,
		limits: limits,
	}
}

// Like 点赞，重复点赞（包括并发时主键冲突）统一返回 ErrAlreadyLiked
func (s *likeService) Like(ctx context.Context, postID, userID string) (*model.PostView, error) {
	post, err := getPost(ctx, s.posts, postID)
	if err != nil {
		return nil, err
	}

	if err := s.likes.CreateLike(ctx, userID, postID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyLiked
		}
		return nil, err
	}

	s.events.Publish(ctx, event.LikeAdded{PostID: postID, UserID: userID})
	return s.views.build(ctx, post, userID)
}

// Unlike 取消点赞
func (s *likeService) Unlike(ctx context.Context, postID, userID string) (*model.PostView, error) {
	post, err := getPost(ctx, s.posts, postID)
	if err != nil {
		return nil, err
	}

	if err := s.likes.DeleteLike(ctx, userID, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotLiked
		}
		return nil, err
	}

	s.events.Publish(ctx, event.LikeRemoved{PostID: postID, UserID: userID})
	return s.views.build(ctx, post, userID)
}

// GetLikers 点赞用户列表，按点赞时间倒序
func (s *likeService) GetLikers(ctx context.Context, postID string, page utils.Pagination) (*model.LikersPage, error) {
	if _, err := getPost(ctx, s.posts, postID); err != nil {
		return nil, err
	}

	page.Normalize(s.limits.Default, s.limits.Max)
	offset := page.Offset()

	rows, total, err := s.likers.ListLikers(ctx, postID, offset, page.Limit)
	if err != nil {
		return nil, err
	}

	likers := make([]model.Liker, 0, len(rows))
	for _, r := range rows {
		likers = append(likers, model.Liker{
			Summary: userModel.Summary{
				ID:          r.UserID,
				Handle:      r.Handle,
				DisplayName: r.DisplayName,
				Role:        r.Role,
				Verified:    r.Verified,
			},
			LikedAt: r.LikedAt,
		})
	}

	return &model.LikersPage{
		Likers:     likers,
		Pagination: page.Meta(total),
	}, nil
}
