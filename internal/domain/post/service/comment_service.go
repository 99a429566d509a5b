package service

import (
	"context"
	"errors"
	"strings"

	"civic_feed/internal/domain/post/model"
	"civic_feed/internal/domain/post/repository"
	userModel "civic_feed/internal/domain/user/model"
	userService "civic_feed/internal/domain/user/service"
	"civic_feed/internal/pkg/event"

	"go.uber.org/zap"
)

// CommentService 评论与回复
type CommentService interface {
	AddComment(ctx context.Context, postID, authorID, content, parentID string) (*model.CommentView, error)
	GetComments(ctx context.Context, postID string) ([]model.CommentView, error)
}

type commentService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	users    userService.Directory
	events   EventPublisher
	log      *zap.Logger
}

func NewCommentService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	users userService.Directory,
	events EventPublisher,
	log *zap.Logger,
) CommentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &commentService{
		posts:    posts,
		comments: comments,
		users:    users,
		events:   events,
		log:      log,
	}
}

// AddComment 发表评论或回复
// 回复超过最大层级时挂到被回复评论的父评论下，返回的 parentId 为实际父评论
func (s *commentService) AddComment(ctx context.Context, postID, authorID, content, parentID string) (*model.CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	post, err := getPost(ctx, s.posts, postID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	recipient := post.AuthorID
	var effective EffectiveParent

	if parentID != "" {
		ancestry, err := s.comments.GetCommentWithAncestry(ctx, parentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCommentNotFound
			}
			return nil, err
		}
		if ancestry.Comment.PostID != postID {
			return nil, ErrInvalidParent
		}

		effective = ResolveEffectiveParent(*ancestry)
		comment.ParentID = &effective.ParentID
		recipient = effective.NotifyUserID
	}

	// 不通知自己
	if recipient == authorID {
		recipient = ""
	}

	if err := s.comments.CreateComment(ctx, comment); err != nil {
		// 计数行在写入前被删除，整个事务已回滚
		if errors.Is(err, repository.ErrNotFound) {
			if comment.IsTopLevel() {
				return nil, ErrPostNotFound
			}
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if effective.Reparented {
		s.log.Debug("reply attached one level up",
			zap.String("comment_id", comment.ID),
			zap.String("requested_parent", parentID),
			zap.String("parent", effective.ParentID),
		)
	}

	s.events.Publish(ctx, event.CommentCreated{
		CommentID:         comment.ID,
		PostID:            postID,
		PostAuthorID:      post.AuthorID,
		AuthorID:          authorID,
		ParentID:          effective.ParentID,
		RequestedParentID: parentID,
		Reparented:        effective.Reparented,
		RecipientID:       recipient,
		Content:           content,
		CreatedAt:         comment.CreatedAt,
	})

	authors := s.authorSummaries(ctx, []string{authorID})
	view := NewCommentView(*comment, authors)
	return &view, nil
}

// GetComments 返回两层嵌套的评论树
func (s *commentService) GetComments(ctx context.Context, postID string) ([]model.CommentView, error) {
	if _, err := getPost(ctx, s.posts, postID); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	authors := s.authorSummaries(ctx, commentAuthorIDs(comments))
	return BuildThread(comments, authors), nil
}

// authorSummaries 作者信息只用于展示，查询失败时返回空结果
func (s *commentService) authorSummaries(ctx context.Context, ids []string) map[string]userModel.Summary {
	if len(ids) == 0 {
		return nil
	}
	authors, err := s.users.Summaries(ctx, ids)
	if err != nil {
		s.log.Warn("comment author lookup failed", zap.Error(err))
		return nil
	}
	return authors
}
