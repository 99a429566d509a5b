package service

import (
	"context"
	"errors"
	"strings"

	"civic_feed/internal/domain/post/model"
	"civic_feed/internal/domain/post/repository"
	userService "civic_feed/internal/domain/user/service"
	"civic_feed/internal/pkg/event"

	"go.uber.org/zap"
)

// EventPublisher 结构性写入完成后发布事件，订阅者的失败不会返回给调用方
type EventPublisher interface {
	Publish(ctx context.Context, ev event.Event)
}

type PostService interface {
	PublishPost(ctx context.Context, authorID, content, imageURL, location string) (*model.PostView, error)
	GetPost(ctx context.Context, postID, viewerID string) (*model.PostView, error)
}

type postService struct {
	posts  repository.PostRepository
	views  *postViews
	events EventPublisher
}

func NewPostService(posts repository.PostRepository, likes repository.LikeRepository, users userService.Directory, events EventPublisher, log *zap.Logger) PostService {
	return &postService{
		posts:  posts,
		views:  newPostViews(likes, users, log),
		events: events,
	}
}

func (s *postService) PublishPost(ctx context.Context, authorID, content, imageURL, location string) (*model.PostView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	post := &model.Post{
		AuthorID: authorID,
		Content:  content,
		ImageURL: imageURL,
		Location: location,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, event.PostPublished{
		PostID:   post.ID,
		AuthorID: authorID,
		Content:  content,
	})

	return s.views.build(ctx, post, authorID)
}

func (s *postService) GetPost(ctx context.Context, postID, viewerID string) (*model.PostView, error) {
	post, err := getPost(ctx, s.posts, postID)
	if err != nil {
		return nil, err
	}
	return s.views.build(ctx, post, viewerID)
}

func getPost(ctx context.Context, posts repository.PostRepository, postID string) (*model.Post, error) {
	post, err := posts.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// postViews 组装动态视图：点赞数每次实时统计，是否点赞只针对当前查看者
type postViews struct {
	likes repository.LikeRepository
	users userService.Directory
	log   *zap.Logger
}

func newPostViews(likes repository.LikeRepository, users userService.Directory, log *zap.Logger) *postViews {
	if log == nil {
		log = zap.NewNop()
	}
	return &postViews{likes: likes, users: users, log: log}
}

func (v *postViews) build(ctx context.Context, post *model.Post, viewerID string) (*model.PostView, error) {
	count, err := v.likes.CountLikes(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	view := &model.PostView{Post: *post, Likes: count}
	if viewerID != "" {
		liked, err := v.likes.LikeExists(ctx, viewerID, post.ID)
		if err != nil {
			return nil, err
		}
		view.IsLikedByCurrentUser = liked
	}

	author, err := v.users.Get(ctx, post.AuthorID)
	if err != nil {
		v.log.Debug("post author lookup failed", zap.String("post_id", post.ID), zap.Error(err))
		return view, nil
	}
	view.Author = &author
	return view, nil
}
