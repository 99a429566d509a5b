package service

import (
	"context"
	"sync"

	"civic_feed/internal/domain/post/model"
	"civic_feed/internal/domain/post/repository"
	userModel "civic_feed/internal/domain/user/model"
	"civic_feed/internal/pkg/event"

	"github.com/stretchr/testify/mock"
)

// MockPostRepository is a mock of PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) CreatePost(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

// MockLikeRepository is a mock of LikeRepository
type MockLikeRepository struct {
	mock.Mock
}

func (m *MockLikeRepository) CreateLike(ctx context.Context, userID, postID string) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

func (m *MockLikeRepository) DeleteLike(ctx context.Context, userID, postID string) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

func (m *MockLikeRepository) CountLikes(ctx context.Context, postID string) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLikeRepository) LikeExists(ctx context.Context, userID, postID string) (bool, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Error(1)
}

// MockLikersQuery is a mock of LikersQuery
type MockLikersQuery struct {
	mock.Mock
}

func (m *MockLikersQuery) ListLikers(ctx context.Context, postID string, offset, limit int) ([]repository.LikerRow, int64, error) {
	args := m.Called(ctx, postID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]repository.LikerRow), args.Get(1).(int64), args.Error(2)
}

// MockCommentRepository is a mock of CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetCommentWithAncestry(ctx context.Context, id string) (*model.CommentAncestry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommentAncestry), args.Error(1)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Comment), args.Error(1)
}

// MockDirectory is a mock of the user Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Get(ctx context.Context, id string) (userModel.Summary, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(userModel.Summary), args.Error(1)
}

func (m *MockDirectory) Summaries(ctx context.Context, ids []string) (map[string]userModel.Summary, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]userModel.Summary), args.Error(1)
}

func (m *MockDirectory) ResolveHandles(ctx context.Context, handles []string, excludingID string) ([]userModel.HandleRef, error) {
	args := m.Called(ctx, handles, excludingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]userModel.HandleRef), args.Error(1)
}

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) published() []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.Event(nil), p.events...)
}

func strPtr(s string) *string { return &s }
