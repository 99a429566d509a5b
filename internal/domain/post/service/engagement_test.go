package service

import (
	"context"
	"testing"
	"time"

	"civic_feed/internal/domain/post/model"
	"civic_feed/internal/domain/post/repository"
	userModel "civic_feed/internal/domain/user/model"
	userRepository "civic_feed/internal/domain/user/repository"
	userService "civic_feed/internal/domain/user/service"
	"civic_feed/pkg/cache"
	"civic_feed/pkg/database"
	"civic_feed/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type engagement struct {
	db       *gorm.DB
	events   *recordingPublisher
	posts    PostService
	likes    LikeService
	comments CommentService
}

func newEngagement(t *testing.T) *engagement {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&userModel.User{}, &model.Post{}, &model.Like{}, &model.Comment{}))

	x, err := database.SQLX(db)
	require.NoError(t, err)

	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	dir := userService.NewDirectory(userRepository.NewUserRepository(db), cache.NewMemoryCache(), time.Minute, nil)
	events := &recordingPublisher{}

	return &engagement{
		db:       db,
		events:   events,
		posts:    NewPostService(postRepo, likeRepo, dir, events, nil),
		likes:    NewLikeService(postRepo, likeRepo, repository.NewLikersQuery(x), dir, events, PageLimits{Default: 10, Max: 50}, nil),
		comments: NewCommentService(postRepo, commentRepo, dir, events, nil),
	}
}

func (e *engagement) user(t *testing.T, id, handle string) {
	t.Helper()
	require.NoError(t, e.db.Create(&userModel.User{ID: id, Handle: &handle, DisplayName: handle, Role: userModel.RoleCitizen}).Error)
}

func (e *engagement) post(t *testing.T, author string) string {
	t.Helper()
	view, err := e.posts.PublishPost(context.Background(), author, "a post", "", "")
	require.NoError(t, err)
	return view.ID
}

func TestLikeLedgerProperties(t *testing.T) {
	ctx := context.Background()
	e := newEngagement(t)
	e.user(t, "u1", "alice")
	e.user(t, "u2", "bob")
	e.user(t, "u3", "carol")
	postID := e.post(t, "u1")

	t.Run("like twice yields already liked and one like", func(t *testing.T) {
		view, err := e.likes.Like(ctx, postID, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), view.Likes)
		assert.True(t, view.IsLikedByCurrentUser)

		_, err = e.likes.Like(ctx, postID, "u1")
		assert.ErrorIs(t, err, ErrAlreadyLiked)

		view, err = e.posts.GetPost(ctx, postID, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), view.Likes)
	})

	t.Run("viewers see the same count and their own flag", func(t *testing.T) {
		asLiker, err := e.posts.GetPost(ctx, postID, "u1")
		require.NoError(t, err)
		asOther, err := e.posts.GetPost(ctx, postID, "u2")
		require.NoError(t, err)
		anonymous, err := e.posts.GetPost(ctx, postID, "")
		require.NoError(t, err)

		assert.True(t, asLiker.IsLikedByCurrentUser)
		assert.False(t, asOther.IsLikedByCurrentUser)
		assert.False(t, anonymous.IsLikedByCurrentUser)
		assert.Equal(t, asLiker.Likes, asOther.Likes)
		assert.Equal(t, asLiker.Likes, anonymous.Likes)
	})

	t.Run("unlike restores the previous view", func(t *testing.T) {
		before, err := e.posts.GetPost(ctx, postID, "u2")
		require.NoError(t, err)

		_, err = e.likes.Like(ctx, postID, "u2")
		require.NoError(t, err)
		after, err := e.likes.Unlike(ctx, postID, "u2")
		require.NoError(t, err)

		assert.Equal(t, before.Likes, after.Likes)
		assert.Equal(t, before.IsLikedByCurrentUser, after.IsLikedByCurrentUser)

		_, err = e.likes.Unlike(ctx, postID, "u2")
		assert.ErrorIs(t, err, ErrNotLiked)
	})

	t.Run("likers pagination", func(t *testing.T) {
		_, err := e.likes.Like(ctx, postID, "u2")
		require.NoError(t, err)
		_, err = e.likes.Like(ctx, postID, "u3")
		require.NoError(t, err)

		page, err := e.likes.GetLikers(ctx, postID, utils.Pagination{Page: 1, Limit: 1})
		require.NoError(t, err)
		assert.Len(t, page.Likers, 1)
		assert.Equal(t, int64(3), page.Pagination.Total)
		assert.Equal(t, 3, page.Pagination.TotalPages)
	})

	t.Run("likers of a missing post", func(t *testing.T) {
		_, err := e.likes.GetLikers(ctx, "missing", utils.Pagination{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCommentDepthCap(t *testing.T) {
	ctx := context.Background()
	e := newEngagement(t)
	e.user(t, "u1", "alice")
	e.user(t, "u2", "bob")
	postID := e.post(t, "u1")

	c0, err := e.comments.AddComment(ctx, postID, "u2", "top", "")
	require.NoError(t, err)
	c1, err := e.comments.AddComment(ctx, postID, "u1", "depth one", c0.ID)
	require.NoError(t, err)
	c2, err := e.comments.AddComment(ctx, postID, "u2", "depth two", c1.ID)
	require.NoError(t, err)
	c3, err := e.comments.AddComment(ctx, postID, "u1", "would be depth three", c2.ID)
	require.NoError(t, err)

	require.NotNil(t, c3.ParentID)
	assert.Equal(t, c1.ID, *c3.ParentID)

	replyCount := func(id string) int {
		var c model.Comment
		require.NoError(t, e.db.First(&c, "id = ?", id).Error)
		return c.ReplyCount
	}
	assert.Equal(t, 1, replyCount(c0.ID))
	assert.Equal(t, 2, replyCount(c1.ID))
	assert.Equal(t, 0, replyCount(c2.ID))

	var post model.Post
	require.NoError(t, e.db.First(&post, "id = ?", postID).Error)
	assert.Equal(t, 1, post.Comments)

	thread, err := e.comments.GetComments(ctx, postID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	require.Len(t, thread[0].Replies, 1)
	assert.Len(t, thread[0].Replies[0].Replies, 2)
	require.NotNil(t, thread[0].Author)
	assert.Equal(t, "bob", thread[0].Author.Handle)

	t.Run("parent from a different post", func(t *testing.T) {
		otherPost := e.post(t, "u2")
		_, err := e.comments.AddComment(ctx, otherPost, "u1", "cross", c0.ID)
		assert.ErrorIs(t, err, ErrInvalidParent)
	})
}
