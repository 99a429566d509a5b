package repository

import (
	"context"
	"testing"
	"time"

	"civic_feed/internal/domain/post/model"
	userModel "civic_feed/internal/domain/user/model"
	"civic_feed/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id, handle string) {
	t.Helper()
	u := userModel.User{ID: id, Handle: &handle, DisplayName: handle, Role: userModel.RoleCitizen}
	require.NoError(t, db.Create(&u).Error)
}

func seedPost(t *testing.T, db *gorm.DB, authorID string) *model.Post {
	t.Helper()
	p := &model.Post{AuthorID: authorID, Content: "hello"}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestLikeRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	seedUser(t, db, "u1", "alice")
	post := seedPost(t, db, "u1")

	t.Run("second like on same pair is a duplicate", func(t *testing.T) {
		require.NoError(t, repo.CreateLike(ctx, "u1", post.ID))
		err := repo.CreateLike(ctx, "u1", post.ID)
		assert.ErrorIs(t, err, ErrDuplicate)

		count, err := repo.CountLikes(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("exists is scoped to the viewer", func(t *testing.T) {
		ok, err := repo.LikeExists(ctx, "u1", post.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.LikeExists(ctx, "u2", post.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repo.LikeExists(ctx, "", post.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete then like again", func(t *testing.T) {
		require.NoError(t, repo.DeleteLike(ctx, "u1", post.ID))
		assert.ErrorIs(t, repo.DeleteLike(ctx, "u1", post.ID), ErrNotFound)

		count, err := repo.CountLikes(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		require.NoError(t, repo.CreateLike(ctx, "u1", post.ID))
	})
}

func TestCommentRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	seedUser(t, db, "u1", "alice")
	post := seedPost(t, db, "u1")

	top := &model.Comment{PostID: post.ID, AuthorID: "u1", Content: "top"}
	top.CreatedAt = base
	require.NoError(t, repo.CreateComment(ctx, top))

	reply := &model.Comment{PostID: post.ID, AuthorID: "u1", Content: "reply", ParentID: &top.ID}
	reply.CreatedAt = base.Add(time.Minute)
	require.NoError(t, repo.CreateComment(ctx, reply))

	nested := &model.Comment{PostID: post.ID, AuthorID: "u1", Content: "nested", ParentID: &reply.ID}
	nested.CreatedAt = base.Add(2 * time.Minute)
	require.NoError(t, repo.CreateComment(ctx, nested))

	t.Run("top-level comment increments post counter", func(t *testing.T) {
		var p model.Post
		require.NoError(t, db.First(&p, "id = ?", post.ID).Error)
		assert.Equal(t, 1, p.Comments)
	})

	t.Run("replies increment their parent only", func(t *testing.T) {
		got, err := repo.GetCommentWithAncestry(ctx, top.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Comment.ReplyCount)
		assert.Nil(t, got.Parent)

		got, err = repo.GetCommentWithAncestry(ctx, reply.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Comment.ReplyCount)
		require.NotNil(t, got.Parent)
		assert.Equal(t, top.ID, got.Parent.ID)
	})

	t.Run("ancestry exposes the grandparent link", func(t *testing.T) {
		got, err := repo.GetCommentWithAncestry(ctx, nested.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Parent)
		assert.Equal(t, reply.ID, got.Parent.ID)
		require.NotNil(t, got.Parent.ParentID)
		assert.Equal(t, top.ID, *got.Parent.ParentID)
	})

	t.Run("unknown comment", func(t *testing.T) {
		_, err := repo.GetCommentWithAncestry(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("reply to a missing parent rolls back", func(t *testing.T) {
		missing := "missing"
		orphan := &model.Comment{PostID: post.ID, AuthorID: "u1", Content: "orphan", ParentID: &missing}
		assert.ErrorIs(t, repo.CreateComment(ctx, orphan), ErrNotFound)

		var count int64
		require.NoError(t, db.Model(&model.Comment{}).Where("content = ?", "orphan").Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("list is chronological", func(t *testing.T) {
		list, err := repo.ListByPost(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{"top", "reply", "nested"}, []string{list[0].Content, list[1].Content, list[2].Content})
	})
}

func TestLikersQuery(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedUser(t, db, "u1", "alice")
	seedUser(t, db, "u2", "bob")
	seedUser(t, db, "u3", "carol")
	post := seedPost(t, db, "u1")
	other := seedPost(t, db, "u1")

	for i, id := range []string{"u1", "u2", "u3"} {
		like := model.Like{UserID: id, PostID: post.ID, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, db.Create(&like).Error)
	}

	x, err := database.SQLX(db)
	require.NoError(t, err)
	q := NewLikersQuery(x)

	t.Run("newest like first", func(t *testing.T) {
		rows, total, err := q.ListLikers(ctx, post.ID, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, rows, 3)
		assert.Equal(t, "u3", rows[0].UserID)
		assert.Equal(t, "carol", rows[0].Handle)
		assert.Equal(t, "u1", rows[2].UserID)
		assert.True(t, rows[0].LikedAt.Equal(base.Add(2*time.Second)))
	})

	t.Run("page of one", func(t *testing.T) {
		rows, total, err := q.ListLikers(ctx, post.ID, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, rows, 1)
		assert.Equal(t, "u2", rows[0].UserID)
	})

	t.Run("post without likes", func(t *testing.T) {
		rows, total, err := q.ListLikers(ctx, other.ID, 0, 10)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, rows)
	})

	t.Run("offset past the last page keeps the total", func(t *testing.T) {
		rows, total, err := q.ListLikers(ctx, post.ID, 2147483600, 50)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Empty(t, rows)
	})

	t.Run("like from a user without a profile row", func(t *testing.T) {
		lonely := seedPost(t, db, "u1")
		require.NoError(t, db.Create(&model.Like{UserID: "u2", PostID: lonely.ID, CreatedAt: base}).Error)
		require.NoError(t, db.Create(&model.Like{UserID: "u-gone", PostID: lonely.ID, CreatedAt: base.Add(time.Second)}).Error)

		count, err := NewLikeRepository(db).CountLikes(ctx, lonely.ID)
		require.NoError(t, err)

		rows, total, err := q.ListLikers(ctx, lonely.ID, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, count, total)
		require.Len(t, rows, 2)
		assert.Equal(t, "u-gone", rows[0].UserID)
		assert.Empty(t, rows[0].Handle)
		assert.False(t, rows[0].Verified)
		assert.Equal(t, "bob", rows[1].Handle)
	})
}
