package event

import "time"

type Topic string

const (
	TopicPostPublished  Topic = "post.published"
	TopicCommentCreated Topic = "comment.created"
	TopicLikeAdded      Topic = "like.added"
	TopicLikeRemoved    Topic = "like.removed"
)

// Event 结构性写入完成后发布的事实
type Event interface {
	Topic() Topic
}

// PostPublished 动态发布成功
type PostPublished struct {
	PostID   string
	AuthorID string
	Content  string
}

func (PostPublished) Topic() Topic { return TopicPostPublished }

// CommentCreated 评论或回复已落库
// ParentID 为实际挂载的父评论，可能与 RequestedParentID 不同（超过最大层级时上移一层）
type CommentCreated struct {
	CommentID         string
	PostID            string
	PostAuthorID      string
	AuthorID          string
	ParentID          string
	RequestedParentID string
	Reparented        bool
	// RecipientID 为评论/回复通知的接收人，作者本人时为空
	RecipientID string
	Content     string
	CreatedAt   time.Time
}

func (CommentCreated) Topic() Topic { return TopicCommentCreated }

// IsReply 是否为回复
func (e CommentCreated) IsReply() bool { return e.ParentID != "" }

type LikeAdded struct {
	PostID string
	UserID string
}

func (LikeAdded) Topic() Topic { return TopicLikeAdded }

type LikeRemoved struct {
	PostID string
	UserID string
}

func (LikeRemoved) Topic() Topic { return TopicLikeRemoved }
