package model

import (
	"time"

	userModel "civic_feed/internal/domain/user/model"
	baseModel "civic_feed/pkg/model"
	"civic_feed/pkg/utils"
)

// Post 动态模型
// 点赞数不落在动态上，每次读取时从 likes 表实时统计
type Post struct {
	baseModel.BaseModel
	AuthorID string `gorm:"type:uuid;index;not null" json:"authorId"`
	Content  string `gorm:"type:text;not null" json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
	Location string `json:"location,omitempty"`
	Comments int    `gorm:"not null;default:0" json:"comments"` // 一级评论数
}

// Like 点赞记录，(user_id, post_id) 联合主键保证同一用户对同一动态最多一条
// 取消点赞为物理删除
type Like struct {
	UserID    string    `gorm:"primaryKey;type:uuid" json:"userId"`
	PostID    string    `gorm:"primaryKey;type:uuid;index" json:"postId"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// Comment 评论模型
// 最多两层回复：一级评论 depth 0，回复 depth 1，回复的回复 depth 2
type Comment struct {
	baseModel.BaseModel
	PostID     string  `gorm:"type:uuid;index;not null" json:"postId"`
	AuthorID   string  `gorm:"type:uuid;index;not null" json:"authorId"`
	ParentID   *string `gorm:"type:uuid;index" json:"parentId"`
	Content    string  `gorm:"type:text;not null" json:"content"`
	ReplyCount int     `gorm:"not null;default:0" json:"replyCount"` // 直接子评论数
}

// IsTopLevel 是否为一级评论
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil || *c.ParentID == ""
}

// CommentAncestry 评论及其父评论，用于计算层级
type CommentAncestry struct {
	Comment Comment
	Parent  *Comment // 一级评论时为 nil
}

// PostView 返回给前端的动态，带实时点赞数和当前用户是否已点赞
type PostView struct {
	Post
	Author               *userModel.Summary `json:"author,omitempty"`
	Likes                int64              `json:"likes"`
	IsLikedByCurrentUser bool               `json:"isLikedByCurrentUser"`
}

// CommentView 嵌套的评论视图
type CommentView struct {
	Comment
	Author  *userModel.Summary `json:"author,omitempty"`
	Replies []CommentView      `json:"replies"`
}

// Liker 点赞用户及点赞时间
type Liker struct {
	userModel.Summary
	LikedAt time.Time `json:"likedAt"`
}

// LikersPage 点赞用户分页结果
type LikersPage struct {
	Likers     []Liker        `json:"likers"`
	Pagination utils.PageMeta `json:"pagination"`
}
