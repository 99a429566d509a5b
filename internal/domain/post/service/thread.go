package service

import (
	"sort"

	"civic_feed/internal/domain/post/model"
	userModel "civic_feed/internal/domain/user/model"
)

// MaxReplyDepth 回复最多嵌套的层数（一级评论为 0）
const MaxReplyDepth = 2

// EffectiveParent 回复实际挂载的父评论及需要通知的人
type EffectiveParent struct {
	ParentID     string
	NotifyUserID string
	Reparented   bool
}

// ResolveEffectiveParent 根据被回复评论的层级决定实际父评论
// 被回复评论已经处于最深层（它的父评论还有父评论）时，改为挂到它的父评论下，
// 通知对象随之变为实际父评论的作者
func ResolveEffectiveParent(requested model.CommentAncestry) EffectiveParent {
	parent := requested.Parent
	if parent != nil && !parent.IsTopLevel() {
		return EffectiveParent{
			ParentID:     parent.ID,
			NotifyUserID: parent.AuthorID,
			Reparented:   true,
		}
	}
	return EffectiveParent{
		ParentID:     requested.Comment.ID,
		NotifyUserID: requested.Comment.AuthorID,
	}
}

// BuildThread 将按时间排列的评论组装成两层嵌套
// 一级评论按时间倒序，各层回复按时间正序
func BuildThread(comments []model.Comment, authors map[string]userModel.Summary) []model.CommentView {
	var roots []model.Comment
	children := make(map[string][]model.Comment)
	for _, c := range comments {
		if c.IsTopLevel() {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	sort.SliceStable(roots, func(i, j int) bool { return newer(roots[i], roots[j]) })
	for id := range children {
		list := children[id]
		sort.SliceStable(list, func(i, j int) bool { return newer(list[j], list[i]) })
	}

	views := make([]model.CommentView, 0, len(roots))
	for _, c := range roots {
		views = append(views, buildView(c, 0, children, authors))
	}
	return views
}

func buildView(c model.Comment, depth int, children map[string][]model.Comment, authors map[string]userModel.Summary) model.CommentView {
	view := NewCommentView(c, authors)
	if depth >= MaxReplyDepth {
		return view
	}
	for _, child := range children[c.ID] {
		view.Replies = append(view.Replies, buildView(child, depth+1, children, authors))
	}
	return view
}

// NewCommentView 不带子评论的视图
func NewCommentView(c model.Comment, authors map[string]userModel.Summary) model.CommentView {
	view := model.CommentView{Comment: c, Replies: []model.CommentView{}}
	if a, ok := authors[c.AuthorID]; ok {
		view.Author = &a
	}
	return view
}

func newer(a, b model.Comment) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// commentAuthorIDs 收集评论作者，用于批量查询展示信息
func commentAuthorIDs(comments []model.Comment) []string {
	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	return ids
}
