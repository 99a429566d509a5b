package service

import (
	"context"
	"fmt"
	"regexp"

	"civic_feed/internal/domain/notification/model"
	userModel "civic_feed/internal/domain/user/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MentionKind 提及发生的位置
type MentionKind string

const (
	KindPost    MentionKind = "post"
	KindComment MentionKind = "comment"
)

const mentionTitle = "You were mentioned"

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]+)`)

// HandleResolver 按 handle 查找用户
type HandleResolver interface {
	ResolveHandles(ctx context.Context, handles []string, excludingID string) ([]userModel.HandleRef, error)
}

// ExtractMentions 提取 @handle，统一小写并去重，保持首次出现的顺序
func ExtractMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	// Caser 有内部状态，不能跨 goroutine 共享
	lower := cases.Lower(language.Und)
	seen := make(map[string]struct{}, len(matches))
	handles := make([]string, 0, len(matches))
	for _, m := range matches {
		h := lower.String(m[1])
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		handles = append(handles, h)
	}
	return handles
}

// MentionResolver 解析提及并批量创建通知
type MentionResolver struct {
	users      HandleResolver
	dispatcher Dispatcher
}

func NewMentionResolver(users HandleResolver, dispatcher Dispatcher) *MentionResolver {
	return &MentionResolver{users: users, dispatcher: dispatcher}
}

// ResolveAndNotify 返回创建的通知数
// 作者本人和无法解析的 handle 不会产生通知
func (r *MentionResolver) ResolveAndNotify(ctx context.Context, text, authorID, authorDisplayName, postID string, kind MentionKind) (int, error) {
	handles := ExtractMentions(text)
	if len(handles) == 0 {
		return 0, nil
	}

	refs, err := r.users.ResolveHandles(ctx, handles, authorID)
	if err != nil {
		return 0, fmt.Errorf("resolve mentions: %w", err)
	}

	// 同一用户只通知一次
	seen := make(map[string]struct{}, len(refs))
	batch := make([]model.Notification, 0, len(refs))
	for _, ref := range refs {
		if ref.ID == authorID {
			continue
		}
		if _, dup := seen[ref.ID]; dup {
			continue
		}
		seen[ref.ID] = struct{}{}
		batch = append(batch, model.Notification{
			UserID:    ref.ID,
			ActorID:   authorID,
			Type:      model.TypeMention,
			Title:     mentionTitle,
			Content:   fmt.Sprintf("%s mentioned you in a %s", authorDisplayName, kind),
			ActionURL: PostURL(postID),
		})
	}

	if err := r.dispatcher.NotifyBatch(ctx, batch); err != nil {
		return 0, fmt.Errorf("create mention notifications: %w", err)
	}
	return len(batch), nil
}

// PostURL 通知跳转链接
func PostURL(postID string) string {
	return "/posts/" + postID
}
