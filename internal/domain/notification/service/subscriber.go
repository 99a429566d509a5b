package service

import (
	"context"
	"fmt"

	"civic_feed/internal/domain/notification/model"
	userModel "civic_feed/internal/domain/user/model"
	"civic_feed/internal/pkg/event"

	"go.uber.org/zap"
)

const fallbackActorName = "Someone"

// AuthorLookup 查询行为人的展示名
type AuthorLookup interface {
	Get(ctx context.Context, id string) (userModel.Summary, error)
}

// Subscriber 把结构性写入事件转换为通知
// 评论通知和提及通知是两个独立的订阅者，一个失败不影响另一个
type Subscriber struct {
	dispatcher Dispatcher
	mentions   *MentionResolver
	authors    AuthorLookup
	log        *zap.Logger
}

func NewSubscriber(dispatcher Dispatcher, mentions *MentionResolver, authors AuthorLookup, log *zap.Logger) *Subscriber {
	if log == nil {
		log = zap.NewNop()
	}
	return &Subscriber{dispatcher: dispatcher, mentions: mentions, authors: authors, log: log}
}

// Register 订阅事件总线
func (s *Subscriber) Register(bus *event.Bus) {
	bus.Subscribe(event.TopicCommentCreated, "comment-notifier", s.OnCommentCreated)
	bus.Subscribe(event.TopicCommentCreated, "comment-mentions", s.OnCommentMentions)
	bus.Subscribe(event.TopicPostPublished, "post-mentions", s.OnPostMentions)
}

// OnCommentCreated 通知动态作者（新评论）或实际父评论作者（新回复）
func (s *Subscriber) OnCommentCreated(ctx context.Context, ev event.Event) error {
	e, ok := ev.(event.CommentCreated)
	if !ok {
		return fmt.Errorf("unexpected event %T", ev)
	}
	if e.RecipientID == "" || e.RecipientID == e.AuthorID {
		return nil
	}

	name := s.displayName(ctx, e.AuthorID)
	n := model.Notification{
		UserID:    e.RecipientID,
		ActorID:   e.AuthorID,
		ActionURL: PostURL(e.PostID),
	}
	if e.IsReply() {
		n.Type = model.TypeNewReply
		n.Title = "New Reply"
		n.Content = fmt.Sprintf("%s replied to your comment", name)
	} else {
		n.Type = model.TypeNewComment
		n.Title = "New Comment"
		n.Content = fmt.Sprintf("%s commented on your post", name)
	}
	return s.dispatcher.Notify(ctx, n)
}

// OnCommentMentions 评论中的提及
func (s *Subscriber) OnCommentMentions(ctx context.Context, ev event.Event) error {
	e, ok := ev.(event.CommentCreated)
	if !ok {
		return fmt.Errorf("unexpected event %T", ev)
	}
	return s.notifyMentions(ctx, e.Content, e.AuthorID, e.PostID, KindComment)
}

// OnPostMentions 动态正文中的提及
func (s *Subscriber) OnPostMentions(ctx context.Context, ev event.Event) error {
	e, ok := ev.(event.PostPublished)
	if !ok {
		return fmt.Errorf("unexpected event %T", ev)
	}
	return s.notifyMentions(ctx, e.Content, e.AuthorID, e.PostID, KindPost)
}

func (s *Subscriber) notifyMentions(ctx context.Context, text, authorID, postID string, kind MentionKind) error {
	if len(ExtractMentions(text)) == 0 {
		return nil
	}
	n, err := s.mentions.ResolveAndNotify(ctx, text, authorID, s.displayName(ctx, authorID), postID, kind)
	if err != nil {
		return err
	}
	s.log.Debug("mention notifications created", zap.String("post_id", postID), zap.Int("count", n))
	return nil
}

func (s *Subscriber) displayName(ctx context.Context, userID string) string {
	author, err := s.authors.Get(ctx, userID)
	if err != nil || author.DisplayName == "" {
		return fallbackActorName
	}
	return author.DisplayName
}
