package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"civic_feed/internal/pkg/worker"

	"github.com/stretchr/testify/assert"
)

func TestBusInlineDelivery(t *testing.T) {
	bus := NewBus(nil, nil)

	var got []string
	bus.Subscribe(TopicLikeAdded, "recorder", func(ctx context.Context, ev Event) error {
		got = append(got, ev.(LikeAdded).UserID)
		return nil
	})
	bus.Subscribe(TopicLikeRemoved, "other", func(ctx context.Context, ev Event) error {
		t.Fatal("wrong topic delivered")
		return nil
	})

	bus.Publish(context.Background(), LikeAdded{PostID: "p1", UserID: "u1"})
	bus.Publish(context.Background(), LikeAdded{PostID: "p1", UserID: "u2"})

	assert.Equal(t, []string{"u1", "u2"}, got)
}

func TestBusIsolatesSubscriberFailures(t *testing.T) {
	bus := NewBus(nil, nil)

	var failures []string
	bus.OnFailure(func(topic Topic, subscriber string, err error) {
		failures = append(failures, subscriber)
	})

	delivered := false
	bus.Subscribe(TopicCommentCreated, "broken", func(ctx context.Context, ev Event) error {
		return errors.New("notification store down")
	})
	bus.Subscribe(TopicCommentCreated, "panicky", func(ctx context.Context, ev Event) error {
		panic("nil map")
	})
	bus.Subscribe(TopicCommentCreated, "healthy", func(ctx context.Context, ev Event) error {
		delivered = true
		return nil
	})

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), CommentCreated{CommentID: "c1"})
	})
	assert.True(t, delivered)
	assert.Equal(t, []string{"broken", "panicky"}, failures)
}

func TestBusAsyncDelivery(t *testing.T) {
	pool := worker.NewPool(2, 8, nil)
	pool.Start()
	bus := NewBus(nil, pool)

	var mu sync.Mutex
	var got []string
	bus.Subscribe(TopicPostPublished, "recorder", func(ctx context.Context, ev Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev.(PostPublished).PostID)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, PostPublished{PostID: "p1"})
	// 请求结束后取消 ctx，异步任务不受影响
	cancel()

	pool.Stop()
	assert.Equal(t, []string{"p1"}, got)
}

func TestCommentCreatedIsReply(t *testing.T) {
	assert.False(t, CommentCreated{}.IsReply())
	assert.True(t, CommentCreated{ParentID: "c0"}.IsReply())
}
