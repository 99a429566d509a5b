package event

import (
	"context"
	"fmt"
	"sync"

	"civic_feed/internal/pkg/worker"

	"go.uber.org/zap"
)

// Handler 事件订阅者，返回的错误只会被记录
type Handler func(ctx context.Context, ev Event) error

// FailureHook 订阅者失败时的回调，用于指标统计
type FailureHook func(topic Topic, subscriber string, err error)

type subscription struct {
	name    string
	handler Handler
}

// Bus 进程内事件总线
// pool 为 nil 时订阅者在 Publish 中同步执行，否则交给 worker 池
type Bus struct {
	mu        sync.RWMutex
	subs      map[Topic][]subscription
	pool      *worker.Pool
	log       *zap.Logger
	onFailure FailureHook
}

func NewBus(log *zap.Logger, pool *worker.Pool) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		subs: make(map[Topic][]subscription),
		pool: pool,
		log:  log,
	}
}

// Subscribe 注册订阅者
func (b *Bus) Subscribe(topic Topic, name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], subscription{name: name, handler: h})
}

// OnFailure 设置失败回调
func (b *Bus) OnFailure(hook FailureHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onFailure = hook
}

// Publish 分发事件
// 订阅者的失败不会影响调用方，发布者总是认为写入已经成功
func (b *Bus) Publish(ctx context.Context, ev Event) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[ev.Topic()]...)
	hook := b.onFailure
	b.mu.RUnlock()

	for _, s := range subs {
		s := s
		if b.pool == nil {
			b.run(ctx, ev, s, hook)
			continue
		}

		// 异步执行时不能继承请求的取消信号
		taskCtx := context.WithoutCancel(ctx)
		ok := b.pool.Submit(worker.Task{
			Name: string(ev.Topic()) + "/" + s.name,
			Ctx:  taskCtx,
			Run: func(ctx context.Context) error {
				b.run(ctx, ev, s, hook)
				return nil
			},
		})
		if !ok && hook != nil {
			hook(ev.Topic(), s.name, fmt.Errorf("side effect queue rejected task"))
		}
	}
}

func (b *Bus) run(ctx context.Context, ev Event, s subscription, hook FailureHook) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("subscriber panic: %v", r)
			}
		}()
		err = s.handler(ctx, ev)
	}()

	if err == nil {
		return
	}
	b.log.Warn("event subscriber failed",
		zap.String("topic", string(ev.Topic())),
		zap.String("subscriber", s.name),
		zap.Error(err),
	)
	if hook != nil {
		hook(ev.Topic(), s.name, err)
	}
}
