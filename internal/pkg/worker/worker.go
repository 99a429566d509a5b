package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Task 交给 worker 池执行的任务
type Task struct {
	Name string
	Ctx  context.Context
	Run  func(ctx context.Context) error
}

// Pool 固定数量 worker 的任务池
// 任务失败只记录日志，不做重试；队列满时直接丢弃
type Pool struct {
	taskQueue chan Task
	workerNum int
	log       *zap.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewPool(workerNum int, bufferSize int, log *zap.Logger) *Pool {
	if workerNum <= 0 {
		workerNum = 1
	}
	if bufferSize < 0 {
		bufferSize = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		taskQueue: make(chan Task, bufferSize),
		workerNum: workerNum,
		log:       log,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerNum; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.log.Info("worker pool started", zap.Int("workers", p.workerNum))
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for task := range p.taskQueue {
		if err := p.processTask(task); err != nil {
			p.log.Warn("task failed",
				zap.Int("worker", id),
				zap.String("task", task.Name),
				zap.Error(err),
			)
		}
	}
}

func (p *Pool) processTask(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("task panicked", zap.String("task", task.Name), zap.Any("panic", r))
		}
	}()

	ctx := task.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return task.Run(ctx)
}

func (p *Pool) logDroppedTask(task Task, reason string) {
	p.log.Warn("task dropped", zap.String("task", task.Name), zap.String("reason", reason))
}

// Submit 非阻塞地提交任务，返回是否入队成功
func (p *Pool) Submit(task Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		p.logDroppedTask(task, "pool stopped")
		return false
	}

	select {
	case p.taskQueue <- task:
		return true
	default:
		p.logDroppedTask(task, "queue full")
		return false
	}
}

// Stop 停止接收新任务，并等待已入队的任务执行完毕
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.taskQueue)
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Info("worker pool stopped")
}
