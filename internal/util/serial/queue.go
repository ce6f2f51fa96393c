// Package serial 提供有序、无界的单协程执行队列
//
// Queue 保证提交的函数按提交顺序在同一个协程中依次执行，
// Push 从不阻塞。会话用它派发观察者回调，传输层用它派发通道事件。
package serial

import (
	"context"
	"sync"

	"github.com/dep2p/go-collab/pkg/lib/log"
)

var logger = log.Logger("util/serial")

// Queue 有序执行队列
type Queue struct {
	name string

	mu      sync.Mutex
	items   []func()
	started bool
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// New 创建队列，需调用 Start 后才开始执行
func New(name string) *Queue {
	return &Queue{
		name: name,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// NewStarted 创建并立即启动队列
func NewStarted(name string) *Queue {
	q := New(name)
	q.Start()
	return q
}

// Start 启动执行协程，重复调用无效
//
// 已关闭但未启动的队列仍会启动，把剩余任务执行完后退出。
func (q *Queue) Start() {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()

	go q.run()
}

// Push 提交任务，队列已关闭时返回 false
func (q *Queue) Push(fn func()) bool {
	if fn == nil {
		return false
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, fn)
	q.mu.Unlock()

	q.signal()
	return true
}

// Close 停止接收新任务，已提交的任务仍会执行
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.signal()
}

// Done 返回队列执行协程退出后关闭的 channel
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Len 返回待执行任务数
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Flush 等待此前提交的任务全部执行完
//
// 不能在队列自身的任务中调用。
func (q *Queue) Flush(ctx context.Context) error {
	marker := make(chan struct{})
	if !q.Push(func() { close(marker) }) {
		select {
		case <-q.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	select {
	case <-marker:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) run() {
	defer close(q.done)

	for {
		q.mu.Lock()
		batch := q.items
		q.items = nil
		closed := q.closed
		q.mu.Unlock()

		if len(batch) == 0 {
			if closed {
				return
			}
			<-q.wake
			continue
		}

		for _, fn := range batch {
			q.invoke(fn)
		}
	}
}

func (q *Queue) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("队列任务 panic", "queue", q.name, "panic", r)
		}
	}()
	fn()
}
