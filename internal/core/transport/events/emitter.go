// Package events 为通道实现提供事件派发
//
// Emitter 在 SetHandlers 之前缓存事件，之后按发生顺序在单一协程中
// 补发；终止事件（close / error）只派发第一个，之后的事件全部丢弃。
package events

import (
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-collab/internal/util/serial"
	"github.com/dep2p/go-collab/pkg/interfaces"
)

// Emitter 通道事件派发器
type Emitter struct {
	q *serial.Queue

	mu       sync.RWMutex
	handlers interfaces.ChannelHandlers

	opened     atomic.Bool
	terminated atomic.Bool
}

// NewEmitter 创建派发器
func NewEmitter(name string) *Emitter {
	return &Emitter{q: serial.New("channel/" + name)}
}

// SetHandlers 设置回调并开始派发
func (e *Emitter) SetHandlers(h interfaces.ChannelHandlers) {
	e.mu.Lock()
	e.handlers = h
	e.mu.Unlock()
	e.q.Start()
}

func (e *Emitter) current() interfaces.ChannelHandlers {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.handlers
}

// Open 派发打开事件，只派发一次
func (e *Emitter) Open() bool {
	if e.terminated.Load() || e.opened.Swap(true) {
		return false
	}
	return e.q.Push(func() {
		if h := e.current(); h.OnOpen != nil {
			h.OnOpen()
		}
	})
}

// Message 派发消息事件
func (e *Emitter) Message(data []byte) bool {
	if e.terminated.Load() {
		return false
	}
	return e.q.Push(func() {
		if h := e.current(); h.OnMessage != nil {
			h.OnMessage(data)
		}
	})
}

// Close 派发关闭事件，返回是否为第一个终止事件
func (e *Emitter) Close() bool {
	if e.terminated.Swap(true) {
		return false
	}
	e.q.Push(func() {
		if h := e.current(); h.OnClose != nil {
			h.OnClose()
		}
	})
	e.q.Close()
	return true
}

// Error 派发错误事件，返回是否为第一个终止事件
func (e *Emitter) Error(err error) bool {
	if e.terminated.Swap(true) {
		return false
	}
	e.q.Push(func() {
		if h := e.current(); h.OnError != nil {
			h.OnError(err)
		}
	})
	e.q.Close()
	return true
}

// Opened 是否已派发打开事件
func (e *Emitter) Opened() bool {
	return e.opened.Load()
}

// Terminated 是否已派发终止事件
func (e *Emitter) Terminated() bool {
	return e.terminated.Load()
}

// Done 所有事件派发完毕后关闭
func (e *Emitter) Done() <-chan struct{} {
	return e.q.Done()
}
