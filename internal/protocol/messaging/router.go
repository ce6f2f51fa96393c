package messaging

import (
	"fmt"
	"sync"

	"github.com/dep2p/go-collab/pkg/types"
)

// Handler 消息处理器，from 为承载该消息的连接对端
type Handler func(from types.ParticipantID, msg *Message)

// Router 按消息类型分发
type Router struct {
	mu       sync.RWMutex
	handlers map[Kind]Handler
}

// NewRouter 创建路由器
func NewRouter() *Router {
	return &Router{handlers: make(map[Kind]Handler)}
}

// Register 注册处理器
func (r *Router) Register(kind Kind, h Handler) error {
	if !kind.Valid() || h == nil {
		return fmt.Errorf("messaging: cannot register %q", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[kind]; exists {
		return ErrHandlerAlreadyRegistered
	}
	r.handlers[kind] = h
	return nil
}

// Unregister 注销处理器
func (r *Router) Unregister(kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, kind)
}

// Dispatch 解码并分发一条原始消息
//
// 解码失败返回 ErrMalformedMessage，没有处理器返回 ErrHandlerNotFound。
func (r *Router) Dispatch(from types.ParticipantID, data []byte) (*Message, error) {
	msg, err := Decode(data)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	h, ok := r.handlers[msg.Kind]
	r.mu.RUnlock()
	if !ok {
		return msg, ErrHandlerNotFound
	}

	h(from, msg)
	return msg, nil
}

// Kinds 返回已注册的类型
func (r *Router) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.handlers))
	for k := range r.handlers {
		kinds = append(kinds, k)
	}
	return kinds
}
