package collab

import (
	"encoding/json"
	"sync"

	"github.com/dep2p/go-collab/pkg/types"
)

// DocumentHandler 收到并应用了远端快照
type DocumentHandler func(snapshot json.RawMessage, sender types.ParticipantID)

// PresenceHandler 花名册变化，roster 含自己
type PresenceHandler func(roster []types.Participant, connected bool)

// LockHandler 字段锁变化（本地或远端）
type LockHandler func(field types.FieldID, holder types.ParticipantID, holderName string, locked bool)

// StatusHandler 连接状态变化：加入成功或失败、花名册变化、离开
type StatusHandler func(connected bool, rosterSize int)

// Callbacks 一次性设置多个回调，nil 字段保持原样
type Callbacks struct {
	OnDocumentUpdate   DocumentHandler
	OnPresenceUpdate   PresenceHandler
	OnLockChange       LockHandler
	OnConnectionStatus StatusHandler
}

// slot 单个回调槽位，注销函数只清除自己那次注册
type slot struct {
	mu  sync.Mutex
	seq uint64
	fn  any
}

func (s *slot) set(fn any) func() {
	s.mu.Lock()
	s.seq++
	id := s.seq
	s.fn = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.seq == id {
			s.fn = nil
		}
	}
}

func (s *slot) get() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fn
}

// observers 四类回调
type observers struct {
	document slot
	presence slot
	lock     slot
	status   slot
}

// OnDocumentUpdate 注册文档回调，返回注销函数
//
// 传入 nil 等价于清除当前回调。
func (s *Session) OnDocumentUpdate(fn DocumentHandler) (unregister func()) {
	return s.obs.document.set(fn)
}

// OnPresenceUpdate 注册花名册回调，返回注销函数
func (s *Session) OnPresenceUpdate(fn PresenceHandler) (unregister func()) {
	return s.obs.presence.set(fn)
}

// OnLockChange 注册字段锁回调，返回注销函数
func (s *Session) OnLockChange(fn LockHandler) (unregister func()) {
	return s.obs.lock.set(fn)
}

// OnConnectionStatus 注册连接状态回调，返回注销函数
func (s *Session) OnConnectionStatus(fn StatusHandler) (unregister func()) {
	return s.obs.status.set(fn)
}

// SetCallbacks 替换非 nil 的回调
func (s *Session) SetCallbacks(cb Callbacks) {
	if cb.OnDocumentUpdate != nil {
		s.OnDocumentUpdate(cb.OnDocumentUpdate)
	}
	if cb.OnPresenceUpdate != nil {
		s.OnPresenceUpdate(cb.OnPresenceUpdate)
	}
	if cb.OnLockChange != nil {
		s.OnLockChange(cb.OnLockChange)
	}
	if cb.OnConnectionStatus != nil {
		s.OnConnectionStatus(cb.OnConnectionStatus)
	}
}

// ============================================================================
//                              通知派发
// ============================================================================

// 以下方法在持有 s.mu 时调用，只入队，不执行回调。
// 回调在派发时才读取当前处理器，因此注销后不会再收到排队中的通知。

func (s *Session) notifyDocument(snapshot json.RawMessage, sender types.ParticipantID) {
	s.notify.Push(func() {
		if fn, _ := s.obs.document.get().(DocumentHandler); fn != nil {
			fn(snapshot, sender)
		}
	})
}

func (s *Session) notifyPresence(roster []types.Participant, connected bool) {
	s.notify.Push(func() {
		if fn, _ := s.obs.presence.get().(PresenceHandler); fn != nil {
			fn(roster, connected)
		}
	})
}

func (s *Session) notifyLock(field types.FieldID, holder types.ParticipantID, holderName string, locked bool) {
	s.notify.Push(func() {
		if fn, _ := s.obs.lock.get().(LockHandler); fn != nil {
			fn(field, holder, holderName, locked)
		}
	})
}

func (s *Session) notifyStatus(connected bool, rosterSize int) {
	s.notify.Push(func() {
		if fn, _ := s.obs.status.get().(StatusHandler); fn != nil {
			fn(connected, rosterSize)
		}
	})
}
