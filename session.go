package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-collab/internal/discovery/rendezvous"
	"github.com/dep2p/go-collab/internal/util/serial"
	"github.com/dep2p/go-collab/pkg/interfaces"
	"github.com/dep2p/go-collab/pkg/lib/log"
	"github.com/dep2p/go-collab/pkg/types"
)

var logger = log.Logger("collab")

// maxNameLength 昵称最大字节数
const maxNameLength = 64

// nameSetter 支持修改昵称的身份实现
type nameSetter interface {
	SetParticipantName(name string) error
}

// Session 协作会话
//
// 一个 Session 同一时刻至多加入一个房间。所有状态变化都在持有 mu 时
// 完成；回调经 notify 队列按变化顺序派发，执行时不持有 mu。
type Session struct {
	network  interfaces.Network
	identity interfaces.Identity
	opts     options

	obs    observers
	notify *serial.Queue

	// opMu 串行化 JoinRoom / LeaveRoom / Close
	opMu sync.Mutex

	mu      sync.Mutex
	current *roomState
	closed  bool

	nameMu       sync.RWMutex
	nameOverride string
}

// New 创建会话
func New(network interfaces.Network, identity interfaces.Identity, opts ...Option) *Session {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Session{
		network:  network,
		identity: identity,
		opts:     o,
		notify:   serial.NewStarted("collab/notify"),
	}
}

// ============================================================================
//                              房间生命周期
// ============================================================================

// JoinRoom 加入房间
//
// 在会合点注册端点 room_self 后返回。注册失败时触发
// ConnectionStatus(false, 0) 并返回包装了 *rendezvous.SignalingError 的错误。
func (s *Session) JoinRoom(ctx context.Context, room types.RoomID) error {
	if err := validateRoom(room); err != nil {
		return err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrSessionClosed
	case s.current != nil:
		s.mu.Unlock()
		return ErrAlreadyJoined
	}
	s.mu.Unlock()

	self := s.identity.ParticipantID()
	name := types.EndpointName(room, self)
	logger.Info("加入房间", "room", room, "endpoint", name)

	ep, err := s.network.Open(ctx, name)
	if err != nil {
		logger.Warn("注册端点失败", "room", room, "error", err)
		s.mu.Lock()
		s.notifyStatus(false, 0)
		s.mu.Unlock()
		return fmt.Errorf("collab: join %s: %w", room, err)
	}

	rs := s.newRoom(room, self, ep)

	s.mu.Lock()
	s.current = rs
	upd := rs.tracker.SetConnected(true)
	s.notifyPresence(upd.Roster, upd.Connected)
	s.notifyStatus(true, len(upd.Roster))
	s.mu.Unlock()

	rs.wg.Add(2)
	go s.acceptLoop(rs)
	go s.errorLoop(rs)
	if s.opts.autoDiscover {
		rs.wg.Add(1)
		go s.discover(rs)
	}
	return nil
}

// LeaveRoom 离开房间
//
// 未加入时直接返回 nil。关闭所有连接与注册，清空锁表与花名册，
// 只有确实处于房间中时才触发 ConnectionStatus(false, 0)。
func (s *Session) LeaveRoom() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.leaveLocked()
}

// leaveLocked 调用方持有 opMu
func (s *Session) leaveLocked() error {
	s.mu.Lock()
	rs := s.current
	s.mu.Unlock()
	if rs == nil {
		return nil
	}

	err := s.detach(rs, nil)
	rs.wg.Wait()
	logger.Info("已离开房间", "room", rs.room)
	return err
}

// detach 拆除 rs，rs 已不是当前房间时什么也不做
//
// 可以在 rs 自己的协程中调用，不等待这些协程退出。
func (s *Session) detach(rs *roomState, cause error) error {
	s.mu.Lock()
	if s.current != rs {
		s.mu.Unlock()
		return nil
	}
	s.current = nil
	for _, e := range rs.locks.Entries() {
		s.notifyLock(e.FieldID, e.HolderID, e.HolderName, false)
	}
	rs.locks.Reset()
	upd := rs.tracker.SetConnected(false)
	rs.tracker.Reset()
	s.notifyPresence(upd.Roster, upd.Connected)
	s.notifyStatus(false, 0)
	s.mu.Unlock()

	if cause != nil {
		logger.Warn("房间注册已失效", "room", rs.room, "error", cause)
	}
	rs.cancel()
	return multierr.Combine(rs.pool.CloseAll(), rs.endpoint.Close())
}

// Close 离开房间并停止通知派发，之后会话不可再用
func (s *Session) Close() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.leaveLocked()
	s.notify.Close()
	return err
}

// Flush 等待此前产生的回调全部执行完
//
// 不能在回调中调用。
func (s *Session) Flush(ctx context.Context) error {
	return s.notify.Flush(ctx)
}

// ============================================================================
//                              本地操作
// ============================================================================

// UpdateDocument 广播整份文档
//
// v 按 JSON 序列化；json.RawMessage 原样发送。会话不保存文档副本。
func (s *Session) UpdateDocument(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("collab: marshal document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNotJoined
	}
	return s.current.docs.Publish(data)
}

// LockField 乐观加锁并广播
func (s *Session) LockField(field types.FieldID) error {
	if field == "" {
		return ErrEmptyField
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNotJoined
	}
	ch, err := s.current.locks.Lock(field)
	if err != nil {
		return err
	}
	s.notifyLock(ch.FieldID, ch.HolderID, ch.HolderName, true)
	return nil
}

// UnlockField 释放自己持有的锁并广播
//
// 锁不由自己持有时本地锁表不变，但仍会广播解锁。
func (s *Session) UnlockField(field types.FieldID) error {
	if field == "" {
		return ErrEmptyField
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNotJoined
	}
	ch, removed, err := s.current.locks.Unlock(field)
	if err != nil {
		return err
	}
	if removed {
		s.notifyLock(ch.FieldID, ch.HolderID, ch.HolderName, false)
	}
	return nil
}

// ConnectTo 向同房间的端点发起连接
func (s *Session) ConnectTo(ctx context.Context, endpoint string) error {
	s.mu.Lock()
	rs := s.current
	s.mu.Unlock()
	if rs == nil {
		return ErrNotJoined
	}
	return rs.pool.ConnectTo(ctx, endpoint)
}

// SetName 修改本地昵称并通告给已连接的参与者
//
// 身份实现支持持久化时一并保存。保存失败但内存中的昵称已生效时，
// 照常通告新昵称并返回保存错误。
func (s *Session) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return ErrInvalidName
	}

	var persistErr error
	if setter, ok := s.identity.(nameSetter); ok {
		if err := setter.SetParticipantName(name); err != nil {
			if s.identity.ParticipantName() != name {
				return err
			}
			logger.Warn("保存昵称失败，仅在本次运行中生效", "error", err)
			persistErr = fmt.Errorf("collab: persist name: %w", err)
		}
	}
	s.nameMu.Lock()
	s.nameOverride = name
	s.nameMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if rs := s.current; rs != nil {
		rs.announcePresence()
		upd := rs.tracker.Current()
		s.notifyPresence(upd.Roster, upd.Connected)
	}
	return persistErr
}

// ============================================================================
//                              查询
// ============================================================================

// Self 本地参与者
func (s *Session) Self() types.Participant {
	return types.Participant{
		ID:     s.identity.ParticipantID(),
		Name:   s.name(),
		IsSelf: true,
	}
}

// Room 当前房间，未加入时为空
func (s *Session) Room() types.RoomID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.room
}

// Connected 是否已在会合点注册
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Roster 当前花名册（含自己），未加入时为空
func (s *Session) Roster() []types.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return []types.Participant{}
	}
	return s.current.tracker.Roster()
}

// Locks 锁表快照（按字段排序）
func (s *Session) Locks() []types.LockEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return []types.LockEntry{}
	}
	return s.current.locks.Entries()
}

// LockHolder 字段当前的持有者
func (s *Session) LockHolder(field types.FieldID) (types.LockEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return types.LockEntry{}, false
	}
	return s.current.locks.Holder(field)
}

// name 当前昵称，SetName 设置过的优先
func (s *Session) name() string {
	s.nameMu.RLock()
	override := s.nameOverride
	s.nameMu.RUnlock()
	if override != "" {
		return override
	}
	return s.identity.ParticipantName()
}

// validateRoom 房间 ID 必须能组成合法端点名且不含分隔符
func validateRoom(room types.RoomID) error {
	if room.IsEmpty() || strings.Contains(string(room), types.EndpointSeparator) {
		return fmt.Errorf("%w: %q", ErrInvalidRoom, room)
	}
	if !rendezvous.ValidEndpoint(string(room)) {
		return fmt.Errorf("%w: %q", ErrInvalidRoom, room)
	}
	return nil
}
