package collab

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-collab/internal/core/mesh"
	"github.com/dep2p/go-collab/internal/protocol/messaging"
	"github.com/dep2p/go-collab/internal/realm/docsync"
	"github.com/dep2p/go-collab/internal/realm/lock"
	"github.com/dep2p/go-collab/internal/realm/presence"
	"github.com/dep2p/go-collab/pkg/interfaces"
	"github.com/dep2p/go-collab/pkg/types"
)

// roomState 一次加入的全部状态
//
// 网络事件处理前都要确认 s.current == rs，旧房间的迟到事件直接丢弃。
type roomState struct {
	s    *Session
	room types.RoomID
	self types.ParticipantID

	endpoint interfaces.Endpoint
	pool     *mesh.Pool
	docs     *docsync.Engine
	locks    *lock.Coordinator
	tracker  *presence.Tracker
	router   *messaging.Router

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (s *Session) newRoom(room types.RoomID, self types.ParticipantID, ep interfaces.Endpoint) *roomState {
	ctx, cancel := context.WithCancel(context.Background())
	rs := &roomState{
		s:        s,
		room:     room,
		self:     self,
		endpoint: ep,
		router:   messaging.NewRouter(),
		ctx:      ctx,
		cancel:   cancel,
	}

	m := s.opts.metrics
	rs.pool = mesh.NewPool(room, self, ep, rs,
		mesh.WithMetrics(m),
		mesh.WithClock(s.opts.clock),
	)
	rs.docs = docsync.New(self, rs.pool,
		docsync.WithMetrics(m),
		docsync.WithClock(s.opts.clock),
	)
	rs.locks = lock.New(self, s.name, rs.pool,
		lock.WithArbiter(s.opts.arbiter),
		lock.WithMetrics(m),
		lock.WithClock(s.opts.clock),
	)
	rs.tracker = presence.New(self, s.name)

	_ = rs.router.Register(messaging.KindDocument, rs.onDocument)
	_ = rs.router.Register(messaging.KindLock, rs.onLock)
	_ = rs.router.Register(messaging.KindUnlock, rs.onLock)
	_ = rs.router.Register(messaging.KindPresence, rs.onPresence)
	return rs
}

// ============================================================================
//                              后台协程
// ============================================================================

// acceptLoop 把入站通道交给连接池
func (s *Session) acceptLoop(rs *roomState) {
	defer rs.wg.Done()
	offers := rs.endpoint.Offers()
	for {
		select {
		case <-rs.ctx.Done():
			return
		case ch, ok := <-offers:
			if !ok {
				return
			}
			if err := rs.pool.Accept(ch); err != nil {
				logger.Debug("入站通道被拒绝", "endpoint", ch.RemoteEndpoint(), "error", err)
			}
		}
	}
}

// errorLoop 注册失效时拆除房间
func (s *Session) errorLoop(rs *roomState) {
	defer rs.wg.Done()
	select {
	case <-rs.ctx.Done():
	case err, ok := <-rs.endpoint.Errors():
		if !ok {
			return
		}
		if derr := s.detach(rs, err); derr != nil {
			logger.Debug("拆除房间时出错", "room", rs.room, "error", derr)
		}
	}
}

// discover 发现同房间端点并逐个拨号
func (s *Session) discover(rs *roomState) {
	defer rs.wg.Done()

	peers, err := rs.endpoint.Discover(rs.ctx, rs.room.Prefix())
	if err != nil {
		if rs.ctx.Err() == nil {
			logger.Warn("发现房间成员失败", "room", rs.room, "error", err)
		}
		return
	}
	logger.Debug("发现房间成员", "room", rs.room, "count", len(peers))

	var g errgroup.Group
	g.SetLimit(s.opts.dialConcurrency)
	for _, name := range peers {
		g.Go(func() error {
			return rs.pool.ConnectTo(rs.ctx, name)
		})
	}
	if err := g.Wait(); err != nil && rs.ctx.Err() == nil {
		logger.Warn("连接房间成员失败", "room", rs.room, "error", err)
	}
}

// ============================================================================
//                              连接事件（mesh.Listener）
// ============================================================================

// ConnectionOpened 通告在场与自己持有的锁，再重算花名册
func (rs *roomState) ConnectionOpened(pid types.ParticipantID) {
	s := rs.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != rs {
		return
	}

	if data, err := messaging.Encode(messaging.NewPresence(rs.self, s.name())); err == nil {
		if rs.pool.Send(pid, data) {
			s.opts.metrics.Sent(string(messaging.KindPresence), 1)
		}
	}
	rs.locks.Announce(pid)
	rs.rosterChangedLocked()
}

// MessageReceived 解码并分发
func (rs *roomState) MessageReceived(pid types.ParticipantID, data []byte) {
	s := rs.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != rs {
		return
	}

	msg, err := rs.router.Dispatch(pid, data)
	switch {
	case errors.Is(err, messaging.ErrMalformedMessage):
		s.opts.metrics.Malformed()
		logger.Warn("丢弃格式错误的消息", "peer", pid.ShortString(), "bytes", len(data), "error", err)
	case err != nil:
		logger.Debug("忽略未知类型的消息", "peer", pid.ShortString(), "error", err)
	default:
		s.opts.metrics.Received(string(msg.Kind))
	}
}

// ConnectionClosed 回收对端持有的锁并重算花名册
func (rs *roomState) ConnectionClosed(pid types.ParticipantID, _ error) {
	s := rs.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != rs {
		return
	}

	for _, ch := range rs.locks.ReleaseHolder(pid) {
		s.notifyLock(ch.FieldID, ch.HolderID, ch.HolderName, false)
	}
	rs.rosterChangedLocked()
}

// rosterChangedLocked 调用方持有 s.mu
func (rs *roomState) rosterChangedLocked() {
	upd := rs.tracker.Recompute(rs.pool.OpenPeers())
	rs.s.notifyPresence(upd.Roster, upd.Connected)
	rs.s.notifyStatus(upd.Connected, len(upd.Roster))
}

// announcePresence 向所有连接广播昵称，调用方持有 s.mu
func (rs *roomState) announcePresence() {
	data, err := messaging.Encode(messaging.NewPresence(rs.self, rs.s.name()))
	if err != nil {
		return
	}
	n := rs.pool.Broadcast(data)
	rs.s.opts.metrics.Sent(string(messaging.KindPresence), n)
}

// ============================================================================
//                              消息处理（持有 s.mu）
// ============================================================================

func (rs *roomState) onDocument(_ types.ParticipantID, msg *messaging.Message) {
	upd, ok := rs.docs.Handle(msg)
	if !ok {
		return
	}
	rs.s.notifyDocument(upd.Snapshot, upd.SenderID)
}

func (rs *roomState) onLock(from types.ParticipantID, msg *messaging.Message) {
	ch, ok := rs.locks.Handle(from, msg)
	if !ok {
		return
	}
	rs.s.notifyLock(ch.FieldID, ch.HolderID, ch.HolderName, ch.Locked)
}

func (rs *roomState) onPresence(from types.ParticipantID, msg *messaging.Message) {
	if msg.SenderID != "" && msg.SenderID != from {
		return
	}
	if !rs.tracker.Observe(from, msg.Name) {
		return
	}
	if st, ok := rs.pool.State(from); !ok || st != types.ConnStateOpen {
		return
	}
	upd := rs.tracker.Current()
	rs.s.notifyPresence(upd.Roster, upd.Connected)
}
