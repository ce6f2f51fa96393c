package mesh

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/dep2p/go-collab/internal/core/metrics"
	"github.com/dep2p/go-collab/pkg/interfaces"
	"github.com/dep2p/go-collab/pkg/lib/log"
	"github.com/dep2p/go-collab/pkg/types"
)

var logger = log.Logger("core/mesh")

// Option 连接池选项
type Option func(*Pool)

// WithMetrics 设置指标
func WithMetrics(m *metrics.Session) Option {
	return func(p *Pool) { p.metrics = m }
}

// WithClock 设置时钟
func WithClock(c clock.Clock) Option {
	return func(p *Pool) { p.clock = c }
}

// Pool 房间连接池
type Pool struct {
	room     types.RoomID
	self     types.ParticipantID
	endpoint interfaces.Endpoint
	listener Listener
	metrics  *metrics.Session
	clock    clock.Clock

	mu     sync.Mutex
	conns  map[types.ParticipantID]*Connection
	closed bool
}

// NewPool 创建连接池
//
// endpoint 用于出站拨号，可以为 nil（此时 ConnectTo 不可用）。
func NewPool(room types.RoomID, self types.ParticipantID, endpoint interfaces.Endpoint, l Listener, opts ...Option) *Pool {
	if l == nil {
		l = ListenerFuncs{}
	}
	p := &Pool{
		room:     room,
		self:     self,
		endpoint: endpoint,
		listener: l,
		clock:    clock.New(),
		conns:    make(map[types.ParticipantID]*Connection),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Room 所属房间
func (p *Pool) Room() types.RoomID { return p.room }

// resolve 把端点名解析为本房间的参与者
func (p *Pool) resolve(endpoint string) (types.ParticipantID, error) {
	pid, ok := types.ParticipantFromEndpoint(p.room, endpoint)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrForeignEndpoint, endpoint)
	}
	if pid == p.self {
		return "", ErrSelfConnection
	}
	return pid, nil
}

// Accept 接纳入站通道
func (p *Pool) Accept(ch interfaces.Channel) error {
	pid, err := p.resolve(ch.RemoteEndpoint())
	if err != nil {
		logger.Debug("拒绝入站通道", "endpoint", ch.RemoteEndpoint(), "error", err)
		_ = ch.Close()
		return err
	}
	return p.add(pid, ch, types.DirInbound)
}

// ConnectTo 向端点发起连接
//
// 已存在到该参与者的连接（任何未终止状态）时直接返回。
func (p *Pool) ConnectTo(ctx context.Context, endpoint string) error {
	pid, err := p.resolve(endpoint)
	if err != nil {
		return err
	}
	if p.endpoint == nil {
		return ErrPoolClosed
	}

	p.mu.Lock()
	_, exists := p.conns[pid]
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrPoolClosed
	}
	if exists {
		return nil
	}

	ch, err := p.endpoint.Dial(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("mesh: dial %s: %w", endpoint, err)
	}
	return p.add(pid, ch, types.DirOutbound)
}

func (p *Pool) add(pid types.ParticipantID, ch interfaces.Channel, dir types.Direction) error {
	conn := &Connection{
		pid:      pid,
		endpoint: ch.RemoteEndpoint(),
		dir:      dir,
		ch:       ch,
		state:    types.ConnStateConnecting,
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = ch.Close()
		return ErrPoolClosed
	}
	var replaced *Connection
	if existing, ok := p.conns[pid]; ok {
		if !p.preferNew(existing, conn) {
			p.mu.Unlock()
			logger.Debug("保留已有连接", "peer", pid.ShortString(), "direction", dir)
			_ = ch.Close()
			return nil
		}
		replaced = existing
	}
	p.conns[pid] = conn
	p.mu.Unlock()

	if replaced != nil {
		logger.Debug("替换重复连接", "peer", pid.ShortString(), "direction", dir)
		_ = replaced.ch.Close()
	}

	ch.SetHandlers(interfaces.ChannelHandlers{
		OnOpen:    func() { p.onOpen(conn) },
		OnMessage: func(data []byte) { p.onMessage(conn, data) },
		OnClose:   func() { p.onClose(conn, nil) },
		OnError:   func(err error) { p.onClose(conn, err) },
	})
	return nil
}

// preferNew 判断新连接是否替换已有连接
func (p *Pool) preferNew(existing, incoming *Connection) bool {
	if existing.dir == incoming.dir {
		return true
	}
	return incoming.initiator(p.self) < existing.initiator(p.self)
}

func (p *Pool) onOpen(conn *Connection) {
	p.mu.Lock()
	if p.conns[conn.pid] != conn || conn.state != types.ConnStateConnecting {
		p.mu.Unlock()
		return
	}
	conn.state = types.ConnStateOpen
	conn.openedAt = p.clock.Now()
	n := p.openCountLocked()
	p.mu.Unlock()

	p.metrics.SetConnections(n)
	logger.Info("连接已打开", "peer", conn.pid.ShortString(), "direction", conn.dir)
	p.listener.ConnectionOpened(conn.pid)
}

func (p *Pool) onMessage(conn *Connection, data []byte) {
	p.mu.Lock()
	current := p.conns[conn.pid] == conn
	p.mu.Unlock()
	if !current {
		return
	}
	p.listener.MessageReceived(conn.pid, data)
}

func (p *Pool) onClose(conn *Connection, err error) {
	p.mu.Lock()
	if p.conns[conn.pid] != conn {
		p.mu.Unlock()
		return
	}
	delete(p.conns, conn.pid)
	if err != nil {
		conn.state = types.ConnStateErrored
	} else {
		conn.state = types.ConnStateClosed
	}
	n := p.openCountLocked()
	p.mu.Unlock()

	p.metrics.SetConnections(n)
	if err != nil {
		logger.Warn("连接出错", "peer", conn.pid.ShortString(), "error", err)
	} else {
		logger.Info("连接已关闭", "peer", conn.pid.ShortString())
	}
	p.listener.ConnectionClosed(conn.pid, err)
}

func (p *Pool) openCountLocked() int {
	n := 0
	for _, c := range p.conns {
		if c.state == types.ConnStateOpen {
			n++
		}
	}
	return n
}

// Send 单播，连接未打开返回 false，发送失败记录后返回 false
func (p *Pool) Send(pid types.ParticipantID, data []byte) bool {
	p.mu.Lock()
	conn, ok := p.conns[pid]
	open := ok && conn.state == types.ConnStateOpen
	p.mu.Unlock()
	if !open {
		return false
	}
	return p.send(conn, data)
}

func (p *Pool) send(conn *Connection, data []byte) bool {
	if err := conn.ch.Send(data); err != nil {
		p.metrics.SendFailed()
		logger.Warn("发送失败", "peer", conn.pid.ShortString(), "error", err)
		return false
	}
	return true
}

// Broadcast 发送给所有已打开的连接，返回成功数
func (p *Pool) Broadcast(data []byte) int {
	p.mu.Lock()
	targets := make([]*Connection, 0, len(p.conns))
	for _, c := range p.conns {
		if c.state == types.ConnStateOpen {
			targets = append(targets, c)
		}
	}
	p.mu.Unlock()

	sent := 0
	for _, c := range targets {
		if p.send(c, data) {
			sent++
		}
	}
	return sent
}

// OpenPeers 已打开连接的参与者（按 ID 排序）
func (p *Pool) OpenPeers() []types.ParticipantID {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]types.ParticipantID, 0, len(p.conns))
	for pid, c := range p.conns {
		if c.state == types.ConnStateOpen {
			out = append(out, pid)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// State 到 pid 的连接状态
func (p *Pool) State(pid types.ParticipantID) (types.ConnState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.conns[pid]
	if !ok {
		return 0, false
	}
	return c.state, true
}

// Info 到 pid 的连接快照
func (p *Pool) Info(pid types.ParticipantID) (ConnInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.conns[pid]
	if !ok {
		return ConnInfo{}, false
	}
	return c.info(), true
}

// Len 未终止连接数（含 connecting）
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns)
}

// CloseAll 关闭所有连接，不触发 ConnectionClosed
func (p *Pool) CloseAll() error {
	p.mu.Lock()
	p.closed = true
	conns := p.conns
	p.conns = make(map[types.ParticipantID]*Connection)
	p.mu.Unlock()

	var err error
	for _, c := range conns {
		err = multierr.Append(err, c.ch.Close())
	}
	p.metrics.SetConnections(0)
	if len(conns) > 0 {
		logger.Debug("连接池已关闭", "count", len(conns))
	}
	return err
}
