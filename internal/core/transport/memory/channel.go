package memory

import (
	"sync"

	"github.com/dep2p/go-collab/internal/core/transport/events"
	"github.com/dep2p/go-collab/pkg/interfaces"
	"github.com/dep2p/go-collab/pkg/types"
)

// pair 一对互联通道，状态变更与投递共用一把锁
type pair struct {
	mu   sync.Mutex
	a, b *Channel
}

func (p *pair) open() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range []*Channel{p.a, p.b} {
		if !c.state.CanTransition(types.ConnStateOpen) {
			continue
		}
		c.state = types.ConnStateOpen
		c.emitter.Open()
	}
}

func (p *pair) other(c *Channel) *Channel {
	if p.a == c {
		return p.b
	}
	return p.a
}

// Channel 进程内数据通道
type Channel struct {
	ep       *Endpoint
	remote   string
	outbound bool
	p        *pair
	emitter  *events.Emitter

	// 受 p.mu 保护
	state types.ConnState
}

var _ interfaces.Channel = (*Channel)(nil)

func newChannel(ep *Endpoint, remote string, outbound bool, p *pair) *Channel {
	return &Channel{
		ep:       ep,
		remote:   remote,
		outbound: outbound,
		p:        p,
		emitter:  events.NewEmitter(ep.name + "->" + remote),
		state:    types.ConnStateConnecting,
	}
}

// RemoteEndpoint 对端端点名
func (c *Channel) RemoteEndpoint() string { return c.remote }

// Outbound 是否由本地发起
func (c *Channel) Outbound() bool { return c.outbound }

// SetHandlers 设置事件回调
func (c *Channel) SetHandlers(h interfaces.ChannelHandlers) { c.emitter.SetHandlers(h) }

// State 当前状态
func (c *Channel) State() types.ConnState {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	return c.state
}

// Send 发送消息，对端按发送顺序收到
func (c *Channel) Send(data []byte) error {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()

	switch c.state {
	case types.ConnStateOpen:
	case types.ConnStateConnecting:
		return ErrChannelNotOpen
	default:
		return ErrChannelClosed
	}

	peer := c.p.other(c)
	if peer == nil || peer.state != types.ConnStateOpen {
		return ErrChannelClosed
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	peer.emitter.Message(buf)
	return nil
}

// Close 关闭通道，两端都收到 OnClose
func (c *Channel) Close() error {
	c.p.mu.Lock()
	peer := c.p.other(c)
	c.terminateLocked(nil)
	if peer != nil {
		peer.terminateLocked(nil)
	}
	c.p.mu.Unlock()
	return nil
}

// Fail 本端以错误终止，对端收到 OnClose
func (c *Channel) Fail(err error) {
	c.fail(err)
}

func (c *Channel) fail(err error) {
	c.p.mu.Lock()
	peer := c.p.other(c)
	c.terminateLocked(err)
	if peer != nil {
		peer.terminateLocked(nil)
	}
	c.p.mu.Unlock()
}

func (c *Channel) terminateLocked(err error) {
	if c.state.IsTerminal() {
		return
	}
	if err != nil {
		c.state = types.ConnStateErrored
		c.emitter.Error(err)
	} else {
		c.state = types.ConnStateClosed
		c.emitter.Close()
	}
	c.ep.untrack(c)
}
