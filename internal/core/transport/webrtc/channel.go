package webrtc

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	pion "github.com/pion/webrtc/v4"

	"github.com/dep2p/go-collab/internal/core/transport/events"
	"github.com/dep2p/go-collab/pkg/interfaces"
	"github.com/dep2p/go-collab/pkg/types"
)

// Channel WebRTC 数据通道
type Channel struct {
	ep       *Endpoint
	remote   string
	connID   string
	outbound bool
	pc       *pion.PeerConnection
	emitter  *events.Emitter

	mu    sync.Mutex
	dc    *pion.DataChannel
	state types.ConnState
	timer *time.Timer

	// dcClosed 数据通道 OnClose 触发后关闭
	dcClosed  chan struct{}
	closeOnce sync.Once
}

// closeGrace 本地关闭时等待数据通道复位完成的上限
const closeGrace = 2 * time.Second

// isUserAbort 对端主动关闭 SCTP 关联时 pion 上报的错误
func isUserAbort(err error) bool {
	return err != nil && strings.Contains(err.Error(), "User Initiated Abort")
}

var _ interfaces.Channel = (*Channel)(nil)

func newChannel(ep *Endpoint, remote, connID string, outbound bool, pc *pion.PeerConnection) *Channel {
	c := &Channel{
		ep:       ep,
		remote:   remote,
		connID:   connID,
		outbound: outbound,
		pc:       pc,
		emitter:  events.NewEmitter(ep.ID() + "->" + remote),
		state:    types.ConnStateConnecting,
		dcClosed: make(chan struct{}),
	}
	pc.OnConnectionStateChange(func(s pion.PeerConnectionState) {
		switch s {
		case pion.PeerConnectionStateFailed:
			c.terminate(ErrConnectionFailed)
		case pion.PeerConnectionStateClosed:
			c.terminate(nil)
		}
	})
	return c
}

// attach 绑定数据通道事件
func (c *Channel) attach(dc *pion.DataChannel) {
	c.mu.Lock()
	if c.dc != nil || c.state.IsTerminal() {
		c.mu.Unlock()
		_ = dc.Close()
		return
	}
	c.dc = dc
	c.mu.Unlock()

	dc.OnOpen(c.opened)
	dc.OnMessage(func(msg pion.DataChannelMessage) {
		c.emitter.Message(msg.Data)
	})
	dc.OnClose(func() {
		c.closeOnce.Do(func() { close(c.dcClosed) })
		c.terminate(nil)
	})
	dc.OnError(func(err error) {
		if isUserAbort(err) {
			logger.Debug("对端中止关联，按关闭处理", "remote", c.remote)
			err = nil
		}
		c.terminate(err)
	})
}

func (c *Channel) startTimer(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timer = time.AfterFunc(d, func() {
		c.mu.Lock()
		pending := c.state == types.ConnStateConnecting
		c.mu.Unlock()
		if pending {
			c.terminate(ErrDialTimeout)
		}
	})
}

func (c *Channel) opened() {
	c.mu.Lock()
	if !c.state.CanTransition(types.ConnStateOpen) {
		c.mu.Unlock()
		return
	}
	c.state = types.ConnStateOpen
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	logger.Debug("数据通道已打开", "remote", c.remote, "outbound", c.outbound)
	c.emitter.Open()
}

func (c *Channel) applyAnswer(payload json.RawMessage) {
	var answer pion.SessionDescription
	if err := json.Unmarshal(payload, &answer); err != nil {
		c.terminate(err)
		return
	}
	if err := c.pc.SetRemoteDescription(answer); err != nil {
		c.terminate(err)
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
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Send 发送一条文本消息
func (c *Channel) Send(data []byte) error {
	c.mu.Lock()
	state, dc := c.state, c.dc
	c.mu.Unlock()

	switch {
	case state == types.ConnStateConnecting:
		return ErrChannelNotOpen
	case state.IsTerminal() || dc == nil:
		return ErrChannelClosed
	}
	return dc.SendText(string(data))
}

// Close 关闭通道
func (c *Channel) Close() error {
	c.terminate(nil)
	return nil
}

// terminate 进入终止状态并释放 PeerConnection
func (c *Channel) terminate(err error) {
	c.mu.Lock()
	if c.state.IsTerminal() {
		c.mu.Unlock()
		return
	}
	wasPending := c.state == types.ConnStateConnecting
	if err != nil {
		c.state = types.ConnStateErrored
	} else {
		c.state = types.ConnStateClosed
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	dc := c.dc
	c.mu.Unlock()

	c.ep.untrack(c)
	if err != nil {
		logger.Debug("数据通道出错", "remote", c.remote, "error", err)
		c.emitter.Error(err)
	} else {
		c.emitter.Close()
	}

	if wasPending && c.outbound && err == nil {
		c.ep.sendLeave(c)
	}

	// pion 回调中不能同步关闭 PeerConnection
	go c.release(dc)
}

// release 先关闭数据通道并等待复位送达，再关闭 PeerConnection
func (c *Channel) release(dc *pion.DataChannel) {
	if dc != nil && dc.Close() == nil {
		select {
		case <-c.dcClosed:
		case <-time.After(closeGrace):
			logger.Debug("等待数据通道关闭超时", "remote", c.remote)
		}
	}
	_ = c.pc.Close()
}
