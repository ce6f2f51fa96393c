package rendezvous

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ============================================================================
//                              Client 实现
// ============================================================================

// Client 会合点客户端
//
// 一个 Client 对应一次成功的注册。注册丢失后 Errors() 投递一次
// KindDisconnected 错误并关闭 Done()；调用方需要重新 Open。
type Client struct {
	cfg  ClientConfig
	name string
	conn *websocket.Conn

	writeMu sync.Mutex

	signals chan *Signal
	errs    chan error
	done    chan struct{}
	once    sync.Once
	closing atomic.Bool

	pendingMu sync.Mutex
	pending   map[string]chan *Signal

	wg sync.WaitGroup
}

// Open 以端点名 name 注册到会合点
//
// 返回的错误均为 *SignalingError：
//   - KindInvalidID: 名称非法（本地校验或会合点拒绝）
//   - KindUnavailableID: 名称已被占用
//   - KindServerError: 会合点返回错误
//   - KindNetwork: 无法连接或握手超时
func Open(ctx context.Context, cfg ClientConfig, name string) (*Client, error) {
	cfg = cfg.withDefaults()
	if !ValidEndpoint(name) {
		return nil, NewSignalingError(KindInvalidID, name, nil)
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, NewSignalingError(KindNetwork, name, err)
	}
	q := u.Query()
	q.Set("id", name)
	q.Set("token", uuid.NewString())
	u.RawQuery = q.Encode()

	octx, cancel := context.WithTimeout(ctx, cfg.OpenTimeout)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: cfg.OpenTimeout}
	conn, _, err := dialer.DialContext(octx, u.String(), nil)
	if err != nil {
		return nil, NewSignalingError(KindNetwork, name, err)
	}
	conn.SetReadLimit(cfg.MaxMessageSize)

	first, err := readFirst(octx, conn)
	if err != nil {
		_ = conn.Close()
		return nil, NewSignalingError(KindNetwork, name, err)
	}

	switch first.Type {
	case SignalOpen:
	case SignalIDTaken:
		_ = conn.Close()
		return nil, NewSignalingError(KindUnavailableID, name, nil)
	case SignalInvalidID:
		_ = conn.Close()
		return nil, NewSignalingError(KindInvalidID, name, nil)
	default:
		_ = conn.Close()
		return nil, NewSignalingError(KindServerError, name, errors.New(first.Error))
	}

	c := &Client{
		cfg:     cfg,
		name:    name,
		conn:    conn,
		signals: make(chan *Signal, cfg.SignalBuffer),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
		pending: make(map[string]chan *Signal),
	}

	c.extendRead()
	conn.SetPongHandler(func(string) error {
		c.extendRead()
		return nil
	})
	conn.SetPingHandler(func(data string) error {
		c.extendRead()
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(cfg.WriteTimeout))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	logger.Debug("已注册到会合点", "endpoint", name)
	return c, nil
}

// readFirst 在 ctx 截止前读取第一条信令
func readFirst(ctx context.Context, conn *websocket.Conn) (*Signal, error) {
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(dl)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	var sig Signal
	if err := conn.ReadJSON(&sig); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return &sig, nil
}

func (c ClientConfig) withDefaults() ClientConfig {
	def := DefaultClientConfig()
	if c.URL == "" {
		c.URL = def.URL
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = def.OpenTimeout
	}
	if c.DiscoverTimeout <= 0 {
		c.DiscoverTimeout = def.DiscoverTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.PingInterval <= 0 {
		c.PingInterval = def.PingInterval
	}
	if c.PongTimeout <= c.PingInterval {
		c.PongTimeout = 3 * c.PingInterval
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = def.MaxMessageSize
	}
	if c.SignalBuffer <= 0 {
		c.SignalBuffer = def.SignalBuffer
	}
	return c
}

func (c *Client) extendRead() {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
}

// ID 返回注册的端点名
func (c *Client) ID() string {
	return c.name
}

// Signals 入站信令（OFFER / ANSWER / CANDIDATE / LEAVE / EXPIRE）
func (c *Client) Signals() <-chan *Signal {
	return c.signals
}

// Errors 终止错误，至多投递一次；主动 Close 不投递
func (c *Client) Errors() <-chan error {
	return c.errs
}

// Done 客户端终止时关闭
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Send 发送一条信令，Src 由会合点填写
func (c *Client) Send(sig *Signal) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := c.conn.WriteJSON(sig); err != nil {
		return NewSignalingError(KindNetwork, c.name, err)
	}
	return nil
}

// Discover 查询以 prefix 开头的在线端点，结果不含自身
func (c *Client) Discover(ctx context.Context, prefix string) ([]string, error) {
	reqID := uuid.NewString()
	ch := make(chan *Signal, 1)

	c.pendingMu.Lock()
	c.pending[reqID] = ch
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, reqID)
		c.pendingMu.Unlock()
	}()

	if err := c.Send(&Signal{Type: SignalDiscover, Prefix: prefix, RequestID: reqID}); err != nil {
		return nil, err
	}

	dctx, cancel := context.WithTimeout(ctx, c.cfg.DiscoverTimeout)
	defer cancel()

	select {
	case resp := <-ch:
		if resp.Type == SignalError {
			return nil, NewSignalingError(KindServerError, c.name, errors.New(resp.Error))
		}
		return resp.Peers, nil
	case <-dctx.Done():
		return nil, dctx.Err()
	case <-c.done:
		return nil, NewSignalingError(KindDisconnected, c.name, nil)
	}
}

// Close 主动注销，不投递终止错误
func (c *Client) Close() error {
	c.closing.Store(true)
	c.shutdown(nil)
	c.wg.Wait()
	return nil
}

func (c *Client) shutdown(err error) {
	c.once.Do(func() {
		if err != nil && !c.closing.Load() {
			c.errs <- err
		}
		close(c.done)
		if c.closing.Load() {
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.cfg.WriteTimeout))
		}
		_ = c.conn.Close()
	})
}

func (c *Client) readLoop() {
	defer c.wg.Done()

	for {
		var sig Signal
		if err := c.conn.ReadJSON(&sig); err != nil {
			if !c.closing.Load() {
				logger.Warn("与会合点的连接已断开", "endpoint", c.name, "error", err)
			}
			c.shutdown(NewSignalingError(KindDisconnected, c.name, err))
			return
		}
		c.extendRead()

		if sig.RequestID != "" && (sig.Type == SignalPeers || sig.Type == SignalError) {
			c.resolve(&sig)
			continue
		}
		if sig.Type == SignalError {
			logger.Warn("会合点返回错误", "endpoint", c.name, "error", sig.Error)
			continue
		}

		select {
		case c.signals <- &sig:
		case <-c.done:
			return
		}
	}
}

func (c *Client) resolve(sig *Signal) {
	c.pendingMu.Lock()
	ch, ok := c.pending[sig.RequestID]
	c.pendingMu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- sig:
	default:
	}
}

func (c *Client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				logger.Debug("心跳发送失败", "endpoint", c.name, "error", err)
			}
		case <-c.done:
			return
		}
	}
}
