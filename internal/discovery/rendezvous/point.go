package rendezvous

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-collab/internal/core/metrics"
	"github.com/dep2p/go-collab/pkg/lib/log"
)

var logger = log.Logger("discovery/rendezvous")

// ============================================================================
//                              Point 实现
// ============================================================================

// Point 会合点服务端
//
// 作为 http.Handler 挂载到任意路由上，端点名从查询参数 id 读取。
type Point struct {
	cfg      PointConfig
	registry *Registry
	metrics  *metrics.Point
	upgrader websocket.Upgrader

	wg     sync.WaitGroup
	closed atomic.Bool
}

// PointStats 会合点统计
type PointStats struct {
	Registrations int
}

// NewPoint 创建会合点，m 可以为 nil
func NewPoint(cfg PointConfig, m *metrics.Point) *Point {
	cfg = cfg.withDefaults()
	p := &Point{
		cfg:      cfg,
		registry: NewRegistry(cfg.MaxRegistrations),
		metrics:  m,
	}
	p.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     p.checkOrigin,
	}
	return p
}

func (c PointConfig) withDefaults() PointConfig {
	def := DefaultPointConfig()
	if c.MaxRegistrations <= 0 {
		c.MaxRegistrations = def.MaxRegistrations
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = def.MaxMessageSize
	}
	if c.SignalRate <= 0 {
		c.SignalRate = def.SignalRate
	}
	if c.SignalBurst <= 0 {
		c.SignalBurst = def.SignalBurst
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = def.SendQueueSize
	}
	if c.PingInterval <= 0 {
		c.PingInterval = def.PingInterval
	}
	if c.PongTimeout <= c.PingInterval {
		c.PongTimeout = 3 * c.PingInterval
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	return c
}

func (p *Point) checkOrigin(r *http.Request) bool {
	if len(p.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range p.cfg.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// ServeHTTP 升级 websocket 并注册端点
func (p *Point) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p.closed.Load() {
		http.Error(w, ErrPointClosed.Error(), http.StatusServiceUnavailable)
		return
	}

	name := r.URL.Query().Get("id")
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("websocket 升级失败", "error", err)
		return
	}
	conn.SetReadLimit(p.cfg.MaxMessageSize)

	if !ValidEndpoint(name) {
		p.metrics.Reject("invalid_id")
		p.reject(conn, &Signal{Type: SignalInvalidID, Error: "invalid endpoint id"})
		return
	}

	pc := p.newPeerConn(name, conn)
	if err := p.registry.Add(name, pc); err != nil {
		if errors.Is(err, ErrUnavailableID) {
			p.metrics.Reject("id_taken")
			p.reject(conn, &Signal{Type: SignalIDTaken, Error: "endpoint id is taken"})
			return
		}
		p.metrics.Reject("capacity")
		p.reject(conn, &Signal{Type: SignalError, Error: err.Error()})
		return
	}
	if p.closed.Load() {
		p.registry.Remove(name, pc)
		p.reject(conn, &Signal{Type: SignalError, Error: ErrPointClosed.Error()})
		return
	}
	p.metrics.Registered()
	logger.Debug("端点已注册", "endpoint", name, "remote", r.RemoteAddr)

	pc.enqueue(&Signal{Type: SignalOpen})

	p.wg.Add(2)
	go p.writePump(pc)
	go p.readPump(pc)
}

// reject 回复一条错误信令后关闭连接
func (p *Point) reject(conn *websocket.Conn, sig *Signal) {
	_ = conn.SetWriteDeadline(time.Now().Add(p.cfg.WriteTimeout))
	_ = conn.WriteJSON(sig)
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, string(sig.Type)))
	_ = conn.Close()
}

// Stats 返回统计
func (p *Point) Stats() PointStats {
	return PointStats{Registrations: p.registry.Len()}
}

// Registry 返回注册表
func (p *Point) Registry() *Registry {
	return p.registry
}

// Close 断开所有端点并等待连接协程退出
func (p *Point) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	for _, pc := range p.registry.snapshot() {
		pc.close()
	}
	p.wg.Wait()
	logger.Info("会合点已关闭")
	return nil
}

// ============================================================================
//                              连接处理
// ============================================================================

// peerConn 会合点上的一个已注册端点
type peerConn struct {
	name    string
	conn    *websocket.Conn
	send    chan *Signal
	closed  chan struct{}
	once    sync.Once
	limiter *rate.Limiter
}

func (p *Point) newPeerConn(name string, conn *websocket.Conn) *peerConn {
	return &peerConn{
		name:    name,
		conn:    conn,
		send:    make(chan *Signal, p.cfg.SendQueueSize),
		closed:  make(chan struct{}),
		limiter: rate.NewLimiter(rate.Limit(p.cfg.SignalRate), p.cfg.SignalBurst),
	}
}

// enqueue 非阻塞入队，队列满或连接已关闭返回 false
func (pc *peerConn) enqueue(sig *Signal) bool {
	select {
	case <-pc.closed:
		return false
	default:
	}
	select {
	case pc.send <- sig:
		return true
	default:
		return false
	}
}

func (pc *peerConn) close() {
	pc.once.Do(func() { close(pc.closed) })
}

func (p *Point) writePump(pc *peerConn) {
	ticker := time.NewTicker(p.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = pc.conn.Close()
		p.wg.Done()
	}()

	for {
		select {
		case sig := <-pc.send:
			_ = pc.conn.SetWriteDeadline(time.Now().Add(p.cfg.WriteTimeout))
			if err := pc.conn.WriteJSON(sig); err != nil {
				logger.Debug("写信令失败", "endpoint", pc.name, "error", err)
				pc.close()
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(p.cfg.WriteTimeout)
			if err := pc.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				pc.close()
				return
			}
		case <-pc.closed:
			deadline := time.Now().Add(p.cfg.WriteTimeout)
			_ = pc.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return
		}
	}
}

func (p *Point) readPump(pc *peerConn) {
	defer func() {
		if p.registry.Remove(pc.name, pc) {
			p.metrics.Unregistered()
			logger.Debug("端点已注销", "endpoint", pc.name)
		}
		pc.close()
		p.wg.Done()
	}()

	extend := func() {
		_ = pc.conn.SetReadDeadline(time.Now().Add(p.cfg.PongTimeout))
	}
	extend()
	pc.conn.SetPongHandler(func(string) error {
		extend()
		return nil
	})

	for {
		var sig Signal
		if err := pc.conn.ReadJSON(&sig); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("端点连接异常断开", "endpoint", pc.name, "error", err)
			}
			return
		}
		extend()

		if !pc.limiter.Allow() {
			p.metrics.Dropped("rate_limited")
			pc.enqueue(&Signal{Type: SignalError, RequestID: sig.RequestID, Error: "rate limited"})
			continue
		}
		p.handle(pc, &sig)
	}
}

func (p *Point) handle(pc *peerConn, sig *Signal) {
	switch {
	case sig.Type.Relayed():
		p.relay(pc, sig)
	case sig.Type == SignalDiscover:
		p.discover(pc, sig)
	default:
		p.metrics.Dropped("unsupported")
		pc.enqueue(&Signal{Type: SignalError, RequestID: sig.RequestID, Error: "unsupported signal type"})
	}
}

func (p *Point) relay(pc *peerConn, sig *Signal) {
	if sig.Dst == "" {
		p.metrics.Dropped("no_destination")
		pc.enqueue(&Signal{Type: SignalError, Error: "missing dst"})
		return
	}

	dst, ok := p.registry.Get(sig.Dst)
	if !ok {
		p.metrics.Dropped("expired")
		if sig.Type != SignalLeave {
			pc.enqueue(&Signal{Type: SignalExpire, Src: sig.Dst, ConnectionID: sig.ConnectionID})
		}
		return
	}

	out := *sig
	out.Src = pc.name
	out.Dst = dst.name
	if !dst.enqueue(&out) {
		p.metrics.Dropped("queue_full")
		logger.Warn("目标端点出站队列已满", "src", pc.name, "dst", dst.name, "type", sig.Type)
		return
	}
	p.metrics.Relayed(string(sig.Type))
}

func (p *Point) discover(pc *peerConn, sig *Signal) {
	if sig.Prefix == "" {
		pc.enqueue(&Signal{Type: SignalError, RequestID: sig.RequestID, Error: "empty prefix"})
		return
	}
	p.metrics.Discovered()
	pc.enqueue(&Signal{
		Type:      SignalPeers,
		RequestID: sig.RequestID,
		Prefix:    sig.Prefix,
		Peers:     p.registry.Match(sig.Prefix, pc.name),
	})
}
