package webrtc

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	pion "github.com/pion/webrtc/v4"

	"github.com/dep2p/go-collab/internal/discovery/rendezvous"
	"github.com/dep2p/go-collab/pkg/interfaces"
)

// Endpoint 已注册的 WebRTC 端点
type Endpoint struct {
	net    *Network
	client *rendezvous.Client

	offers chan interfaces.Channel
	errs   chan error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	channels map[string]*Channel
	closed   bool
}

var _ interfaces.Endpoint = (*Endpoint)(nil)

func newEndpoint(n *Network, client *rendezvous.Client) *Endpoint {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Endpoint{
		net:      n,
		client:   client,
		offers:   make(chan interfaces.Channel, 16),
		errs:     make(chan error, 1),
		ctx:      ctx,
		cancel:   cancel,
		channels: make(map[string]*Channel),
	}
	e.wg.Add(1)
	go e.signalLoop()
	return e
}

// ID 返回端点名
func (e *Endpoint) ID() string { return e.client.ID() }

// Offers 入站通道
func (e *Endpoint) Offers() <-chan interfaces.Channel { return e.offers }

// Errors 终止错误
func (e *Endpoint) Errors() <-chan error { return e.errs }

// Discover 按前缀查询其他端点
func (e *Endpoint) Discover(ctx context.Context, prefix string) ([]string, error) {
	return e.client.Discover(ctx, prefix)
}

// Dial 发起连接，立即返回 connecting 状态的通道
func (e *Endpoint) Dial(ctx context.Context, remote string) (interfaces.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pc, err := e.net.api.NewPeerConnection(e.net.rtcConfig())
	if err != nil {
		return nil, err
	}
	dc, err := pc.CreateDataChannel(e.net.cfg.ChannelLabel, nil)
	if err != nil {
		_ = pc.Close()
		return nil, err
	}

	ch := newChannel(e, remote, "dc_"+uuid.NewString(), true, pc)
	if !e.track(ch) {
		_ = pc.Close()
		return nil, ErrEndpointClosed
	}
	ch.attach(dc)
	ch.startTimer(e.net.cfg.DialTimeout)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.sendOffer(ch); err != nil {
			logger.Debug("发送 offer 失败", "remote", remote, "error", err)
			ch.terminate(err)
		}
	}()
	return ch, nil
}

func (e *Endpoint) sendOffer(ch *Channel) error {
	offer, err := ch.pc.CreateOffer(nil)
	if err != nil {
		return err
	}
	payload, err := e.gather(ch.pc, offer)
	if err != nil {
		return err
	}
	return e.client.Send(&rendezvous.Signal{
		Type:         rendezvous.SignalOffer,
		Dst:          ch.remote,
		ConnectionID: ch.connID,
		Payload:      payload,
	})
}

// gather 设置本地描述并等待候选收集完成
func (e *Endpoint) gather(pc *pion.PeerConnection, desc pion.SessionDescription) ([]byte, error) {
	done := pion.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(desc); err != nil {
		return nil, err
	}
	select {
	case <-done:
	case <-e.ctx.Done():
		return nil, ErrEndpointClosed
	}
	return json.Marshal(pc.LocalDescription())
}

func (e *Endpoint) signalLoop() {
	defer e.wg.Done()

	for {
		select {
		case sig := <-e.client.Signals():
			e.handleSignal(sig)
		case err := <-e.client.Errors():
			logger.Warn("会合点注册丢失", "endpoint", e.ID(), "error", err)
			e.errs <- err
			return
		case <-e.ctx.Done():
			return
		}
	}
}

func (e *Endpoint) handleSignal(sig *rendezvous.Signal) {
	switch sig.Type {
	case rendezvous.SignalOffer:
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.handleOffer(sig)
		}()
	case rendezvous.SignalAnswer:
		if ch := e.lookup(sig.ConnectionID, sig.Src); ch != nil {
			ch.applyAnswer(sig.Payload)
		}
	case rendezvous.SignalExpire:
		if ch := e.lookup(sig.ConnectionID, sig.Src); ch != nil {
			ch.terminate(rendezvous.NewSignalingError(rendezvous.KindPeerUnavailable, sig.Src, nil))
		}
	case rendezvous.SignalLeave:
		if ch := e.lookup(sig.ConnectionID, sig.Src); ch != nil {
			ch.terminate(ErrRemoteLeft)
		}
	case rendezvous.SignalCandidate:
		logger.Debug("忽略 trickle 候选", "src", sig.Src)
	default:
		logger.Debug("忽略未知信令", "type", sig.Type, "src", sig.Src)
	}
}

func (e *Endpoint) handleOffer(sig *rendezvous.Signal) {
	var offer pion.SessionDescription
	if err := json.Unmarshal(sig.Payload, &offer); err != nil {
		logger.Debug("offer 格式错误", "src", sig.Src, "error", err)
		return
	}

	pc, err := e.net.api.NewPeerConnection(e.net.rtcConfig())
	if err != nil {
		logger.Warn("创建 PeerConnection 失败", "error", err)
		return
	}
	ch := newChannel(e, sig.Src, sig.ConnectionID, false, pc)
	if !e.track(ch) {
		_ = pc.Close()
		return
	}
	pc.OnDataChannel(ch.attach)
	ch.startTimer(e.net.cfg.DialTimeout)

	if err := pc.SetRemoteDescription(offer); err != nil {
		ch.terminate(err)
		return
	}
	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		ch.terminate(err)
		return
	}
	payload, err := e.gather(pc, answer)
	if err != nil {
		ch.terminate(err)
		return
	}
	if err := e.client.Send(&rendezvous.Signal{
		Type:         rendezvous.SignalAnswer,
		Dst:          sig.Src,
		ConnectionID: sig.ConnectionID,
		Payload:      payload,
	}); err != nil {
		ch.terminate(err)
		return
	}

	select {
	case e.offers <- ch:
	case <-e.ctx.Done():
		ch.terminate(nil)
	}
}

// sendLeave 通知对端放弃尚未建立的连接
func (e *Endpoint) sendLeave(ch *Channel) {
	_ = e.client.Send(&rendezvous.Signal{
		Type:         rendezvous.SignalLeave,
		Dst:          ch.remote,
		ConnectionID: ch.connID,
	})
}

func (e *Endpoint) track(ch *Channel) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.channels[ch.connID] = ch
	return true
}

func (e *Endpoint) untrack(ch *Channel) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cur, ok := e.channels[ch.connID]; ok && cur == ch {
		delete(e.channels, ch.connID)
	}
}

func (e *Endpoint) lookup(connID, src string) *Channel {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch, ok := e.channels[connID]
	if !ok || ch.remote != src {
		return nil
	}
	return ch
}

// Close 注销端点并关闭所有通道
func (e *Endpoint) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	chans := make([]*Channel, 0, len(e.channels))
	for _, ch := range e.channels {
		chans = append(chans, ch)
	}
	e.mu.Unlock()

	e.cancel()
	for _, ch := range chans {
		ch.terminate(nil)
	}
	err := e.client.Close()
	e.wg.Wait()
	return err
}
