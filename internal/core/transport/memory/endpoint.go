package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/dep2p/go-collab/internal/discovery/rendezvous"
	"github.com/dep2p/go-collab/pkg/interfaces"
)

// Endpoint 进程内端点
type Endpoint struct {
	net  *Network
	name string

	offers chan interfaces.Channel
	errs   chan error
	done   chan struct{}
	once   sync.Once

	mu       sync.Mutex
	channels map[*Channel]struct{}
}

var _ interfaces.Endpoint = (*Endpoint)(nil)

func newEndpoint(n *Network, name string) *Endpoint {
	return &Endpoint{
		net:      n,
		name:     name,
		offers:   make(chan interfaces.Channel, 16),
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
		channels: make(map[*Channel]struct{}),
	}
}

// ID 返回端点名
func (e *Endpoint) ID() string { return e.name }

// Offers 入站通道
func (e *Endpoint) Offers() <-chan interfaces.Channel { return e.offers }

// Errors 终止错误
func (e *Endpoint) Errors() <-chan error { return e.errs }

func (e *Endpoint) isClosed() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Dial 连接远端端点
func (e *Endpoint) Dial(ctx context.Context, remote string) (interfaces.Channel, error) {
	if e.isClosed() {
		return nil, ErrEndpointClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := &pair{}
	local := newChannel(e, remote, true, p)
	p.a = local
	e.track(local)

	target, ok := e.net.Endpoint(remote)
	if !ok || target.isClosed() {
		go local.fail(rendezvous.NewSignalingError(rendezvous.KindPeerUnavailable, remote, nil))
		return local, nil
	}

	peer := newChannel(target, e.name, false, p)
	p.b = peer
	target.track(peer)

	go func() {
		select {
		case target.offers <- peer:
			p.open()
		case <-target.done:
			peer.Close()
		}
	}()
	return local, nil
}

// Discover 按前缀列出其他端点
func (e *Endpoint) Discover(ctx context.Context, prefix string) ([]string, error) {
	if e.isClosed() {
		return nil, ErrEndpointClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if prefix == "" {
		return nil, rendezvous.NewSignalingError(rendezvous.KindServerError, e.name, errors.New("empty prefix"))
	}
	return e.net.match(prefix, e.name), nil
}

// Fail 模拟注册丢失：投递终止错误并注销，已建立的通道不受影响
func (e *Endpoint) Fail(err error) {
	e.once.Do(func() {
		e.errs <- rendezvous.NewSignalingError(rendezvous.KindDisconnected, e.name, err)
		close(e.done)
		e.net.remove(e)
	})
}

// Close 注销端点并关闭所有通道
func (e *Endpoint) Close() error {
	e.once.Do(func() {
		close(e.done)
		e.net.remove(e)
	})

	e.mu.Lock()
	chans := make([]*Channel, 0, len(e.channels))
	for c := range e.channels {
		chans = append(chans, c)
	}
	e.mu.Unlock()

	for _, c := range chans {
		_ = c.Close()
	}
	return nil
}

// Channels 当前未关闭的通道数
func (e *Endpoint) Channels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.channels)
}

func (e *Endpoint) track(c *Channel) {
	e.mu.Lock()
	e.channels[c] = struct{}{}
	e.mu.Unlock()
}

func (e *Endpoint) untrack(c *Channel) {
	e.mu.Lock()
	delete(e.channels, c)
	e.mu.Unlock()
}
