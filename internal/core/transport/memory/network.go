package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dep2p/go-collab/internal/discovery/rendezvous"
	"github.com/dep2p/go-collab/pkg/interfaces"
	"github.com/dep2p/go-collab/pkg/lib/log"
)

var logger = log.Logger("transport/memory")

// Network 进程内会合网络
type Network struct {
	mu        sync.Mutex
	endpoints map[string]*Endpoint
	openErr   error
}

var _ interfaces.Network = (*Network)(nil)

// NewNetwork 创建进程内网络
func NewNetwork() *Network {
	return &Network{endpoints: make(map[string]*Endpoint)}
}

// Open 注册端点
func (n *Network) Open(ctx context.Context, name string) (interfaces.Endpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, rendezvous.NewSignalingError(rendezvous.KindNetwork, name, err)
	}
	if !rendezvous.ValidEndpoint(name) {
		return nil, rendezvous.NewSignalingError(rendezvous.KindInvalidID, name, nil)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.openErr; err != nil {
		n.openErr = nil
		return nil, err
	}
	if _, ok := n.endpoints[name]; ok {
		return nil, rendezvous.NewSignalingError(rendezvous.KindUnavailableID, name, nil)
	}

	ep := newEndpoint(n, name)
	n.endpoints[name] = ep
	logger.Debug("端点已注册", "endpoint", name)
	return ep, nil
}

// FailNextOpen 下一次 Open 返回 err
func (n *Network) FailNextOpen(err error) {
	n.mu.Lock()
	n.openErr = err
	n.mu.Unlock()
}

// Endpoint 查找已注册端点
func (n *Network) Endpoint(name string) (*Endpoint, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ep, ok := n.endpoints[name]
	return ep, ok
}

// Endpoints 列出已注册端点
func (n *Network) Endpoints() []string {
	return n.match("", "")
}

func (n *Network) match(prefix, exclude string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]string, 0)
	for name := range n.endpoints {
		if name != exclude && strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (n *Network) remove(ep *Endpoint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if cur, ok := n.endpoints[ep.name]; ok && cur == ep {
		delete(n.endpoints, ep.name)
	}
}
