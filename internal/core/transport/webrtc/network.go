package webrtc

import (
	"context"

	pion "github.com/pion/webrtc/v4"

	"github.com/dep2p/go-collab/internal/discovery/rendezvous"
	"github.com/dep2p/go-collab/pkg/interfaces"
	"github.com/dep2p/go-collab/pkg/lib/log"
)

var logger = log.Logger("transport/webrtc")

// Network 基于会合点与 WebRTC 数据通道的网络
type Network struct {
	cfg Config
	api *pion.API
}

var _ interfaces.Network = (*Network)(nil)

// NewNetwork 创建网络
func NewNetwork(cfg Config) *Network {
	cfg = cfg.withDefaults()
	se := pion.SettingEngine{LoggerFactory: loggerFactory{}}
	return &Network{
		cfg: cfg,
		api: pion.NewAPI(pion.WithSettingEngine(se)),
	}
}

// Config 返回配置
func (n *Network) Config() Config {
	return n.cfg
}

// Open 在会合点注册端点
func (n *Network) Open(ctx context.Context, name string) (interfaces.Endpoint, error) {
	client, err := rendezvous.Open(ctx, n.cfg.Rendezvous, name)
	if err != nil {
		return nil, err
	}
	return newEndpoint(n, client), nil
}

func (n *Network) rtcConfig() pion.Configuration {
	cfg := pion.Configuration{}
	if len(n.cfg.ICEServers) > 0 {
		cfg.ICEServers = []pion.ICEServer{{URLs: n.cfg.ICEServers}}
	}
	return cfg
}
