package transport

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-collab/config"
	"github.com/dep2p/go-collab/internal/core/transport/webrtc"
	"github.com/dep2p/go-collab/pkg/interfaces"
	"github.com/dep2p/go-collab/pkg/lib/log"
)

var logger = log.Logger("core/transport")

// Params 传输依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Output 传输输出
type Output struct {
	fx.Out

	Network interfaces.Network
	WebRTC  *webrtc.Network
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(ProvideNetwork),
	)
}

// ProvideNetwork 提供基于 WebRTC 的会合网络
func ProvideNetwork(p Params) Output {
	cfg := webrtc.ConfigFromUnified(p.UnifiedCfg)
	n := webrtc.NewNetwork(cfg)
	logger.Debug("会合网络已创建", "rendezvous", cfg.Rendezvous.URL, "iceServers", len(cfg.ICEServers))
	return Output{Network: n, WebRTC: n}
}
