package webrtc

import (
	"time"

	"github.com/dep2p/go-collab/config"
	"github.com/dep2p/go-collab/internal/discovery/rendezvous"
)

// Config WebRTC 网络配置
type Config struct {
	// ICEServers STUN/TURN 地址
	ICEServers []string

	// ChannelLabel 数据通道标签
	ChannelLabel string

	// DialTimeout 等待应答与通道打开的超时
	DialTimeout time.Duration

	// Rendezvous 会合点客户端配置
	Rendezvous rendezvous.ClientConfig
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}

// ConfigFromUnified 从统一配置创建
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return Config{
		ICEServers:   append([]string(nil), cfg.Mesh.ICEServers...),
		ChannelLabel: cfg.Mesh.ChannelLabel,
		DialTimeout:  cfg.Mesh.DialTimeout.Duration(),
		Rendezvous:   rendezvous.ClientConfigFromUnified(cfg.Rendezvous),
	}
}

func (c Config) withDefaults() Config {
	def := config.DefaultMeshConfig()
	if c.ChannelLabel == "" {
		c.ChannelLabel = def.ChannelLabel
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = def.DialTimeout.Duration()
	}
	return c
}
