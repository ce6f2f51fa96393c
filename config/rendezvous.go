package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// RendezvousConfig 会合点客户端配置
type RendezvousConfig struct {
	// URL 会合点 websocket 地址
	URL string `json:"url"`

	// OpenTimeout 注册超时
	OpenTimeout Duration `json:"open_timeout"`

	// DiscoverTimeout 房间发现请求超时
	DiscoverTimeout Duration `json:"discover_timeout"`

	// WriteTimeout 单条信令写超时
	WriteTimeout Duration `json:"write_timeout"`

	// PingInterval 心跳间隔
	PingInterval Duration `json:"ping_interval"`

	// PongTimeout 超过此时长未收到任何帧即认为会合点已断开
	PongTimeout Duration `json:"pong_timeout"`

	// MaxMessageSize 单条信令最大字节数
	MaxMessageSize int64 `json:"max_message_size"`
}

// DefaultRendezvousConfig 返回默认会合点客户端配置
func DefaultRendezvousConfig() RendezvousConfig {
	return RendezvousConfig{
		URL:             "ws://127.0.0.1:9000/rendezvous",
		OpenTimeout:     Duration(10 * time.Second),
		DiscoverTimeout: Duration(5 * time.Second),
		WriteTimeout:    Duration(10 * time.Second),
		PingInterval:    Duration(20 * time.Second),
		PongTimeout:     Duration(60 * time.Second),
		MaxMessageSize:  1 << 20,
	}
}

// Validate 验证会合点客户端配置
func (c RendezvousConfig) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("rendezvous: invalid url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("rendezvous: url scheme must be ws or wss, got %q", u.Scheme)
	}
	if c.OpenTimeout <= 0 || c.DiscoverTimeout <= 0 || c.WriteTimeout <= 0 {
		return errors.New("rendezvous: timeouts must be positive")
	}
	if c.PingInterval <= 0 || c.PongTimeout <= c.PingInterval {
		return errors.New("rendezvous: pong_timeout must exceed ping_interval")
	}
	if c.MaxMessageSize <= 0 {
		return errors.New("rendezvous: max_message_size must be positive")
	}
	return nil
}

// PointConfig 会合点服务端配置
type PointConfig struct {
	// ListenAddr HTTP 监听地址
	ListenAddr string `json:"listen_addr"`

	// Path websocket 路径
	Path string `json:"path"`

	// MaxRegistrations 同时在线端点上限
	MaxRegistrations int `json:"max_registrations"`

	// MaxMessageSize 单条信令最大字节数
	MaxMessageSize int64 `json:"max_message_size"`

	// SignalRate 每个端点每秒允许的信令数
	SignalRate float64 `json:"signal_rate"`

	// SignalBurst 信令突发上限
	SignalBurst int `json:"signal_burst"`

	// SendQueueSize 每个端点的出站信令缓冲
	SendQueueSize int `json:"send_queue_size"`

	// PingInterval 心跳间隔
	PingInterval Duration `json:"ping_interval"`

	// PongTimeout 读超时
	PongTimeout Duration `json:"pong_timeout"`

	// WriteTimeout 写超时
	WriteTimeout Duration `json:"write_timeout"`

	// AllowedOrigins 允许的 Origin，为空表示不校验
	AllowedOrigins []string `json:"allowed_origins,omitempty"`

	// Log 日志配置
	Log LogConfig `json:"log"`

	// Metrics 是否暴露 /metrics
	Metrics MetricsConfig `json:"metrics"`
}

// DefaultPointConfig 返回默认会合点服务端配置
func DefaultPointConfig() PointConfig {
	return PointConfig{
		ListenAddr:       ":9000",
		Path:             "/rendezvous",
		MaxRegistrations: 10000,
		MaxMessageSize:   1 << 20,
		SignalRate:       50,
		SignalBurst:      100,
		SendQueueSize:    64,
		PingInterval:     Duration(20 * time.Second),
		PongTimeout:      Duration(60 * time.Second),
		WriteTimeout:     Duration(10 * time.Second),
		Log:              DefaultLogConfig(),
		Metrics: MetricsConfig{
			Enable:    true,
			Namespace: "collab",
		},
	}
}

// Validate 验证会合点服务端配置
func (c PointConfig) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("point: listen_addr cannot be empty")
	}
	if c.Path == "" || c.Path[0] != '/' {
		return errors.New("point: path must start with /")
	}
	if c.MaxRegistrations <= 0 {
		return errors.New("point: max_registrations must be positive")
	}
	if c.MaxMessageSize <= 0 {
		return errors.New("point: max_message_size must be positive")
	}
	if c.SignalRate <= 0 || c.SignalBurst <= 0 {
		return errors.New("point: signal_rate and signal_burst must be positive")
	}
	if c.SendQueueSize <= 0 {
		return errors.New("point: send_queue_size must be positive")
	}
	if c.PingInterval <= 0 || c.PongTimeout <= c.PingInterval {
		return errors.New("point: pong_timeout must exceed ping_interval")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("point: write_timeout must be positive")
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return c.Metrics.Validate()
}
