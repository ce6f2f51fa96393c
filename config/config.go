// Package config 提供统一的配置管理
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义，
// 提供 Default*Config() 与 Validate()。时长字段使用 Duration，
// JSON 中写作 "30s" 这样的字符串。
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Rendezvous.URL = "wss://rdv.example.com/rendezvous"
//
//	// 从 JSON 文件加载（未出现的字段保留默认值）
//	cfg, err := config.Load("collab.json")
package config

import "errors"

// ErrNilConfig 配置为空
var ErrNilConfig = errors.New("config: nil config")

// Config 是 go-collab 客户端的完整配置
//
//   - Identity: 本地参与者身份
//   - Rendezvous: 会合点客户端
//   - Mesh: 点对点网格与 WebRTC 数据通道
//   - Storage: 本地持久化
//   - Log: 日志
//   - Metrics: Prometheus 指标
type Config struct {
	// Identity 身份配置
	Identity IdentityConfig `json:"identity"`

	// Rendezvous 会合点客户端配置
	Rendezvous RendezvousConfig `json:"rendezvous"`

	// Mesh 网格配置
	Mesh MeshConfig `json:"mesh"`

	// Storage 存储配置
	Storage StorageConfig `json:"storage"`

	// Log 日志配置
	Log LogConfig `json:"log"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Identity:   DefaultIdentityConfig(),
		Rendezvous: DefaultRendezvousConfig(),
		Mesh:       DefaultMeshConfig(),
		Storage:    DefaultStorageConfig(),
		Log:        DefaultLogConfig(),
		Metrics:    DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if err := c.Identity.Validate(); err != nil {
		return err
	}
	if err := c.Rendezvous.Validate(); err != nil {
		return err
	}
	if err := c.Mesh.Validate(); err != nil {
		return err
	}
	if c.Identity.Persist {
		if err := c.Storage.Validate(); err != nil {
			return err
		}
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return c.Metrics.Validate()
}

// Clone 返回深拷贝
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cloned := *c
	cloned.Mesh.ICEServers = append([]string(nil), c.Mesh.ICEServers...)
	return &cloned
}
