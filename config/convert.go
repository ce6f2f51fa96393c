package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// FromJSON 从 JSON 数据创建客户端配置
//
// 先填入默认值再解码，未出现的字段保持默认。
//
// 示例 JSON:
//
//	{
//	  "rendezvous": {"url": "wss://rdv.example.com/rendezvous", "open_timeout": "5s"},
//	  "mesh": {"auto_discover": false}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	return cfg, nil
}

// Load 从文件加载客户端配置并验证
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PointFromJSON 从 JSON 数据创建会合点服务端配置
func PointFromJSON(data []byte) (*PointConfig, error) {
	cfg := DefaultPointConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal point config: %w", err)
	}
	return &cfg, nil
}

// LoadPoint 从文件加载会合点服务端配置并验证
func LoadPoint(path string) (*PointConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := PointFromJSON(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
