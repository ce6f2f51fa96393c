package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MeshConfig 点对点网格配置
type MeshConfig struct {
	// ICEServers STUN/TURN 服务器地址
	ICEServers []string `json:"ice_servers"`

	// ChannelLabel 数据通道标签
	ChannelLabel string `json:"channel_label"`

	// DialTimeout 出站连接等待应答的超时
	DialTimeout Duration `json:"dial_timeout"`

	// AutoDiscover 加入房间后是否自动发现并连接同房间端点
	AutoDiscover bool `json:"auto_discover"`
}

// DefaultMeshConfig 返回默认网格配置
func DefaultMeshConfig() MeshConfig {
	return MeshConfig{
		ICEServers:   []string{"stun:stun.l.google.com:19302"},
		ChannelLabel: "collab",
		DialTimeout:  Duration(15 * time.Second),
		AutoDiscover: true,
	}
}

// Validate 验证网格配置
func (c MeshConfig) Validate() error {
	for _, s := range c.ICEServers {
		if !strings.HasPrefix(s, "stun:") && !strings.HasPrefix(s, "turn:") && !strings.HasPrefix(s, "turns:") {
			return fmt.Errorf("mesh: invalid ice server %q", s)
		}
	}
	if c.ChannelLabel == "" {
		return errors.New("mesh: channel_label cannot be empty")
	}
	if c.DialTimeout <= 0 {
		return errors.New("mesh: dial_timeout must be positive")
	}
	return nil
}
