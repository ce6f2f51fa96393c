package config

import (
	"errors"
	"strings"
)

// IdentityConfig 身份配置
type IdentityConfig struct {
	// Name 覆盖持久化的昵称，为空时沿用已保存的昵称或默认昵称
	Name string `json:"name,omitempty"`

	// Persist 是否把参与者 ID 与昵称保存到 Storage.DataDir
	// 关闭后每次启动都会生成新的临时 ID
	Persist bool `json:"persist"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		Persist: true,
	}
}

// Validate 验证身份配置
func (c IdentityConfig) Validate() error {
	if c.Name != "" && strings.TrimSpace(c.Name) == "" {
		return errors.New("identity: name cannot be blank")
	}
	if len(c.Name) > 64 {
		return errors.New("identity: name too long (max 64 bytes)")
	}
	return nil
}
