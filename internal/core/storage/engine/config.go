package engine

import (
	"os"
	"path/filepath"
	"time"
)

// Config 存储引擎配置
type Config struct {
	// Path 数据库目录
	Path string

	// SyncWrites 每次写入都落盘，身份只在首次运行和改名时写入
	SyncWrites bool

	// Logger badger 内部日志，nil 时转发到 storage/badger 组件日志
	Logger Logger

	// BlockCacheSize 块缓存字节数
	BlockCacheSize int64

	// GCInterval value log 回收间隔，0 表示不回收
	GCInterval time.Duration

	// GCDiscardRatio 回收阈值，取值 (0, 1)
	GCDiscardRatio float64
}

// Logger badger.Logger 的子集
type Logger interface {
	Errorf(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// DefaultConfig 身份库的默认配置，库里只有几个键
func DefaultConfig(path string) *Config {
	return &Config{
		Path:           path,
		SyncWrites:     true,
		BlockCacheSize: 1 << 20,
		GCInterval:     time.Hour,
		GCDiscardRatio: 0.5,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	switch {
	case c.Path == "":
		return ErrInvalidConfig
	case c.GCInterval < 0, c.BlockCacheSize < 0:
		return ErrInvalidConfig
	case c.GCInterval > 0 && (c.GCDiscardRatio <= 0 || c.GCDiscardRatio >= 1):
		return ErrInvalidConfig
	}
	return nil
}

// EnsureDir 把 Path 规范为绝对路径并创建目录
func (c *Config) EnsureDir() error {
	abs, err := filepath.Abs(c.Path)
	if err != nil {
		return err
	}
	c.Path = abs
	return os.MkdirAll(abs, 0o700)
}
