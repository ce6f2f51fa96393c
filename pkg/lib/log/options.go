package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format 日志输出格式
type Format int

const (
	// FormatText 文本格式（默认）
	FormatText Format = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// 环境变量名
const (
	EnvLevel     = "COLLAB_LOG_LEVEL"
	EnvFormat    = "COLLAB_LOG_FORMAT"
	EnvAddSource = "COLLAB_LOG_ADD_SOURCE"
)

// Options 日志配置
type Options struct {
	// Level 最低输出级别
	Level slog.Level

	// Format 输出格式
	Format Format

	// Output 输出目标，nil 表示 stderr
	Output io.Writer

	// AddSource 是否添加源码位置
	AddSource bool
}

// OptionsFromEnv 从环境变量解析配置
//
// 环境变量:
//   - COLLAB_LOG_LEVEL: debug / info / warn / error，默认 info
//   - COLLAB_LOG_FORMAT: text 或 json
//   - COLLAB_LOG_ADD_SOURCE: true 或 false
func OptionsFromEnv() Options {
	opts := Options{Level: slog.LevelInfo}

	if lvl, ok := ParseLevel(os.Getenv(EnvLevel)); ok {
		opts.Level = lvl
	}
	opts.Format = ParseFormat(os.Getenv(EnvFormat))

	if s := os.Getenv(EnvAddSource); s != "" {
		opts.AddSource = s != "false" && s != "0"
	}
	return opts
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ParseFormat 解析日志格式，未知值按文本处理
func ParseFormat(name string) Format {
	if strings.EqualFold(strings.TrimSpace(name), "json") {
		return FormatJSON
	}
	return FormatText
}
