// Package log 提供 go-collab 的组件日志
//
// 基于 log/slog。组件用 Logger("mesh") 取得带 component 属性的
// LazyLogger，它在每次调用时才读取 slog.Default()，所以包级变量
// 可以在 Setup 之前声明。
package log

import (
	"log/slog"
	"os"
)

// 日志级别
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Setup 按配置替换 slog.Default()
//
//	log.Setup(log.Options{Level: log.LevelDebug, Format: log.FormatJSON})
func Setup(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	hopts := &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.AddSource,
	}

	var h slog.Handler
	if opts.Format == FormatJSON {
		h = slog.NewJSONHandler(out, hopts)
	} else {
		h = slog.NewTextHandler(out, hopts)
	}
	slog.SetDefault(slog.New(h))
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 组件日志
//
//	var logger = log.Logger("realm/lock")
//	logger.Info("字段已锁定", "field", id)
type LazyLogger struct {
	component string
}

// Logger 返回组件日志
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) base() *slog.Logger {
	return slog.Default().With("component", l.component)
}

// Debug 输出 Debug 日志
func (l *LazyLogger) Debug(msg string, args ...any) { l.base().Debug(msg, args...) }

// Info 输出 Info 日志
func (l *LazyLogger) Info(msg string, args ...any) { l.base().Info(msg, args...) }

// Warn 输出 Warn 日志
func (l *LazyLogger) Warn(msg string, args ...any) { l.base().Warn(msg, args...) }

// Error 输出 Error 日志
func (l *LazyLogger) Error(msg string, args ...any) { l.base().Error(msg, args...) }

// Component 组件名
func (l *LazyLogger) Component() string {
	return l.component
}

func init() {
	Setup(OptionsFromEnv())
}
