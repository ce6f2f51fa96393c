package webrtc

import (
	"fmt"

	"github.com/pion/logging"

	"github.com/dep2p/go-collab/pkg/lib/log"
)

// loggerFactory 把 pion 的日志接到 slog
//
// pion 的 Info 级别非常嘈杂，统一降为 Debug；Trace 丢弃。
type loggerFactory struct{}

var _ logging.LoggerFactory = loggerFactory{}

func (loggerFactory) NewLogger(scope string) logging.LeveledLogger {
	return &leveledLogger{l: log.Logger("transport/webrtc/" + scope)}
}

type leveledLogger struct {
	l *log.LazyLogger
}

func (p *leveledLogger) Trace(string)          {}
func (p *leveledLogger) Tracef(string, ...any) {}

func (p *leveledLogger) Debug(msg string) { p.l.Debug(msg) }
func (p *leveledLogger) Debugf(format string, args ...any) {
	p.l.Debug(fmt.Sprintf(format, args...))
}

func (p *leveledLogger) Info(msg string) { p.l.Debug(msg) }
func (p *leveledLogger) Infof(format string, args ...any) {
	p.l.Debug(fmt.Sprintf(format, args...))
}

func (p *leveledLogger) Warn(msg string) { p.l.Warn(msg) }
func (p *leveledLogger) Warnf(format string, args ...any) {
	p.l.Warn(fmt.Sprintf(format, args...))
}

func (p *leveledLogger) Error(msg string) { p.l.Error(msg) }
func (p *leveledLogger) Errorf(format string, args ...any) {
	p.l.Error(fmt.Sprintf(format, args...))
}
