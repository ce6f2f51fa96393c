package badger

import (
	"fmt"
	"strings"
)

// slogAdapter 把 badger 的 printf 风格日志转给组件日志
//
// badger 的 Info 很啰嗦，降为 Debug。
type slogAdapter struct{}

func (slogAdapter) Errorf(format string, args ...interface{}) {
	logger.Error(message(format, args))
}

func (slogAdapter) Warningf(format string, args ...interface{}) {
	logger.Warn(message(format, args))
}

func (slogAdapter) Infof(format string, args ...interface{}) {
	logger.Debug(message(format, args))
}

func (slogAdapter) Debugf(format string, args ...interface{}) {
	logger.Debug(message(format, args))
}

func message(format string, args []interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
