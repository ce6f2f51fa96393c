package rendezvous

import (
	"errors"
	"fmt"
)

// 预定义错误
var (
	// ErrUnavailableID 端点名已被占用
	ErrUnavailableID = errors.New("rendezvous: unavailable id")

	// ErrInvalidID 端点名非法
	ErrInvalidID = errors.New("rendezvous: invalid id")

	// ErrNetwork 会合点不可达或握手失败
	ErrNetwork = errors.New("rendezvous: network error")

	// ErrServer 会合点返回错误
	ErrServer = errors.New("rendezvous: server error")

	// ErrDisconnected 与会合点的连接已断开
	ErrDisconnected = errors.New("rendezvous: disconnected")

	// ErrPeerUnavailable 目标端点不在线
	ErrPeerUnavailable = errors.New("rendezvous: peer unavailable")

	// ErrClientClosed 客户端已关闭
	ErrClientClosed = errors.New("rendezvous: client closed")

	// ErrNotOpen 客户端尚未注册
	ErrNotOpen = errors.New("rendezvous: client not open")

	// ErrAlreadyOpen 客户端已注册
	ErrAlreadyOpen = errors.New("rendezvous: client already open")

	// ErrMaxRegistrationsExceeded 超过最大注册数
	ErrMaxRegistrationsExceeded = errors.New("rendezvous: max registrations exceeded")

	// ErrPointClosed 会合点已关闭
	ErrPointClosed = errors.New("rendezvous: point closed")

	// ErrInvalidSignal 信令格式错误
	ErrInvalidSignal = errors.New("rendezvous: invalid signal")
)

// ErrorKind 信令错误类别
type ErrorKind string

const (
	// KindUnavailableID 端点名冲突
	KindUnavailableID ErrorKind = "unavailable-id"
	// KindInvalidID 端点名非法
	KindInvalidID ErrorKind = "invalid-id"
	// KindNetwork 网络错误
	KindNetwork ErrorKind = "network"
	// KindServerError 会合点错误
	KindServerError ErrorKind = "server-error"
	// KindDisconnected 注册丢失
	KindDisconnected ErrorKind = "disconnected"
	// KindPeerUnavailable 目标端点不在线
	KindPeerUnavailable ErrorKind = "peer-unavailable"
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnavailableID:
		return ErrUnavailableID
	case KindInvalidID:
		return ErrInvalidID
	case KindNetwork:
		return ErrNetwork
	case KindServerError:
		return ErrServer
	case KindDisconnected:
		return ErrDisconnected
	case KindPeerUnavailable:
		return ErrPeerUnavailable
	default:
		return nil
	}
}

// SignalingError 注册或信令失败
//
// errors.Is 可以与对应的哨兵错误匹配，例如
// errors.Is(err, ErrUnavailableID)。
type SignalingError struct {
	Kind     ErrorKind
	Endpoint string
	Err      error
}

// NewSignalingError 创建信令错误
func NewSignalingError(kind ErrorKind, endpoint string, err error) *SignalingError {
	return &SignalingError{Kind: kind, Endpoint: endpoint, Err: err}
}

// Error 实现 error 接口
func (e *SignalingError) Error() string {
	msg := fmt.Sprintf("rendezvous: %s", e.Kind)
	if e.Endpoint != "" {
		msg += fmt.Sprintf(" (endpoint %s)", e.Endpoint)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap 返回底层错误
func (e *SignalingError) Unwrap() error {
	return e.Err
}

// Is 按类别匹配哨兵错误
func (e *SignalingError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && s == target
}

// KindOf 返回错误链中 SignalingError 的类别
func KindOf(err error) (ErrorKind, bool) {
	var se *SignalingError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}
