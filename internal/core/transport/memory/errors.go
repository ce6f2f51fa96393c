package memory

import "errors"

var (
	// ErrEndpointClosed 端点已关闭
	ErrEndpointClosed = errors.New("memory: endpoint closed")

	// ErrChannelNotOpen 通道尚未打开
	ErrChannelNotOpen = errors.New("memory: channel not open")

	// ErrChannelClosed 通道已关闭
	ErrChannelClosed = errors.New("memory: channel closed")
)
