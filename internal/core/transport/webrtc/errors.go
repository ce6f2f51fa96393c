package webrtc

import "errors"

var (
	// ErrEndpointClosed 端点已关闭
	ErrEndpointClosed = errors.New("webrtc: endpoint closed")

	// ErrChannelNotOpen 通道尚未打开
	ErrChannelNotOpen = errors.New("webrtc: channel not open")

	// ErrChannelClosed 通道已关闭
	ErrChannelClosed = errors.New("webrtc: channel closed")

	// ErrDialTimeout 等待应答超时
	ErrDialTimeout = errors.New("webrtc: dial timeout")

	// ErrConnectionFailed ICE 或 DTLS 失败
	ErrConnectionFailed = errors.New("webrtc: peer connection failed")

	// ErrRemoteLeft 对端放弃连接
	ErrRemoteLeft = errors.New("webrtc: remote left")
)
