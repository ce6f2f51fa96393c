package messaging

import "errors"

// 错误定义
var (
	// ErrMalformedMessage 消息格式错误
	ErrMalformedMessage = errors.New("messaging: malformed message")

	// ErrHandlerNotFound 没有该类型的处理器
	ErrHandlerNotFound = errors.New("messaging: handler not found")

	// ErrHandlerAlreadyRegistered 处理器已注册
	ErrHandlerAlreadyRegistered = errors.New("messaging: handler already registered")
)
