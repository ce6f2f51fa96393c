package interfaces

import (
	"context"
)

// Network 会合网络
//
// Open 以给定名称在会合点注册一个端点。名称冲突、名称非法、
// 会合点不可达都会以 *rendezvous.SignalingError 返回。
type Network interface {
	Open(ctx context.Context, name string) (Endpoint, error)
}

// Endpoint 已注册的端点
//
// 一个 Endpoint 对应一次注册：既接收入站连接，也发起出站连接。
// 会合点丢失等不可恢复的错误从 Errors 投递，之后端点不再可用。
type Endpoint interface {
	// ID 返回注册的端点名
	ID() string

	// Offers 入站连接
	Offers() <-chan Channel

	// Errors 终止性注册错误，最多投递一次
	Errors() <-chan error

	// Dial 向远端端点发起连接，返回处于 connecting 状态的通道
	Dial(ctx context.Context, remote string) (Channel, error)

	// Discover 列出以 prefix 开头的已注册端点（不含自身）
	Discover(ctx context.Context, prefix string) ([]string, error)

	// Close 注销端点并关闭由它建立的所有通道
	Close() error
}

// ChannelHandlers 通道事件回调
//
// 同一通道的回调按事件发生顺序串行调用。OnClose 与 OnError
// 为终止事件，二者至多触发其一，且只触发一次。
type ChannelHandlers struct {
	OnOpen    func()
	OnMessage func(data []byte)
	OnClose   func()
	OnError   func(err error)
}

// Channel 点对点数据通道
type Channel interface {
	// RemoteEndpoint 返回对端端点名
	RemoteEndpoint() string

	// Outbound 是否由本地发起
	Outbound() bool

	// Send 发送一条消息，通道未打开时返回错误
	Send(data []byte) error

	// Close 关闭通道，可重复调用
	Close() error

	// SetHandlers 设置事件回调
	//
	// 设置之前发生的事件会被缓存，设置后按顺序补发。
	SetHandlers(h ChannelHandlers)
}
