package mesh

import "github.com/dep2p/go-collab/pkg/types"

// Listener 连接事件接收者
type Listener interface {
	// ConnectionOpened 连接进入 open 状态
	ConnectionOpened(pid types.ParticipantID)

	// MessageReceived 收到一条消息
	MessageReceived(pid types.ParticipantID, data []byte)

	// ConnectionClosed 连接关闭或出错，err 为 nil 表示正常关闭
	ConnectionClosed(pid types.ParticipantID, err error)
}

// ListenerFuncs 以函数实现 Listener，nil 字段忽略
type ListenerFuncs struct {
	Opened  func(pid types.ParticipantID)
	Message func(pid types.ParticipantID, data []byte)
	Closed  func(pid types.ParticipantID, err error)
}

// ConnectionOpened 实现 Listener
func (l ListenerFuncs) ConnectionOpened(pid types.ParticipantID) {
	if l.Opened != nil {
		l.Opened(pid)
	}
}

// MessageReceived 实现 Listener
func (l ListenerFuncs) MessageReceived(pid types.ParticipantID, data []byte) {
	if l.Message != nil {
		l.Message(pid, data)
	}
}

// ConnectionClosed 实现 Listener
func (l ListenerFuncs) ConnectionClosed(pid types.ParticipantID, err error) {
	if l.Closed != nil {
		l.Closed(pid, err)
	}
}
