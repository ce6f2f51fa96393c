package mesh

import "errors"

var (
	// ErrForeignEndpoint 端点不属于本房间
	ErrForeignEndpoint = errors.New("mesh: endpoint belongs to another room")

	// ErrSelfConnection 连接到自身
	ErrSelfConnection = errors.New("mesh: connection to self")

	// ErrPoolClosed 连接池已关闭
	ErrPoolClosed = errors.New("mesh: pool closed")

	// ErrNotConnected 没有到该参与者的已打开连接
	ErrNotConnected = errors.New("mesh: participant not connected")
)
