package engine

import (
	"github.com/dep2p/go-collab/pkg/interfaces"
)

// Engine 带生命周期的存储引擎，实现必须并发安全
type Engine interface {
	interfaces.Engine

	// Start 启动后台回收
	Start() error

	// Stats 读写计数快照
	Stats() Stats
}

// Stats 读写计数
type Stats struct {
	Reads   int64 `json:"reads"`
	Writes  int64 `json:"writes"`
	Deletes int64 `json:"deletes"`
}
