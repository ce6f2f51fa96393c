package mesh

import (
	"time"

	"github.com/dep2p/go-collab/pkg/interfaces"
	"github.com/dep2p/go-collab/pkg/types"
)

// Connection 到一个远端参与者的连接
//
// 状态字段由所属 Pool 的锁保护，外部只读快照。
type Connection struct {
	pid      types.ParticipantID
	endpoint string
	dir      types.Direction
	ch       interfaces.Channel

	state    types.ConnState
	openedAt time.Time
}

// ConnInfo 连接快照
type ConnInfo struct {
	Participant types.ParticipantID
	Endpoint    string
	Direction   types.Direction
	State       types.ConnState
	OpenedAt    time.Time
}

func (c *Connection) info() ConnInfo {
	return ConnInfo{
		Participant: c.pid,
		Endpoint:    c.endpoint,
		Direction:   c.dir,
		State:       c.state,
		OpenedAt:    c.openedAt,
	}
}

// initiator 发起连接的一方
func (c *Connection) initiator(self types.ParticipantID) types.ParticipantID {
	if c.dir == types.DirOutbound {
		return self
	}
	return c.pid
}
