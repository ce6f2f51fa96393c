package interfaces

import "github.com/dep2p/go-collab/pkg/types"

// Identity 本地参与者身份
//
// 实现必须保证 ParticipantID 在进程生命周期内稳定。
type Identity interface {
	// ParticipantID 返回本地参与者 ID
	ParticipantID() types.ParticipantID

	// ParticipantName 返回本地参与者昵称
	ParticipantName() string
}
