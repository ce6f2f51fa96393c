package types

import "time"

// DefaultNamePrefix 默认昵称前缀
const DefaultNamePrefix = "用户"

// DefaultName 返回参与者的默认昵称：前缀 + ID 末 4 位
func DefaultName(id ParticipantID) string {
	return DefaultNamePrefix + id.ShortString()
}

// Participant 花名册中的一项
type Participant struct {
	ID     ParticipantID `json:"id"`
	Name   string        `json:"name"`
	IsSelf bool          `json:"isSelf,omitempty"`
}

// LockEntry 字段锁记录
//
// 本地锁表中每个字段至多一条。这是建议性的锁，
// 并不保证全网互斥。
type LockEntry struct {
	FieldID    FieldID       `json:"fieldId"`
	HolderID   ParticipantID `json:"holderId"`
	HolderName string        `json:"holderName"`
	AcquiredAt time.Time     `json:"acquiredAt"`
}

// HeldBy 检查是否由指定参与者持有
func (e LockEntry) HeldBy(id ParticipantID) bool {
	return e.HolderID == id
}
