package messaging

import (
	"encoding/json"
	"time"

	"github.com/dep2p/go-collab/pkg/types"
)

// Kind 消息类型
type Kind string

const (
	// KindDocument 全量文档快照
	KindDocument Kind = "document"
	// KindLock 字段加锁
	KindLock Kind = "lock"
	// KindUnlock 字段解锁
	KindUnlock Kind = "unlock"
	// KindPresence 在线声明
	KindPresence Kind = "presence"
)

// Valid 是否为已知类型
func (k Kind) Valid() bool {
	switch k {
	case KindDocument, KindLock, KindUnlock, KindPresence:
		return true
	default:
		return false
	}
}

// Message 网格消息
//
// 各字段是否必填取决于 Kind，见 Validate。
type Message struct {
	Kind       Kind                `json:"kind"`
	Snapshot   json.RawMessage     `json:"snapshot,omitempty"`
	SenderID   types.ParticipantID `json:"senderId,omitempty"`
	SentAt     int64               `json:"sentAt,omitempty"`
	FieldID    types.FieldID       `json:"fieldId,omitempty"`
	HolderID   types.ParticipantID `json:"holderId,omitempty"`
	HolderName string              `json:"holderName,omitempty"`
	Name       string              `json:"name,omitempty"`
}

// NewDocument 创建文档消息，sentAt 为毫秒时间戳
func NewDocument(snapshot json.RawMessage, sender types.ParticipantID, at time.Time) *Message {
	return &Message{
		Kind:     KindDocument,
		Snapshot: snapshot,
		SenderID: sender,
		SentAt:   at.UnixMilli(),
	}
}

// NewLock 创建加锁消息
func NewLock(field types.FieldID, holder types.ParticipantID, holderName string) *Message {
	return &Message{
		Kind:       KindLock,
		FieldID:    field,
		HolderID:   holder,
		HolderName: holderName,
	}
}

// NewUnlock 创建解锁消息
func NewUnlock(field types.FieldID, holder types.ParticipantID) *Message {
	return &Message{
		Kind:     KindUnlock,
		FieldID:  field,
		HolderID: holder,
	}
}

// NewPresence 创建在线声明
func NewPresence(sender types.ParticipantID, name string) *Message {
	return &Message{
		Kind:     KindPresence,
		SenderID: sender,
		Name:     name,
	}
}

// SentTime 返回发送时间
func (m *Message) SentTime() time.Time {
	if m.SentAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(m.SentAt)
}

// Validate 按类型检查必填字段
func (m *Message) Validate() error {
	if m == nil {
		return ErrMalformedMessage
	}
	switch m.Kind {
	case KindDocument:
		if m.SenderID.IsEmpty() || len(m.Snapshot) == 0 {
			return ErrMalformedMessage
		}
	case KindLock, KindUnlock:
		if m.FieldID == "" || m.HolderID.IsEmpty() {
			return ErrMalformedMessage
		}
	case KindPresence:
	default:
		return ErrMalformedMessage
	}
	return nil
}
