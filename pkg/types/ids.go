package types

import (
	"strings"
)

// EndpointSeparator 房间与参与者之间的分隔符
const EndpointSeparator = "_"

// ============================================================================
//                              ParticipantID - 参与者标识
// ============================================================================

// ParticipantID 参与者唯一标识
//
// 首次运行时随机生成并持久化，格式为 "user_" + 9 位小写字母数字。
type ParticipantID string

// String 返回字符串表示
func (id ParticipantID) String() string {
	return string(id)
}

// ShortString 返回末 4 位，用于日志和默认昵称
func (id ParticipantID) ShortString() string {
	s := string(id)
	if len(s) > 4 {
		return s[len(s)-4:]
	}
	return s
}

// IsEmpty 检查是否为空
func (id ParticipantID) IsEmpty() bool {
	return id == ""
}

// ============================================================================
//                              RoomID / FieldID
// ============================================================================

// RoomID 协作房间标识，由用户提供
type RoomID string

// String 返回字符串表示
func (id RoomID) String() string {
	return string(id)
}

// IsEmpty 检查是否为空
func (id RoomID) IsEmpty() bool {
	return id == ""
}

// Prefix 返回该房间所有端点名共享的前缀
func (id RoomID) Prefix() string {
	return string(id) + EndpointSeparator
}

// FieldID 文档中可被锁定的字段（问题）标识
type FieldID string

// String 返回字符串表示
func (id FieldID) String() string {
	return string(id)
}

// ============================================================================
//                              端点命名
// ============================================================================

// EndpointName 返回参与者在房间内的端点名
func EndpointName(room RoomID, id ParticipantID) string {
	return room.Prefix() + string(id)
}

// ParticipantFromEndpoint 从端点名解析参与者 ID
//
// 端点不属于该房间或参与者部分为空时返回 false。
func ParticipantFromEndpoint(room RoomID, endpoint string) (ParticipantID, bool) {
	prefix := room.Prefix()
	if room.IsEmpty() || !strings.HasPrefix(endpoint, prefix) {
		return "", false
	}
	id := endpoint[len(prefix):]
	if id == "" {
		return "", false
	}
	return ParticipantID(id), true
}
