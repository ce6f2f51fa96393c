// Package types 定义 go-collab 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - ids.go         - ParticipantID, RoomID, FieldID 与端点命名
//   - enums.go       - Direction, ConnState
//   - participant.go - Participant, LockEntry
//
// # 端点命名
//
// 参与者在会合点注册的端点名为 RoomID + "_" + ParticipantID，
// 例如 "R1_user_k3j9x0a2b"。同一房间的端点共享前缀 "R1_"，
// 房间内发现即按前缀查询。
package types
