package collab

import "errors"

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 会话生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotJoined 尚未加入房间
	ErrNotJoined = errors.New("collab: not joined to a room")

	// ErrAlreadyJoined 已在房间中
	ErrAlreadyJoined = errors.New("collab: already joined to a room")

	// ErrSessionClosed 会话已关闭
	ErrSessionClosed = errors.New("collab: session closed")

	// ────────────────────────────────────────────────────────────────────────
	// 参数错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrInvalidRoom 房间 ID 非法
	ErrInvalidRoom = errors.New("collab: invalid room id")

	// ErrEmptyField 字段 ID 为空
	ErrEmptyField = errors.New("collab: empty field id")

	// ErrInvalidName 昵称为空或过长
	ErrInvalidName = errors.New("collab: invalid participant name")
)
