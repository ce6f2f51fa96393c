package types

// ============================================================================
//                              Direction - 连接方向
// ============================================================================

// Direction 连接方向
type Direction int

const (
	// DirUnknown 未知方向
	DirUnknown Direction = iota
	// DirInbound 入站连接（对方发起）
	DirInbound
	// DirOutbound 出站连接（本地发起）
	DirOutbound
)

// String 返回方向的字符串表示
func (d Direction) String() string {
	switch d {
	case DirInbound:
		return "inbound"
	case DirOutbound:
		return "outbound"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              ConnState - 连接状态
// ============================================================================

// ConnState 连接状态
//
// 状态只会前进：Connecting → Open → {Closed, Errored}。
type ConnState int

const (
	// ConnStateConnecting 连接中
	ConnStateConnecting ConnState = iota
	// ConnStateOpen 已打开，可收发
	ConnStateOpen
	// ConnStateClosed 已关闭
	ConnStateClosed
	// ConnStateErrored 出错终止
	ConnStateErrored
)

// String 返回状态的字符串表示
func (s ConnState) String() string {
	switch s {
	case ConnStateConnecting:
		return "connecting"
	case ConnStateOpen:
		return "open"
	case ConnStateClosed:
		return "closed"
	case ConnStateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// IsTerminal 是否为终止状态
func (s ConnState) IsTerminal() bool {
	return s == ConnStateClosed || s == ConnStateErrored
}

// CanTransition 检查状态迁移是否合法
func (s ConnState) CanTransition(next ConnState) bool {
	switch s {
	case ConnStateConnecting:
		return next == ConnStateOpen || next.IsTerminal()
	case ConnStateOpen:
		return next.IsTerminal()
	default:
		return false
	}
}
