package lock

import "github.com/dep2p/go-collab/pkg/types"

// Arbiter 锁声明裁决策略
//
// current 为本地当前条目（没有则为 nil），claim 为新的声明。
// 返回 false 时声明被丢弃，本地条目不变。
type Arbiter interface {
	Admit(current *types.LockEntry, claim types.LockEntry) bool
}

// ArbiterFunc 函数形式的 Arbiter
type ArbiterFunc func(current *types.LockEntry, claim types.LockEntry) bool

// Admit 实现 Arbiter
func (f ArbiterFunc) Admit(current *types.LockEntry, claim types.LockEntry) bool {
	return f(current, claim)
}

// LastClaimWins 总是接受新声明
type LastClaimWins struct{}

// Admit 实现 Arbiter
func (LastClaimWins) Admit(*types.LockEntry, types.LockEntry) bool {
	return true
}
