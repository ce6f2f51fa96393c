package lock

import (
	"sort"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-collab/internal/core/metrics"
	"github.com/dep2p/go-collab/internal/protocol/messaging"
	"github.com/dep2p/go-collab/pkg/lib/log"
	"github.com/dep2p/go-collab/pkg/types"
)

var logger = log.Logger("realm/lock")

// Sender 消息出口
type Sender interface {
	Broadcast(data []byte) int
	Send(pid types.ParticipantID, data []byte) bool
}

// Change 一次锁表变化
type Change struct {
	FieldID    types.FieldID
	HolderID   types.ParticipantID
	HolderName string
	Locked     bool
}

// Option 协调器选项
type Option func(*Coordinator)

// WithArbiter 设置裁决策略
func WithArbiter(a Arbiter) Option {
	return func(c *Coordinator) {
		if a != nil {
			c.arbiter = a
		}
	}
}

// WithClock 设置时钟
func WithClock(clk clock.Clock) Option {
	return func(c *Coordinator) { c.clock = clk }
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.Session) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// Coordinator 字段锁协调器
type Coordinator struct {
	self     types.ParticipantID
	selfName func() string
	out      Sender
	arbiter  Arbiter
	clock    clock.Clock
	metrics  *metrics.Session

	mu       sync.Mutex
	entries  map[types.FieldID]*types.LockEntry
	byHolder map[types.ParticipantID]map[types.FieldID]struct{}
}

// New 创建协调器，selfName 在每次加锁时读取当前昵称
func New(self types.ParticipantID, selfName func() string, out Sender, opts ...Option) *Coordinator {
	if selfName == nil {
		selfName = func() string { return types.DefaultName(self) }
	}
	c := &Coordinator{
		self:     self,
		selfName: selfName,
		out:      out,
		arbiter:  LastClaimWins{},
		clock:    clock.New(),
		entries:  make(map[types.FieldID]*types.LockEntry),
		byHolder: make(map[types.ParticipantID]map[types.FieldID]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lock 乐观加锁并广播
func (c *Coordinator) Lock(field types.FieldID) (Change, error) {
	if field == "" {
		return Change{}, ErrEmptyField
	}

	claim := types.LockEntry{
		FieldID:    field,
		HolderID:   c.self,
		HolderName: c.selfName(),
		AcquiredAt: c.clock.Now(),
	}

	c.mu.Lock()
	if !c.arbiter.Admit(c.entries[field], claim) {
		c.mu.Unlock()
		return Change{}, ErrRejected
	}
	c.setLocked(claim)
	n := len(c.entries)
	c.mu.Unlock()

	c.metrics.SetLocks(n)
	c.broadcast(messaging.NewLock(field, c.self, claim.HolderName))
	logger.Debug("字段已加锁", "field", field)
	return changeOf(claim, true), nil
}

// Unlock 删除自己持有的条目并广播解锁
//
// 条目不由自己持有时本地不变，removed 为 false，但仍然广播。
func (c *Coordinator) Unlock(field types.FieldID) (Change, bool, error) {
	if field == "" {
		return Change{}, false, ErrEmptyField
	}

	c.mu.Lock()
	entry, removed := c.removeIfHeldLocked(field, c.self)
	n := len(c.entries)
	c.mu.Unlock()

	c.metrics.SetLocks(n)
	c.broadcast(messaging.NewUnlock(field, c.self))
	if !removed {
		return Change{FieldID: field, HolderID: c.self}, false, nil
	}
	logger.Debug("字段已解锁", "field", field)
	return changeOf(entry, false), true, nil
}

// Handle 处理远端 lock / unlock 消息
//
// from 为承载消息的连接对端；声明的持有者必须与之一致。
func (c *Coordinator) Handle(from types.ParticipantID, msg *messaging.Message) (Change, bool) {
	if msg == nil {
		return Change{}, false
	}
	if msg.Kind != messaging.KindLock && msg.Kind != messaging.KindUnlock {
		return Change{}, false
	}
	if msg.HolderID == c.self {
		return Change{}, false
	}
	if msg.HolderID != from {
		logger.Debug("忽略代他人声明的锁消息", "from", from.ShortString(), "holder", msg.HolderID.ShortString())
		return Change{}, false
	}

	switch msg.Kind {
	case messaging.KindLock:
		return c.handleLock(msg)
	default:
		return c.handleUnlock(msg)
	}
}

func (c *Coordinator) handleLock(msg *messaging.Message) (Change, bool) {
	name := msg.HolderName
	if name == "" {
		name = types.DefaultName(msg.HolderID)
	}
	claim := types.LockEntry{
		FieldID:    msg.FieldID,
		HolderID:   msg.HolderID,
		HolderName: name,
		AcquiredAt: c.clock.Now(),
	}

	c.mu.Lock()
	if !c.arbiter.Admit(c.entries[msg.FieldID], claim) {
		c.mu.Unlock()
		return Change{}, false
	}
	c.setLocked(claim)
	n := len(c.entries)
	c.mu.Unlock()

	c.metrics.SetLocks(n)
	return changeOf(claim, true), true
}

func (c *Coordinator) handleUnlock(msg *messaging.Message) (Change, bool) {
	c.mu.Lock()
	entry, removed := c.removeIfHeldLocked(msg.FieldID, msg.HolderID)
	n := len(c.entries)
	c.mu.Unlock()

	if !removed {
		return Change{}, false
	}
	c.metrics.SetLocks(n)
	return changeOf(entry, false), true
}

// ReleaseHolder 删除 pid 持有的全部条目（按字段排序返回）
func (c *Coordinator) ReleaseHolder(pid types.ParticipantID) []Change {
	c.mu.Lock()
	fields := c.byHolder[pid]
	changes := make([]Change, 0, len(fields))
	for f := range fields {
		if e, ok := c.entries[f]; ok {
			changes = append(changes, changeOf(*e, false))
			delete(c.entries, f)
		}
	}
	delete(c.byHolder, pid)
	n := len(c.entries)
	c.mu.Unlock()

	if len(changes) == 0 {
		return nil
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].FieldID < changes[j].FieldID })
	c.metrics.SetLocks(n)
	logger.Info("回收断开参与者的锁", "holder", pid.ShortString(), "count", len(changes))
	return changes
}

// Announce 把本地持有的锁单播给 pid，返回发送条数
func (c *Coordinator) Announce(pid types.ParticipantID) int {
	held := c.HeldBy(c.self)
	sent := 0
	for _, e := range held {
		data, err := messaging.Encode(messaging.NewLock(e.FieldID, c.self, e.HolderName))
		if err != nil {
			continue
		}
		if c.out.Send(pid, data) {
			sent++
		}
	}
	c.metrics.Sent(string(messaging.KindLock), sent)
	return sent
}

// Entries 锁表快照（按字段排序）
func (c *Coordinator) Entries() []types.LockEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]types.LockEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, *e)
	}
	sortEntries(out)
	return out
}

// Holder 字段当前持有者
func (c *Coordinator) Holder(field types.FieldID) (types.LockEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[field]
	if !ok {
		return types.LockEntry{}, false
	}
	return *e, true
}

// HeldBy pid 持有的条目（按字段排序）
func (c *Coordinator) HeldBy(pid types.ParticipantID) []types.LockEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]types.LockEntry, 0, len(c.byHolder[pid]))
	for f := range c.byHolder[pid] {
		if e, ok := c.entries[f]; ok {
			out = append(out, *e)
		}
	}
	sortEntries(out)
	return out
}

// Len 锁表条目数
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset 清空锁表
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.entries = make(map[types.FieldID]*types.LockEntry)
	c.byHolder = make(map[types.ParticipantID]map[types.FieldID]struct{})
	c.mu.Unlock()
	c.metrics.SetLocks(0)
}

// setLocked 写入条目并维护持有者索引，调用方持有 c.mu
func (c *Coordinator) setLocked(e types.LockEntry) {
	if prev, ok := c.entries[e.FieldID]; ok && prev.HolderID != e.HolderID {
		c.unindex(prev.HolderID, e.FieldID)
	}
	entry := e
	c.entries[e.FieldID] = &entry

	set, ok := c.byHolder[e.HolderID]
	if !ok {
		set = make(map[types.FieldID]struct{})
		c.byHolder[e.HolderID] = set
	}
	set[e.FieldID] = struct{}{}
}

// removeIfHeldLocked 仅当 holder 持有时删除，调用方持有 c.mu
func (c *Coordinator) removeIfHeldLocked(field types.FieldID, holder types.ParticipantID) (types.LockEntry, bool) {
	e, ok := c.entries[field]
	if !ok || e.HolderID != holder {
		return types.LockEntry{}, false
	}
	delete(c.entries, field)
	c.unindex(holder, field)
	return *e, true
}

func (c *Coordinator) unindex(holder types.ParticipantID, field types.FieldID) {
	set := c.byHolder[holder]
	delete(set, field)
	if len(set) == 0 {
		delete(c.byHolder, holder)
	}
}

func (c *Coordinator) broadcast(msg *messaging.Message) {
	data, err := messaging.Encode(msg)
	if err != nil {
		logger.Warn("锁消息编码失败", "error", err)
		return
	}
	c.metrics.Sent(string(msg.Kind), c.out.Broadcast(data))
}

func changeOf(e types.LockEntry, locked bool) Change {
	return Change{
		FieldID:    e.FieldID,
		HolderID:   e.HolderID,
		HolderName: e.HolderName,
		Locked:     locked,
	}
}

func sortEntries(es []types.LockEntry) {
	sort.Slice(es, func(i, j int) bool { return es[i].FieldID < es[j].FieldID })
}
