package presence

import (
	"sort"
	"strings"
	"sync"

	"github.com/dep2p/go-collab/pkg/types"
)

// Update 一次花名册变化
type Update struct {
	Roster    []types.Participant
	Connected bool
}

// Tracker 花名册跟踪器
type Tracker struct {
	self     types.ParticipantID
	selfName func() string

	mu        sync.Mutex
	names     map[types.ParticipantID]string
	open      []types.ParticipantID
	connected bool
}

// New 创建跟踪器
func New(self types.ParticipantID, selfName func() string) *Tracker {
	if selfName == nil {
		selfName = func() string { return types.DefaultName(self) }
	}
	return &Tracker{
		self:     self,
		selfName: selfName,
		names:    make(map[types.ParticipantID]string),
	}
}

// Observe 记录对端昵称，返回昵称是否变化
func (t *Tracker) Observe(pid types.ParticipantID, name string) bool {
	name = strings.TrimSpace(name)
	if pid.IsEmpty() || pid == t.self || name == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.names[pid] == name {
		return false
	}
	t.names[pid] = name
	return true
}

// Name 返回参与者昵称
func (t *Tracker) Name(pid types.ParticipantID) string {
	if pid == t.self {
		return t.selfName()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nameLocked(pid)
}

func (t *Tracker) nameLocked(pid types.ParticipantID) string {
	if n, ok := t.names[pid]; ok {
		return n
	}
	return types.DefaultName(pid)
}

// SetConnected 设置注册状态
func (t *Tracker) SetConnected(connected bool) Update {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = connected
	if !connected {
		t.open = nil
	}
	return t.updateLocked()
}

// Recompute 以当前打开的连接重算花名册
func (t *Tracker) Recompute(open []types.ParticipantID) Update {
	peers := make([]types.ParticipantID, 0, len(open))
	for _, pid := range open {
		if pid != t.self {
			peers = append(peers, pid)
		}
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i] < peers[j] })

	t.mu.Lock()
	defer t.mu.Unlock()
	t.open = peers
	return t.updateLocked()
}

// Current 当前花名册
func (t *Tracker) Current() Update {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.updateLocked()
}

// Roster 当前花名册
func (t *Tracker) Roster() []types.Participant {
	return t.Current().Roster
}

// Reset 清空花名册与已知昵称
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.names = make(map[types.ParticipantID]string)
	t.open = nil
	t.connected = false
}

func (t *Tracker) updateLocked() Update {
	if !t.connected {
		return Update{Roster: []types.Participant{}, Connected: false}
	}
	roster := make([]types.Participant, 0, len(t.open)+1)
	roster = append(roster, types.Participant{ID: t.self, Name: t.selfName(), IsSelf: true})
	for _, pid := range t.open {
		roster = append(roster, types.Participant{ID: pid, Name: t.nameLocked(pid)})
	}
	return Update{Roster: roster, Connected: true}
}
