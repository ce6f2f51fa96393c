package identity

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dep2p/go-collab/internal/core/storage/engine"
	"github.com/dep2p/go-collab/internal/core/storage/kv"
	"github.com/dep2p/go-collab/pkg/interfaces"
	"github.com/dep2p/go-collab/pkg/lib/log"
	"github.com/dep2p/go-collab/pkg/types"
)

var logger = log.Logger("core/identity")

const (
	// IDPrefix 参与者 ID 前缀
	IDPrefix = "user_"

	// MaxNameLength 昵称最大字节数
	MaxNameLength = 64

	idSuffixLen = 9
	alphabet    = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var (
	keyID   = []byte("participant/id")
	keyName = []byte("participant/name")
)

// NewParticipantID 生成随机参与者 ID
func NewParticipantID() types.ParticipantID {
	u := uuid.New()
	var sb strings.Builder
	sb.Grow(len(IDPrefix) + idSuffixLen)
	sb.WriteString(IDPrefix)
	for i := 0; i < idSuffixLen; i++ {
		sb.WriteByte(alphabet[int(u[i])%len(alphabet)])
	}
	return types.ParticipantID(sb.String())
}

// Option 管理器选项
type Option func(*Manager)

// WithIDGenerator 替换 ID 生成函数
func WithIDGenerator(gen func() types.ParticipantID) Option {
	return func(m *Manager) {
		if gen != nil {
			m.generate = gen
		}
	}
}

// Manager 参与者身份管理器
type Manager struct {
	store    *kv.Store
	generate func() types.ParticipantID

	mu   sync.Mutex
	id   types.ParticipantID
	name string
}

// NewManager 创建身份管理器，store 为 nil 时仅在内存中保存
func NewManager(store *kv.Store, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		generate: NewParticipantID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ParticipantID 返回参与者 ID，不存在时生成并保存
func (m *Manager) ParticipantID() types.ParticipantID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadIDLocked()
}

func (m *Manager) loadIDLocked() types.ParticipantID {
	if m.id != "" {
		return m.id
	}

	if m.store != nil {
		stored, err := m.store.GetString(keyID)
		switch {
		case err == nil && stored != "":
			m.id = types.ParticipantID(stored)
			return m.id
		case err != nil && !engine.IsNotFound(err):
			logger.Warn("读取参与者 ID 失败，使用临时 ID", "error", err)
		}
	}

	m.id = m.generate()
	if m.store != nil {
		if err := m.store.PutString(keyID, string(m.id)); err != nil {
			logger.Warn("保存参与者 ID 失败", "id", m.id, "error", err)
		}
	}
	logger.Info("已生成参与者 ID", "id", m.id)
	return m.id
}

// ParticipantName 返回昵称，未设置时为默认昵称
func (m *Manager) ParticipantName() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.name != "" {
		return m.name
	}
	if m.store != nil {
		stored, err := m.store.GetString(keyName)
		if err == nil && stored != "" {
			m.name = stored
			return m.name
		}
		if err != nil && !engine.IsNotFound(err) {
			logger.Warn("读取昵称失败", "error", err)
		}
	}
	return types.DefaultName(m.loadIDLocked())
}

// SetParticipantName 设置并保存昵称
//
// 持久化失败时内存中的昵称仍会更新，并返回存储错误。
func (m *Manager) SetParticipantName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.name = name
	if m.store == nil {
		return nil
	}
	return m.store.PutString(keyName, name)
}

// Participant 返回表示本地参与者的花名册条目
func (m *Manager) Participant() types.Participant {
	return types.Participant{
		ID:     m.ParticipantID(),
		Name:   m.ParticipantName(),
		IsSelf: true,
	}
}

var _ interfaces.Identity = (*Manager)(nil)
