package identity

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-collab/internal/core/storage/engine"
	"github.com/dep2p/go-collab/internal/core/storage/engine/badger"
	"github.com/dep2p/go-collab/internal/core/storage/kv"
	"github.com/dep2p/go-collab/pkg/types"
)

func newEngine(t *testing.T, path string) *badger.Engine {
	t.Helper()
	eng, err := badger.New(engine.DefaultConfig(path))
	require.NoError(t, err)
	return eng
}

func TestNewParticipantID_Format(t *testing.T) {
	re := regexp.MustCompile(`^user_[0-9a-z]{9}$`)
	seen := make(map[types.ParticipantID]bool)
	for i := 0; i < 100; i++ {
		id := NewParticipantID()
		assert.Regexp(t, re, string(id))
		seen[id] = true
	}
	assert.Greater(t, len(seen), 95, "ID 应当足够随机")
}

func TestManager_InMemory(t *testing.T) {
	m := NewManager(nil, WithIDGenerator(func() types.ParticipantID { return "user_fixed0001" }))

	assert.Equal(t, types.ParticipantID("user_fixed0001"), m.ParticipantID())
	assert.Equal(t, m.ParticipantID(), m.ParticipantID(), "ID 在进程内稳定")
	assert.Equal(t, "用户0001", m.ParticipantName())

	require.NoError(t, m.SetParticipantName("  小王 "))
	assert.Equal(t, "小王", m.ParticipantName())

	p := m.Participant()
	assert.True(t, p.IsSelf)
	assert.Equal(t, "小王", p.Name)
}

func TestManager_PersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collab.db")

	eng := newEngine(t, path)
	m1 := NewManager(kv.New(eng, StorePrefix))
	id := m1.ParticipantID()
	require.NoError(t, m1.SetParticipantName("小李"))
	require.NoError(t, eng.Close())

	eng2 := newEngine(t, path)
	defer eng2.Close()
	m2 := NewManager(kv.New(eng2, StorePrefix), WithIDGenerator(func() types.ParticipantID {
		t.Fatal("已保存的 ID 不应重新生成")
		return ""
	}))
	assert.Equal(t, id, m2.ParticipantID())
	assert.Equal(t, "小李", m2.ParticipantName())
}

func TestManager_StorageFailureFallsBack(t *testing.T) {
	eng := newEngine(t, filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, eng.Close())

	m := NewManager(kv.New(eng, StorePrefix))
	id := m.ParticipantID()
	assert.True(t, strings.HasPrefix(string(id), IDPrefix), "存储失败时仍返回可用 ID")
	assert.Equal(t, types.DefaultName(id), m.ParticipantName())

	err := m.SetParticipantName("小张")
	assert.True(t, errors.Is(err, engine.ErrClosed))
	assert.Equal(t, "小张", m.ParticipantName(), "内存中的昵称仍然更新")
}

func TestManager_SetNameValidation(t *testing.T) {
	m := NewManager(nil)
	assert.ErrorIs(t, m.SetParticipantName("   "), ErrEmptyName)
	assert.ErrorIs(t, m.SetParticipantName(strings.Repeat("a", MaxNameLength+1)), ErrNameTooLong)
}
