package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-collab/pkg/types"
)

func TestTracker_EmptyUntilConnected(t *testing.T) {
	tr := New("user_self", nil)
	assert.Empty(t, tr.Roster())

	up := tr.Recompute([]types.ParticipantID{"user_b"})
	assert.False(t, up.Connected)
	assert.Empty(t, up.Roster)

	up = tr.SetConnected(true)
	assert.True(t, up.Connected)
	require.Len(t, up.Roster, 2)
}

func TestTracker_RosterOrder(t *testing.T) {
	tr := New("user_m", func() string { return "我" })
	tr.SetConnected(true)

	up := tr.Recompute([]types.ParticipantID{"user_z", "user_m", "user_b"})
	require.Len(t, up.Roster, 3)
	assert.Equal(t, types.Participant{ID: "user_m", Name: "我", IsSelf: true}, up.Roster[0])
	assert.Equal(t, types.ParticipantID("user_b"), up.Roster[1].ID)
	assert.Equal(t, types.ParticipantID("user_z"), up.Roster[2].ID)
}

func TestTracker_Names(t *testing.T) {
	tr := New("user_self", nil)
	tr.SetConnected(true)

	assert.Equal(t, "用户abcd", tr.Name("user_xabcd"))
	assert.True(t, tr.Observe("user_xabcd", " 小王 "))
	assert.False(t, tr.Observe("user_xabcd", "小王"))
	assert.False(t, tr.Observe("user_self", "冒名"))
	assert.False(t, tr.Observe("user_q", "  "))

	up := tr.Recompute([]types.ParticipantID{"user_xabcd"})
	assert.Equal(t, "小王", up.Roster[1].Name)
	assert.Equal(t, "用户self", up.Roster[0].Name)
}

func TestTracker_DisconnectRemoves(t *testing.T) {
	tr := New("user_a", nil)
	tr.SetConnected(true)
	tr.Recompute([]types.ParticipantID{"user_b", "user_c"})

	up := tr.Recompute([]types.ParticipantID{"user_c"})
	require.Len(t, up.Roster, 2)
	assert.Equal(t, types.ParticipantID("user_c"), up.Roster[1].ID)
}

func TestTracker_Reset(t *testing.T) {
	tr := New("user_a", nil)
	tr.SetConnected(true)
	tr.Observe("user_b", "B")
	tr.Recompute([]types.ParticipantID{"user_b"})

	tr.Reset()
	assert.Empty(t, tr.Roster())
	assert.False(t, tr.Current().Connected)

	tr.SetConnected(true)
	assert.Equal(t, "用户er_b", tr.Name("user_b"))
}
