package docsync

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-collab/internal/protocol/messaging"
)

// capture 记录广播内容
type capture struct {
	frames [][]byte
	peers  int
}

func (c *capture) Broadcast(data []byte) int {
	c.frames = append(c.frames, data)
	return c.peers
}

func TestPublish(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.UnixMilli(1700000000123))
	out := &capture{peers: 2}
	e := New("user_a", out, WithClock(mock))

	require.NoError(t, e.Publish(json.RawMessage(`{"title":"问卷"}`)))
	require.Len(t, out.frames, 1)

	msg, err := messaging.Decode(out.frames[0])
	require.NoError(t, err)
	assert.Equal(t, messaging.KindDocument, msg.Kind)
	assert.Equal(t, "user_a", msg.SenderID.String())
	assert.Equal(t, int64(1700000000123), msg.SentAt)
	assert.JSONEq(t, `{"title":"问卷"}`, string(msg.Snapshot))
	assert.Equal(t, uint64(1), e.Stats().Published)
}

func TestPublish_NoPeers(t *testing.T) {
	e := New("user_a", &capture{})
	assert.NoError(t, e.Publish(json.RawMessage(`[]`)))
}

func TestPublish_Invalid(t *testing.T) {
	e := New("user_a", &capture{})
	assert.ErrorIs(t, e.Publish(nil), ErrEmptySnapshot)
	assert.ErrorIs(t, e.Publish(json.RawMessage(`  `)), ErrEmptySnapshot)
	assert.ErrorIs(t, e.Publish(json.RawMessage(`{"a":`)), ErrInvalidSnapshot)
	assert.Zero(t, e.Stats().Published)
}

func TestPublish_NullClearsDocument(t *testing.T) {
	out := &capture{}
	e := New("user_a", out)
	require.NoError(t, e.Publish(json.RawMessage(`null`)))
	assert.Equal(t, uint64(1), e.Stats().Published)

	require.Len(t, out.frames, 1)
	msg, err := messaging.Decode(out.frames[0])
	require.NoError(t, err)

	up, ok := New("user_b", &capture{}).Handle(msg)
	require.True(t, ok)
	assert.Equal(t, "null", string(up.Snapshot))
}

func TestHandle(t *testing.T) {
	e := New("user_b", &capture{})
	at := time.UnixMilli(1700000000000)

	up, ok := e.Handle(messaging.NewDocument(json.RawMessage(`{"v":1}`), "user_a", at))
	require.True(t, ok)
	assert.Equal(t, "user_a", up.SenderID.String())
	assert.True(t, at.Equal(up.SentAt))
	assert.JSONEq(t, `{"v":1}`, string(up.Snapshot))
}

func TestHandle_SuppressesEcho(t *testing.T) {
	e := New("user_a", &capture{})

	_, ok := e.Handle(messaging.NewDocument(json.RawMessage(`{}`), "user_a", time.Now()))
	assert.False(t, ok)

	_, ok = e.Handle(messaging.NewLock("q1", "user_b", "b"))
	assert.False(t, ok)

	assert.Equal(t, Stats{EchoesSuppressed: 1}, e.Stats())
}

func TestHandle_LastDeliveredWins(t *testing.T) {
	e := New("user_c", &capture{})
	now := time.Now()

	// 较晚送达但较早发送的快照依然生效
	first, _ := e.Handle(messaging.NewDocument(json.RawMessage(`"S2"`), "user_a", now))
	second, _ := e.Handle(messaging.NewDocument(json.RawMessage(`"S1"`), "user_b", now.Add(-time.Minute)))

	assert.JSONEq(t, `"S2"`, string(first.Snapshot))
	assert.JSONEq(t, `"S1"`, string(second.Snapshot))
	assert.Equal(t, uint64(2), e.Stats().Applied)
}
