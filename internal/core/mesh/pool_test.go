package mesh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-collab/internal/core/metrics"
	"github.com/dep2p/go-collab/internal/core/transport/memory"
	"github.com/dep2p/go-collab/pkg/interfaces"
	"github.com/dep2p/go-collab/pkg/types"
)

const room = types.RoomID("R1")

// events 记录 Listener 调用
type events struct {
	mu     sync.Mutex
	opened []types.ParticipantID
	closed []types.ParticipantID
	errs   []error
	msgs   map[types.ParticipantID][]string
}

func newEvents() *events {
	return &events{msgs: make(map[types.ParticipantID][]string)}
}

func (e *events) ConnectionOpened(pid types.ParticipantID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opened = append(e.opened, pid)
}

func (e *events) MessageReceived(pid types.ParticipantID, data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs[pid] = append(e.msgs[pid], string(data))
}

func (e *events) ConnectionClosed(pid types.ParticipantID, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = append(e.closed, pid)
	e.errs = append(e.errs, err)
}

func (e *events) messages(pid types.ParticipantID) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.msgs[pid]...)
}

func (e *events) closedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.closed)
}

type peer struct {
	id     types.ParticipantID
	ep     interfaces.Endpoint
	pool   *Pool
	events *events
}

// newPeer 注册端点并把入站通道交给连接池
func newPeer(t *testing.T, n *memory.Network, id types.ParticipantID, opts ...Option) *peer {
	t.Helper()
	ep, err := n.Open(context.Background(), types.EndpointName(room, id))
	require.NoError(t, err)

	ev := newEvents()
	p := &peer{id: id, ep: ep, events: ev, pool: NewPool(room, id, ep, ev, opts...)}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ch := <-ep.Offers():
				_ = p.pool.Accept(ch)
			case <-done:
				return
			}
		}
	}()
	t.Cleanup(func() {
		close(done)
		_ = p.pool.CloseAll()
		_ = ep.Close()
	})
	return p
}

func waitOpen(t *testing.T, p *peer, want ...types.ParticipantID) {
	t.Helper()
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(want, p.pool.OpenPeers())
	}, 2*time.Second, 5*time.Millisecond, "open peers of %s", p.id)
}

func TestPool_ConnectAndExchange(t *testing.T) {
	n := memory.NewNetwork()
	a := newPeer(t, n, "user_a")
	b := newPeer(t, n, "user_b")

	require.NoError(t, a.pool.ConnectTo(context.Background(), types.EndpointName(room, "user_b")))
	waitOpen(t, a, "user_b")
	waitOpen(t, b, "user_a")

	info, ok := a.pool.Info("user_b")
	require.True(t, ok)
	assert.Equal(t, types.DirOutbound, info.Direction)
	assert.Equal(t, "R1_user_b", info.Endpoint)

	assert.Equal(t, 1, a.pool.Broadcast([]byte("hello")))
	assert.True(t, b.pool.Send("user_a", []byte("hi")))
	assert.False(t, b.pool.Send("user_zzz", []byte("nobody")))

	require.Eventually(t, func() bool {
		return len(b.events.messages("user_a")) == 1 && len(a.events.messages("user_b")) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"hello"}, b.events.messages("user_a"))
	assert.Equal(t, []string{"hi"}, a.events.messages("user_b"))
}

func TestPool_ConnectToExistingIsNoop(t *testing.T) {
	n := memory.NewNetwork()
	a := newPeer(t, n, "user_a")
	newPeer(t, n, "user_b")

	require.NoError(t, a.pool.ConnectTo(context.Background(), "R1_user_b"))
	require.NoError(t, a.pool.ConnectTo(context.Background(), "R1_user_b"))
	waitOpen(t, a, "user_b")
	assert.Equal(t, 1, a.pool.Len())
	assert.Equal(t, 1, a.ep.(*memory.Endpoint).Channels())
}

func TestPool_RejectsForeignAndSelf(t *testing.T) {
	n := memory.NewNetwork()
	a := newPeer(t, n, "user_a")

	err := a.pool.ConnectTo(context.Background(), "R2_user_b")
	assert.ErrorIs(t, err, ErrForeignEndpoint)

	err = a.pool.ConnectTo(context.Background(), "R1_user_a")
	assert.ErrorIs(t, err, ErrSelfConnection)

	// 其他房间的端点拨入
	other, err := n.Open(context.Background(), "R2_user_x")
	require.NoError(t, err)
	defer other.Close()
	ch, err := other.Dial(context.Background(), "R1_user_a")
	require.NoError(t, err)

	closed := make(chan struct{})
	ch.SetHandlers(interfaces.ChannelHandlers{OnClose: func() { close(closed) }})
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("外房间通道未被关闭")
	}
	assert.Equal(t, 0, a.pool.Len())
}

func TestPool_RemoteCloseFiresListener(t *testing.T) {
	n := memory.NewNetwork()
	a := newPeer(t, n, "user_a")
	b := newPeer(t, n, "user_b")

	require.NoError(t, a.pool.ConnectTo(context.Background(), "R1_user_b"))
	waitOpen(t, b, "user_a")

	require.NoError(t, a.ep.Close())

	require.Eventually(t, func() bool { return b.events.closedCount() == 1 }, time.Second, 5*time.Millisecond)
	b.events.mu.Lock()
	assert.Equal(t, []types.ParticipantID{"user_a"}, b.events.closed)
	assert.NoError(t, b.events.errs[0])
	b.events.mu.Unlock()
	assert.Empty(t, b.pool.OpenPeers())
	assert.Equal(t, 0, b.pool.Broadcast([]byte("x")))
}

func TestPool_DialFailureReportsError(t *testing.T) {
	n := memory.NewNetwork()
	a := newPeer(t, n, "user_a")

	require.NoError(t, a.pool.ConnectTo(context.Background(), "R1_user_ghost"))
	require.Eventually(t, func() bool { return a.events.closedCount() == 1 }, time.Second, 5*time.Millisecond)

	a.events.mu.Lock()
	defer a.events.mu.Unlock()
	assert.Equal(t, types.ParticipantID("user_ghost"), a.events.closed[0])
	assert.Error(t, a.events.errs[0])
	assert.Empty(t, a.events.opened)
}

func TestPool_SimultaneousDialKeepsSmallerInitiator(t *testing.T) {
	n := memory.NewNetwork()
	a := newPeer(t, n, "user_a")
	b := newPeer(t, n, "user_b")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = a.pool.ConnectTo(context.Background(), "R1_user_b")
	}()
	go func() {
		defer wg.Done()
		_ = b.pool.ConnectTo(context.Background(), "R1_user_a")
	}()
	wg.Wait()

	waitOpen(t, a, "user_b")
	waitOpen(t, b, "user_a")

	require.Eventually(t, func() bool {
		ia, okA := a.pool.Info("user_b")
		ib, okB := b.pool.Info("user_a")
		return okA && okB && ia.Direction == types.DirOutbound && ib.Direction == types.DirInbound
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, a.pool.Broadcast([]byte("only-once")))
	require.Eventually(t, func() bool {
		return len(b.events.messages("user_a")) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, a.events.closedCount())
	assert.Zero(t, b.events.closedCount())
}

func TestPool_CloseAllIsSilent(t *testing.T) {
	n := memory.NewNetwork()
	a := newPeer(t, n, "user_a")
	b := newPeer(t, n, "user_b")
	c := newPeer(t, n, "user_c")

	require.NoError(t, a.pool.ConnectTo(context.Background(), "R1_user_b"))
	require.NoError(t, a.pool.ConnectTo(context.Background(), "R1_user_c"))
	waitOpen(t, a, "user_b", "user_c")

	require.NoError(t, a.pool.CloseAll())
	assert.Equal(t, 0, a.pool.Len())
	assert.Zero(t, a.events.closedCount())

	require.Eventually(t, func() bool {
		return b.events.closedCount() == 1 && c.events.closedCount() == 1
	}, time.Second, 5*time.Millisecond)

	err := a.pool.ConnectTo(context.Background(), "R1_user_b")
	assert.ErrorIs(t, err, ErrPoolClosed)
}

// failingChannel 发送总是失败的通道
type failingChannel struct {
	remote string
	h      interfaces.ChannelHandlers
}

func (f *failingChannel) RemoteEndpoint() string                   { return f.remote }
func (f *failingChannel) Outbound() bool                           { return false }
func (f *failingChannel) Send([]byte) error                        { return errors.New("buffer full") }
func (f *failingChannel) Close() error                             { return nil }
func (f *failingChannel) SetHandlers(h interfaces.ChannelHandlers) { f.h = h }

func TestPool_SendFailureIsCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewSession(reg, "test")
	mock := clock.NewMock()
	mock.Set(time.Unix(1700000000, 0))

	ev := newEvents()
	p := NewPool(room, "user_a", nil, ev, WithMetrics(m), WithClock(mock))

	ch := &failingChannel{remote: "R1_user_b"}
	require.NoError(t, p.Accept(ch))
	ch.h.OnOpen()

	info, ok := p.Info("user_b")
	require.True(t, ok)
	assert.Equal(t, mock.Now(), info.OpenedAt)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Connections))

	assert.Equal(t, 0, p.Broadcast([]byte("x")))
	assert.False(t, p.Send("user_b", []byte("x")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.SendFailures))

	// 终止之后的事件被忽略
	ch.h.OnError(errors.New("late"))
	ch.h.OnMessage([]byte("ignored"))
	assert.Empty(t, ev.messages("user_b"))
	assert.Equal(t, 1, ev.closedCount())
}
