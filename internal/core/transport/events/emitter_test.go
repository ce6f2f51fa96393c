package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-collab/pkg/interfaces"
)

func collect(e *Emitter) <-chan string {
	out := make(chan string, 16)
	e.SetHandlers(interfaces.ChannelHandlers{
		OnOpen:    func() { out <- "open" },
		OnMessage: func(data []byte) { out <- "msg:" + string(data) },
		OnClose:   func() { out <- "close" },
		OnError:   func(err error) { out <- "error:" + err.Error() },
	})
	return out
}

func next(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("等待事件超时")
		return ""
	}
}

func TestEmitter_BuffersBeforeHandlers(t *testing.T) {
	e := NewEmitter("t")
	require.True(t, e.Open())
	require.True(t, e.Message([]byte("a")))
	require.True(t, e.Message([]byte("b")))

	out := collect(e)
	assert.Equal(t, "open", next(t, out))
	assert.Equal(t, "msg:a", next(t, out))
	assert.Equal(t, "msg:b", next(t, out))
}

func TestEmitter_SingleTerminal(t *testing.T) {
	e := NewEmitter("t")
	out := collect(e)

	e.Open()
	assert.False(t, e.Open(), "打开事件只派发一次")
	assert.True(t, e.Error(errors.New("boom")))
	assert.False(t, e.Close())
	assert.False(t, e.Message([]byte("late")))

	assert.Equal(t, "open", next(t, out))
	assert.Equal(t, "error:boom", next(t, out))

	select {
	case <-e.Done():
	case <-time.After(time.Second):
		t.Fatal("派发协程未退出")
	}
	assert.Empty(t, out)
	assert.True(t, e.Terminated())
}

func TestEmitter_NoOpenAfterTerminal(t *testing.T) {
	e := NewEmitter("t")
	e.Close()
	assert.False(t, e.Open())
	assert.False(t, e.Opened())
}
