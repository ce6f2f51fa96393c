package serial

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_Order(t *testing.T) {
	q := NewStarted("test")
	defer q.Close()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 100; i++ {
		i := i
		require.True(t, q.Push(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.Flush(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestQueue_BuffersUntilStart(t *testing.T) {
	q := New("test")
	ran := make(chan struct{})
	q.Push(func() { close(ran) })

	select {
	case <-ran:
		t.Fatal("未启动的队列不应执行任务")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, 1, q.Len())

	q.Start()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("启动后任务未执行")
	}
	q.Close()
}

func TestQueue_CloseDrains(t *testing.T) {
	q := New("test")
	count := 0
	for i := 0; i < 10; i++ {
		q.Push(func() { count++ })
	}
	q.Close()
	assert.False(t, q.Push(func() {}), "关闭后不再接收任务")

	q.Start()
	select {
	case <-q.Done():
	case <-time.After(time.Second):
		t.Fatal("队列未退出")
	}
	assert.Equal(t, 10, count)
}

func TestQueue_RecoversPanic(t *testing.T) {
	q := NewStarted("test")
	defer q.Close()

	q.Push(func() { panic("boom") })
	ran := make(chan struct{})
	q.Push(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("panic 后的任务未执行")
	}
}

func TestQueue_FlushAfterClose(t *testing.T) {
	q := NewStarted("test")
	q.Close()
	<-q.Done()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, q.Flush(ctx))
}
