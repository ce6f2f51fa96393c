package collab

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-collab/config"
	"github.com/dep2p/go-collab/internal/core/identity"
	"github.com/dep2p/go-collab/internal/core/transport/memory"
	"github.com/dep2p/go-collab/pkg/interfaces"
)

func TestModule_StopLeavesRoom(t *testing.T) {
	n := memory.NewNetwork()

	var s *Session
	app := fxtest.New(t,
		fx.Provide(func() interfaces.Network { return n }),
		identity.Module(),
		Module(),
		fx.Populate(&s),
	)
	app.RequireStart()

	require.NotNil(t, s)
	require.NoError(t, s.JoinRoom(context.Background(), room))
	assert.Len(t, n.Endpoints(), 1)

	app.RequireStop()
	assert.False(t, s.Connected())
	assert.Empty(t, n.Endpoints())
}

func TestNewApp_InMemoryIdentity(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Identity.Persist = false
	cfg.Identity.Name = "测试"

	var s *Session
	app, err := NewApp(cfg, fx.Populate(&s))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx))
	defer func() { require.NoError(t, app.Stop(ctx)) }()

	require.NotNil(t, s)
	assert.Equal(t, "测试", s.Self().Name)
	assert.False(t, s.Connected())
}

func TestNewApp_PersistentIdentity(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Storage.DataDir = t.TempDir()

	var first *Session
	app, err := NewApp(cfg, fx.Populate(&first))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, app.Start(ctx))
	id := first.Self().ID
	require.NoError(t, app.Stop(ctx))

	var second *Session
	app, err = NewApp(cfg, fx.Populate(&second))
	require.NoError(t, err)
	require.NoError(t, app.Start(ctx))
	defer func() { _ = app.Stop(ctx) }()

	assert.Equal(t, id, second.Self().ID, "参与者 ID 跨进程保持不变")
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Rendezvous.URL = "http://example.com"

	_, err := NewApp(cfg)
	assert.Error(t, err)
}
