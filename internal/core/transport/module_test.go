package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-collab/config"
	"github.com/dep2p/go-collab/internal/core/transport/webrtc"
	"github.com/dep2p/go-collab/pkg/interfaces"
)

func TestModule(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Mesh.ChannelLabel = "notes"

	var (
		n   interfaces.Network
		rtc *webrtc.Network
	)
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&n, &rtc),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, n)
	assert.Same(t, rtc, n)
	assert.Equal(t, "notes", rtc.Config().ChannelLabel)
}

func TestModule_WithoutConfig(t *testing.T) {
	var rtc *webrtc.Network
	app := fxtest.New(t, Module(), fx.Populate(&rtc))
	app.RequireStart()
	defer app.RequireStop()

	assert.Equal(t, config.DefaultMeshConfig().ChannelLabel, rtc.Config().ChannelLabel)
}
