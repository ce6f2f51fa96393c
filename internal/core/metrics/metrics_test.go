package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-collab/config"
)

func TestSession_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSession(reg, "collab")

	m.Sent("document", 1)
	m.Sent("document", 1)
	m.Sent("document", 0)
	m.Received("lock")
	m.SendFailed()
	m.Malformed()
	m.DocumentApplied()
	m.SetConnections(3)
	m.SetLocks(2)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.MessagesSent.WithLabelValues("document")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.MessagesReceived.WithLabelValues("lock")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SendFailures))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.MalformedMessages))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.Connections))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.LocksHeld))

	n, err := testutil.GatherAndCount(reg, "collab_send_failures_total", "collab_open_connections")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNilReceivers(t *testing.T) {
	var s *Session
	var p *Point
	assert.NotPanics(t, func() {
		s.Sent("x", 1)
		s.SendFailed()
		s.SetConnections(1)
		p.Registered()
		p.Reject("id-taken")
		p.Relayed("OFFER")
	})
}

func TestPoint_Counters(t *testing.T) {
	m := NewPoint(nil, "collab")
	m.Registered()
	m.Registered()
	m.Unregistered()
	m.Reject("id-taken")
	m.Relayed("OFFER")
	m.Dropped("rate-limited")
	m.Discovered()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Registrations))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Rejected.WithLabelValues("id-taken")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SignalsRelayed.WithLabelValues("OFFER")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SignalsDropped.WithLabelValues("rate-limited")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DiscoverQueries))
}

func TestModule(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.Enable = true

	var reg *prometheus.Registry
	var s *Session
	app := fxtest.New(t, fx.Supply(cfg), Module(), fx.Populate(&reg, &s))
	app.RequireStart()
	defer app.RequireStop()

	s.SendFailed()
	n, err := testutil.GatherAndCount(reg, "collab_send_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProvide_Disabled(t *testing.T) {
	res := Provide(Params{})
	res.Session.SendFailed()

	n, err := testutil.GatherAndCount(res.Registry)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "关闭时不注册")
}
