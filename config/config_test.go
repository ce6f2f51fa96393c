package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.Mesh.AutoDiscover)
	assert.True(t, cfg.Identity.Persist)

	t.Log("✅ NewConfig 测试通过")
}

func TestConfig_ValidateNil(t *testing.T) {
	var cfg *Config
	assert.ErrorIs(t, cfg.Validate(), ErrNilConfig)
}

// TestRendezvousConfig 测试会合点客户端配置
func TestRendezvousConfig(t *testing.T) {
	t.Run("BadScheme", func(t *testing.T) {
		cfg := DefaultRendezvousConfig()
		cfg.URL = "http://127.0.0.1:9000/rendezvous"
		assert.Error(t, cfg.Validate())
	})

	t.Run("PongNotAfterPing", func(t *testing.T) {
		cfg := DefaultRendezvousConfig()
		cfg.PongTimeout = cfg.PingInterval
		assert.Error(t, cfg.Validate())
	})

	t.Run("ZeroTimeout", func(t *testing.T) {
		cfg := DefaultRendezvousConfig()
		cfg.OpenTimeout = 0
		assert.Error(t, cfg.Validate())
	})
}

// TestMeshConfig 测试网格配置
func TestMeshConfig(t *testing.T) {
	cfg := DefaultMeshConfig()
	assert.NoError(t, cfg.Validate())

	cfg.ICEServers = []string{"udp://1.2.3.4"}
	assert.Error(t, cfg.Validate())

	cfg = DefaultMeshConfig()
	cfg.ChannelLabel = ""
	assert.Error(t, cfg.Validate())
}

func TestStorageConfig_SkippedWithoutPersist(t *testing.T) {
	cfg := NewConfig()
	cfg.Storage.DataDir = ""
	assert.Error(t, cfg.Validate())

	cfg.Identity.Persist = false
	assert.NoError(t, cfg.Validate())
}

func TestIdentityConfig(t *testing.T) {
	cfg := DefaultIdentityConfig()
	cfg.Name = "   "
	assert.Error(t, cfg.Validate())

	cfg.Name = "小王"
	assert.NoError(t, cfg.Validate())
}

func TestLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Level = "trace"
	assert.Error(t, cfg.Validate())

	cfg = DefaultLogConfig()
	cfg.Format = "xml"
	assert.Error(t, cfg.Validate())
}

// TestPointConfig 测试会合点服务端配置
func TestPointConfig(t *testing.T) {
	cfg := DefaultPointConfig()
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.Path = "rendezvous"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.SignalRate = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MaxRegistrations = 0
	assert.Error(t, bad.Validate())
}

func TestFromJSON_KeepsDefaults(t *testing.T) {
	cfg, err := FromJSON([]byte(`{"rendezvous":{"url":"wss://rdv.example.com/rendezvous","open_timeout":"3s"},"mesh":{"auto_discover":false}}`))
	require.NoError(t, err)

	assert.Equal(t, "wss://rdv.example.com/rendezvous", cfg.Rendezvous.URL)
	assert.Equal(t, 3*time.Second, cfg.Rendezvous.OpenTimeout.Duration())
	assert.False(t, cfg.Mesh.AutoDiscover)
	assert.Equal(t, "collab", cfg.Mesh.ChannelLabel, "未出现的字段保持默认")
	assert.NoError(t, cfg.Validate())
}

func TestFromJSON_Invalid(t *testing.T) {
	_, err := FromJSON([]byte(`{"rendezvous":{"open_timeout":"soon"}}`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collab.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"storage":{"data_dir":"/tmp/x"}}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/x", "collab.db"), cfg.Storage.DBPath())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadPoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "point.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"listen_addr":":7000","signal_rate":5}`), 0o600))

	cfg, err := LoadPoint(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, float64(5), cfg.SignalRate)
	assert.Equal(t, "/rendezvous", cfg.Path)
}

func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, d.Duration())

	require.NoError(t, json.Unmarshal([]byte(`1000`), &d))
	assert.Equal(t, time.Microsecond, d.Duration())

	out, err := json.Marshal(Duration(2 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestClone(t *testing.T) {
	cfg := NewConfig()
	cloned := cfg.Clone()
	cloned.Mesh.ICEServers[0] = "stun:other:3478"
	assert.NotEqual(t, cfg.Mesh.ICEServers[0], cloned.Mesh.ICEServers[0])
	assert.Nil(t, (*Config)(nil).Clone())
}
