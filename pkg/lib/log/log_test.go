package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyLogger_FollowsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	l := Logger("mesh")

	var first, second bytes.Buffer
	Setup(Options{Output: &first, Level: LevelInfo})
	l.Info("第一条")

	Setup(Options{Output: &second, Level: LevelInfo})
	l.Info("第二条")

	assert.Contains(t, first.String(), "component=mesh")
	assert.Contains(t, first.String(), "第一条")
	assert.NotContains(t, first.String(), "第二条")
	assert.Contains(t, second.String(), "第二条")
}

func TestSetup_JSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	Setup(Options{Level: LevelDebug, Format: FormatJSON, Output: &buf})
	Logger("realm/lock").Debug("字段已锁定", "field", "q1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "realm/lock", rec["component"])
	assert.Equal(t, "q1", rec["field"])
}

func TestSetup_LevelFilter(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	Setup(Options{Level: LevelWarn, Output: &buf})
	Logger("x").Info("丢弃")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
	}
	for in, want := range cases {
		got, ok := ParseLevel(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseLevel("verbose")
	assert.False(t, ok)
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat(""))
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvFormat, "json")
	t.Setenv(EnvAddSource, "true")

	opts := OptionsFromEnv()
	assert.Equal(t, LevelDebug, opts.Level)
	assert.Equal(t, FormatJSON, opts.Format)
	assert.True(t, opts.AddSource)
}

func TestLogger_Component(t *testing.T) {
	assert.Equal(t, "core/stun", Logger("core/stun").Component())
}
