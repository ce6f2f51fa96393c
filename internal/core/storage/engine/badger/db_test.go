package badger

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dep2p/go-collab/internal/core/storage/engine"
	"github.com/dep2p/go-collab/pkg/lib/log"
)

// testEngine 创建测试用引擎
func testEngine(t *testing.T) *Engine {
	t.Helper()

	cfg := engine.DefaultConfig(filepath.Join(t.TempDir(), "test.db"))
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("failed to start engine: %v", err)
	}

	t.Cleanup(func() {
		if err := e.Close(); err != nil {
			t.Errorf("failed to close engine: %v", err)
		}
	})
	return e
}

func TestEngine_PutGet(t *testing.T) {
	e := testEngine(t)

	if err := e.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := e.Get([]byte("k"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, []byte("v")) {
		t.Errorf("Get returned %q, want %q", got, "v")
	}
	if s := e.Stats(); s.Writes != 1 || s.Reads != 1 {
		t.Errorf("unexpected stats: %+v", s)
	}
}

func TestEngine_GetMissing(t *testing.T) {
	e := testEngine(t)

	if _, err := e.Get([]byte("missing")); !engine.IsNotFound(err) {
		t.Errorf("Get returned %v, want ErrNotFound", err)
	}
}

func TestEngine_DeleteHas(t *testing.T) {
	e := testEngine(t)
	key := []byte("k")

	if err := e.Put(key, []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if ok, err := e.Has(key); err != nil || !ok {
		t.Fatalf("Has = %v, %v; want true, nil", ok, err)
	}
	if err := e.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if ok, err := e.Has(key); err != nil || ok {
		t.Errorf("Has after Delete = %v, %v; want false, nil", ok, err)
	}
}

func TestEngine_EmptyKey(t *testing.T) {
	e := testEngine(t)

	if err := e.Put(nil, []byte("v")); err != engine.ErrEmptyKey {
		t.Errorf("Put(nil) = %v, want ErrEmptyKey", err)
	}
	if _, err := e.Get(nil); err != engine.ErrEmptyKey {
		t.Errorf("Get(nil) = %v, want ErrEmptyKey", err)
	}
}

func TestEngine_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	e1, err := New(engine.DefaultConfig(path))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := e1.Put([]byte("k"), []byte("persisted")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := e1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	e2, err := New(engine.DefaultConfig(path))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer e2.Close()

	got, err := e2.Get([]byte("k"))
	if err != nil || string(got) != "persisted" {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
}

func TestEngine_Closed(t *testing.T) {
	e, err := New(engine.DefaultConfig(filepath.Join(t.TempDir(), "c.db")))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if err := e.Put([]byte("k"), nil); !engine.IsClosed(err) {
		t.Errorf("Put after Close = %v, want ErrClosed", err)
	}
	if err := e.Start(); !engine.IsClosed(err) {
		t.Errorf("Start after Close = %v, want ErrClosed", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(nil); err != engine.ErrInvalidConfig {
		t.Errorf("New(nil) = %v, want ErrInvalidConfig", err)
	}
	if _, err := New(engine.DefaultConfig("")); err != engine.ErrInvalidConfig {
		t.Errorf("New(empty path) = %v, want ErrInvalidConfig", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := engine.DefaultConfig("x")
	cfg.GCDiscardRatio = 1
	if err := cfg.Validate(); err != engine.ErrInvalidConfig {
		t.Errorf("ratio 1 = %v, want ErrInvalidConfig", err)
	}
	cfg.GCInterval = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("GC disabled = %v, want nil", err)
	}
}

func TestSlogAdapter_Levels(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log.Setup(log.Options{Output: &buf, Level: log.LevelInfo})

	a := slogAdapter{}
	a.Infof("打开 %s\n", "MANIFEST")
	a.Warningf("截断 value log %d\n", 3)

	out := buf.String()
	if strings.Contains(out, "MANIFEST") {
		t.Errorf("Infof should be demoted to debug: %q", out)
	}
	if !strings.Contains(out, "截断 value log 3") || strings.Contains(out, "3\\n") {
		t.Errorf("Warningf not forwarded: %q", out)
	}
	if !strings.Contains(out, "component=storage/badger") {
		t.Errorf("missing component: %q", out)
	}
}
