package kv

import (
	"path/filepath"
	"testing"

	"github.com/dep2p/go-collab/internal/core/storage/engine"
	"github.com/dep2p/go-collab/internal/core/storage/engine/badger"
)

// testStore 创建测试用 Store
func testStore(t *testing.T, prefix string) *Store {
	t.Helper()

	eng, err := badger.New(engine.DefaultConfig(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	t.Cleanup(func() {
		if err := eng.Close(); err != nil {
			t.Errorf("failed to close engine: %v", err)
		}
	})
	return New(eng, []byte(prefix))
}

func TestStore_PrefixIsolation(t *testing.T) {
	s := testStore(t, "i/")
	other := New(s.engine, []byte("x/"))

	if err := s.PutString([]byte("name"), "小王"); err != nil {
		t.Fatalf("PutString failed: %v", err)
	}
	if _, err := other.Get([]byte("name")); !engine.IsNotFound(err) {
		t.Errorf("other prefix saw key: %v", err)
	}

	raw, err := s.engine.Get([]byte("i/name"))
	if err != nil || string(raw) != "小王" {
		t.Errorf("raw key = %q, %v", raw, err)
	}
}

func TestStore_StringRoundTrip(t *testing.T) {
	s := testStore(t, "i/")

	if err := s.PutString([]byte("participant/id"), "user_abc"); err != nil {
		t.Fatalf("PutString failed: %v", err)
	}
	got, err := s.GetString([]byte("participant/id"))
	if err != nil || got != "user_abc" {
		t.Errorf("GetString = %q, %v", got, err)
	}
	if ok, _ := s.Has([]byte("participant/id")); !ok {
		t.Error("Has = false after PutString")
	}
	if err := s.Delete([]byte("participant/id")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.GetString([]byte("participant/id")); !engine.IsNotFound(err) {
		t.Errorf("GetString after Delete = %v, want ErrNotFound", err)
	}
}
