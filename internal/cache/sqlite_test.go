package cache

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
)

func newTestSQLite(t *testing.T, capacity int) *SQLite {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"), capacity)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLitePutGet(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t, 8)
	bundle := testBundle(t, "2024-01-01", "2024-01-02", "2024-01-03")

	if err := s.Put(ctx, "k1", bundle); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get missed a stored key")
	}

	// Compare through JSON so time encoding differences cannot bite.
	gotJSON, _ := json.Marshal(got)
	wantJSON, _ := json.Marshal(bundle)
	if string(gotJSON) != string(wantJSON) {
		t.Errorf("round trip mismatch:\n got %s\nwant %s", gotJSON, wantJSON)
	}

	if _, ok, err := s.Get(ctx, "absent"); err != nil || ok {
		t.Errorf("absent key: ok=%v err=%v, want miss with nil error", ok, err)
	}
}

func TestSQLiteEviction(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t, 2)
	bundle := testBundle(t, "2024-01-01")

	if err := s.Put(ctx, "k1", bundle); err != nil {
		t.Fatalf("Put k1: %v", err)
	}
	if err := s.Put(ctx, "k2", bundle); err != nil {
		t.Fatalf("Put k2: %v", err)
	}

	// Touch k1 so k2 becomes the eviction candidate.
	if _, ok, _ := s.Get(ctx, "k1"); !ok {
		t.Fatal("k1 missing before eviction")
	}

	if err := s.Put(ctx, "k3", bundle); err != nil {
		t.Fatalf("Put k3: %v", err)
	}

	if _, ok, _ := s.Get(ctx, "k2"); ok {
		t.Error("k2 survived eviction, want least recently accessed dropped")
	}
	if _, ok, _ := s.Get(ctx, "k1"); !ok {
		t.Error("k1 evicted despite recent access")
	}
	if _, ok, _ := s.Get(ctx, "k3"); !ok {
		t.Error("k3 missing right after Put")
	}
}

func TestSQLiteOverwrite(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t, 4)

	if err := s.Put(ctx, "k1", testBundle(t, "2024-01-01")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, "k1", testBundle(t, "2024-02-01", "2024-02-02")); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}

	got, ok, err := s.Get(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(got.Sentiment) != 2 {
		t.Errorf("Get returned the stale value: %d sentiment points, want 2", len(got.Sentiment))
	}
}

func TestSQLiteCorruptedRow(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t, 4)

	if err := s.Put(ctx, "k1", testBundle(t, "2024-01-01")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := s.db.Exec(`UPDATE bundles SET value = ? WHERE key = ?`, []byte("not json"), "k1"); err != nil {
		t.Fatalf("corrupting row: %v", err)
	}

	if _, ok, err := s.Get(ctx, "k1"); err != nil || ok {
		t.Errorf("corrupted row: ok=%v err=%v, want miss with nil error", ok, err)
	}

	// The corrupted row is gone for good.
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM bundles WHERE key = ?`, "k1").Scan(&n); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if n != 0 {
		t.Errorf("corrupted row still present, count = %d", n)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := NewSQLite(path, 4)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	bundle := testBundle(t, "2024-01-01")
	if err := s.Put(ctx, "k1", bundle); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewSQLite(path, 4)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer reopened.Close()

	if _, ok, err := reopened.Get(ctx, "k1"); err != nil || !ok {
		t.Errorf("bundle lost across reopen: ok=%v err=%v", ok, err)
	}
}
