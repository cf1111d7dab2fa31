package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

const notesKey = "researchNotes"

// testDB creates a temporary database for testing.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenDB(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "readless.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file not created: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("query schema_migrations: %v", err)
	}
	if count != len(migrations) {
		t.Errorf("applied %d migrations, want %d", count, len(migrations))
	}
}

func TestOpenDB_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "readless.db")
	for i := 0; i < 2; i++ {
		db, err := OpenDB(dbPath)
		if err != nil {
			t.Fatalf("OpenDB #%d: %v", i+1, err)
		}
		db.Close()
	}
}

func TestKV_GetMissing(t *testing.T) {
	kv := NewKV(testDB(t))

	v, ok, err := kv.Get(context.Background(), notesKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok || v != "" {
		t.Errorf("Get on empty store = (%q, %v), want (\"\", false)", v, ok)
	}
}

func TestKV_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	kv := NewKV(testDB(t))

	for _, v := range []string{"first", "second", ""} {
		if err := kv.Set(ctx, notesKey, v); err != nil {
			t.Fatalf("Set(%q): %v", v, err)
		}
	}

	v, ok, err := kv.Get(ctx, notesKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected key to exist after Set")
	}
	if v != "" {
		t.Errorf("Get = %q, want empty string from last write", v)
	}

	var rows int
	kv.db.QueryRow("SELECT COUNT(*) FROM kv").Scan(&rows)
	if rows != 1 {
		t.Errorf("expected 1 row, got %d", rows)
	}
}

func TestKV_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "readless.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := NewKV(db).Set(ctx, notesKey, "hello"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = OpenDB(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	v, ok, err := NewKV(db).Get(ctx, notesKey)
	if err != nil || !ok || v != "hello" {
		t.Errorf("after reopen Get = (%q, %v, %v), want (hello, true, nil)", v, ok, err)
	}
}

func TestKV_Note(t *testing.T) {
	ctx := context.Background()
	kv := NewKV(testDB(t))

	n, err := kv.Note(ctx, notesKey)
	if err != nil {
		t.Fatal(err)
	}
	if !n.UpdatedAt.IsZero() || n.Text != "" {
		t.Errorf("expected zero note, got %+v", n)
	}

	if err := kv.Set(ctx, notesKey, "line one\nline two"); err != nil {
		t.Fatal(err)
	}
	n, err = kv.Note(ctx, notesKey)
	if err != nil {
		t.Fatal(err)
	}
	if n.Text != "line one\nline two" {
		t.Errorf("Text = %q", n.Text)
	}
	if n.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
}

func TestMemStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	if _, ok, _ := s.Get(ctx, notesKey); ok {
		t.Fatal("expected empty store")
	}
	s.Set(ctx, notesKey, "a")
	s.Set(ctx, notesKey, "b")
	v, ok, _ := s.Get(ctx, notesKey)
	if !ok || v != "b" {
		t.Errorf("Get = (%q, %v), want (b, true)", v, ok)
	}
}
