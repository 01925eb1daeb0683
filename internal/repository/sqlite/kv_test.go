package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

// newTestDB returns a fresh in-memory database, closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// =========================================================================
// GET / SET TESTS
// =========================================================================

func TestGet_MissingKey(t *testing.T) {
	db := newTestDB(t)

	v, found, err := db.Get(context.Background(), "bonvan:session:v1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Errorf("Get() found = true for a missing key (value %q)", v)
	}
}

func TestSetThenGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Set(ctx, "bonvan.theme", []byte("dark")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	v, found, err := db.Get(ctx, "bonvan.theme")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() found = false after Set()")
	}
	if string(v) != "dark" {
		t.Errorf("Get() = %q, want %q", v, "dark")
	}
}

func TestSet_Overwrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_ = db.Set(ctx, "bonvan.lang", []byte("fr"))
	if err := db.Set(ctx, "bonvan.lang", []byte("en")); err != nil {
		t.Fatalf("second Set() error = %v", err)
	}

	v, _, _ := db.Get(ctx, "bonvan.lang")
	if string(v) != "en" {
		t.Errorf("Get() after overwrite = %q, want %q", v, "en")
	}
}

func TestSet_EmptyValue(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Set(ctx, "empty", nil); err != nil {
		t.Fatalf("Set(nil) error = %v", err)
	}
	v, found, err := db.Get(ctx, "empty")
	if err != nil || !found {
		t.Fatalf("Get() = (%q, %v, %v), want found", v, found, err)
	}
	if len(v) != 0 {
		t.Errorf("Get() = %q, want empty", v)
	}
}

// =========================================================================
// DELETE / KEYS TESTS
// =========================================================================

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_ = db.Set(ctx, "bonvan:onboarding:v1", []byte(`{"completed":true}`))
	if err := db.Delete(ctx, "bonvan:onboarding:v1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, found, _ := db.Get(ctx, "bonvan:onboarding:v1")
	if found {
		t.Error("key still present after Delete()")
	}
}

func TestDelete_MissingKeyIsNoop(t *testing.T) {
	db := newTestDB(t)

	if err := db.Delete(context.Background(), "nope"); err != nil {
		t.Errorf("Delete() of a missing key error = %v, want nil", err)
	}
}

func TestKeys_Sorted(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, k := range []string{"c", "a", "b"} {
		if err := db.Set(ctx, k, []byte(k)); err != nil {
			t.Fatalf("Set(%q) error = %v", k, err)
		}
	}

	keys, err := db.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

// =========================================================================
// PERSISTENCE TESTS
// =========================================================================

func TestFileDatabase_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bonvan.db")
	ctx := context.Background()

	db, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := db.Set(ctx, "bonvan_profile_v1", []byte(`{"assets":{"turbinesCount":2}}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	db.Close()

	// Reopening runs the migrations again; they must be idempotent.
	db, err = New(path)
	if err != nil {
		t.Fatalf("reopen New() error = %v", err)
	}
	defer db.Close()

	v, found, err := db.Get(ctx, "bonvan_profile_v1")
	if err != nil || !found {
		t.Fatalf("Get() after reopen = (%q, %v, %v)", v, found, err)
	}
	if string(v) != `{"assets":{"turbinesCount":2}}` {
		t.Errorf("Get() after reopen = %q", v)
	}
}
