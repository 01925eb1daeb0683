package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/auth"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/notify"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository/memory"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

var errQuota = errors.New("quota exceeded")

// flakyStore wraps a real store and fails writes once failWrites is set, like
// a browser whose storage quota filled up.
type flakyStore struct {
	repository.KeyValueStore
	mu         sync.Mutex
	failWrites bool
	failReads  bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{KeyValueStore: memory.New()}
}

func (f *flakyStore) setFailWrites(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = v
}

func (f *flakyStore) setFailReads(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReads = v
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	fail := f.failReads
	f.mu.Unlock()
	if fail {
		return nil, false, errQuota
	}
	return f.KeyValueStore.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.failWrites
	f.mu.Unlock()
	if fail {
		return errQuota
	}
	return f.KeyValueStore.Set(ctx, key, value)
}

func (f *flakyStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	fail := f.failWrites
	f.mu.Unlock()
	if fail {
		return errQuota
	}
	return f.KeyValueStore.Delete(ctx, key)
}

// rawSlot returns the stored bytes of key, failing the test on a backend error.
func rawSlot(t *testing.T, s repository.KeyValueStore, key string) string {
	t.Helper()
	v, _, err := s.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", key, err)
	}
	return string(v)
}

// fakeClock returns a now func that advances one second per call.
func fakeClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestAuthService(t *testing.T, store repository.KeyValueStore) *AuthService {
	t.Helper()
	ps, err := auth.NewPasswordService(auth.SchemeSHA256, 0)
	if err != nil {
		t.Fatalf("NewPasswordService: %v", err)
	}
	svc := NewAuthService(store, ps, testLogger())
	svc.now = fakeClock()
	return svc
}

func newTestOnboardingService(t *testing.T, store repository.KeyValueStore) (*OnboardingService, *notify.Subject) {
	t.Helper()
	changes := &notify.Subject{}
	svc := NewOnboardingService(store, changes, testLogger())
	svc.now = fakeClock()
	return svc, changes
}
