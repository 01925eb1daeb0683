package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/model"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/notify"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository/memory"
)

// fakeOnboarding counts loads and returns a settable record.
type fakeOnboarding struct {
	mu        sync.Mutex
	completed bool
	loads     int
	err       error
	during    func() // runs inside Load
}

func (f *fakeOnboarding) Load(context.Context) (model.OnboardingStorage, error) {
	f.mu.Lock()
	f.loads++
	done, err, during := f.completed, f.err, f.during
	f.mu.Unlock()
	if during != nil {
		during()
	}
	return model.OnboardingStorage{Completed: done}, err
}

func (f *fakeOnboarding) set(completed bool) {
	f.mu.Lock()
	f.completed = completed
	f.mu.Unlock()
}

func (f *fakeOnboarding) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

type fakeBypass struct {
	on  bool
	err error
}

func (f fakeBypass) AuthBypass(context.Context) (bool, error) { return f.on, f.err }

// =========================================================================
// GATE STATE TESTS
// =========================================================================

func TestGateState(t *testing.T) {
	tests := []struct {
		name          string
		flags         DevFlags
		storedBypass  bool
		completed     bool
		authenticated bool
		want          GateState
	}{
		{
			name: "signed out",
			want: GateState{AuthRequired: true, OnboardingRequired: true},
		},
		{
			name:          "signed in, onboarding due",
			authenticated: true,
			want:          GateState{AuthRequired: true, Authenticated: true, OnboardingRequired: true},
		},
		{
			name:          "signed in, onboarding done",
			authenticated: true,
			completed:     true,
			want:          GateState{AuthRequired: true, Authenticated: true, ShowApp: true},
		},
		{
			name:      "auth disabled by flag",
			flags:     DevFlags{DisableAuth: true},
			completed: true,
			want:      GateState{ShowApp: true},
		},
		{
			name:          "force onboarding",
			flags:         DevFlags{ForceOnboarding: true},
			completed:     true,
			authenticated: true,
			want:          GateState{AuthRequired: true, Authenticated: true, OnboardingRequired: true},
		},
		{
			name:         "stored bypass ignored by default",
			storedBypass: true,
			completed:    true,
			want:         GateState{AuthRequired: true},
		},
		{
			name:         "stored bypass honored",
			flags:        DevFlags{HonorStoredBypass: true},
			storedBypass: true,
			completed:    true,
			want:         GateState{ShowApp: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &fakeOnboarding{completed: tt.completed}
			g := NewGate(tt.flags, loader, fakeBypass{on: tt.storedBypass}, &notify.Subject{}, testLogger())
			t.Cleanup(g.Close)

			got, err := g.State(context.Background(), tt.authenticated)
			if err != nil {
				t.Fatalf("State() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("State() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGate_BypassReadErrorCountsAsOff(t *testing.T) {
	g := NewGate(DevFlags{HonorStoredBypass: true}, &fakeOnboarding{}, fakeBypass{on: true, err: errQuota}, &notify.Subject{}, testLogger())
	defer g.Close()

	if g.AuthBypassed(context.Background()) {
		t.Error("AuthBypassed() = true on a read error")
	}
}

func TestGate_OnboardingErrorPropagates(t *testing.T) {
	g := NewGate(DevFlags{}, &fakeOnboarding{err: errQuota}, fakeBypass{}, &notify.Subject{}, testLogger())
	defer g.Close()

	if _, err := g.State(context.Background(), true); !errors.Is(err, errQuota) {
		t.Errorf("State() error = %v, want the load error", err)
	}
}

// =========================================================================
// CACHE TESTS
// =========================================================================

func TestGate_CachesUntilNotified(t *testing.T) {
	loader := &fakeOnboarding{}
	changes := &notify.Subject{}
	g := NewGate(DevFlags{}, loader, fakeBypass{}, changes, testLogger())
	defer g.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = g.State(ctx, true)
	}
	if n := loader.loadCount(); n != 1 {
		t.Fatalf("loads = %d after repeated State calls, want 1", n)
	}

	loader.set(true)
	st, _ := g.State(ctx, true)
	if !st.OnboardingRequired {
		t.Fatal("cached value should still be used before a notification")
	}

	changes.Publish()
	st, _ = g.State(ctx, true)
	if st.OnboardingRequired || !st.ShowApp {
		t.Errorf("State() after notification = %+v, want onboarding done", st)
	}
	if n := loader.loadCount(); n != 2 {
		t.Errorf("loads = %d, want 2", n)
	}
}

func TestGate_NotificationDuringLoadKeepsCacheStale(t *testing.T) {
	loader := &fakeOnboarding{}
	changes := &notify.Subject{}
	g := NewGate(DevFlags{}, loader, fakeBypass{}, changes, testLogger())
	defer g.Close()
	ctx := context.Background()

	loader.during = func() {
		loader.during = nil
		changes.Publish()
	}
	_, _ = g.State(ctx, true)
	_, _ = g.State(ctx, true)

	if n := loader.loadCount(); n != 2 {
		t.Errorf("loads = %d, want 2: a result read across a notification must not be cached", n)
	}
}

func TestGate_FollowsOnboardingService(t *testing.T) {
	store := memory.New()
	onboarding, changes := newTestOnboardingService(t, store)
	g := NewGate(DevFlags{}, onboarding, NewSettingsService(store, testLogger()), changes, testLogger())
	defer g.Close()
	ctx := context.Background()

	st, _ := g.State(ctx, true)
	if !st.OnboardingRequired {
		t.Fatal("onboarding should be required on a fresh store")
	}

	if _, err := onboarding.Skip(ctx); err != nil {
		t.Fatal(err)
	}
	if st, _ = g.State(ctx, true); !st.ShowApp {
		t.Errorf("State() after Skip = %+v, want ShowApp", st)
	}

	if err := onboarding.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if st, _ = g.State(ctx, true); !st.OnboardingRequired {
		t.Errorf("State() after Reset = %+v, want onboarding required", st)
	}
}

func TestGate_LegacyCompletedRecordShowsApp(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	_ = store.Set(ctx, repository.KeyOnboarding, []byte(legacyCompletedRecord))
	onboarding, changes := newTestOnboardingService(t, store)
	g := NewGate(DevFlags{}, onboarding, NewSettingsService(store, testLogger()), changes, testLogger())
	defer g.Close()

	st, err := g.State(ctx, true)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if st.OnboardingRequired || !st.ShowApp {
		t.Errorf("State() = %+v, want the app without onboarding", st)
	}
}

func TestGate_CloseStopsListening(t *testing.T) {
	changes := &notify.Subject{}
	g := NewGate(DevFlags{}, &fakeOnboarding{}, fakeBypass{}, changes, testLogger())
	if changes.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", changes.Len())
	}
	g.Close()
	if changes.Len() != 0 {
		t.Errorf("Len() = %d after Close, want 0", changes.Len())
	}
}
