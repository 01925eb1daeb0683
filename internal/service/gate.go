package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/lib/sl"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/model"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/notify"
)

// DevFlags are development switches, fixed at startup from the config.
type DevFlags struct {
	// DisableAuth lets every request through without a session.
	DisableAuth bool
	// ForceOnboarding reports onboarding as required even once completed.
	// The stored record is left alone.
	ForceOnboarding bool
	// HonorStoredBypass makes the persisted bonvan:dev:disable_auth slot
	// ("true") disable auth too, so it can be toggled at runtime with
	// bonvanctl.
	HonorStoredBypass bool
}

// GateState is what the app shell needs to decide which screen to show.
type GateState struct {
	AuthRequired       bool `json:"authRequired"`
	Authenticated      bool `json:"authenticated"`
	OnboardingRequired bool `json:"onboardingRequired"`
	// ShowApp is true once neither the sign-in nor the onboarding screen is due.
	ShowApp bool `json:"showApp"`
}

// OnboardingLoader reads the onboarding completion record.
type OnboardingLoader interface {
	Load(ctx context.Context) (model.OnboardingStorage, error)
}

// BypassReader reads the persisted dev bypass flag.
type BypassReader interface {
	AuthBypass(ctx context.Context) (bool, error)
}

// Gate combines the dev flags, the session and the onboarding record into a
// GateState.
//
// Onboarding completion is cached. Every onboarding change notification
// invalidates the cache and the next State call re-reads the record.
type Gate struct {
	flags      DevFlags
	onboarding OnboardingLoader
	bypass     BypassReader
	logger     *slog.Logger

	mu        sync.Mutex
	fresh     bool
	completed bool
	gen       uint64 // bumped by every notification
	cancel    func()
}

func NewGate(flags DevFlags, onboarding OnboardingLoader, bypass BypassReader, changes *notify.Subject, logger *slog.Logger) *Gate {
	g := &Gate{
		flags:      flags,
		onboarding: onboarding,
		bypass:     bypass,
		logger:     logger,
	}
	g.cancel = changes.Subscribe(g.invalidate)
	return g
}

// Close stops listening to onboarding changes.
func (g *Gate) Close() {
	g.cancel()
}

func (g *Gate) invalidate() {
	g.mu.Lock()
	g.fresh = false
	g.gen++
	g.mu.Unlock()
}

// AuthBypassed reports whether authentication is disabled. A failure to read
// the stored flag counts as not bypassed.
func (g *Gate) AuthBypassed(ctx context.Context) bool {
	if g.flags.DisableAuth {
		return true
	}
	if !g.flags.HonorStoredBypass {
		return false
	}
	on, err := g.bypass.AuthBypass(ctx)
	if err != nil {
		g.logger.Warn("reading stored auth bypass", sl.Err(err))
		return false
	}
	return on
}

// State returns the gating decision for a caller whose session is (or is
// not) authenticated.
func (g *Gate) State(ctx context.Context, authenticated bool) (GateState, error) {
	completed, err := g.onboardingCompleted(ctx)
	if err != nil {
		return GateState{}, err
	}

	st := GateState{
		AuthRequired:       !g.AuthBypassed(ctx),
		Authenticated:      authenticated,
		OnboardingRequired: g.flags.ForceOnboarding || !completed,
	}
	st.ShowApp = (!st.AuthRequired || st.Authenticated) && !st.OnboardingRequired
	return st, nil
}

func (g *Gate) onboardingCompleted(ctx context.Context) (bool, error) {
	g.mu.Lock()
	if g.fresh {
		done := g.completed
		g.mu.Unlock()
		return done, nil
	}
	gen := g.gen
	g.mu.Unlock()

	rec, err := g.onboarding.Load(ctx)
	if err != nil {
		return false, err
	}

	// A change published during Load leaves the cache stale.
	g.mu.Lock()
	if g.gen == gen {
		g.completed = rec.Completed
		g.fresh = true
	}
	g.mu.Unlock()
	return rec.Completed, nil
}
