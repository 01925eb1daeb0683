package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/auth"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/model"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/notify"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository/memory"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/service"
)

// keepOpen survives the Close every command run ends with, so one store can
// be inspected across several runs.
type keepOpen struct {
	repository.KeyValueStore
}

func (keepOpen) Close() error { return nil }

func run(t *testing.T, store repository.KeyValueStore, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(func(context.Context) (repository.KeyValueStore, error) {
		return keepOpen{store}, nil
	})
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signUp(t *testing.T, store repository.KeyValueStore, email string) *model.AuthSession {
	t.Helper()
	passwords, err := auth.NewPasswordService(auth.SchemeSHA256, 0)
	if err != nil {
		t.Fatal(err)
	}
	s, err := service.NewAuthService(store, passwords, discard()).SignUp(context.Background(), email, "secret1")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	return s
}

// ===== USERS / SESSION TESTS =====

func TestUsersList(t *testing.T) {
	store := memory.New()
	signUp(t, store, "alice@example.com")
	signUp(t, store, "bob@example.com")

	out, err := run(t, store, "users", "list")
	if err != nil {
		t.Fatalf("users list error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("users list printed %d lines, want header + 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "alice@example.com") || !strings.Contains(lines[2], "bob@example.com") {
		t.Errorf("users not in creation order:\n%s", out)
	}
}

func TestSessionShowAndClear(t *testing.T) {
	store := memory.New()
	session := signUp(t, store, "carol@example.com")

	out, err := run(t, store, "session", "show")
	if err != nil {
		t.Fatalf("session show error = %v", err)
	}
	var got model.AuthSession
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("session show output is not JSON: %v\n%s", err, out)
	}
	if got != *session {
		t.Errorf("session show = %+v, want %+v", got, *session)
	}

	if _, err := run(t, store, "session", "clear"); err != nil {
		t.Fatalf("session clear error = %v", err)
	}
	out, _ = run(t, store, "session", "show")
	if strings.TrimSpace(out) != "null" {
		t.Errorf("session show after clear = %q, want null", out)
	}
}

// ===== ONBOARDING / DEV TESTS =====

func TestOnboardingReset(t *testing.T) {
	store := memory.New()
	onboarding := service.NewOnboardingService(store, &notify.Subject{}, discard())
	if _, err := onboarding.Skip(context.Background()); err != nil {
		t.Fatal(err)
	}

	out, _ := run(t, store, "onboarding", "show")
	if !strings.Contains(out, `"completed": true`) {
		t.Errorf("onboarding show before reset = %s", out)
	}

	if _, err := run(t, store, "onboarding", "reset"); err != nil {
		t.Fatalf("onboarding reset error = %v", err)
	}
	out, _ = run(t, store, "onboarding", "show")
	if !strings.Contains(out, `"completed": false`) {
		t.Errorf("onboarding show after reset = %s", out)
	}
}

func TestDevAuthBypass(t *testing.T) {
	store := memory.New()

	tests := []struct {
		args []string
		want string
		slot string
	}{
		{args: nil, want: "auth bypass: off\n"},
		{args: []string{"on"}, want: "auth bypass: on\n", slot: "true"},
		{args: nil, want: "auth bypass: on\n", slot: "true"},
		{args: []string{"off"}, want: "auth bypass: off\n", slot: "false"},
	}
	for _, tt := range tests {
		out, err := run(t, store, append([]string{"dev", "auth-bypass"}, tt.args...)...)
		if err != nil {
			t.Fatalf("dev auth-bypass %v error = %v", tt.args, err)
		}
		if out != tt.want {
			t.Errorf("dev auth-bypass %v = %q, want %q", tt.args, out, tt.want)
		}
		if tt.slot != "" {
			v, _, _ := store.Get(context.Background(), repository.KeyDevDisableAuth)
			if string(v) != tt.slot {
				t.Errorf("slot after %v = %q, want %q", tt.args, v, tt.slot)
			}
		}
	}
}

func TestDevAuthBypass_RejectsOtherValues(t *testing.T) {
	store := memory.New()

	if _, err := run(t, store, "dev", "auth-bypass", "maybe"); err == nil {
		t.Fatal("dev auth-bypass maybe error = nil, want an argument error")
	}
	if _, found, _ := store.Get(context.Background(), repository.KeyDevDisableAuth); found {
		t.Error("rejected value was written")
	}
}

// ===== PROFILE / SETTINGS TESTS =====

func TestSettingsShow_Defaults(t *testing.T) {
	out, err := run(t, memory.New(), "settings", "show")
	if err != nil {
		t.Fatalf("settings show error = %v", err)
	}
	var got model.Settings
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("settings show output is not JSON: %v", err)
	}
	if got != model.DefaultSettings() {
		t.Errorf("settings show = %+v, want defaults %+v", got, model.DefaultSettings())
	}
}

func TestProfileShow_DoesNotWrite(t *testing.T) {
	store := memory.New()

	if _, err := run(t, store, "profile", "show"); err != nil {
		t.Fatalf("profile show error = %v", err)
	}
	if _, found, _ := store.Get(context.Background(), repository.KeyProfile); found {
		t.Error("profile show wrote the profile slot")
	}
}
