package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/apperror"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository/memory"
)

// brokenStore fails every call, like storage disabled in private mode.
type brokenStore struct{}

var errBroken = errors.New("quota exceeded")

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errBroken }
func (brokenStore) Set(context.Context, string, []byte) error         { return errBroken }
func (brokenStore) Delete(context.Context, string) error              { return errBroken }
func (brokenStore) Keys(context.Context) ([]string, error)            { return nil, errBroken }
func (brokenStore) Close() error                                      { return nil }

type doc struct {
	Name  string `json:"name"`
	Inner struct {
		A int `json:"a"`
		B int `json:"b"`
	} `json:"inner"`
}

func newDoc() doc {
	d := doc{Name: "default"}
	d.Inner.A = 1
	d.Inner.B = 2
	return d
}

func TestLoadJSON_FailsSoft(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_ = s.Set(ctx, "malformed", []byte(`{"name":`))
	_ = s.Set(ctx, "empty", []byte{})

	tests := []struct {
		name string
		key  string
	}{
		{name: "absent", key: "absent"},
		{name: "malformed", key: "malformed"},
		{name: "empty", key: "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repository.LoadJSON[doc](ctx, s, tt.key)
			if err != nil {
				t.Fatalf("LoadJSON() error = %v, want nil", err)
			}
			if got != nil {
				t.Errorf("LoadJSON() = %+v, want nil", got)
			}
		})
	}
}

func TestLoadJSON_Decodes(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_ = s.Set(ctx, "k", []byte(`{"name":"x","inner":{"a":5}}`))

	got, err := repository.LoadJSON[doc](ctx, s, "k")
	if err != nil || got == nil {
		t.Fatalf("LoadJSON() = (%v, %v)", got, err)
	}
	if got.Name != "x" || got.Inner.A != 5 || got.Inner.B != 0 {
		t.Errorf("LoadJSON() = %+v", got)
	}
}

func TestLoadJSONWithDefaults_MergesNested(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_ = s.Set(ctx, "k", []byte(`{"inner":{"a":9}}`))

	got, found, err := repository.LoadJSONWithDefaults(ctx, s, "k", newDoc)
	if err != nil || !found {
		t.Fatalf("LoadJSONWithDefaults() = (found %v, err %v)", found, err)
	}
	if got.Name != "default" || got.Inner.A != 9 || got.Inner.B != 2 {
		t.Errorf("LoadJSONWithDefaults() = %+v, want name=default a=9 b=2", got)
	}
}

func TestLoadJSONWithDefaults_MalformedYieldsCleanDefault(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	// Decoding gets as far as "name" before failing on the truncated object.
	_ = s.Set(ctx, "k", []byte(`{"name":"partial","inner":{"a":`))

	got, found, err := repository.LoadJSONWithDefaults(ctx, s, "k", newDoc)
	if err != nil {
		t.Fatalf("LoadJSONWithDefaults() error = %v", err)
	}
	if found {
		t.Error("found = true for a malformed document")
	}
	if got != newDoc() {
		t.Errorf("LoadJSONWithDefaults() = %+v, want a clean default", got)
	}
}

func TestBackendFailuresAreStorageErrors(t *testing.T) {
	ctx := context.Background()
	s := brokenStore{}

	_, err := repository.LoadJSON[doc](ctx, s, "k")
	if !errors.Is(err, apperror.ErrStorage) {
		t.Errorf("LoadJSON() error = %v, want ErrStorage", err)
	}
	if err := repository.SaveJSON(ctx, s, "k", newDoc()); !errors.Is(err, apperror.ErrStorage) {
		t.Errorf("SaveJSON() error = %v, want ErrStorage", err)
	}
	if err := repository.SaveString(ctx, s, "k", "v"); !errors.Is(err, apperror.ErrStorage) {
		t.Errorf("SaveString() error = %v, want ErrStorage", err)
	}
	if err := repository.Remove(ctx, s, "k"); !errors.Is(err, apperror.ErrStorage) {
		t.Errorf("Remove() error = %v, want ErrStorage", err)
	}
	if !errors.Is(repository.SaveJSON(ctx, s, "k", 1), errBroken) {
		t.Error("StorageError should keep the backend cause in the chain")
	}
}

func TestStringSlots(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	if _, found, err := repository.LoadString(ctx, s, repository.KeyTheme); err != nil || found {
		t.Fatalf("LoadString() of absent slot = (found %v, err %v)", found, err)
	}
	if err := repository.SaveString(ctx, s, repository.KeyTheme, "dark"); err != nil {
		t.Fatalf("SaveString() error = %v", err)
	}
	v, found, err := repository.LoadString(ctx, s, repository.KeyTheme)
	if err != nil || !found || v != "dark" {
		t.Errorf("LoadString() = (%q, %v, %v), want (dark, true, nil)", v, found, err)
	}
}
