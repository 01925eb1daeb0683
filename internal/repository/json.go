package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/apperror"
)

// LoadJSON reads key and decodes it into a fresh T.
//
// Fails soft on content: an absent key, an empty value or malformed JSON all
// yield (nil, nil). Only a backend failure is returned, as an
// apperror.ErrStorage.
func LoadJSON[T any](ctx context.Context, s KeyValueStore, key string) (*T, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil {
		return nil, apperror.StorageFailed("load "+key, err)
	}
	if !found || len(raw) == 0 {
		return nil, nil
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, nil
	}
	return &v, nil
}

// LoadJSONWithDefaults decodes key on top of a value built by newDefault, so
// anything the stored document omits keeps its default (nested structs
// included). An absent key or a malformed document yields a fresh default and
// found=false; a document that fails half-way never leaks partially decoded
// fields.
func LoadJSONWithDefaults[T any](ctx context.Context, s KeyValueStore, key string, newDefault func() T) (T, bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil {
		return newDefault(), false, apperror.StorageFailed("load "+key, err)
	}
	if !found || len(raw) == 0 {
		return newDefault(), false, nil
	}

	v := newDefault()
	if err := json.Unmarshal(raw, &v); err != nil {
		return newDefault(), false, nil
	}
	return v, true, nil
}

// SaveJSON encodes v and writes it to key. Both encoding and backend failures
// are reported; callers surface them as a generic "could not save".
func SaveJSON(ctx context.Context, s KeyValueStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("repository: encoding %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return apperror.StorageFailed("save "+key, err)
	}
	return nil
}

// LoadString reads a plain-string slot. Absent keys return ("", false, nil).
func LoadString(ctx context.Context, s KeyValueStore, key string) (string, bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil {
		return "", false, apperror.StorageFailed("load "+key, err)
	}
	if !found {
		return "", false, nil
	}
	return string(raw), true, nil
}

// SaveString writes a plain-string slot.
func SaveString(ctx context.Context, s KeyValueStore, key, value string) error {
	if err := s.Set(ctx, key, []byte(value)); err != nil {
		return apperror.StorageFailed("save "+key, err)
	}
	return nil
}

// Remove deletes key.
func Remove(ctx context.Context, s KeyValueStore, key string) error {
	if err := s.Delete(ctx, key); err != nil {
		return apperror.StorageFailed("delete "+key, err)
	}
	return nil
}
