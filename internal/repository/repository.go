// Package repository defines the key-value storage contract the stores are
// built on, the persisted slot names, and the JSON/string adapters.
//
// Each backend (sqlite, redis, memory) implements KeyValueStore. The
// services never see a backend type, only this interface.
package repository

import "context"

// Persisted slots. Each store owns its slots exclusively.
const (
	KeyUsers      = "bonvan:users:v1"
	KeySession    = "bonvan:session:v1"
	KeyOnboarding = "bonvan:onboarding:v1"
	KeyProfile    = "bonvan_profile_v1"

	KeyDevDisableAuth = "bonvan:dev:disable_auth"

	KeyTheme                  = "bonvan.theme"
	KeyLang                   = "bonvan.lang"
	KeyNotificationsEnabled   = "bonvan.notifications.enabled"
	KeyNotificationsFrequency = "bonvan.notifications.frequency"
)

// KeyValueStore is a persistent byte-valued map.
//
// Get reports found=false for an absent key; a non-nil error always means the
// backend itself failed. Delete of an absent key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}
