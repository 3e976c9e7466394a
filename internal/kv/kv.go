// Package kv is the storage adapter shared by the admin and display surfaces:
// a synchronous string-keyed, string-valued store with no transactions.
package kv

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by stores whose medium is full or disabled.
var ErrUnavailable = errors.New("kv: store unavailable")

// Store is implemented by every storage backend.
// Get reports ok=false when the key is absent. Removing an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

const (
	// RegistryKey holds the JSON array of every registered screen.
	RegistryKey = "screens"

	screenKeyPrefix = "screen-"
)

// ScreenKey is the per-pin key holding {"modules": [...]} for one display.
func ScreenKey(pin string) string {
	return screenKeyPrefix + pin
}
