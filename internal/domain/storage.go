package domain

import "context"

// Logical keys of the per-device key-value namespace.
const (
	KeySessions = "praylude_sessions"
	KeyStats    = "praylude_stats"
	KeyTheme    = "praylude_theme"
)

// KeyValueStore is a string key-value namespace belonging to one device.
// Get returns ErrNotFound for a missing key. SetMany and Delete apply all
// of their keys or none of them.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// StorageProvider hands out the key-value namespace of a device.
type StorageProvider interface {
	Storage(deviceID string) KeyValueStore
}
