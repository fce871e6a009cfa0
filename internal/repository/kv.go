package repository

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned when a key is absent or expired.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the scoped storage behind sessions and preferences. A
// zero ttl stores the value without expiry.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Replace overwrites an existing key and keeps its expiry. It reports
	// false, without writing, when the key is absent.
	Replace(ctx context.Context, key, value string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	AddMember(ctx context.Context, key, member string, ttl time.Duration) error
	Members(ctx context.Context, key string) ([]string, error)
	RemoveMembers(ctx context.Context, key string, members ...string) error
}
