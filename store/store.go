// Package store defines the Store adapter contract (spec §4.8): a
// minimal key/value + set + pub/sub surface the core uses for caching,
// set membership, and bridging realtime revalidation across processes.
package store

import "context"

// Store is consumed by user procedures/handlers through the per-request
// context scope block, and by the realtime bus to bridge the
// "__revalidate__" channel across processes (spec §4.7, §5).
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttlSeconds int) error

	Publish(ctx context.Context, channel, message string) error
	// Subscribe registers handler for messages on channel and returns an
	// unsubscribe function. handler is called from a background
	// goroutine; redisstore calls it for one message at a time.
	Subscribe(ctx context.Context, channel string, handler func(message string)) (unsubscribe func(), err error)

	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// ErrNotFound is returned by Get when key does not exist, mirroring the
// spec's "get(k) → string|null" contract (a miss, not an error state the
// caller must special-case beyond a simple comparison).
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "store: key not found" }
