package store

import (
	"context"

	"github.com/igniter-hq/igniter-go/apperror"
)

type noopStore struct{}

var _ Store = (*noopStore)(nil)

// NewNoop returns a Store that reports STORE_NOT_CONFIGURED on every
// call (spec §4.8's default-absent behavior). Realtime revalidation still
// works within a single process without a Store installed; only
// operations that require one (cache reads/writes, cross-process
// pub/sub) fail this way.
func NewNoop() Store { return &noopStore{} }

func (s *noopStore) Get(ctx context.Context, key string) (string, error) {
	return "", apperror.StoreNotConfigured()
}

func (s *noopStore) Set(ctx context.Context, key, value string, ttlSeconds int) error {
	return apperror.StoreNotConfigured()
}

func (s *noopStore) Delete(ctx context.Context, key string) error {
	return apperror.StoreNotConfigured()
}

func (s *noopStore) Exists(ctx context.Context, key string) (bool, error) {
	return false, apperror.StoreNotConfigured()
}

func (s *noopStore) Incr(ctx context.Context, key string) (int64, error) {
	return 0, apperror.StoreNotConfigured()
}

func (s *noopStore) Expire(ctx context.Context, key string, ttlSeconds int) error {
	return apperror.StoreNotConfigured()
}

func (s *noopStore) Publish(ctx context.Context, channel, message string) error {
	return apperror.StoreNotConfigured()
}

func (s *noopStore) Subscribe(ctx context.Context, channel string, handler func(string)) (func(), error) {
	return nil, apperror.StoreNotConfigured()
}

func (s *noopStore) SAdd(ctx context.Context, key string, members ...string) error {
	return apperror.StoreNotConfigured()
}

func (s *noopStore) SRem(ctx context.Context, key string, members ...string) error {
	return apperror.StoreNotConfigured()
}

func (s *noopStore) SMembers(ctx context.Context, key string) ([]string, error) {
	return nil, apperror.StoreNotConfigured()
}
