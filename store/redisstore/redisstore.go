// Package redisstore is the Redis-backed Store driver, grounded on the
// teacher's internal/infrastructure/db/redis.go (connection setup) and
// extended to cover the full Store contract (get/set/delete/exists/incr/
// expire/publish/subscribe/sadd/srem/smembers, spec §4.8).
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/igniter-hq/igniter-go/logger"
	"github.com/igniter-hq/igniter-go/store"

	"github.com/redis/go-redis/v9"
)

// Options configures the underlying redis.Client.
type Options struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type redisStore struct {
	client *redis.Client
	log    logger.Logger
}

var _ store.Store = (*redisStore)(nil)

// New dials Redis and returns a Store backed by it. A failed initial ping
// is logged as a warning rather than a fatal error, matching the
// teacher's connection-setup behavior — the client retries lazily on
// first real command.
func New(opts Options, log logger.Logger) store.Store {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.WithField("error", err.Error()).Warn("failed to connect to redis")
	}

	return &redisStore{client: client, log: log}
}

// Client exposes the underlying *redis.Client for drivers that need
// lower-level access.
func (s *redisStore) Client() *redis.Client { return s.client }

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", store.ErrNotFound
	}
	return val, err
}

func (s *redisStore) Set(ctx context.Context, key, value string, ttlSeconds int) error {
	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *redisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	return n > 0, err
}

func (s *redisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

func (s *redisStore) Expire(ctx context.Context, key string, ttlSeconds int) error {
	return s.client.Expire(ctx, key, time.Duration(ttlSeconds)*time.Second).Err()
}

func (s *redisStore) Publish(ctx context.Context, channel, message string) error {
	return s.client.Publish(ctx, channel, message).Err()
}

func (s *redisStore) Subscribe(ctx context.Context, channel string, handler func(string)) (func(), error) {
	sub := s.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handler(msg.Payload)
			case <-done:
				return
			}
		}
	}()

	var closeOnce bool
	return func() {
		if closeOnce {
			return
		}
		closeOnce = true
		close(done)
		if err := sub.Close(); err != nil {
			s.log.WithField("channel", channel).WithField("error", err.Error()).Warn("redisstore: error closing subscription")
		}
	}, nil
}

func (s *redisStore) SAdd(ctx context.Context, key string, members ...string) error {
	args := make([]any, len(members))
	for i, m := range members {
		args[i] = m
	}
	return s.client.SAdd(ctx, key, args...).Err()
}

func (s *redisStore) SRem(ctx context.Context, key string, members ...string) error {
	args := make([]any, len(members))
	for i, m := range members {
		args[i] = m
	}
	return s.client.SRem(ctx, key, args...).Err()
}

func (s *redisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	return s.client.SMembers(ctx, key).Result()
}

// Close releases the underlying Redis connection.
func (s *redisStore) Close() error {
	return s.client.Close()
}
