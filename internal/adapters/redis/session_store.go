// Package redis provides Redis-backed adapters.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/eventdesk/internal/ports"
)

// DefaultTTL bounds how long an idle tab scope is retained. Session
// validity is decided by the stored expiry, not by this TTL.
const DefaultTTL = 2*time.Hour + 15*time.Minute

// TabStore keeps one Redis hash per browser tab scope.
type TabStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ ports.SessionStore = (*TabStore)(nil)

// NewTabStore creates a TabStore with the default key prefix and TTL.
func NewTabStore(client redis.UniversalClient) *TabStore {
	return &TabStore{client: client, prefix: "tab:", ttl: DefaultTTL}
}

// NewTabStoreWithOptions creates a TabStore with a custom prefix and TTL.
// Zero values fall back to the defaults.
func NewTabStoreWithOptions(client redis.UniversalClient, prefix string, ttl time.Duration) *TabStore {
	s := NewTabStore(client)
	if prefix != "" {
		s.prefix = prefix
	}
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

var errEmptyScope = errors.New("tab scope cannot be empty")

func (s *TabStore) key(scope string) string { return s.prefix + scope }

// Get returns the requested keys that are present in the scope.
func (s *TabStore) Get(ctx context.Context, scope string, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if scope == "" || len(keys) == 0 {
		return out, nil
	}
	vals, err := s.client.HMGet(ctx, s.key(scope), keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis hmget: %w", err)
	}
	for i, v := range vals {
		if str, ok := v.(string); ok {
			out[keys[i]] = str
		}
	}
	return out, nil
}

// Set writes fields and refreshes the scope TTL in one transaction.
func (s *TabStore) Set(ctx context.Context, scope string, fields map[string]string) error {
	if scope == "" {
		return errEmptyScope
	}
	if len(fields) == 0 {
		return nil
	}
	values := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		values = append(values, k, v)
	}
	key := s.key(scope)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, values...)
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

// Remove deletes keys from the scope. Missing keys are ignored.
func (s *TabStore) Remove(ctx context.Context, scope string, keys ...string) error {
	if scope == "" || len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, s.key(scope), keys...).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}
