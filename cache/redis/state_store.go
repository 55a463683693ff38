// Package redis provides a Redis-backed state store for deployments running
// more than one instance behind a load balancer.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"oauth-backend/cache"
)

// StateStore implements cache.StateStore on Redis. Expiry is delegated to
// Redis key TTLs; consumption uses GETDEL so that concurrent callbacks racing
// the same token cannot both succeed.
type StateStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStateStore creates a Redis state store. The prefix namespaces state keys
// so the store can share a database with other data.
func NewStateStore(client *redis.Client, prefix string, ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = cache.DefaultStateTTL
	}
	return &StateStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *StateStore) redisKey(token string) string {
	return fmt.Sprintf("%s:state:%s", s.prefix, token)
}

// Issue implements cache.StateStore.Issue.
func (s *StateStore) Issue(ctx context.Context) (string, error) {
	token, err := cache.NewStateToken()
	if err != nil {
		return "", err
	}

	issuedAt := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.client.Set(ctx, s.redisKey(token), issuedAt, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("storing state in redis: %w", err)
	}
	return token, nil
}

// Consume implements cache.StateStore.Consume.
func (s *StateStore) Consume(ctx context.Context, token string) (bool, error) {
	err := s.client.GetDel(ctx, s.redisKey(token)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("consuming state from redis: %w", err)
	}
	return true, nil
}

// Close implements cache.StateStore.Close. The client is shared and owned by
// the caller, so nothing is released here.
func (s *StateStore) Close() error {
	return nil
}
