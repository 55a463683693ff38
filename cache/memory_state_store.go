package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStateStore implements StateStore in process memory using ttlcache.
// State does not survive a restart; in-flight logins simply start over.
type MemoryStateStore struct {
	cache *ttlcache.Cache[string, time.Time]
}

// NewMemoryStateStore creates an in-memory state store whose entries expire
// after ttl. A background sweeper evicts expired entries to bound memory.
func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	cache := ttlcache.New(
		ttlcache.WithTTL[string, time.Time](ttl),
		ttlcache.WithDisableTouchOnHit[string, time.Time](),
	)

	go cache.Start()

	return &MemoryStateStore{cache: cache}
}

// Issue implements StateStore.Issue.
func (s *MemoryStateStore) Issue(_ context.Context) (string, error) {
	token, err := NewStateToken()
	if err != nil {
		return "", err
	}
	s.cache.Set(token, time.Now(), ttlcache.DefaultTTL)
	return token, nil
}

// Consume implements StateStore.Consume. GetAndDelete holds the cache lock,
// so two racing callers for the same token see exactly one success, and
// expired entries are never returned even before the sweeper evicts them.
func (s *MemoryStateStore) Consume(_ context.Context, token string) (bool, error) {
	item, present := s.cache.GetAndDelete(token)
	return present && item != nil, nil
}

// Len reports the number of live entries, for tests and diagnostics.
func (s *MemoryStateStore) Len() int {
	return s.cache.Len()
}

// Close stops the background sweeper.
func (s *MemoryStateStore) Close() error {
	s.cache.Stop()
	return nil
}
