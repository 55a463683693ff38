package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateStore_IssueAndConsumeOnce(t *testing.T) {
	store := NewMemoryStateStore(time.Minute)
	defer store.Close()

	ctx := context.Background()

	token, err := store.Issue(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ok, err := store.Consume(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok, "first consumption should succeed")

	for i := 0; i < 3; i++ {
		ok, err = store.Consume(ctx, token)
		require.NoError(t, err)
		assert.False(t, ok, "token must never be consumable twice")
	}
}

func TestMemoryStateStore_UnknownToken(t *testing.T) {
	store := NewMemoryStateStore(time.Minute)
	defer store.Close()

	ok, err := store.Consume(context.Background(), "never-issued")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStateStore_Expiry(t *testing.T) {
	store := NewMemoryStateStore(20 * time.Millisecond)
	defer store.Close()

	ctx := context.Background()

	token, err := store.Issue(ctx)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	ok, err := store.Consume(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok, "expired token must not validate")

	// And it stays dead afterwards.
	ok, _ = store.Consume(ctx, token)
	assert.False(t, ok)
}

func TestMemoryStateStore_TokensAreUnique(t *testing.T) {
	store := NewMemoryStateStore(time.Minute)
	defer store.Close()

	ctx := context.Background()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := store.Issue(ctx)
		require.NoError(t, err)
		require.False(t, seen[token], "issued tokens must be unique")
		seen[token] = true
	}
}

func TestMemoryStateStore_ConcurrentConsume(t *testing.T) {
	store := NewMemoryStateStore(time.Minute)
	defer store.Close()

	ctx := context.Background()

	token, err := store.Issue(ctx)
	require.NoError(t, err)

	const callers = 32

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := store.Consume(ctx, token)
			if err == nil && ok {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one concurrent consumer may win")
}
