package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"agrizen/domain"

	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutConsume(t *testing.T) {
	ctx := context.Background()
	store := newMemoryChallengeStore(time.Now)

	require.NoError(t, store.Put(ctx, domain.ChannelEmail, "a@b.com", "12345", domain.RoleFarmer, domain.OTPTTL))

	role, found, err := store.PeekRole(ctx, domain.ChannelEmail, "a@b.com")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, domain.RoleFarmer, role)

	role, ok, err := store.Consume(ctx, domain.ChannelEmail, "a@b.com", "12345")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.RoleFarmer, role)

	// Single use: the entry is gone.
	_, ok, err = store.Consume(ctx, domain.ChannelEmail, "a@b.com", "12345")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreMismatchKeepsEntry(t *testing.T) {
	ctx := context.Background()
	store := newMemoryChallengeStore(time.Now)

	require.NoError(t, store.Put(ctx, domain.ChannelEmail, "a@b.com", "12345", domain.RoleFarmer, domain.OTPTTL))

	_, ok, err := store.Consume(ctx, domain.ChannelEmail, "a@b.com", "00000")
	require.NoError(t, err)
	require.False(t, ok)

	// Immediate retry with the right code still succeeds.
	role, ok, err := store.Consume(ctx, domain.ChannelEmail, "a@b.com", "12345")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.RoleFarmer, role)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	store := newMemoryChallengeStore(clock)

	require.NoError(t, store.Put(ctx, domain.ChannelEmail, "a@b.com", "12345", domain.RoleBuyer, domain.OTPTTL))

	mu.Lock()
	now = now.Add(domain.OTPTTL + time.Second)
	mu.Unlock()

	_, found, err := store.PeekRole(ctx, domain.ChannelEmail, "a@b.com")
	require.NoError(t, err)
	require.False(t, found)

	_, ok, err := store.Consume(ctx, domain.ChannelEmail, "a@b.com", "12345")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store := newMemoryChallengeStore(time.Now)

	require.NoError(t, store.Put(ctx, domain.ChannelEmail, "a@b.com", "11111", domain.RoleBuyer, domain.OTPTTL))
	require.NoError(t, store.Put(ctx, domain.ChannelEmail, "a@b.com", "22222", domain.RoleFarmer, domain.OTPTTL))

	// Only the newest code verifies, with its own role.
	_, ok, err := store.Consume(ctx, domain.ChannelEmail, "a@b.com", "11111")
	require.NoError(t, err)
	require.False(t, ok)

	role, ok, err := store.Consume(ctx, domain.ChannelEmail, "a@b.com", "22222")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.RoleFarmer, role)
}

func TestMemoryStoreKeyNormalization(t *testing.T) {
	ctx := context.Background()
	store := newMemoryChallengeStore(time.Now)

	require.NoError(t, store.Put(ctx, domain.ChannelEmail, "A@B.com", "12345", domain.RoleBuyer, domain.OTPTTL))

	_, ok, err := store.Consume(ctx, domain.ChannelEmail, "a@b.com", "12345")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemoryStoreNoChannelCrossTalk(t *testing.T) {
	ctx := context.Background()
	store := newMemoryChallengeStore(time.Now)

	require.NoError(t, store.Put(ctx, domain.ChannelEmail, "555", "11111", domain.RoleBuyer, domain.OTPTTL))
	require.NoError(t, store.Put(ctx, domain.ChannelMobile, "555", "22222", domain.RoleFarmer, domain.OTPTTL))

	role, ok, err := store.Consume(ctx, domain.ChannelEmail, "555", "11111")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.RoleBuyer, role)

	role, ok, err = store.Consume(ctx, domain.ChannelMobile, "555", "22222")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.RoleFarmer, role)
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	store := newMemoryChallengeStore(clock)

	require.NoError(t, store.Put(ctx, domain.ChannelEmail, "old@b.com", "11111", domain.RoleBuyer, time.Minute))
	require.NoError(t, store.Put(ctx, domain.ChannelEmail, "new@b.com", "22222", domain.RoleBuyer, time.Hour))

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	require.NoError(t, store.Sweep(ctx))

	total := 0
	for _, sh := range store.shards {
		sh.mu.Lock()
		total += len(sh.entries)
		sh.mu.Unlock()
	}
	require.Equal(t, 1, total)

	_, ok, err := store.Consume(ctx, domain.ChannelEmail, "new@b.com", "22222")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemoryStoreConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	store := newMemoryChallengeStore(time.Now)

	require.NoError(t, store.Put(ctx, domain.ChannelMobile, "+15550001111", "12345", domain.RoleBuyer, domain.OTPTTL))

	const callers = 32
	var wins int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, ok, _ := store.Consume(ctx, domain.ChannelMobile, "+15550001111", "12345")
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(1), wins)
}
