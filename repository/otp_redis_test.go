package repository

import (
	"context"
	"testing"
	"time"

	"agrizen/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (domain.ChallengeStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisChallengeStore(client), mr
}

func TestRedisStorePutConsume(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	require.NoError(t, store.Put(ctx, domain.ChannelEmail, "a@b.com", "12345", domain.RoleFarmer, domain.OTPTTL))

	role, found, err := store.PeekRole(ctx, domain.ChannelEmail, "a@b.com")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, domain.RoleFarmer, role)

	role, ok, err := store.Consume(ctx, domain.ChannelEmail, "a@b.com", "12345")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.RoleFarmer, role)

	_, ok, err = store.Consume(ctx, domain.ChannelEmail, "a@b.com", "12345")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisStoreMismatchKeepsEntry(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	require.NoError(t, store.Put(ctx, domain.ChannelMobile, "+15550001111", "12345", domain.RoleBuyer, domain.OTPTTL))

	_, ok, err := store.Consume(ctx, domain.ChannelMobile, "+15550001111", "00000")
	require.NoError(t, err)
	require.False(t, ok)

	role, ok, err := store.Consume(ctx, domain.ChannelMobile, "+15550001111", "12345")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.RoleBuyer, role)
}

func TestRedisStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	require.NoError(t, store.Put(ctx, domain.ChannelEmail, "a@b.com", "12345", domain.RoleBuyer, domain.OTPTTL))

	mr.FastForward(domain.OTPTTL + time.Second)

	_, found, err := store.PeekRole(ctx, domain.ChannelEmail, "a@b.com")
	require.NoError(t, err)
	require.False(t, found)

	_, ok, err := store.Consume(ctx, domain.ChannelEmail, "a@b.com", "12345")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisStoreOverwriteResetsTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	require.NoError(t, store.Put(ctx, domain.ChannelEmail, "a@b.com", "11111", domain.RoleBuyer, domain.OTPTTL))

	mr.FastForward(4 * time.Minute)
	require.NoError(t, store.Put(ctx, domain.ChannelEmail, "a@b.com", "22222", domain.RoleFarmer, domain.OTPTTL))

	// Two minutes past the first challenge's expiry, the reissued one
	// is still live and only its code verifies.
	mr.FastForward(3 * time.Minute)

	_, ok, err := store.Consume(ctx, domain.ChannelEmail, "a@b.com", "11111")
	require.NoError(t, err)
	require.False(t, ok)

	role, ok, err := store.Consume(ctx, domain.ChannelEmail, "a@b.com", "22222")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.RoleFarmer, role)
}
