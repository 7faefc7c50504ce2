package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(context.Background(), "", "", 0)
	require.NoError(t, err)
	return c
}

func TestAcquireCooldown_MemoryFallback(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t)

	ok, err := c.AcquireCooldown(ctx, 100, 42, "crash", time.Minute)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.AcquireCooldown(ctx, 100, 42, "crash", time.Minute)
	assert.NoError(t, err)
	assert.False(t, ok, "second claim inside the window should be denied")
}

func TestAcquireCooldown_MemoryFallbackIsPerAction(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t)

	ok, _ := c.AcquireCooldown(ctx, 100, 42, "crash", time.Minute)
	assert.True(t, ok)

	ok, _ = c.AcquireCooldown(ctx, 100, 42, "blackjack", time.Minute)
	assert.True(t, ok, "a different game should have its own cooldown")

	ok, _ = c.AcquireCooldown(ctx, 100, 7, "crash", time.Minute)
	assert.True(t, ok, "a different user should have their own cooldown")
}

func TestAcquireCooldown_MemoryFallbackExpires(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t)

	ok, _ := c.AcquireCooldown(ctx, 100, 42, "crash", 10*time.Millisecond)
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	ok, _ = c.AcquireCooldown(ctx, 100, 42, "crash", time.Minute)
	assert.True(t, ok, "an expired cooldown should be reclaimable")
}

func TestCooldownRemaining_MemoryFallback(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(t)

	remaining, err := c.CooldownRemaining(ctx, 100, 42, "crash")
	assert.NoError(t, err)
	assert.Zero(t, remaining)

	_, err = c.AcquireCooldown(ctx, 100, 42, "crash", time.Minute)
	require.NoError(t, err)

	remaining, err = c.CooldownRemaining(ctx, 100, 42, "crash")
	assert.NoError(t, err)
	assert.Greater(t, remaining, 50*time.Second)
	assert.LessOrEqual(t, remaining, time.Minute)
}

func TestCooldown_NilCacheAlwaysGrants(t *testing.T) {
	ctx := context.Background()
	var c *Cache

	ok, err := c.AcquireCooldown(ctx, 100, 42, "crash", time.Minute)
	assert.NoError(t, err)
	assert.True(t, ok)

	remaining, err := c.CooldownRemaining(ctx, 100, 42, "crash")
	assert.NoError(t, err)
	assert.Zero(t, remaining)

	assert.NoError(t, c.Close())
}
