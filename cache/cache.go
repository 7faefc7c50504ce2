package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// memPruneThreshold bounds the in-memory cooldown map; expired entries are
// swept once it grows past this.
const memPruneThreshold = 1024

// Cache wraps Redis for short-lived state: game cooldowns and cached
// leaderboard renders. Without Redis, cooldowns fall back to an in-process
// map (lost on restart) and leaderboard caching is disabled. All methods
// are safe on a nil *Cache.
type Cache struct {
	client *redis.Client

	mu  sync.Mutex
	mem map[string]time.Time // cooldown expiry fallback
}

// New connects to Redis. An empty addr returns a cache backed by the
// in-memory fallback instead, so cooldowns keep working without Redis.
func New(ctx context.Context, addr, password string, db int) (*Cache, error) {
	if addr == "" {
		log.Info("REDIS_ADDR not set, using in-memory cooldowns")
		return &Cache{mem: make(map[string]time.Time)}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	log.WithField("addr", addr).Info("Connected to Redis")
	return &Cache{client: client}, nil
}

// Close releases the underlying connection
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func cooldownKey(guildID, userID int64, action string) string {
	return fmt.Sprintf("cooldown:%d:%d:%s", guildID, userID, action)
}

func leaderboardKey(guildID int64, kind string) string {
	return fmt.Sprintf("leaderboard:%d:%s", guildID, kind)
}

// AcquireCooldown atomically claims a cooldown slot. Returns false while
// a previous claim is still live. A nil cache always grants the slot.
func (c *Cache) AcquireCooldown(ctx context.Context, guildID, userID int64, action string, ttl time.Duration) (bool, error) {
	if c == nil {
		return true, nil
	}
	key := cooldownKey(guildID, userID, action)

	if c.client == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		now := time.Now()
		if expiry, held := c.mem[key]; held && now.Before(expiry) {
			return false, nil
		}
		if len(c.mem) > memPruneThreshold {
			for k, expiry := range c.mem {
				if !now.Before(expiry) {
					delete(c.mem, k)
				}
			}
		}
		c.mem[key] = now.Add(ttl)
		return true, nil
	}

	ok, err := c.client.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire cooldown: %w", err)
	}
	return ok, nil
}

// CooldownRemaining reports how long until the action is allowed again.
// Zero means no active cooldown.
func (c *Cache) CooldownRemaining(ctx context.Context, guildID, userID int64, action string) (time.Duration, error) {
	if c == nil {
		return 0, nil
	}
	key := cooldownKey(guildID, userID, action)

	if c.client == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		expiry, held := c.mem[key]
		if !held {
			return 0, nil
		}
		remaining := time.Until(expiry)
		if remaining < 0 {
			return 0, nil
		}
		return remaining, nil
	}

	ttl, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read cooldown: %w", err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// GetLeaderboard returns a cached leaderboard render, or "" on a miss.
// Leaderboard caching needs Redis; the in-memory fallback covers cooldowns
// only.
func (c *Cache) GetLeaderboard(ctx context.Context, guildID int64, kind string) (string, error) {
	if c == nil || c.client == nil {
		return "", nil
	}
	value, err := c.client.Get(ctx, leaderboardKey(guildID, kind)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cached leaderboard: %w", err)
	}
	return value, nil
}

// SetLeaderboard caches a leaderboard render for a short window
func (c *Cache) SetLeaderboard(ctx context.Context, guildID int64, kind, rendered string, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Set(ctx, leaderboardKey(guildID, kind), rendered, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache leaderboard: %w", err)
	}
	return nil
}

// InvalidateLeaderboards drops cached renders for a guild after a balance
// or XP change.
func (c *Cache) InvalidateLeaderboards(ctx context.Context, guildID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	keys := []string{
		leaderboardKey(guildID, "coins"),
		leaderboardKey(guildID, "xp"),
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate leaderboards: %w", err)
	}
	return nil
}
