package casino

import (
	"context"
	"testing"
	"time"

	"github.com/harrywsong/studiobot-sub000/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConfigs struct {
	settings map[string]int64
}

func (s *stubConfigs) IsFeatureEnabled(ctx context.Context, guildID int64, feature string) bool {
	return true
}

func (s *stubConfigs) IntSetting(ctx context.Context, guildID int64, key string, def int64) int64 {
	if v, ok := s.settings[key]; ok {
		return v
	}
	return def
}

func (s *stubConfigs) FloatSetting(ctx context.Context, guildID int64, key string, def float64) float64 {
	return def
}

func TestCooldown_DeniesSecondPlayInsideWindow(t *testing.T) {
	ctx := context.Background()
	c, err := cache.New(ctx, "", "", 0)
	require.NoError(t, err)
	b := NewBets(&stubConfigs{}, nil, c)

	wait, err := b.Cooldown(ctx, 100, 42, "crash", time.Minute)
	assert.NoError(t, err)
	assert.Zero(t, wait)

	wait, err = b.Cooldown(ctx, 100, 42, "crash", time.Minute)
	assert.NoError(t, err)
	assert.Greater(t, wait, time.Duration(0), "second play inside the window should report the wait")
}

func TestCooldown_IndependentPerGame(t *testing.T) {
	ctx := context.Background()
	c, err := cache.New(ctx, "", "", 0)
	require.NoError(t, err)
	b := NewBets(&stubConfigs{}, nil, c)

	wait, _ := b.Cooldown(ctx, 100, 42, "crash", time.Minute)
	assert.Zero(t, wait)

	wait, _ = b.Cooldown(ctx, 100, 42, "blackjack", time.Minute)
	assert.Zero(t, wait, "a cooldown on one game should not block another")
}

func TestCooldownGate_DisabledByZeroSetting(t *testing.T) {
	ctx := context.Background()
	c, err := cache.New(ctx, "", "", 0)
	require.NoError(t, err)
	b := NewBets(&stubConfigs{settings: map[string]int64{"casino_cooldown_seconds": 0}}, nil, c)

	// A zero cooldown setting turns the gate off entirely
	assert.True(t, b.CooldownGate(ctx, nil, nil, 100, 42, "crash"))
	assert.True(t, b.CooldownGate(ctx, nil, nil, 100, 42, "crash"))
}
