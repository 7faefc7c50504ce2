package casino

import (
	"context"
	"fmt"
	"time"

	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/cache"
	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/harrywsong/studiobot-sub000/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// defaultCooldownSeconds spaces out game starts per user unless the guild
// tunes casino_cooldown_seconds.
const defaultCooldownSeconds = 15

// Bets wraps the shared plumbing every casino game needs: the feature gate,
// bet validation against per-guild settings, per-user cooldowns, and the
// debit/credit flow through the economy service.
type Bets struct {
	configs GuildConfigReader
	economy service.EconomyService
	cache   *cache.Cache
}

// GuildConfigReader is the slice of the config service the games read
type GuildConfigReader interface {
	IsFeatureEnabled(ctx context.Context, guildID int64, feature string) bool
	IntSetting(ctx context.Context, guildID int64, key string, def int64) int64
	FloatSetting(ctx context.Context, guildID int64, key string, def float64) float64
}

// NewBets creates the shared casino helper
func NewBets(configs GuildConfigReader, economy service.EconomyService, gameCache *cache.Cache) *Bets {
	return &Bets{
		configs: configs,
		economy: economy,
		cache:   gameCache,
	}
}

// Gate checks the casino feature flag, responding ephemerally when disabled.
// Returns false when the command should stop.
func (b *Bets) Gate(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64) bool {
	if !b.configs.IsFeatureEnabled(ctx, guildID, models.FeatureCasinoGames) {
		common.RespondWithError(s, i, "Casino games are disabled on this server.")
		return false
	}
	return true
}

// ValidateBet checks a bet against the guild's limits for a game.
// minKey/maxKey name the settings, defMin/defMax their defaults.
func (b *Bets) ValidateBet(ctx context.Context, guildID, amount int64, minKey, maxKey string, defMin, defMax int64) error {
	min := b.configs.IntSetting(ctx, guildID, minKey, defMin)
	max := b.configs.IntSetting(ctx, guildID, maxKey, defMax)
	if amount < min || amount > max {
		return fmt.Errorf("bets must be between %d and %d coins", min, max)
	}
	return nil
}

// Cooldown claims the per-user cooldown slot for a game. Returns the wait
// remaining when the user is still cooling down.
func (b *Bets) Cooldown(ctx context.Context, guildID, userID int64, game string, ttl time.Duration) (time.Duration, error) {
	ok, err := b.cache.AcquireCooldown(ctx, guildID, userID, game, ttl)
	if err != nil {
		// A broken cache should not block gameplay
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"game":     game,
			"error":    err,
		}).Warn("Cooldown check failed, allowing play")
		return 0, nil
	}
	if ok {
		return 0, nil
	}
	remaining, err := b.cache.CooldownRemaining(ctx, guildID, userID, game)
	if err != nil || remaining == 0 {
		remaining = ttl
	}
	return remaining, nil
}

// CooldownGate enforces the per-user game cooldown, responding ephemerally
// with the wait remaining. Returns false when the command should stop.
func (b *Bets) CooldownGate(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, guildID, userID int64, game string) bool {
	ttl := time.Duration(b.configs.IntSetting(ctx, guildID, "casino_cooldown_seconds", defaultCooldownSeconds)) * time.Second
	if ttl <= 0 {
		return true
	}
	wait, _ := b.Cooldown(ctx, guildID, userID, game, ttl)
	if wait > 0 {
		common.RespondWithError(s, i, fmt.Sprintf("Slow down, you can play again in %s.", common.FormatDuration(wait)))
		return false
	}
	return true
}

// Debit takes the bet from the player up front. Returns false when the
// balance can't cover it.
func (b *Bets) Debit(ctx context.Context, guildID, userID, amount int64, game string) (bool, error) {
	return b.economy.RemoveCoins(ctx, guildID, userID, amount, models.TransactionTypeGameBet, game+" bet")
}

// Credit pays winnings back and returns the new balance
func (b *Bets) Credit(ctx context.Context, guildID, userID, amount int64, game string) (int64, error) {
	return b.economy.AddCoins(ctx, guildID, userID, amount, models.TransactionTypeGameWin, game+" win")
}

// Refund returns a debited bet after a cancelled round
func (b *Bets) Refund(ctx context.Context, guildID, userID, amount int64, game string) (int64, error) {
	return b.economy.AddCoins(ctx, guildID, userID, amount, models.TransactionTypeGameWin, game+" refund")
}

// FloatSetting proxies a per-guild float setting for game math
func (b *Bets) FloatSetting(ctx context.Context, guildID int64, key string, def float64) float64 {
	return b.configs.FloatSetting(ctx, guildID, key, def)
}

// IntSetting proxies a per-guild int setting
func (b *Bets) IntSetting(ctx context.Context, guildID int64, key string, def int64) int64 {
	return b.configs.IntSetting(ctx, guildID, key, def)
}
