package economy

import (
	"context"
	"fmt"
	"time"

	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/cache"
	"github.com/harrywsong/studiobot-sub000/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const leaderboardTTL = time.Minute

// Feature exposes the coin economy: balances, daily bonuses, transfers,
// and the coin leaderboard.
type Feature struct {
	economy   service.EconomyService
	gameCache *cache.Cache
}

// New creates the economy feature
func New(economy service.EconomyService, gameCache *cache.Cache) *Feature {
	return &Feature{
		economy:   economy,
		gameCache: gameCache,
	}
}

// HandleCommand routes the economy slash commands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "balance":
		f.handleBalance(s, i)
	case "daily":
		f.handleDaily(s, i)
	case "pay":
		f.handlePay(s, i)
	case "coin-leaderboard":
		f.handleLeaderboard(s, i)
	case "coins-admin":
		f.handleAdmin(s, i)
	}
}

// leaderboardTable renders the top wallets, served from cache when fresh
func (f *Feature) leaderboardTable(ctx context.Context, s *discordgo.Session, guildID int64, guildIDStr string) (string, error) {
	if cached, err := f.gameCache.GetLeaderboard(ctx, guildID, "coins"); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Warn("Failed to read cached leaderboard")
	} else if cached != "" {
		return cached, nil
	}

	wallets, err := f.economy.Leaderboard(ctx, guildID, 10)
	if err != nil {
		return "", fmt.Errorf("failed to load coin leaderboard: %w", err)
	}
	if len(wallets) == 0 {
		return "", nil
	}

	rows := make([][]string, 0, len(wallets))
	for rank, wallet := range wallets {
		rows = append(rows, []string{
			fmt.Sprintf("%d", rank+1),
			common.GetDisplayNameInt64(s, guildIDStr, wallet.UserID),
			common.FormatCoins(wallet.Coins),
		})
	}
	rendered := common.RenderTable([]string{"#", "User", "Coins"}, rows)

	if err := f.gameCache.SetLeaderboard(ctx, guildID, "coins", rendered, leaderboardTTL); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Warn("Failed to cache leaderboard")
	}
	return rendered, nil
}
