package xp

import (
	"context"
	"fmt"
	"time"

	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleCommand routes the XP slash commands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "rank":
		f.handleRank(s, i)
	case "xp-leaderboard":
		f.handleLeaderboard(s, i)
	}
}

func (f *Feature) handleRank(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		common.RespondWithError(s, i, "This command only works in a server.")
		return
	}

	target := i.Member.User
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			target = opt.UserValue(s)
		}
	}
	userID, err := common.ParseUserID(target.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	record, err := f.xp.Rank(ctx, guildID, userID)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to fetch rank")
		common.RespondWithError(s, i, "Unable to fetch rank. Please try again.")
		return
	}
	if record == nil {
		common.RespondWithError(s, i, "They haven't earned any XP yet.")
		return
	}

	nextLevelAt := models.XPForLevel(record.Level + 1)
	embed := &discordgo.MessageEmbed{
		Title: "📊 Rank",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("<@%s>", target.ID), Inline: true},
			{Name: "Level", Value: fmt.Sprintf("%d", record.Level), Inline: true},
			{Name: "XP", Value: fmt.Sprintf("%s / %s", common.FormatCoins(record.XP), common.FormatCoins(nextLevelAt)), Inline: true},
			{Name: "Voice time", Value: common.FormatDuration(time.Duration(record.TotalVoiceSeconds) * time.Second), Inline: true},
		},
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to send rank response")
	}
}

func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		common.RespondWithError(s, i, "This command only works in a server.")
		return
	}

	table, err := f.leaderboardTable(ctx, s, guildID, i.GuildID)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to build XP leaderboard")
		common.RespondWithError(s, i, "Unable to load the leaderboard. Please try again.")
		return
	}
	if table == "" {
		common.RespondWithError(s, i, "Nobody has earned XP yet.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📈 XP Leaderboard",
		Description: table,
		Color:       0x5865F2,
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to send leaderboard response")
	}
}

func (f *Feature) leaderboardTable(ctx context.Context, s *discordgo.Session, guildID int64, guildIDStr string) (string, error) {
	if cached, err := f.gameCache.GetLeaderboard(ctx, guildID, "xp"); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Warn("Failed to read cached leaderboard")
	} else if cached != "" {
		return cached, nil
	}

	records, err := f.xp.Leaderboard(ctx, guildID, 10)
	if err != nil {
		return "", fmt.Errorf("failed to load XP leaderboard: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	rows := make([][]string, 0, len(records))
	for rank, record := range records {
		rows = append(rows, []string{
			fmt.Sprintf("%d", rank+1),
			common.GetDisplayNameInt64(s, guildIDStr, record.UserID),
			fmt.Sprintf("%d", record.Level),
			common.FormatCoins(record.XP),
		})
	}
	rendered := common.RenderTable([]string{"#", "User", "Lvl", "XP"}, rows)

	if err := f.gameCache.SetLeaderboard(ctx, guildID, "xp", rendered, leaderboardTTL); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Warn("Failed to cache leaderboard")
	}
	return rendered, nil
}
