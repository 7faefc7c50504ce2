package economy

import (
	"context"
	"errors"
	"fmt"

	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/harrywsong/studiobot-sub000/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
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

	balance, err := f.economy.Balance(ctx, guildID, userID)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to fetch balance")
		common.RespondWithError(s, i, "Unable to fetch balance. Please try again.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "💰 Balance",
		Description: fmt.Sprintf("<@%s> has **%s** coins.", target.ID, common.FormatCoins(balance)),
		Color:       0xF1C40F,
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to send balance response")
	}
}

func (f *Feature) handleDaily(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		common.RespondWithError(s, i, "This command only works in a server.")
		return
	}
	userID, err := common.ParseUserID(i.Member.User.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := f.economy.ClaimDaily(ctx, guildID, userID)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to claim daily bonus")
		common.RespondWithError(s, i, "Unable to claim the daily bonus. Please try again.")
		return
	}

	if !result.Claimed {
		common.RespondWithError(s, i, fmt.Sprintf(
			"You've already claimed today's bonus. Come back %s.",
			common.FormatDiscordTimestamp(result.NextClaim, "R"),
		))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "🎁 Daily Bonus",
		Description: fmt.Sprintf("You claimed **%s** coins! New balance: **%s**.",
			common.FormatCoins(result.Amount), common.FormatCoins(result.NewBalance)),
		Color: 0x57F287,
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to send daily response")
	}
}

func (f *Feature) handlePay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		common.RespondWithError(s, i, "This command only works in a server.")
		return
	}
	fromID, err := common.ParseUserID(i.Member.User.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var target *discordgo.User
	var amount int64
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			target = opt.UserValue(s)
		case "amount":
			amount = opt.IntValue()
		}
	}
	if target == nil {
		common.RespondWithError(s, i, "Pick someone to pay.")
		return
	}
	if target.Bot {
		common.RespondWithError(s, i, "Bots don't have wallets.")
		return
	}
	if amount <= 0 {
		common.RespondWithError(s, i, "Amount must be positive.")
		return
	}

	toID, err := common.ParseUserID(target.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	if toID == fromID {
		common.RespondWithError(s, i, "You can't pay yourself.")
		return
	}

	if err := f.economy.Transfer(ctx, guildID, fromID, toID, amount); err != nil {
		if errors.Is(err, service.ErrInsufficientFunds) {
			common.RespondWithError(s, i, "You don't have enough coins for that.")
			return
		}
		log.WithFields(log.Fields{"guild_id": guildID, "from": fromID, "to": toID, "error": err}).Error("Failed to transfer coins")
		common.RespondWithError(s, i, "Unable to complete the transfer. Please try again.")
		return
	}

	if err := f.gameCache.InvalidateLeaderboards(ctx, guildID); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Warn("Failed to invalidate leaderboards")
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf(
		"Sent **%s** coins to <@%s>.", common.FormatCoins(amount), target.ID), false); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to send pay response")
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
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to build coin leaderboard")
		common.RespondWithError(s, i, "Unable to load the leaderboard. Please try again.")
		return
	}
	if table == "" {
		common.RespondWithError(s, i, "Nobody has any coins yet.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🏆 Coin Leaderboard",
		Description: table,
		Color:       0xF1C40F,
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to send leaderboard response")
	}
}

func (f *Feature) handleAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if !common.IsUserAdmin(i) {
		common.RespondWithError(s, i, "You need the Manage Server permission to do that.")
		return
	}

	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		common.RespondWithError(s, i, "This command only works in a server.")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}
	sub := options[0]

	var target *discordgo.User
	var amount int64
	for _, opt := range sub.Options {
		switch opt.Name {
		case "user":
			target = opt.UserValue(s)
		case "amount":
			amount = opt.IntValue()
		}
	}
	if target == nil || amount <= 0 {
		common.RespondWithError(s, i, "Pick a user and a positive amount.")
		return
	}
	userID, err := common.ParseUserID(target.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	switch sub.Name {
	case "give":
		balance, err := f.economy.AddCoins(ctx, guildID, userID, amount, models.TransactionTypeAdminGive, "admin grant")
		if err != nil {
			log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to grant coins")
			common.RespondWithError(s, i, "Unable to grant coins. Please try again.")
			return
		}
		_ = f.gameCache.InvalidateLeaderboards(ctx, guildID)
		if err := common.RespondWithSuccess(s, i, fmt.Sprintf(
			"Gave **%s** coins to <@%s>. New balance: **%s**.",
			common.FormatCoins(amount), target.ID, common.FormatCoins(balance)), false); err != nil {
			log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to send admin response")
		}
	case "take":
		ok, err := f.economy.RemoveCoins(ctx, guildID, userID, amount, models.TransactionTypeAdminTake, "admin removal")
		if err != nil {
			log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to remove coins")
			common.RespondWithError(s, i, "Unable to remove coins. Please try again.")
			return
		}
		if !ok {
			common.RespondWithError(s, i, "They don't have that many coins.")
			return
		}
		_ = f.gameCache.InvalidateLeaderboards(ctx, guildID)
		if err := common.RespondWithSuccess(s, i, fmt.Sprintf(
			"Took **%s** coins from <@%s>.", common.FormatCoins(amount), target.ID), false); err != nil {
			log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to send admin response")
		}
	}
}
