package lottery

import (
	"context"
	"fmt"
	"strings"

	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/bot/features/casino"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	gameName = "lottery"

	defaultMinBet int64 = 50
	defaultMaxBet int64 = 200
)

// Feature runs the lottery game
type Feature struct {
	bets *casino.Bets
}

// New creates the lottery feature
func New(bets *casino.Bets) *Feature {
	return &Feature{bets: bets}
}

// HandleCommand handles /lottery
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
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

	if !f.bets.Gate(ctx, s, i, guildID) {
		return
	}
	if !f.bets.CooldownGate(ctx, s, i, guildID, userID, gameName) {
		return
	}

	var bet int64
	var numbers []int64
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "bet":
			bet = opt.IntValue()
		case "first", "second", "third":
			numbers = append(numbers, opt.IntValue())
		}
	}

	if err := f.bets.ValidateBet(ctx, guildID, bet, "lottery_min_bet", "lottery_max_bet", defaultMinBet, defaultMaxBet); err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	picks, err := ParsePicks(numbers)
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	ok, err := f.bets.Debit(ctx, guildID, userID, bet, gameName)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to debit lottery bet")
		common.RespondWithError(s, i, "Unable to place bet. Please try again.")
		return
	}
	if !ok {
		common.RespondWithError(s, i, "You don't have enough coins for that bet.")
		return
	}

	winners := Draw()
	matches := Matches(picks, winners)
	multiplier := f.bets.FloatSetting(ctx, guildID, "lottery_multiplier", 1.0)
	payout := Payout(bet, matches, multiplier)

	if payout > 0 {
		if _, err := f.bets.Credit(ctx, guildID, userID, payout, gameName); err != nil {
			log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to pay lottery winnings")
			common.RespondWithError(s, i, "Something went wrong paying your winnings.")
			return
		}
	}

	embed := resultEmbed(picks, winners, matches, bet, payout)
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to respond to lottery command")
	}
}

func formatNumbers(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("**%d**", n)
	}
	return strings.Join(parts, " ")
}

func resultEmbed(picks, winners []int, matches int, bet, payout int64) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🎟️ Lottery",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Your numbers", Value: formatNumbers(picks), Inline: true},
			{Name: "Winning numbers", Value: formatNumbers(winners), Inline: true},
		},
	}

	if payout > 0 {
		embed.Color = 0x57F287
		embed.Description = fmt.Sprintf("🎉 **%d** matches! You won **%s** coins.", matches, common.FormatCoins(payout))
	} else {
		embed.Color = 0xED4245
		embed.Description = fmt.Sprintf("😔 %d matches. You lost **%s** coins.", matches, common.FormatCoins(bet))
	}
	return embed
}
