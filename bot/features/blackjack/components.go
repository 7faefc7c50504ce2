package blackjack

import (
	"fmt"
	"strings"

	"github.com/harrywsong/studiobot-sub000/bot/common"

	"github.com/bwmarrin/discordgo"
)

func customID(action string, userID int64) string {
	return fmt.Sprintf("blackjack_%s_%d", action, userID)
}

// parseCustomID splits "blackjack_<action>_<userID>"
func parseCustomID(id string) (action string, userID int64, ok bool) {
	parts := strings.Split(id, "_")
	if len(parts) != 3 || parts[0] != "blackjack" {
		return "", 0, false
	}
	parsed, err := common.ParseUserID(parts[2])
	if err != nil {
		return "", 0, false
	}
	return parts[1], parsed, true
}

func gameComponents(sess *session) []discordgo.MessageComponent {
	v := sess.game.View()
	if v.State == StateSettled {
		return common.DisableComponents([]discordgo.MessageComponent{
			&discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					&discordgo.Button{CustomID: customID("hit", sess.userID), Label: "Hit", Style: discordgo.PrimaryButton},
					&discordgo.Button{CustomID: customID("stand", sess.userID), Label: "Stand", Style: discordgo.SecondaryButton},
				},
			},
		})
	}

	row := &discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			&discordgo.Button{CustomID: customID("hit", sess.userID), Label: "Hit", Style: discordgo.PrimaryButton},
			&discordgo.Button{CustomID: customID("stand", sess.userID), Label: "Stand", Style: discordgo.SecondaryButton},
		},
	}
	if v.CanDouble {
		row.Components = append(row.Components, &discordgo.Button{
			CustomID: customID("double", sess.userID), Label: "Double", Style: discordgo.SuccessButton,
		})
	}
	if v.CanSplit {
		row.Components = append(row.Components, &discordgo.Button{
			CustomID: customID("split", sess.userID), Label: "Split", Style: discordgo.SuccessButton,
		})
	}
	if v.CanInsure {
		row.Components = append(row.Components, &discordgo.Button{
			CustomID: customID("insurance", sess.userID), Label: "Insurance", Style: discordgo.DangerButton,
		})
	}
	return []discordgo.MessageComponent{row}
}

func gameEmbed(sess *session, payout int64) *discordgo.MessageEmbed {
	v := sess.game.View()

	var fields []*discordgo.MessageEmbedField
	for idx, hand := range v.Hands {
		name := "Your hand"
		if len(v.Hands) > 1 {
			name = fmt.Sprintf("Hand %d", idx+1)
		}
		if v.State == StatePlayerTurn && hand.Active {
			name += " ◀"
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   name,
			Value:  fmt.Sprintf("%s (%d)", (&Hand{Cards: hand.Cards}).String(), HandValue(hand.Cards)),
			Inline: true,
		})
	}

	dealerValue := "?"
	dealerCards := v.Dealer[0].String() + " 🂠"
	if v.State == StateSettled {
		dealerCards = (&Hand{Cards: v.Dealer}).String()
		dealerValue = fmt.Sprintf("%d", HandValue(v.Dealer))
	}
	fields = append(fields, &discordgo.MessageEmbedField{
		Name:   "Dealer",
		Value:  fmt.Sprintf("%s (%s)", dealerCards, dealerValue),
		Inline: true,
	})

	embed := &discordgo.MessageEmbed{
		Title:  "🃏 Blackjack",
		Color:  0x5865F2,
		Fields: fields,
	}

	if v.State == StateSettled {
		staked := v.Staked
		switch {
		case payout > staked:
			embed.Color = 0x57F287
			embed.Description = fmt.Sprintf("🎉 You won **%s** coins!", common.FormatCoins(payout-staked))
		case payout == staked:
			embed.Color = 0xFEE75C
			embed.Description = "Push. Your stake is returned."
		default:
			embed.Color = 0xED4245
			embed.Description = fmt.Sprintf("😔 You lost **%s** coins.", common.FormatCoins(staked-payout))
		}
	} else {
		embed.Description = fmt.Sprintf("Bet: **%s** coins", common.FormatCoins(sess.baseBet))
	}

	return embed
}
