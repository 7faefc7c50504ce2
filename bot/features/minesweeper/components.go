package minesweeper

import (
	"fmt"
	"strings"

	"github.com/harrywsong/studiobot-sub000/bot/common"

	"github.com/bwmarrin/discordgo"
)

func tileID(userID int64, row, col int) string {
	return fmt.Sprintf("mines_tile_%d_%d_%d", userID, row, col)
}

func cashoutID(userID int64) string {
	return fmt.Sprintf("mines_cashout_%d", userID)
}

// parseCustomID splits "mines_tile_<user>_<row>_<col>" and
// "mines_cashout_<user>"
func parseCustomID(id string) (action string, row, col int, userID int64, ok bool) {
	parts := strings.Split(id, "_")
	if len(parts) < 3 || parts[0] != "mines" {
		return "", 0, 0, 0, false
	}
	switch parts[1] {
	case "tile":
		if len(parts) != 5 {
			return "", 0, 0, 0, false
		}
		uid, err := common.ParseUserID(parts[2])
		if err != nil {
			return "", 0, 0, 0, false
		}
		if _, err := fmt.Sscanf(parts[3]+" "+parts[4], "%d %d", &row, &col); err != nil {
			return "", 0, 0, 0, false
		}
		return "tile", row, col, uid, true
	case "cashout":
		if len(parts) != 3 {
			return "", 0, 0, 0, false
		}
		uid, err := common.ParseUserID(parts[2])
		if err != nil {
			return "", 0, 0, 0, false
		}
		return "cashout", 0, 0, uid, true
	}
	return "", 0, 0, 0, false
}

func boardComponents(sess *session) []discordgo.MessageComponent {
	g := sess.game
	finished := g.State() != StatePlaying

	var rows []discordgo.MessageComponent
	for row := 0; row < gridSize; row++ {
		actionRow := &discordgo.ActionsRow{}
		for col := 0; col < gridSize; col++ {
			button := &discordgo.Button{
				CustomID: tileID(sess.userID, row, col),
				Style:    discordgo.SecondaryButton,
				Label:    "·",
				Disabled: finished || g.Revealed(row, col),
			}
			switch {
			case g.Revealed(row, col) && g.IsMine(row, col):
				button.Label = "💥"
				button.Style = discordgo.DangerButton
			case g.Revealed(row, col):
				button.Label = "💎"
				button.Style = discordgo.SuccessButton
			case finished && g.IsMine(row, col):
				button.Label = "💣"
			}
			actionRow.Components = append(actionRow.Components, button)
		}
		rows = append(rows, actionRow)
	}

	rows = append(rows, &discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			&discordgo.Button{
				CustomID: cashoutID(sess.userID),
				Label:    fmt.Sprintf("Cash out (%.2fx)", g.Multiplier()),
				Style:    discordgo.SuccessButton,
				Disabled: finished || g.Gems() == 0,
			},
		},
	})

	return rows
}

func gameEmbed(sess *session, payout int64) *discordgo.MessageEmbed {
	g := sess.game

	embed := &discordgo.MessageEmbed{
		Title: "💣 Minesweeper",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Bet", Value: common.FormatCoins(g.Bet) + " coins", Inline: true},
			{Name: "Mines", Value: fmt.Sprintf("%d", g.Mines), Inline: true},
			{Name: "Multiplier", Value: fmt.Sprintf("%.2fx", g.Multiplier()), Inline: true},
		},
	}

	switch g.State() {
	case StateLost:
		embed.Color = 0xED4245
		embed.Description = fmt.Sprintf("💥 You hit a mine and lost **%s** coins.", common.FormatCoins(g.Bet))
	case StateCashed, StateFinished:
		embed.Color = 0x57F287
		embed.Description = fmt.Sprintf("🎉 Cashed out for **%s** coins!", common.FormatCoins(payout))
	default:
		embed.Description = "Reveal tiles to raise your multiplier. Cash out before you hit a mine."
	}

	return embed
}
