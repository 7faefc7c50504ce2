package crash

import (
	"fmt"
	"strings"

	"github.com/harrywsong/studiobot-sub000/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func gameComponents(running bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		&discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				&discordgo.Button{
					CustomID: "crash_join",
					Label:    "Join",
					Style:    discordgo.PrimaryButton,
					Disabled: running,
				},
				&discordgo.Button{
					CustomID: "crash_start",
					Label:    "Start now",
					Style:    discordgo.SecondaryButton,
					Disabled: running,
				},
				&discordgo.Button{
					CustomID: "crash_cashout",
					Label:    "Cash out",
					Style:    discordgo.SuccessButton,
					Disabled: !running,
				},
			},
		},
	}
}

func (f *Feature) playerLines(s *discordgo.Session, guildID string, r *round) string {
	var b strings.Builder
	for userID, p := range r.game.Snapshot() {
		name := common.GetDisplayNameInt64(s, guildID, userID)
		if p.CashedOut {
			fmt.Fprintf(&b, "✅ %s — %s coins @ %.2fx\n", name, common.FormatCoins(p.Bet), p.CashOutMultiplier)
		} else {
			fmt.Fprintf(&b, "🎲 %s — %s coins\n", name, common.FormatCoins(p.Bet))
		}
	}
	if b.Len() == 0 {
		return "No players yet"
	}
	return b.String()
}

func (f *Feature) waitingEmbed(s *discordgo.Session, guildID string, r *round) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🚀 Crash",
		Description: "A new round is open! Join within 30 seconds.",
		Color:       0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Players", Value: f.playerLines(s, guildID, r)},
		},
	}
}

func (f *Feature) runningEmbed(s *discordgo.Session, guildID string, r *round) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🚀 Crash",
		Description: fmt.Sprintf("# %.2fx", r.game.Multiplier()),
		Color:       0x57F287,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Players", Value: f.playerLines(s, guildID, r)},
		},
	}
}

func (f *Feature) finalEmbed(s *discordgo.Session, guildID string, r *round) *discordgo.MessageEmbed {
	description := fmt.Sprintf("💥 Crashed at **%.2fx**", r.game.CrashPoint())
	if !r.game.Started() {
		description = "Round cancelled, nobody joined in time."
	}
	return &discordgo.MessageEmbed{
		Title:       "🚀 Crash — round over",
		Description: description,
		Color:       0xED4245,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Results", Value: f.playerLines(s, guildID, r)},
		},
	}
}

func (f *Feature) render(s *discordgo.Session, guildID int64, r *round) {
	if r.messageID == "" {
		return
	}
	guild := fmt.Sprintf("%d", guildID)
	embed := f.runningEmbed(s, guild, r)
	if !r.game.Started() {
		embed = f.waitingEmbed(s, guild, r)
	}
	f.edit(s, guildID, r, embed, gameComponents(r.game.Started()))
}

func (f *Feature) renderFinal(s *discordgo.Session, guildID int64, r *round) {
	if r.messageID == "" {
		return
	}
	embed := f.finalEmbed(s, fmt.Sprintf("%d", guildID), r)
	f.edit(s, guildID, r, embed, common.DisableComponents(gameComponents(true)))
}

func (f *Feature) edit(s *discordgo.Session, guildID int64, r *round, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    r.channelID,
		ID:         r.messageID,
		Embeds:     &[]*discordgo.MessageEmbed{embed},
		Components: &components,
	})
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"error":    err,
		}).Warn("Failed to update crash game message")
	}
}
