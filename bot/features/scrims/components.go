package scrims

import (
	"fmt"
	"strings"

	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/models"

	"github.com/bwmarrin/discordgo"
)

const (
	createModalID = "scrim_create_modal"

	joinPrefix   = "scrim_join_"
	leavePrefix  = "scrim_leave_"
	cancelPrefix = "scrim_cancel_"
)

func scrimEmbed(scrim *models.Scrim) *discordgo.MessageEmbed {
	var players strings.Builder
	for idx, userID := range scrim.Players {
		fmt.Fprintf(&players, "%d. <@%s>\n", idx+1, common.FormatUserID(userID))
	}
	if players.Len() == 0 {
		players.WriteString("Nobody yet")
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Starts", Value: common.FormatDiscordTimestamp(scrim.StartsAt, "f"), Inline: true},
		{Name: "Format", Value: fmt.Sprintf("%dv%d", scrim.TeamSize, scrim.TeamSize), Inline: true},
		{
			Name:   fmt.Sprintf("Players (%d/%d)", len(scrim.Players), scrim.Capacity()),
			Value:  players.String(),
			Inline: false,
		},
	}

	if len(scrim.Queue) > 0 {
		var queue strings.Builder
		for idx, userID := range scrim.Queue {
			fmt.Fprintf(&queue, "%d. <@%s>\n", idx+1, common.FormatUserID(userID))
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Queue (%d)", len(scrim.Queue)),
			Value: queue.String(),
		})
	}

	color := 0x5865F2
	if scrim.IsFull() {
		color = 0x57F287
	}

	return &discordgo.MessageEmbed{
		Title:  "⚔️ " + scrim.Title,
		Color:  color,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Organized by %s", common.FormatUserID(scrim.CreatedBy)),
		},
	}
}

func scrimComponents(scrim *models.Scrim) []discordgo.MessageComponent {
	joinLabel := "Join"
	if scrim.IsFull() {
		joinLabel = "Join queue"
	}

	return []discordgo.MessageComponent{
		&discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				&discordgo.Button{
					CustomID: joinPrefix + scrim.ID,
					Label:    joinLabel,
					Style:    discordgo.SuccessButton,
				},
				&discordgo.Button{
					CustomID: leavePrefix + scrim.ID,
					Label:    "Leave",
					Style:    discordgo.SecondaryButton,
				},
				&discordgo.Button{
					CustomID: cancelPrefix + scrim.ID,
					Label:    "Cancel",
					Style:    discordgo.DangerButton,
				},
			},
		},
	}
}

// render refreshes the scrim's posted message
func render(s *discordgo.Session, scrim *models.Scrim) error {
	channelID := common.FormatUserID(scrim.ChannelID)
	messageID := common.FormatUserID(scrim.MessageID)
	components := scrimComponents(scrim)

	_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Embeds:     &[]*discordgo.MessageEmbed{scrimEmbed(scrim)},
		Components: &components,
	})
	return err
}

func createModal() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: createModalID,
			Title:    "Organize a scrim",
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						&discordgo.TextInput{
							CustomID:    "title",
							Label:       "Title",
							Style:       discordgo.TextInputShort,
							Placeholder: "Tuesday practice",
							Required:    true,
							MaxLength:   100,
						},
					},
				},
				&discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						&discordgo.TextInput{
							CustomID:    "start",
							Label:       "Start time (21:30 or 2h30m)",
							Style:       discordgo.TextInputShort,
							Placeholder: "21:30",
							Required:    true,
							MaxLength:   20,
						},
					},
				},
				&discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						&discordgo.TextInput{
							CustomID:    "team_size",
							Label:       "Team size",
							Style:       discordgo.TextInputShort,
							Placeholder: "5",
							Required:    true,
							MaxLength:   2,
						},
					},
				},
			},
		},
	}
}
