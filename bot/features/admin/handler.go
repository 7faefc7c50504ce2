package admin

import (
	"context"
	"fmt"

	"github.com/harrywsong/studiobot-sub000/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const maxClearMessages = 100

func (f *Feature) handleWarn(s *discordgo.Session, i *discordgo.InteractionCreate) {
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
	moderatorID, err := common.ParseUserID(i.Member.User.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var target *discordgo.User
	var reason string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			target = opt.UserValue(s)
		case "reason":
			reason = opt.StringValue()
		}
	}
	if target == nil || reason == "" {
		common.RespondWithError(s, i, "Pick a user and give a reason.")
		return
	}
	userID, err := common.ParseUserID(target.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	warning, err := f.moderation.Warn(ctx, guildID, userID, moderatorID, reason)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to record warning")
		common.RespondWithError(s, i, "Unable to record the warning. Please try again.")
		return
	}

	warnings, err := f.moderation.Warnings(ctx, guildID, userID)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to count warnings")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "⚠️ Warning issued",
		Description: fmt.Sprintf("<@%s> was warned by <@%s>.", target.ID, i.Member.User.ID),
		Color:       0xFEE75C,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Reason", Value: warning.Reason},
			{Name: "Total warnings", Value: fmt.Sprintf("%d", len(warnings)), Inline: true},
		},
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to send warn response")
	}
}

func (f *Feature) handleWarnings(s *discordgo.Session, i *discordgo.InteractionCreate) {
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

	var target *discordgo.User
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			target = opt.UserValue(s)
		}
	}
	if target == nil {
		common.RespondWithError(s, i, "Pick a user.")
		return
	}
	userID, err := common.ParseUserID(target.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	warnings, err := f.moderation.Warnings(ctx, guildID, userID)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to load warnings")
		common.RespondWithError(s, i, "Unable to load warnings. Please try again.")
		return
	}
	if len(warnings) == 0 {
		common.RespondWithError(s, i, "They have no warnings.")
		return
	}

	rows := make([][]string, 0, len(warnings))
	for _, w := range warnings {
		rows = append(rows, []string{
			w.CreatedAt.Format("2006-01-02"),
			common.GetDisplayNameInt64(s, i.GuildID, w.ModeratorID),
			w.Reason,
		})
	}
	table := common.RenderTable([]string{"Date", "Moderator", "Reason"}, rows)

	if err := common.RespondWithContent(s, i, table, true); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to send warnings")
	}
}

func (f *Feature) handleClear(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsUserAdmin(i) {
		common.RespondWithError(s, i, "You need the Manage Server permission to do that.")
		return
	}

	var count int64
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "count" {
			count = opt.IntValue()
		}
	}
	if count <= 0 || count > maxClearMessages {
		common.RespondWithError(s, i, fmt.Sprintf("Count must be between 1 and %d.", maxClearMessages))
		return
	}

	messages, err := s.ChannelMessages(i.ChannelID, int(count), "", "", "")
	if err != nil {
		log.WithFields(log.Fields{"channel_id": i.ChannelID, "error": err}).Error("Failed to list messages")
		common.RespondWithError(s, i, "Unable to fetch messages. Please try again.")
		return
	}

	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
	}
	if err := s.ChannelMessagesBulkDelete(i.ChannelID, ids); err != nil {
		log.WithFields(log.Fields{"channel_id": i.ChannelID, "error": err}).Error("Failed to bulk delete messages")
		common.RespondWithError(s, i, "Unable to delete messages. Messages older than two weeks can't be bulk deleted.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Deleted %d messages.", len(ids)), true); err != nil {
		log.WithField("error", err).Error("Failed to confirm message clear")
	}
}
