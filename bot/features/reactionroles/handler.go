package reactionroles

import (
	"context"
	"fmt"

	"github.com/harrywsong/studiobot-sub000/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleCommand handles /reaction-roles bind|unbind|show
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
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

	switch options[0].Name {
	case "bind":
		f.handleBind(s, i, guildID, options[0].Options)
	case "unbind":
		f.handleUnbind(s, i, guildID, options[0].Options)
	case "show":
		f.handleShow(s, i, guildID)
	}
}

func (f *Feature) handleBind(s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var messageID, emoji string
	var role *discordgo.Role
	for _, opt := range opts {
		switch opt.Name {
		case "message_id":
			messageID = opt.StringValue()
		case "emoji":
			emoji = opt.StringValue()
		case "role":
			role = opt.RoleValue(s, i.GuildID)
		}
	}
	if messageID == "" || emoji == "" || role == nil {
		common.RespondWithError(s, i, "Provide a message ID, an emoji, and a role.")
		return
	}
	roleID, err := common.ParseUserID(role.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	mappings, err := f.configs.ReactionRoles(ctx, guildID)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to load reaction role mappings")
		common.RespondWithError(s, i, "Unable to update bindings. Please try again.")
		return
	}
	mapping := mappings[messageID]
	if mapping == nil {
		mapping = make(map[string]int64)
	}
	mapping[emoji] = roleID

	if err := f.configs.SetReactionRoles(ctx, guildID, messageID, mapping); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "message_id": messageID, "error": err}).Error("Failed to save reaction role binding")
		common.RespondWithError(s, i, "Unable to update bindings. Please try again.")
		return
	}

	// Remember the channel so ready resyncs can find the message again
	if err := f.configs.SetSetting(ctx, guildID, reactionChannelKey(messageID), i.ChannelID); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "message_id": messageID, "error": err}).Warn("Failed to remember reaction channel")
	}

	// Seed the reaction so members have something to click
	if err := s.MessageReactionAdd(i.ChannelID, messageID, emoji); err != nil {
		log.WithFields(log.Fields{"message_id": messageID, "emoji": emoji, "error": err}).Warn("Failed to seed reaction")
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf(
		"Reacting with %s on that message now grants <@&%s>.", emoji, role.ID), true); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to confirm binding")
	}
}

func (f *Feature) handleUnbind(s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	var messageID string
	for _, opt := range opts {
		if opt.Name == "message_id" {
			messageID = opt.StringValue()
		}
	}
	if messageID == "" {
		common.RespondWithError(s, i, "Provide a message ID.")
		return
	}

	if err := f.configs.SetReactionRoles(ctx, guildID, messageID, nil); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "message_id": messageID, "error": err}).Error("Failed to remove reaction role bindings")
		common.RespondWithError(s, i, "Unable to update bindings. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, "All bindings removed for that message.", true); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to confirm unbind")
	}
}

func (f *Feature) handleShow(s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64) {
	ctx := context.Background()

	mappings, err := f.configs.ReactionRoles(ctx, guildID)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to load reaction role mappings")
		common.RespondWithError(s, i, "Unable to load bindings. Please try again.")
		return
	}
	if len(mappings) == 0 {
		common.RespondWithError(s, i, "No reaction roles are configured.")
		return
	}

	var rows [][]string
	for messageID, mapping := range mappings {
		for emoji, roleID := range mapping {
			rows = append(rows, []string{messageID, emoji, common.FormatUserID(roleID)})
		}
	}
	table := common.RenderTable([]string{"Message", "Emoji", "Role ID"}, rows)

	if err := common.RespondWithContent(s, i, table, true); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to send bindings")
	}
}
