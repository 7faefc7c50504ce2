package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/harrywsong/studiobot-sub000/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) guildID(s *discordgo.Session, i *discordgo.InteractionCreate) (int64, bool) {
	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		common.RespondWithError(s, i, "This command only works in a server.")
		return 0, false
	}
	return guildID, true
}

func (f *Feature) handleChannel(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	guildID, ok := f.guildID(s, i)
	if !ok {
		return
	}

	var key string
	var channel *discordgo.Channel
	for _, opt := range opts {
		switch opt.Name {
		case "key":
			key = opt.StringValue()
		case "channel":
			channel = opt.ChannelValue(s)
		}
	}
	if !validKey(key, channelKeys) {
		common.RespondWithError(s, i, fmt.Sprintf("Unknown channel key. One of: %s", strings.Join(channelKeys, ", ")))
		return
	}
	if channel == nil {
		common.RespondWithError(s, i, "Pick a channel.")
		return
	}
	channelID, err := common.ParseUserID(channel.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if err := f.configs.SetChannel(ctx, guildID, key, channelID, channel.Name); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "key": key, "error": err}).Error("Failed to set channel")
		common.RespondWithError(s, i, "Unable to save the setting. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("`%s` is now <#%s>.", key, channel.ID), true); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to confirm channel setting")
	}
}

func (f *Feature) handleRole(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	guildID, ok := f.guildID(s, i)
	if !ok {
		return
	}

	var key string
	var role *discordgo.Role
	for _, opt := range opts {
		switch opt.Name {
		case "key":
			key = opt.StringValue()
		case "role":
			role = opt.RoleValue(s, i.GuildID)
		}
	}
	if !validKey(key, roleKeys) {
		common.RespondWithError(s, i, fmt.Sprintf("Unknown role key. One of: %s", strings.Join(roleKeys, ", ")))
		return
	}
	if role == nil {
		common.RespondWithError(s, i, "Pick a role.")
		return
	}
	roleID, err := common.ParseUserID(role.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if err := f.configs.SetRole(ctx, guildID, key, roleID, role.Name); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "key": key, "error": err}).Error("Failed to set role")
		common.RespondWithError(s, i, "Unable to save the setting. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("`%s` is now <@&%s>.", key, role.ID), true); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to confirm role setting")
	}
}

func (f *Feature) handleFeature(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	guildID, ok := f.guildID(s, i)
	if !ok {
		return
	}

	var name string
	var enabled bool
	for _, opt := range opts {
		switch opt.Name {
		case "name":
			name = opt.StringValue()
		case "enabled":
			enabled = opt.BoolValue()
		}
	}
	if !validKey(name, featureKeys) {
		common.RespondWithError(s, i, fmt.Sprintf("Unknown feature. One of: %s", strings.Join(featureKeys, ", ")))
		return
	}

	if err := f.configs.SetFeature(ctx, guildID, name, enabled); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "feature": name, "error": err}).Error("Failed to toggle feature")
		common.RespondWithError(s, i, "Unable to save the setting. Please try again.")
		return
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("`%s` is now %s.", name, state), true); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to confirm feature toggle")
	}
}

func (f *Feature) handleSetting(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	guildID, ok := f.guildID(s, i)
	if !ok {
		return
	}

	var key, raw string
	for _, opt := range opts {
		switch opt.Name {
		case "key":
			key = opt.StringValue()
		case "value":
			raw = opt.StringValue()
		}
	}
	if key == "" || raw == "" {
		common.RespondWithError(s, i, "Provide a key and a value.")
		return
	}

	// Numeric values are stored as numbers so games read them directly
	var value any = raw
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		value = n
	}

	if err := f.configs.SetSetting(ctx, guildID, key, value); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "key": key, "error": err}).Error("Failed to save setting")
		common.RespondWithError(s, i, "Unable to save the setting. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("`%s` is now `%s`.", key, raw), true); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to confirm setting")
	}
}

func (f *Feature) handleShow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, ok := f.guildID(s, i)
	if !ok {
		return
	}

	if !f.configs.IsConfigured(ctx, guildID) {
		common.RespondWithError(s, i, "This server hasn't been configured yet.")
		return
	}

	var rows [][]string
	for _, key := range channelKeys {
		if id := f.configs.GetChannelID(ctx, guildID, key); id != 0 {
			rows = append(rows, []string{key, "#" + f.configs.GetChannelName(ctx, guildID, key)})
		}
	}
	for _, key := range roleKeys {
		if id := f.configs.GetRoleID(ctx, guildID, key); id != 0 {
			rows = append(rows, []string{key, "@" + f.configs.GetRoleName(ctx, guildID, key)})
		}
	}
	for _, name := range featureKeys {
		state := "off"
		if f.configs.IsFeatureEnabled(ctx, guildID, name) {
			state = "on"
		}
		rows = append(rows, []string{name, state})
	}

	table := common.RenderTable([]string{"Key", "Value"}, rows)
	if err := common.RespondWithContent(s, i, table, true); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to send config overview")
	}
}

func (f *Feature) handleExport(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, ok := f.guildID(s, i)
	if !ok {
		return
	}

	snapshot, err := f.configs.ExportSnapshot(ctx, guildID)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to export config")
		common.RespondWithError(s, i, "This server hasn't been configured yet.")
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Current configuration snapshot:",
			Flags:   discordgo.MessageFlagsEphemeral,
			Files: []*discordgo.File{{
				Name:        "config.json",
				ContentType: "application/json",
				Reader:      strings.NewReader(string(snapshot)),
			}},
		},
	})
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to send config export")
	}
}

func (f *Feature) handleImport(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	guildID, ok := f.guildID(s, i)
	if !ok {
		return
	}

	var snapshot string
	for _, opt := range opts {
		if opt.Name == "snapshot" {
			snapshot = opt.StringValue()
		}
	}
	if snapshot == "" {
		common.RespondWithError(s, i, "Paste the JSON snapshot to import.")
		return
	}

	if err := f.configs.ImportSnapshot(ctx, guildID, []byte(snapshot)); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to import config")
		common.RespondWithError(s, i, "That snapshot couldn't be applied. Check the JSON and try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, "Configuration imported.", true); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to confirm import")
	}
}
