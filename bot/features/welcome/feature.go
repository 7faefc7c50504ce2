package welcome

import (
	"context"
	"fmt"

	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/harrywsong/studiobot-sub000/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature greets new members in the guild's configured welcome channel
type Feature struct {
	configs service.GuildConfigService
}

// New creates the welcome feature
func New(configs service.GuildConfigService) *Feature {
	return &Feature{configs: configs}
}

// HandleMemberAdd posts a greeting when someone joins
func (f *Feature) HandleMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}

	ctx := context.Background()
	guildID, err := common.ParseUserID(m.GuildID)
	if err != nil {
		return
	}

	if !f.configs.IsFeatureEnabled(ctx, guildID, models.FeatureWelcomeMessages) {
		return
	}
	channelID := f.configs.GetChannelID(ctx, guildID, models.ChannelWelcome)
	if channelID == 0 {
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "👋 Welcome!",
		Description: fmt.Sprintf("Welcome to the server, <@%s>! Say hi and check out the channels.", m.User.ID),
		Color:       0x57F287,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: m.User.AvatarURL("128")},
	}
	if _, err := s.ChannelMessageSendEmbed(common.FormatUserID(channelID), embed); err != nil {
		log.WithFields(log.Fields{
			"guild_id":   guildID,
			"channel_id": channelID,
			"error":      err,
		}).Error("Failed to send welcome message")
	}
}
