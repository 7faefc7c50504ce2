package reactionroles

import (
	"context"

	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/harrywsong/studiobot-sub000/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature grants and revokes roles when users react to bound messages
type Feature struct {
	configs service.GuildConfigService
}

// New creates the reaction roles feature
func New(configs service.GuildConfigService) *Feature {
	return &Feature{configs: configs}
}

// reactionSeeder is the slice of the Discord session Resync uses
type reactionSeeder interface {
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
}

// reactionChannelKey names the setting holding a bound message's channel
func reactionChannelKey(messageID string) string {
	return "reaction_channel_" + messageID
}

// Resync re-adds the bot's own reaction to every bound message so members
// always have one to click after a restart. Messages bound before their
// channel was recorded are skipped.
func (f *Feature) Resync(ctx context.Context, s reactionSeeder, guildID int64) {
	mappings, err := f.configs.ReactionRoles(ctx, guildID)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to load reaction role mappings")
		return
	}

	for messageID, mapping := range mappings {
		channelID, ok := f.configs.Setting(ctx, guildID, reactionChannelKey(messageID), "").(string)
		if !ok || channelID == "" {
			continue
		}
		for emoji := range mapping {
			if err := s.MessageReactionAdd(channelID, messageID, emoji); err != nil {
				log.WithFields(log.Fields{
					"guild_id":   guildID,
					"message_id": messageID,
					"emoji":      emoji,
					"error":      err,
				}).Warn("Failed to seed reaction")
			}
		}
	}
}

// roleFor resolves the role bound to a message and emoji, or 0
func (f *Feature) roleFor(ctx context.Context, guildID int64, messageID, emoji string) int64 {
	if !f.configs.IsFeatureEnabled(ctx, guildID, models.FeatureReactionRoles) {
		return 0
	}

	mappings, err := f.configs.ReactionRoles(ctx, guildID)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to load reaction role mappings")
		return 0
	}
	return mappings[messageID][emoji]
}

// HandleReactionAdd grants the bound role
func (f *Feature) HandleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.GuildID == "" || r.UserID == s.State.User.ID {
		return
	}
	guildID, err := common.ParseUserID(r.GuildID)
	if err != nil {
		return
	}

	roleID := f.roleFor(context.Background(), guildID, r.MessageID, r.Emoji.APIName())
	if roleID == 0 {
		return
	}

	if err := s.GuildMemberRoleAdd(r.GuildID, r.UserID, common.FormatUserID(roleID)); err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"user_id":  r.UserID,
			"role_id":  roleID,
			"error":    err,
		}).Error("Failed to grant reaction role")
	}
}

// HandleReactionRemove revokes the bound role
func (f *Feature) HandleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.GuildID == "" || r.UserID == s.State.User.ID {
		return
	}
	guildID, err := common.ParseUserID(r.GuildID)
	if err != nil {
		return
	}

	roleID := f.roleFor(context.Background(), guildID, r.MessageID, r.Emoji.APIName())
	if roleID == 0 {
		return
	}

	if err := s.GuildMemberRoleRemove(r.GuildID, r.UserID, common.FormatUserID(roleID)); err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"user_id":  r.UserID,
			"role_id":  roleID,
			"error":    err,
		}).Error("Failed to revoke reaction role")
	}
}
