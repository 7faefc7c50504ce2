package xp

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/cache"
	"github.com/harrywsong/studiobot-sub000/events"
	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/harrywsong/studiobot-sub000/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	messageXPMin      = 15
	messageXPMax      = 25
	messageXPCooldown = time.Minute

	voiceXPPerMinute        = 1
	boostedVoiceXPPerMinute = 2

	leaderboardTTL = time.Minute
)

// Feature awards XP for chat and voice activity and exposes rank lookups
type Feature struct {
	xp        service.XPService
	configs   service.GuildConfigService
	gameCache *cache.Cache
}

// New creates the XP feature
func New(xp service.XPService, configs service.GuildConfigService, gameCache *cache.Cache) *Feature {
	return &Feature{
		xp:        xp,
		configs:   configs,
		gameCache: gameCache,
	}
}

// HandleMessage grants XP for a chat message, rate limited per user
func (f *Feature) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	ctx := context.Background()
	guildID, err := common.ParseUserID(m.GuildID)
	if err != nil {
		return
	}
	userID, err := common.ParseUserID(m.Author.ID)
	if err != nil {
		return
	}

	ok, err := f.gameCache.AcquireCooldown(ctx, guildID, userID, "message_xp", messageXPCooldown)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Warn("Failed to check XP cooldown")
	}
	if !ok {
		return
	}

	amount := int64(messageXPMin + rand.Intn(messageXPMax-messageXPMin+1))
	if _, err := f.xp.AwardXP(ctx, guildID, userID, amount, "message"); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to award message XP")
	}
}

// AwardVoiceTick grants a minute of voice XP to one user. Server boosters
// earn double.
func (f *Feature) AwardVoiceTick(ctx context.Context, guildID, userID int64, boosted bool) {
	amount := int64(voiceXPPerMinute)
	if boosted {
		amount = boostedVoiceXPPerMinute
	}
	if _, err := f.xp.AwardVoiceXP(ctx, guildID, userID, amount); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to award voice XP")
	}
}

// AnnounceLevelUp posts a level-up message to the guild's configured channel
func (f *Feature) AnnounceLevelUp(ctx context.Context, s *discordgo.Session, e events.LevelUpEvent) {
	channelID := f.configs.GetChannelID(ctx, e.GuildID, models.ChannelLevelUp)
	if channelID == 0 {
		return
	}

	content := fmt.Sprintf("🎉 <@%s> reached **level %d**!", common.FormatUserID(e.UserID), e.NewLevel)
	if _, err := s.ChannelMessageSend(common.FormatUserID(channelID), content); err != nil {
		log.WithFields(log.Fields{"guild_id": e.GuildID, "channel_id": channelID, "error": err}).Error("Failed to announce level up")
	}
}
