package voice

import (
	"context"
	"sync"

	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/harrywsong/studiobot-sub000/service"

	"github.com/bwmarrin/discordgo"
	petname "github.com/dustinkirkland/golang-petname"
	log "github.com/sirupsen/logrus"
)

// Feature manages temporary voice channels. Joining the guild's lobby
// channel spawns a fresh channel owned by the joiner; empty temp channels
// are reaped by a scheduled sweep.
type Feature struct {
	configs service.GuildConfigService

	mu   sync.Mutex
	temp map[string]string // channel ID -> guild ID
}

// New creates the voice feature
func New(configs service.GuildConfigService) *Feature {
	return &Feature{
		configs: configs,
		temp:    make(map[string]string),
	}
}

// HandleVoiceStateUpdate spawns a temp channel when a member enters the lobby
func (f *Feature) HandleVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.UserID == s.State.User.ID || v.ChannelID == "" {
		return
	}

	ctx := context.Background()
	guildID, err := common.ParseUserID(v.GuildID)
	if err != nil {
		return
	}

	if !f.configs.IsFeatureEnabled(ctx, guildID, models.FeatureVoiceChannels) {
		return
	}

	lobbyID := f.configs.GetChannelID(ctx, guildID, models.ChannelVoiceLobby)
	if lobbyID == 0 || v.ChannelID != common.FormatUserID(lobbyID) {
		return
	}

	f.spawnChannel(s, v)
}

func (f *Feature) spawnChannel(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	lobby, err := s.Channel(v.ChannelID)
	if err != nil {
		log.WithFields(log.Fields{"channel_id": v.ChannelID, "error": err}).Error("Failed to look up lobby channel")
		return
	}

	name := petname.Generate(2, "-")
	channel, err := s.GuildChannelCreateComplex(v.GuildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildVoice,
		ParentID: lobby.ParentID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				ID:    v.UserID,
				Type:  discordgo.PermissionOverwriteTypeMember,
				Allow: discordgo.PermissionManageChannels | discordgo.PermissionVoiceMoveMembers,
			},
		},
	})
	if err != nil {
		log.WithFields(log.Fields{"guild_id": v.GuildID, "error": err}).Error("Failed to create temp voice channel")
		return
	}

	f.mu.Lock()
	f.temp[channel.ID] = v.GuildID
	f.mu.Unlock()

	if err := s.GuildMemberMove(v.GuildID, v.UserID, &channel.ID); err != nil {
		log.WithFields(log.Fields{
			"guild_id":   v.GuildID,
			"user_id":    v.UserID,
			"channel_id": channel.ID,
			"error":      err,
		}).Error("Failed to move member into temp channel")
		return
	}

	log.WithFields(log.Fields{
		"guild_id":   v.GuildID,
		"user_id":    v.UserID,
		"channel_id": channel.ID,
		"name":       name,
	}).Info("Spawned temp voice channel")
}

// Sweep deletes temp channels that have gone empty. Wired into the
// scheduler to run every minute.
func (f *Feature) Sweep(s *discordgo.Session) {
	f.mu.Lock()
	tracked := make(map[string]string, len(f.temp))
	for channelID, guildID := range f.temp {
		tracked[channelID] = guildID
	}
	f.mu.Unlock()

	for channelID, guildID := range tracked {
		guild, err := s.State.Guild(guildID)
		if err != nil {
			continue
		}

		occupied := false
		for _, vs := range guild.VoiceStates {
			if vs.ChannelID == channelID {
				occupied = true
				break
			}
		}
		if occupied {
			continue
		}

		if _, err := s.ChannelDelete(channelID); err != nil {
			log.WithFields(log.Fields{"channel_id": channelID, "error": err}).Warn("Failed to delete empty temp channel")
			continue
		}

		f.mu.Lock()
		delete(f.temp, channelID)
		f.mu.Unlock()

		log.WithFields(log.Fields{"guild_id": guildID, "channel_id": channelID}).Info("Reaped empty temp voice channel")
	}
}

// TrackedChannels returns how many temp channels are live
func (f *Feature) TrackedChannels() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.temp)
}
