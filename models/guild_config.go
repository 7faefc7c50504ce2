package models

import "time"

// Channel keys used by features when resolving a guild's configured channels.
const (
	ChannelLog          = "log_channel"
	ChannelWelcome      = "welcome_channel"
	ChannelAnnouncement = "announcement_channel"
	ChannelLevelUp      = "level_up_channel"
	ChannelTicket       = "ticket_channel"
	ChannelTicketCat    = "ticket_category"
	ChannelVoiceLobby   = "lobby_channel"
	ChannelScrim        = "scrim_channel"
)

// Role keys.
const (
	RoleStaff    = "staff_role"
	RoleVerified = "verified_role"
)

// Feature flags.
const (
	FeatureWelcomeMessages = "welcome_messages"
	FeatureAchievements    = "achievements"
	FeatureTicketSystem    = "ticket_system"
	FeatureVoiceChannels   = "voice_channels"
	FeatureCasinoGames     = "casino_games"
	FeatureMessageHistory  = "message_history"
	FeatureReactionRoles   = "reaction_roles"
)

// ChannelRef identifies a configured Discord channel. The name is stored
// alongside the ID so admin views stay readable after a channel is renamed.
type ChannelRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RoleRef identifies a configured Discord role.
type RoleRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GuildConfig is the per-guild configuration record backing every feature
// gate, channel lookup, and tunable setting in the bot. One row per guild.
type GuildConfig struct {
	GuildID   int64  `json:"guild_id"`
	GuildName string `json:"guild_name"`

	Channels map[string]ChannelRef `json:"channels"`
	Roles    map[string]RoleRef    `json:"roles"`
	Features map[string]bool       `json:"features"`
	Settings map[string]any        `json:"settings"`

	// ReactionRoles maps message ID -> emoji -> role ID.
	ReactionRoles map[string]map[string]int64 `json:"reaction_roles"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// NewGuildConfig returns a config seeded with the default feature set and
// settings applied when a guild is first configured.
func NewGuildConfig(guildID int64, guildName string) *GuildConfig {
	return &GuildConfig{
		GuildID:   guildID,
		GuildName: guildName,
		Channels:  make(map[string]ChannelRef),
		Roles:     make(map[string]RoleRef),
		Features: map[string]bool{
			FeatureWelcomeMessages: true,
			FeatureAchievements:    true,
			FeatureTicketSystem:    true,
			FeatureVoiceChannels:   true,
			FeatureCasinoGames:     true,
			FeatureMessageHistory:  true,
			FeatureReactionRoles:   true,
		},
		Settings: map[string]any{
			"starting_coins": float64(200),
		},
		ReactionRoles: make(map[string]map[string]int64),
	}
}

// EnsureMaps initializes any nil maps so lookups and writes are always safe,
// e.g. after scanning a partially populated row.
func (c *GuildConfig) EnsureMaps() {
	if c.Channels == nil {
		c.Channels = make(map[string]ChannelRef)
	}
	if c.Roles == nil {
		c.Roles = make(map[string]RoleRef)
	}
	if c.Features == nil {
		c.Features = make(map[string]bool)
	}
	if c.Settings == nil {
		c.Settings = make(map[string]any)
	}
	if c.ReactionRoles == nil {
		c.ReactionRoles = make(map[string]map[string]int64)
	}
}
