package tickets

import (
	"context"
	"fmt"

	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/harrywsong/studiobot-sub000/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	openButtonID  = "ticket_open"
	closeButtonID = "ticket_close"

	panelMessageSetting = "ticket_panel_message_id"
)

// panelPoster is the slice of the Discord session the panel flow uses
type panelPoster interface {
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Feature runs the support ticket system: a panel with an open button,
// one private channel per ticket, and a close button inside it.
type Feature struct {
	tickets service.TicketService
	configs service.GuildConfigService
}

// New creates the ticket feature
func New(tickets service.TicketService, configs service.GuildConfigService) *Feature {
	return &Feature{
		tickets: tickets,
		configs: configs,
	}
}

// PostPanel sends the ticket panel to a guild's configured ticket channel
// and remembers the message so restarts can find it again.
func (f *Feature) PostPanel(ctx context.Context, s panelPoster, guildID int64) error {
	channelID := f.configs.GetChannelID(ctx, guildID, models.ChannelTicket)
	if channelID == 0 {
		return fmt.Errorf("no ticket channel configured for guild %d", guildID)
	}

	msg, err := s.ChannelMessageSendComplex(common.FormatUserID(channelID), &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "🎫 Support",
			Description: "Need help? Press the button below to open a private ticket with the staff team.",
			Color:       0x5865F2,
		}},
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					&discordgo.Button{
						CustomID: openButtonID,
						Label:    "Open a ticket",
						Style:    discordgo.PrimaryButton,
						Emoji:    &discordgo.ComponentEmoji{Name: "🎫"},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to post ticket panel: %w", err)
	}

	if err := f.configs.SetSetting(ctx, guildID, panelMessageSetting, msg.ID); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Warn("Failed to remember ticket panel message")
	}
	return nil
}

// EnsurePanel reposts the panel when the remembered message is gone.
// Runs on ready so panels survive channel purges and downtime. Guilds
// without a ticket channel are skipped.
func (f *Feature) EnsurePanel(ctx context.Context, s panelPoster, guildID int64) error {
	channelID := f.configs.GetChannelID(ctx, guildID, models.ChannelTicket)
	if channelID == 0 {
		return nil
	}

	if messageID, ok := f.configs.Setting(ctx, guildID, panelMessageSetting, "").(string); ok && messageID != "" {
		if _, err := s.ChannelMessage(common.FormatUserID(channelID), messageID); err == nil {
			return nil
		}
	}
	return f.PostPanel(ctx, s, guildID)
}

// createTicketChannel opens a private channel visible to the opener, the
// staff role, and the bot.
func (f *Feature) createTicketChannel(ctx context.Context, s *discordgo.Session, guildID int64, opener *discordgo.User) (*discordgo.Channel, error) {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   common.FormatUserID(guildID),
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    opener.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory,
		},
		{
			ID:    s.State.User.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionManageChannels,
		},
	}
	if staffRole := f.configs.GetRoleID(ctx, guildID, models.RoleStaff); staffRole != 0 {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    common.FormatUserID(staffRole),
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory,
		})
	}

	create := discordgo.GuildChannelCreateData{
		Name:                 fmt.Sprintf("ticket-%s", opener.Username),
		Type:                 discordgo.ChannelTypeGuildText,
		PermissionOverwrites: overwrites,
	}
	if category := f.configs.GetChannelID(ctx, guildID, models.ChannelTicketCat); category != 0 {
		create.ParentID = common.FormatUserID(category)
	}

	channel, err := s.GuildChannelCreateComplex(common.FormatUserID(guildID), create)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket channel: %w", err)
	}
	return channel, nil
}

// greet posts the opening message with the close button inside the ticket
func (f *Feature) greet(s *discordgo.Session, channelID string, opener *discordgo.User) {
	_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s> describe your issue and staff will be with you shortly.", opener.ID),
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					&discordgo.Button{
						CustomID: closeButtonID,
						Label:    "Close ticket",
						Style:    discordgo.DangerButton,
						Emoji:    &discordgo.ComponentEmoji{Name: "🔒"},
					},
				},
			},
		},
	})
	if err != nil {
		log.WithFields(log.Fields{"channel_id": channelID, "error": err}).Error("Failed to greet ticket channel")
	}
}
