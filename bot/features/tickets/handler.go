package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/harrywsong/studiobot-sub000/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleCommand handles /ticket-panel
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
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

	if err := f.PostPanel(ctx, s, guildID); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to post ticket panel")
		common.RespondWithError(s, i, "Unable to post the panel. Is a ticket channel configured?")
		return
	}

	if err := common.RespondWithSuccess(s, i, "Ticket panel posted.", true); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to confirm ticket panel")
	}
}

// HandleComponent routes the open and close buttons
func (f *Feature) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.MessageComponentData().CustomID {
	case openButtonID:
		f.handleOpen(s, i)
	case closeButtonID:
		f.handleClose(s, i)
	}
}

func (f *Feature) handleOpen(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		return
	}
	opener := i.Member.User
	userID, err := common.ParseUserID(opener.ID)
	if err != nil {
		return
	}

	if !f.configs.IsFeatureEnabled(ctx, guildID, models.FeatureTicketSystem) {
		common.RespondWithError(s, i, "Tickets are disabled on this server.")
		return
	}

	hasOpen, err := f.tickets.HasOpen(ctx, guildID, userID)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to check open tickets")
		common.RespondWithError(s, i, "Unable to open a ticket. Please try again.")
		return
	}
	if hasOpen {
		common.RespondWithError(s, i, "You already have an open ticket.")
		return
	}

	channel, err := f.createTicketChannel(ctx, s, guildID, opener)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to create ticket channel")
		common.RespondWithError(s, i, "Unable to create the ticket channel. Please try again.")
		return
	}
	channelID, err := common.ParseUserID(channel.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to open a ticket. Please try again.")
		return
	}

	if _, err := f.tickets.Open(ctx, guildID, userID, channelID); err != nil {
		// Roll the channel back so we don't strand an untracked ticket
		if _, delErr := s.ChannelDelete(channel.ID); delErr != nil {
			log.WithFields(log.Fields{"channel_id": channel.ID, "error": delErr}).Error("Failed to delete orphaned ticket channel")
		}
		if errors.Is(err, service.ErrTicketExists) {
			common.RespondWithError(s, i, "You already have an open ticket.")
			return
		}
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to record ticket")
		common.RespondWithError(s, i, "Unable to open a ticket. Please try again.")
		return
	}

	f.greet(s, channel.ID, opener)

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Your ticket is ready: <#%s>", channel.ID), true); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to confirm ticket open")
	}
}

func (f *Feature) handleClose(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		return
	}
	channelID, err := common.ParseUserID(i.ChannelID)
	if err != nil {
		return
	}

	ticket, err := f.tickets.CloseByChannel(ctx, guildID, channelID)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "channel_id": channelID, "error": err}).Error("Failed to close ticket")
		common.RespondWithError(s, i, "This channel isn't an open ticket.")
		return
	}

	if err := common.RespondWithContent(s, i, "🔒 Ticket closed. This channel will be deleted shortly.", false); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to confirm ticket close")
	}

	log.WithFields(log.Fields{
		"guild_id":  guildID,
		"ticket_id": ticket.ID,
		"closed_by": i.Member.User.ID,
	}).Info("Ticket closed")

	// Give readers a moment before the channel disappears
	go func() {
		time.Sleep(5 * time.Second)
		if _, err := s.ChannelDelete(i.ChannelID); err != nil {
			log.WithFields(log.Fields{"channel_id": i.ChannelID, "error": err}).Error("Failed to delete ticket channel")
		}
	}()
}
