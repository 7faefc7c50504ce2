package scrims

import (
	"strconv"
	"strings"
	"time"

	"github.com/harrywsong/studiobot-sub000/bot/common"
	"github.com/harrywsong/studiobot-sub000/models"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/xid"
	log "github.com/sirupsen/logrus"
)

// HandleCommand handles /scrim by opening the creation modal
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		common.RespondWithError(s, i, "This command only works in a server.")
		return
	}
	if err := s.InteractionRespond(i.Interaction, createModal()); err != nil {
		log.WithField("error", err).Error("Failed to open scrim modal")
	}
}

// HandleModal handles the scrim creation modal submit
func (f *Feature) HandleModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionModalSubmit {
		return
	}
	data := i.ModalSubmitData()
	if data.CustomID != createModalID {
		return
	}

	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		common.RespondWithError(s, i, "This command only works in a server.")
		return
	}
	creatorID, err := common.ParseUserID(i.Member.User.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var title, start, teamSizeRaw string
	for _, row := range data.Components {
		actionRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionRow.Components {
			input, ok := comp.(*discordgo.TextInput)
			if !ok {
				continue
			}
			switch input.CustomID {
			case "title":
				title = strings.TrimSpace(input.Value)
			case "start":
				start = input.Value
			case "team_size":
				teamSizeRaw = strings.TrimSpace(input.Value)
			}
		}
	}

	startsAt, err := parseStartTime(start, time.Now())
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}
	teamSize, err := strconv.Atoi(teamSizeRaw)
	if err != nil || teamSize < minTeamSize || teamSize > maxTeamSize {
		common.RespondWithError(s, i, "Team size must be a number between 1 and 10.")
		return
	}

	channelID, err := common.ParseUserID(i.ChannelID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	scrim := &models.Scrim{
		ID:        xid.New().String(),
		GuildID:   guildID,
		ChannelID: channelID,
		Title:     title,
		StartsAt:  startsAt,
		TeamSize:  teamSize,
		Players:   []int64{creatorID},
		CreatedBy: creatorID,
		CreatedAt: time.Now(),
	}

	if err := common.RespondWithEmbed(s, i, scrimEmbed(scrim), scrimComponents(scrim), false); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to post scrim")
		return
	}

	// The posted message backs the join and leave buttons, so capture its ID
	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to fetch scrim message")
		return
	}
	if scrim.MessageID, err = common.ParseUserID(msg.ID); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to parse scrim message ID")
		return
	}

	if err := f.store.Save(scrim); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "scrim_id": scrim.ID, "error": err}).Error("Failed to save scrim")
	}
}

// HandleComponent routes the join, leave, and cancel buttons
func (f *Feature) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := i.MessageComponentData().CustomID

	userID, err := common.ParseUserID(i.Member.User.ID)
	if err != nil {
		return
	}

	switch {
	case strings.HasPrefix(customID, joinPrefix):
		f.handleJoin(s, i, strings.TrimPrefix(customID, joinPrefix), userID)
	case strings.HasPrefix(customID, leavePrefix):
		f.handleLeave(s, i, strings.TrimPrefix(customID, leavePrefix), userID)
	case strings.HasPrefix(customID, cancelPrefix):
		f.handleCancel(s, i, strings.TrimPrefix(customID, cancelPrefix), userID)
	}
}

func (f *Feature) handleJoin(s *discordgo.Session, i *discordgo.InteractionCreate, scrimID string, userID int64) {
	scrim, already, filled, err := f.join(scrimID, userID)
	if err != nil {
		log.WithFields(log.Fields{"scrim_id": scrimID, "user_id": userID, "error": err}).Error("Failed to join scrim")
		common.RespondWithError(s, i, "This scrim no longer exists.")
		return
	}
	if already {
		common.RespondWithError(s, i, "You're already in this scrim.")
		return
	}

	if err := common.UpdateComponentMessage(s, i, scrimEmbed(scrim), scrimComponents(scrim)); err != nil {
		log.WithFields(log.Fields{"scrim_id": scrimID, "error": err}).Error("Failed to update scrim message")
	}

	if filled {
		content := "🔥 **" + scrim.Title + "** is full!"
		if _, err := s.ChannelMessageSend(i.ChannelID, content); err != nil {
			log.WithFields(log.Fields{"scrim_id": scrimID, "error": err}).Warn("Failed to announce full scrim")
		}
	}
}

func (f *Feature) handleLeave(s *discordgo.Session, i *discordgo.InteractionCreate, scrimID string, userID int64) {
	scrim, removed, promoted, err := f.leave(scrimID, userID)
	if err != nil {
		log.WithFields(log.Fields{"scrim_id": scrimID, "user_id": userID, "error": err}).Error("Failed to leave scrim")
		common.RespondWithError(s, i, "This scrim no longer exists.")
		return
	}
	if !removed {
		common.RespondWithError(s, i, "You're not in this scrim.")
		return
	}

	if err := common.UpdateComponentMessage(s, i, scrimEmbed(scrim), scrimComponents(scrim)); err != nil {
		log.WithFields(log.Fields{"scrim_id": scrimID, "error": err}).Error("Failed to update scrim message")
	}

	if promoted != 0 {
		content := "⬆️ <@" + common.FormatUserID(promoted) + "> was promoted from the queue into **" + scrim.Title + "**."
		if _, err := s.ChannelMessageSend(i.ChannelID, content); err != nil {
			log.WithFields(log.Fields{"scrim_id": scrimID, "error": err}).Warn("Failed to announce queue promotion")
		}
	}
}

func (f *Feature) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate, scrimID string, userID int64) {
	scrim, err := f.store.Get(scrimID)
	if err != nil || scrim == nil {
		common.RespondWithError(s, i, "This scrim no longer exists.")
		return
	}
	if scrim.CreatedBy != userID && !common.IsUserAdmin(i) {
		common.RespondWithError(s, i, "Only the organizer can cancel this scrim.")
		return
	}

	if err := f.store.Delete(scrimID); err != nil {
		log.WithFields(log.Fields{"scrim_id": scrimID, "error": err}).Error("Failed to delete scrim")
		common.RespondWithError(s, i, "Unable to cancel the scrim. Please try again.")
		return
	}

	embed := scrimEmbed(scrim)
	embed.Color = 0xED4245
	embed.Description = "❌ Cancelled by the organizer."
	if err := common.UpdateComponentMessage(s, i, embed, common.DisableComponents(scrimComponents(scrim))); err != nil {
		log.WithFields(log.Fields{"scrim_id": scrimID, "error": err}).Error("Failed to update cancelled scrim")
	}
}
