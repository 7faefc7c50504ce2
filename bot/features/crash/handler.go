package crash

import (
	"context"
	"fmt"

	"github.com/harrywsong/studiobot-sub000/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleCrash(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		common.RespondWithError(s, i, "This command only works in a server.")
		return
	}
	userID, err := common.ParseUserID(i.Member.User.ID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if !f.bets.Gate(ctx, s, i, guildID) {
		return
	}
	if !f.bets.CooldownGate(ctx, s, i, guildID, userID, gameName) {
		return
	}

	var bet int64
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "bet" {
			bet = opt.IntValue()
		}
	}

	if err := f.bets.ValidateBet(ctx, guildID, bet, "crash_min_bet", "crash_max_bet", defaultMinBet, defaultMaxBet); err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	if existing := f.activeRound(guildID); existing != nil && !existing.game.Over() {
		common.RespondWithError(s, i, "A crash round is already running. Join it with the button on the game message.")
		return
	}

	ok, err := f.bets.Debit(ctx, guildID, userID, bet, gameName)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to debit crash bet")
		common.RespondWithError(s, i, "Unable to place bet. Please try again.")
		return
	}
	if !ok {
		common.RespondWithError(s, i, "You don't have enough coins for that bet.")
		return
	}

	minCashout := f.bets.FloatSetting(ctx, guildID, "crash_min_cashout_multiplier", defaultMinCashout)
	game := NewGame(minCashout)
	game.Join(userID, bet)

	r := &round{
		game:        game,
		organizerID: userID,
		channelID:   i.ChannelID,
		startEarly:  make(chan struct{}),
	}
	if !f.claimRound(guildID, r) {
		// Another round slipped in; give the bet back
		if _, err := f.bets.Refund(ctx, guildID, userID, bet, gameName); err != nil {
			log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to refund crash bet")
		}
		common.RespondWithError(s, i, "A crash round is already running.")
		return
	}

	embed := f.waitingEmbed(s, i.GuildID, r)
	if err := common.RespondWithEmbed(s, i, embed, gameComponents(false), false); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to post crash game")
		f.releaseRound(guildID, r)
		if _, err := f.bets.Refund(ctx, guildID, userID, bet, gameName); err != nil {
			log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to refund crash bet")
		}
		return
	}

	if msg, err := s.InteractionResponse(i.Interaction); err == nil {
		r.messageID = msg.ID
	}

	go f.run(s, guildID, r)
}

// HandleComponent routes crash button presses and the join modal
func (f *Feature) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		switch i.MessageComponentData().CustomID {
		case "crash_join":
			f.handleJoinButton(s, i)
		case "crash_start":
			f.handleStartButton(s, i)
		case "crash_cashout":
			f.handleCashOut(s, i)
		}
	case discordgo.InteractionModalSubmit:
		if i.ModalSubmitData().CustomID == "crash_join_modal" {
			f.handleJoinModal(s, i)
		}
	}
}

func (f *Feature) handleJoinButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, _ := common.ParseUserID(i.GuildID)
	r := f.activeRound(guildID)
	if r == nil || r.game.Started() || r.game.Over() {
		common.RespondWithError(s, i, "There is no round waiting for players.")
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "crash_join_modal",
			Title:    "Join the crash round",
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						&discordgo.TextInput{
							CustomID:    "bet",
							Label:       "Bet amount",
							Style:       discordgo.TextInputShort,
							Placeholder: "50",
							Required:    true,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to open crash join modal")
	}
}

func (f *Feature) handleJoinModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, _ := common.ParseUserID(i.GuildID)
	userID, _ := common.ParseUserID(i.Member.User.ID)

	r := f.activeRound(guildID)
	if r == nil || r.game.Started() || r.game.Over() {
		common.RespondWithError(s, i, "The round already started.")
		return
	}

	var bet int64
	for _, row := range i.ModalSubmitData().Components {
		actionRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok && input.CustomID == "bet" {
				parsed, err := common.ParseUserID(input.Value)
				if err != nil {
					common.RespondWithError(s, i, "Enter a whole number of coins.")
					return
				}
				bet = parsed
			}
		}
	}

	if err := f.bets.ValidateBet(ctx, guildID, bet, "crash_min_bet", "crash_max_bet", defaultMinBet, defaultMaxBet); err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	ok, err := f.bets.Debit(ctx, guildID, userID, bet, gameName)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to debit crash bet")
		common.RespondWithError(s, i, "Unable to place bet. Please try again.")
		return
	}
	if !ok {
		common.RespondWithError(s, i, "You don't have enough coins for that bet.")
		return
	}

	if !r.game.Join(userID, bet) {
		if _, err := f.bets.Refund(ctx, guildID, userID, bet, gameName); err != nil {
			log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to refund crash bet")
		}
		common.RespondWithError(s, i, "You're already in, or the round just started.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("You're in with **%s** coins.", common.FormatCoins(bet)), true); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to confirm crash join")
	}
	f.render(s, guildID, r)
}

func (f *Feature) handleStartButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, _ := common.ParseUserID(i.GuildID)
	userID, _ := common.ParseUserID(i.Member.User.ID)

	r := f.activeRound(guildID)
	if r == nil || r.game.Started() || r.game.Over() {
		common.RespondWithError(s, i, "There is no round waiting to start.")
		return
	}
	if userID != r.organizerID {
		common.RespondWithError(s, i, "Only the round organizer can start early.")
		return
	}

	select {
	case <-r.startEarly:
	default:
		close(r.startEarly)
	}

	if err := common.RespondWithSuccess(s, i, "Round starting!", true); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to confirm crash start")
	}
}

func (f *Feature) handleCashOut(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, _ := common.ParseUserID(i.GuildID)
	userID, _ := common.ParseUserID(i.Member.User.ID)

	r := f.activeRound(guildID)
	if r == nil {
		common.RespondWithError(s, i, "There is no running round.")
		return
	}

	if !r.game.CashOut(userID) {
		common.RespondWithError(s, i, "You can't cash out right now.")
		return
	}

	payout := r.game.Payout(userID)
	message := fmt.Sprintf("Cashed out at **%.2fx** for **%s** coins!", r.game.Snapshot()[userID].CashOutMultiplier, common.FormatCoins(payout))
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to confirm crash cash-out")
	}
}
