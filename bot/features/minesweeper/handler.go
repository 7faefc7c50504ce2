package minesweeper

import (
	"context"
	"time"

	"github.com/harrywsong/studiobot-sub000/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleCommand handles /minesweeper
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
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
	mineCount := defaultMines
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "bet":
			bet = opt.IntValue()
		case "mines":
			mineCount = int(opt.IntValue())
		}
	}

	if err := f.bets.ValidateBet(ctx, guildID, bet, "minesweeper_min_bet", "minesweeper_max_bet", defaultMinBet, defaultMaxBet); err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	if existing := f.getSession(guildID, userID); existing != nil && existing.game.State() == StatePlaying {
		common.RespondWithError(s, i, "Finish your current board first.")
		return
	}

	ok, err := f.bets.Debit(ctx, guildID, userID, bet, gameName)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to debit minesweeper bet")
		common.RespondWithError(s, i, "Unable to place bet. Please try again.")
		return
	}
	if !ok {
		common.RespondWithError(s, i, "You don't have enough coins for that bet.")
		return
	}

	mults := Multipliers{
		Base:      f.bets.FloatSetting(ctx, guildID, "minesweeper_base_multiplier", 1.0),
		GemStep:   f.bets.FloatSetting(ctx, guildID, "minesweeper_gem_multiplier", 0.15),
		MineBonus: f.bets.FloatSetting(ctx, guildID, "minesweeper_mine_bonus", 0.03),
	}

	sess := &session{
		game:      NewGame(bet, mineCount, mults),
		guildID:   guildID,
		userID:    userID,
		lastTouch: time.Now(),
	}
	if !f.putSession(sess) {
		if _, err := f.bets.Refund(ctx, guildID, userID, bet, gameName); err != nil {
			log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to refund minesweeper bet")
		}
		common.RespondWithError(s, i, "Finish your current board first.")
		return
	}

	if err := common.RespondWithEmbed(s, i, gameEmbed(sess, 0), boardComponents(sess), false); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to render minesweeper board")
	}
}

// HandleComponent routes tile and cash-out presses
func (f *Feature) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	action, row, col, ownerID, ok := parseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}

	guildID, _ := common.ParseUserID(i.GuildID)
	userID, _ := common.ParseUserID(i.Member.User.ID)

	if userID != ownerID {
		common.RespondWithError(s, i, "This isn't your board.")
		return
	}

	sess := f.getSession(guildID, userID)
	if sess == nil || sess.game.State() != StatePlaying {
		common.RespondWithError(s, i, "This board is already finished.")
		return
	}
	f.touch(sess)

	ctx := context.Background()
	var payout int64

	switch action {
	case "tile":
		safe := sess.game.Reveal(row, col)
		if !safe {
			f.dropSession(sess)
		} else if sess.game.State() == StateFinished {
			paid, err := f.cashOut(ctx, sess)
			if err != nil {
				log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to settle minesweeper board")
			}
			payout = paid
		}
	case "cashout":
		if sess.game.Gems() == 0 {
			common.RespondWithError(s, i, "Reveal at least one tile before cashing out.")
			return
		}
		paid, err := f.cashOut(ctx, sess)
		if err != nil {
			log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to settle minesweeper board")
		}
		payout = paid
	default:
		return
	}

	if err := common.UpdateComponentMessage(s, i, gameEmbed(sess, payout), boardComponents(sess)); err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "error": err}).Error("Failed to update minesweeper board")
	}
}
