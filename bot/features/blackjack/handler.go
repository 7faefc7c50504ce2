package blackjack

import (
	"context"
	"time"

	"github.com/harrywsong/studiobot-sub000/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleCommand handles /blackjack
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
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "bet" {
			bet = opt.IntValue()
		}
	}

	if err := f.bets.ValidateBet(ctx, guildID, bet, "blackjack_min_bet", "blackjack_max_bet", defaultMinBet, defaultMaxBet); err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	if existing := f.getSession(guildID, userID); existing != nil && existing.game.State() != StateSettled {
		common.RespondWithError(s, i, "Finish your current hand first.")
		return
	}

	ok, err := f.bets.Debit(ctx, guildID, userID, bet, gameName)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to debit blackjack bet")
		common.RespondWithError(s, i, "Unable to place bet. Please try again.")
		return
	}
	if !ok {
		common.RespondWithError(s, i, "You don't have enough coins for that bet.")
		return
	}

	sess := &session{
		game:      NewGame(bet),
		guildID:   guildID,
		userID:    userID,
		baseBet:   bet,
		lastTouch: time.Now(),
	}
	if !f.putSession(sess) {
		if _, err := f.bets.Refund(ctx, guildID, userID, bet, gameName); err != nil {
			log.WithFields(log.Fields{"guild_id": guildID, "user_id": userID, "error": err}).Error("Failed to refund blackjack bet")
		}
		common.RespondWithError(s, i, "Finish your current hand first.")
		return
	}

	f.respondWithGame(ctx, s, i, sess, false)
}

// HandleComponent routes blackjack button presses. Buttons are userID-tagged
// so only the hand's owner can press them.
func (f *Feature) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	action, ownerID, ok := parseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}

	guildID, _ := common.ParseUserID(i.GuildID)
	userID, _ := common.ParseUserID(i.Member.User.ID)

	if userID != ownerID {
		common.RespondWithError(s, i, "This isn't your hand.")
		return
	}

	sess := f.getSession(guildID, userID)
	if sess == nil || sess.game.State() == StateSettled {
		common.RespondWithError(s, i, "This hand is already over.")
		return
	}
	f.touch(sess)

	ctx := context.Background()
	switch action {
	case "hit":
		if err := sess.game.Hit(); err != nil {
			common.RespondWithError(s, i, "You can't hit right now.")
			return
		}
	case "stand":
		if err := sess.game.Stand(); err != nil {
			common.RespondWithError(s, i, "You can't stand right now.")
			return
		}
	case "double":
		stake := sess.game.ActiveBet()
		if stake == 0 || !sess.game.CanDouble() {
			common.RespondWithError(s, i, "You can't double down right now.")
			return
		}
		if !f.stakeMore(ctx, s, i, sess, stake) {
			return
		}
		if err := sess.game.Double(); err != nil {
			// Debited but the hand moved on; give the stake back
			f.refundStake(ctx, sess, stake)
			common.RespondWithError(s, i, "You can't double down right now.")
			return
		}
	case "split":
		stake := sess.game.ActiveBet()
		if stake == 0 || !sess.game.CanSplit() {
			common.RespondWithError(s, i, "You can't split right now.")
			return
		}
		if !f.stakeMore(ctx, s, i, sess, stake) {
			return
		}
		if err := sess.game.Split(); err != nil {
			f.refundStake(ctx, sess, stake)
			common.RespondWithError(s, i, "You can't split right now.")
			return
		}
	case "insurance":
		if !sess.game.CanInsure() {
			common.RespondWithError(s, i, "Insurance isn't available.")
			return
		}
		cost := sess.game.InsuranceCost()
		if !f.stakeMore(ctx, s, i, sess, cost) {
			return
		}
		if err := sess.game.Insure(cost); err != nil {
			f.refundStake(ctx, sess, cost)
			common.RespondWithError(s, i, "Insurance isn't available.")
			return
		}
	default:
		return
	}

	f.respondWithGame(ctx, s, i, sess, true)
}

// stakeMore debits an additional stake mid-hand, reporting failure to the
// user. Returns false when the press should stop.
func (f *Feature) stakeMore(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sess *session, amount int64) bool {
	ok, err := f.bets.Debit(ctx, sess.guildID, sess.userID, amount, gameName)
	if err != nil {
		log.WithFields(log.Fields{"guild_id": sess.guildID, "user_id": sess.userID, "error": err}).Error("Failed to debit blackjack stake")
		common.RespondWithError(s, i, "Unable to place the extra stake. Please try again.")
		return false
	}
	if !ok {
		common.RespondWithError(s, i, "You don't have enough coins for that.")
		return false
	}
	return true
}

// refundStake returns a debited stake after an action that no longer applies
func (f *Feature) refundStake(ctx context.Context, sess *session, amount int64) {
	if _, err := f.bets.Refund(ctx, sess.guildID, sess.userID, amount, gameName); err != nil {
		log.WithFields(log.Fields{"guild_id": sess.guildID, "user_id": sess.userID, "error": err}).Error("Failed to refund blackjack stake")
	}
}

// respondWithGame renders the hand, settling first if it finished
func (f *Feature) respondWithGame(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, sess *session, update bool) {
	var payout int64
	if sess.game.State() == StateSettled {
		paid, err := f.settle(ctx, sess)
		if err != nil {
			log.WithFields(log.Fields{"guild_id": sess.guildID, "user_id": sess.userID, "error": err}).Error("Failed to settle blackjack hand")
		}
		payout = paid
	}

	embed := gameEmbed(sess, payout)
	components := gameComponents(sess)

	var err error
	if update {
		err = common.UpdateComponentMessage(s, i, embed, components)
	} else {
		err = common.RespondWithEmbed(s, i, embed, components, false)
	}
	if err != nil {
		log.WithFields(log.Fields{"guild_id": sess.guildID, "error": err}).Error("Failed to render blackjack hand")
	}
}
