package crash

import (
	"context"
	"sync"
	"time"

	"github.com/harrywsong/studiobot-sub000/bot/features/casino"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	gameName = "crash"

	joinWindow   = 30 * time.Second
	tickInterval = 750 * time.Millisecond

	defaultMinBet     int64 = 10
	defaultMaxBet     int64 = 200
	defaultMinCashout       = 1.4
)

// round is one live crash game in one guild
type round struct {
	game        *Game
	organizerID int64
	channelID   string
	messageID   string
	startEarly  chan struct{}
}

// Feature runs crash rounds, one active round per guild
type Feature struct {
	bets *casino.Bets

	mu     sync.Mutex
	rounds map[int64]*round
}

// New creates the crash feature
func New(bets *casino.Bets) *Feature {
	return &Feature{
		bets:   bets,
		rounds: make(map[int64]*round),
	}
}

// HandleCommand handles /crash
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleCrash(s, i)
}

// activeRound returns the guild's live round, or nil
func (f *Feature) activeRound(guildID int64) *round {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rounds[guildID]
}

// claimRound installs a new round if none is live. Returns false when a
// round is already running.
func (f *Feature) claimRound(guildID int64, r *round) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.rounds[guildID]; ok && !existing.game.Over() {
		return false
	}
	f.rounds[guildID] = r
	return true
}

func (f *Feature) releaseRound(guildID int64, r *round) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rounds[guildID] == r {
		delete(f.rounds, guildID)
	}
}

// run drives a round: wait out the join window (or an early start), then
// tick until the game ends, then settle.
func (f *Feature) run(s *discordgo.Session, guildID int64, r *round) {
	defer f.releaseRound(guildID, r)

	select {
	case <-time.After(joinWindow):
	case <-r.startEarly:
	}

	if !r.game.Start() {
		// Nobody joined; refund path is empty because joining debits
		f.renderFinal(s, guildID, r)
		return
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for range ticker.C {
		if !r.game.Tick() {
			break
		}
		f.render(s, guildID, r)
	}

	f.settle(s, guildID, r)
	f.renderFinal(s, guildID, r)
}

// settle pays out every player who cashed out before the crash
func (f *Feature) settle(s *discordgo.Session, guildID int64, r *round) {
	ctx := context.Background()
	for userID, p := range r.game.Snapshot() {
		if !p.CashedOut {
			continue
		}
		payout := r.game.Payout(userID)
		if payout <= 0 {
			continue
		}
		if _, err := f.bets.Credit(ctx, guildID, userID, payout, gameName); err != nil {
			log.WithFields(log.Fields{
				"guild_id": guildID,
				"user_id":  userID,
				"payout":   payout,
				"error":    err,
			}).Error("Failed to pay crash winnings")
		}
	}
}
