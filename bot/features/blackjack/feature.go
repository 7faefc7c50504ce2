package blackjack

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harrywsong/studiobot-sub000/bot/features/casino"

	log "github.com/sirupsen/logrus"
)

const (
	gameName = "blackjack"

	// A hand left untouched this long is forfeited
	sessionTimeout = 5 * time.Minute

	defaultMinBet int64 = 20
	defaultMaxBet int64 = 200
)

// session is one user's live hand
type session struct {
	game      *Game
	guildID   int64
	userID    int64
	baseBet   int64
	lastTouch time.Time
}

// Feature runs blackjack hands, one per user per guild
type Feature struct {
	bets *casino.Bets

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates the blackjack feature
func New(bets *casino.Bets) *Feature {
	f := &Feature{
		bets:     bets,
		sessions: make(map[string]*session),
	}
	go f.reapLoop()
	return f
}

func sessionKey(guildID, userID int64) string {
	return fmt.Sprintf("%d:%d", guildID, userID)
}

func (f *Feature) getSession(guildID, userID int64) *session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[sessionKey(guildID, userID)]
}

func (f *Feature) putSession(sess *session) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := sessionKey(sess.guildID, sess.userID)
	if existing, ok := f.sessions[key]; ok && existing.game.State() != StateSettled {
		return false
	}
	f.sessions[key] = sess
	return true
}

// touch refreshes a session's idle timer
func (f *Feature) touch(sess *session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess.lastTouch = time.Now()
}

func (f *Feature) dropSession(sess *session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := sessionKey(sess.guildID, sess.userID)
	if f.sessions[key] == sess {
		delete(f.sessions, key)
	}
}

// reapLoop forfeits hands abandoned past the timeout
func (f *Feature) reapLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		f.reap()
	}
}

func (f *Feature) reap() {
	cutoff := time.Now().Add(-sessionTimeout)

	f.mu.Lock()
	var stale []*session
	for key, sess := range f.sessions {
		if sess.lastTouch.Before(cutoff) {
			stale = append(stale, sess)
			delete(f.sessions, key)
		}
	}
	f.mu.Unlock()

	for _, sess := range stale {
		if sess.game.Forfeit() {
			log.WithFields(log.Fields{
				"guild_id": sess.guildID,
				"user_id":  sess.userID,
			}).Info("Forfeited abandoned blackjack hand")
		}
	}
}

// settle pays out a finished game and clears the session. SettlePayout
// claims the winnings exactly once, so a racing second settle is a no-op.
func (f *Feature) settle(ctx context.Context, sess *session) (int64, error) {
	defer f.dropSession(sess)

	payout, ok := sess.game.SettlePayout()
	if !ok || payout <= 0 {
		return 0, nil
	}
	if _, err := f.bets.Credit(ctx, sess.guildID, sess.userID, payout, gameName); err != nil {
		return 0, fmt.Errorf("failed to pay blackjack winnings: %w", err)
	}
	return payout, nil
}
