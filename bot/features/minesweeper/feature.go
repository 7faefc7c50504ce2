package minesweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harrywsong/studiobot-sub000/bot/features/casino"

	log "github.com/sirupsen/logrus"
)

const (
	gameName = "minesweeper"

	sessionTimeout = 5 * time.Minute

	defaultMinBet int64 = 10
	defaultMaxBet int64 = 200
)

// session is one user's live board
type session struct {
	game      *Game
	guildID   int64
	userID    int64
	lastTouch time.Time
}

// Feature runs minesweeper boards, one per user per guild
type Feature struct {
	bets *casino.Bets

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates the minesweeper feature
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
	if existing, ok := f.sessions[key]; ok && existing.game.State() == StatePlaying {
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

// reapLoop abandons boards left untouched past the timeout; the stake is lost
func (f *Feature) reapLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-sessionTimeout)

		f.mu.Lock()
		for key, sess := range f.sessions {
			if sess.lastTouch.Before(cutoff) {
				sess.game.Abandon()
				delete(f.sessions, key)
				log.WithFields(log.Fields{
					"guild_id": sess.guildID,
					"user_id":  sess.userID,
				}).Info("Abandoned minesweeper board")
			}
		}
		f.mu.Unlock()
	}
}

// cashOut settles a finished board
func (f *Feature) cashOut(ctx context.Context, sess *session) (int64, error) {
	defer f.dropSession(sess)

	payout := sess.game.CashOut()
	if payout <= 0 {
		return 0, nil
	}
	if _, err := f.bets.Credit(ctx, sess.guildID, sess.userID, payout, gameName); err != nil {
		return 0, fmt.Errorf("failed to pay minesweeper winnings: %w", err)
	}
	return payout, nil
}
