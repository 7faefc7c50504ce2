package crash

import (
	"math"
	"math/rand"
	"sync"
)

// Player tracks one participant's stake in a round
type Player struct {
	Bet               int64
	CashedOut         bool
	CashOutMultiplier float64
}

// Game is one crash round. The mutex guards every state read and write:
// the tick loop and cash-out presses race, and a cash-out must never land
// after the round is marked over.
type Game struct {
	mu sync.Mutex

	crashPoint float64
	multiplier float64
	minCashout float64

	started bool
	over    bool

	players map[int64]*Player
	history []float64
}

// NewGame creates a round in the waiting state with a freshly drawn crash
// point. minCashout is the guild's minimum cash-out multiplier.
func NewGame(minCashout float64) *Game {
	return &Game{
		crashPoint: drawCrashPoint(),
		multiplier: 1.0,
		minCashout: minCashout,
		players:    make(map[int64]*Player),
	}
}

// drawCrashPoint samples the round's crash multiplier:
// 55% in [1.1,1.5), 25% [1.5,2.0), 12% [2.0,3.0), 6% [3.0,5.0), 2% [5.0,10.0)
func drawCrashPoint() float64 {
	r := rand.Float64()
	switch {
	case r < 0.55:
		return 1.1 + rand.Float64()*0.4
	case r < 0.80:
		return 1.5 + rand.Float64()*0.5
	case r < 0.92:
		return 2.0 + rand.Float64()*1.0
	case r < 0.98:
		return 3.0 + rand.Float64()*2.0
	default:
		return 5.0 + rand.Float64()*5.0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Join adds a player during the waiting phase. Returns false once the
// round has started or the player already joined.
func (g *Game) Join(userID, bet int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.started || g.over {
		return false
	}
	if _, exists := g.players[userID]; exists {
		return false
	}
	g.players[userID] = &Player{Bet: bet}
	return true
}

// Start moves the round from waiting to running. Returns false when there
// are no players or the round already ran.
func (g *Game) Start() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.started || g.over || len(g.players) == 0 {
		return false
	}
	g.started = true
	return true
}

// Tick advances the multiplier one step and reports whether the round is
// still running. The round ends when the multiplier reaches the crash
// point or every player has cashed out.
func (g *Game) Tick() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.started || g.over {
		return false
	}

	g.multiplier = round2(g.multiplier + 0.01 + g.multiplier/20)
	g.history = append(g.history, g.multiplier)

	if g.multiplier >= g.crashPoint {
		g.over = true
		return false
	}

	allOut := true
	for _, p := range g.players {
		if !p.CashedOut {
			allOut = false
			break
		}
	}
	if allOut {
		g.over = true
		return false
	}

	return true
}

// CashOut locks in the player's winnings at the current multiplier.
// Returns false if the round is over or not started, the player is unknown
// or already out, or the multiplier is still below the guild minimum
// (compared at 2 decimals).
func (g *Game) CashOut(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.started || g.over {
		return false
	}
	p, ok := g.players[userID]
	if !ok || p.CashedOut {
		return false
	}
	if round2(g.multiplier) < round2(g.minCashout) {
		return false
	}

	p.CashedOut = true
	p.CashOutMultiplier = g.multiplier
	return true
}

// Payout returns the winnings for a cashed-out player, 0 otherwise
func (g *Game) Payout(userID int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[userID]
	if !ok || !p.CashedOut {
		return 0
	}
	return int64(float64(p.Bet) * p.CashOutMultiplier)
}

// Multiplier returns the current multiplier
func (g *Game) Multiplier() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.multiplier
}

// CrashPoint returns the round's crash multiplier
func (g *Game) CrashPoint() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.crashPoint
}

// Started reports whether the round left the waiting phase
func (g *Game) Started() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.started
}

// Over reports whether the round has ended
func (g *Game) Over() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.over
}

// Snapshot returns a copy of the player map for rendering
func (g *Game) Snapshot() map[int64]Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make(map[int64]Player, len(g.players))
	for id, p := range g.players {
		out[id] = *p
	}
	return out
}

// PlayerCount returns how many players joined the round
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players)
}
