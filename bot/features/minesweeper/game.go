package minesweeper

import (
	"math/rand"
	"sync"
)

const (
	// 4x4 fits Discord's component grid with a control row to spare
	gridSize = 4

	defaultMines = 3
	minMines     = 1
	maxMines     = 8
)

// Multipliers holds the guild's tunable payout curve
type Multipliers struct {
	Base      float64
	GemStep   float64
	MineBonus float64
}

// DefaultMultipliers mirrors the standard payout curve
func DefaultMultipliers() Multipliers {
	return Multipliers{Base: 1.0, GemStep: 0.15, MineBonus: 0.03}
}

// State is the game phase
type State string

const (
	StatePlaying  State = "playing"
	StateLost     State = "lost"
	StateCashed   State = "cashed_out"
	StateFinished State = "finished"
)

// Game is one minesweeper board. The mutex guards every state read and
// write: tile presses, cash-out presses, and the session reaper all arrive
// on their own goroutines, and a board must never pay out twice.
type Game struct {
	Bet   int64
	Mines int

	mu    sync.Mutex
	state State

	mines    [gridSize][gridSize]bool
	revealed [gridSize][gridSize]bool

	gems  int
	mults Multipliers
}

// NewGame lays out a board: mines shuffled into a flat slice and reshaped
// into the grid.
func NewGame(bet int64, mineCount int, mults Multipliers) *Game {
	if mineCount < minMines {
		mineCount = minMines
	}
	if mineCount > maxMines {
		mineCount = maxMines
	}

	flat := make([]bool, gridSize*gridSize)
	for i := 0; i < mineCount; i++ {
		flat[i] = true
	}
	rand.Shuffle(len(flat), func(i, j int) {
		flat[i], flat[j] = flat[j], flat[i]
	})

	g := &Game{
		Bet:   bet,
		Mines: mineCount,
		state: StatePlaying,
		mults: mults,
	}
	for i, isMine := range flat {
		g.mines[i/gridSize][i%gridSize] = isMine
	}
	return g
}

// State returns the current game phase
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// multiplier computes the payout multiplier:
// base + gems x (gemStep + mines x mineBonus). Callers hold the lock.
func (g *Game) multiplier() float64 {
	return g.mults.Base + float64(g.gems)*(g.mults.GemStep+float64(g.Mines)*g.mults.MineBonus)
}

// Multiplier returns the current payout multiplier
func (g *Game) Multiplier() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.multiplier()
}

// Gems returns how many safe tiles have been revealed
func (g *Game) Gems() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gems
}

// Revealed reports whether a tile has been uncovered
func (g *Game) Revealed(row, col int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.revealed[row][col]
}

// IsMine reports whether a tile hides a mine
func (g *Game) IsMine(row, col int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mines[row][col]
}

// Reveal uncovers a tile. Returns false when the tile was a mine, which
// ends the game. Revealing out of bounds, twice, or after the game ends
// returns true with no effect.
func (g *Game) Reveal(row, col int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StatePlaying {
		return true
	}
	if row < 0 || row >= gridSize || col < 0 || col >= gridSize {
		return true
	}
	if g.revealed[row][col] {
		return true
	}

	g.revealed[row][col] = true
	if g.mines[row][col] {
		g.state = StateLost
		return false
	}

	g.gems++
	if g.gems == gridSize*gridSize-g.Mines {
		// Board cleared
		g.state = StateFinished
	}
	return true
}

// CashOut settles the board and returns the payout, int-truncated. The
// state transition and the payout are one locked step, so concurrent
// presses settle at most once: the second call returns 0. A board with
// nothing revealed, or one already lost or settled, also returns 0.
func (g *Game) CashOut() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StatePlaying && g.state != StateFinished {
		return 0
	}
	if g.gems == 0 && g.state == StatePlaying {
		return 0
	}
	g.state = StateCashed
	return int64(float64(g.Bet) * g.multiplier())
}

// Abandon marks a playing board lost. Returns false when the board had
// already finished.
func (g *Game) Abandon() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StatePlaying {
		return false
	}
	g.state = StateLost
	return true
}
