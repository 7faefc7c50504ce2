package minesweeper

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGame_MineCount(t *testing.T) {
	g := NewGame(100, 3, DefaultMultipliers())

	count := 0
	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			if g.IsMine(row, col) {
				count++
			}
		}
	}
	assert.Equal(t, 3, count)
}

func TestNewGame_ClampsMines(t *testing.T) {
	assert.Equal(t, minMines, NewGame(100, 0, DefaultMultipliers()).Mines)
	assert.Equal(t, maxMines, NewGame(100, 50, DefaultMultipliers()).Mines)
}

func TestGame_MultiplierCurve(t *testing.T) {
	g := NewGame(100, 3, DefaultMultipliers())

	// base before any reveal
	assert.InDelta(t, 1.0, g.Multiplier(), 1e-9)

	// Reveal two safe tiles by hand
	revealed := 0
	for row := 0; row < gridSize && revealed < 2; row++ {
		for col := 0; col < gridSize && revealed < 2; col++ {
			if !g.IsMine(row, col) {
				require.True(t, g.Reveal(row, col))
				revealed++
			}
		}
	}

	// 1.0 + 2 x (0.15 + 3 x 0.03) = 1.48
	assert.InDelta(t, 1.48, g.Multiplier(), 1e-9)
	expected := int64(float64(100) * g.Multiplier())
	assert.Equal(t, expected, g.CashOut())
}

func TestGame_HitMine(t *testing.T) {
	g := NewGame(100, 3, DefaultMultipliers())

	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			if g.IsMine(row, col) {
				assert.False(t, g.Reveal(row, col))
				assert.Equal(t, StateLost, g.State())
				assert.Equal(t, int64(0), g.CashOut())
				return
			}
		}
	}
}

func TestGame_CashOutNeedsAReveal(t *testing.T) {
	g := NewGame(100, 3, DefaultMultipliers())
	assert.Equal(t, int64(0), g.CashOut())
	assert.Equal(t, StatePlaying, g.State())
}

func TestGame_ClearBoard(t *testing.T) {
	g := NewGame(100, 3, DefaultMultipliers())

	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			if !g.IsMine(row, col) {
				g.Reveal(row, col)
			}
		}
	}

	assert.Equal(t, StateFinished, g.State())
	assert.Equal(t, 13, g.Gems())
	// 1.0 + 13 x (0.15 + 0.09) = 4.12
	assert.InDelta(t, 4.12, g.Multiplier(), 1e-9)
	expected := int64(float64(100) * g.Multiplier())
	assert.Equal(t, expected, g.CashOut())
}

func TestGame_CashOutPaysOnce(t *testing.T) {
	g := NewGame(100, 3, DefaultMultipliers())

	revealed := false
	for row := 0; row < gridSize && !revealed; row++ {
		for col := 0; col < gridSize && !revealed; col++ {
			if !g.IsMine(row, col) {
				require.True(t, g.Reveal(row, col))
				revealed = true
			}
		}
	}
	expected := int64(float64(100) * g.Multiplier())

	var total int64
	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			atomic.AddInt64(&total, g.CashOut())
		}()
	}
	wg.Wait()

	// Racing cash-out presses settle exactly once
	assert.Equal(t, expected, total)
	assert.Equal(t, StateCashed, g.State())
}

func TestGame_CashOutAfterClearPaysOnce(t *testing.T) {
	g := NewGame(100, 3, DefaultMultipliers())

	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			if !g.IsMine(row, col) {
				g.Reveal(row, col)
			}
		}
	}
	require.Equal(t, StateFinished, g.State())

	first := g.CashOut()
	assert.Positive(t, first)
	assert.Equal(t, int64(0), g.CashOut())
}

func TestGame_DoubleRevealIsNoop(t *testing.T) {
	g := NewGame(100, 3, DefaultMultipliers())

	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			if !g.IsMine(row, col) {
				g.Reveal(row, col)
				gems := g.Gems()
				g.Reveal(row, col)
				assert.Equal(t, gems, g.Gems())
				return
			}
		}
	}
}
