package crash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrawCrashPoint_WithinBounds(t *testing.T) {
	for i := 0; i < 1000; i++ {
		point := drawCrashPoint()
		assert.GreaterOrEqual(t, point, 1.1)
		assert.Less(t, point, 10.0)
	}
}

func TestGame_Join(t *testing.T) {
	game := NewGame(1.4)

	assert.True(t, game.Join(1, 50))
	assert.False(t, game.Join(1, 50), "double join rejected")
	assert.True(t, game.Join(2, 100))
	assert.Equal(t, 2, game.PlayerCount())

	game.Start()
	assert.False(t, game.Join(3, 50), "no joins after start")
}

func TestGame_Start_RequiresPlayers(t *testing.T) {
	game := NewGame(1.4)
	assert.False(t, game.Start())

	game.Join(1, 50)
	assert.True(t, game.Start())
	assert.False(t, game.Start(), "double start rejected")
}

func TestGame_TickIncrement(t *testing.T) {
	game := NewGame(1.4)
	game.crashPoint = 100 // never crashes in this test
	game.Join(1, 50)
	game.Start()

	game.Tick()
	// 1.0 + 0.01 + 1.0/20 = 1.06
	assert.Equal(t, 1.06, game.Multiplier())

	game.Tick()
	// 1.06 + 0.01 + 1.06/20 = 1.123 -> 1.12
	assert.Equal(t, 1.12, game.Multiplier())
}

func TestGame_CashOut(t *testing.T) {
	game := NewGame(1.4)
	game.crashPoint = 100
	game.Join(1, 50)

	// Not started yet
	assert.False(t, game.CashOut(1))

	game.Start()

	// Below the minimum multiplier
	assert.False(t, game.CashOut(1))

	for game.Multiplier() < 1.4 {
		game.Tick()
	}

	assert.False(t, game.CashOut(99), "unknown player")
	assert.True(t, game.CashOut(1))
	assert.False(t, game.CashOut(1), "already cashed out")

	payout := game.Payout(1)
	assert.Equal(t, int64(float64(50)*game.Snapshot()[1].CashOutMultiplier), payout)
}

func TestGame_CashOut_AfterCrash(t *testing.T) {
	game := NewGame(1.4)
	game.crashPoint = 1.2
	game.Join(1, 50)
	game.Start()

	for game.Tick() {
	}

	assert.True(t, game.Over())
	assert.False(t, game.CashOut(1))
	assert.Equal(t, int64(0), game.Payout(1))
}

func TestGame_EndsWhenAllCashedOut(t *testing.T) {
	game := NewGame(1.0)
	game.crashPoint = 100
	game.Join(1, 50)
	game.Start()

	game.Tick()
	assert.True(t, game.CashOut(1))

	// The next tick notices everyone is out
	assert.False(t, game.Tick())
	assert.True(t, game.Over())
}

func TestGame_MinCashoutRounding(t *testing.T) {
	game := NewGame(1.4)
	game.crashPoint = 100
	game.Join(1, 50)
	game.Start()
	game.multiplier = 1.399999 // rounds to 1.4

	assert.True(t, game.CashOut(1))
}
