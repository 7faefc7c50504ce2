package lottery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePicks(t *testing.T) {
	picks, err := ParsePicks([]int64{1, 3, 7})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 7}, picks)

	_, err = ParsePicks([]int64{1, 3})
	assert.Error(t, err, "too few")

	_, err = ParsePicks([]int64{1, 3, 3})
	assert.Error(t, err, "duplicates")

	_, err = ParsePicks([]int64{0, 3, 7})
	assert.Error(t, err, "below range")

	_, err = ParsePicks([]int64{1, 3, 11})
	assert.Error(t, err, "above range")
}

func TestDraw(t *testing.T) {
	for i := 0; i < 100; i++ {
		winners := Draw()
		require.Len(t, winners, 3)
		seen := map[int]bool{}
		for _, w := range winners {
			assert.GreaterOrEqual(t, w, 1)
			assert.LessOrEqual(t, w, 10)
			assert.False(t, seen[w], "winners must be distinct")
			seen[w] = true
		}
	}
}

func TestMatches(t *testing.T) {
	assert.Equal(t, 3, Matches([]int{1, 3, 7}, []int{1, 3, 7}))
	assert.Equal(t, 2, Matches([]int{1, 3, 7}, []int{1, 3, 9}))
	assert.Equal(t, 0, Matches([]int{2, 4, 6}, []int{1, 3, 9}))
}

func TestPayout(t *testing.T) {
	// Full match pays x50
	assert.Equal(t, int64(5000), Payout(100, 3, 1.0))
	// Two matches pay x3
	assert.Equal(t, int64(300), Payout(100, 2, 1.0))
	// Guild multiplier scales, integer-truncated
	assert.Equal(t, int64(7500), Payout(100, 3, 1.5))
	assert.Equal(t, int64(74), Payout(33, 2, 0.75))
	// One or zero matches pay nothing
	assert.Equal(t, int64(0), Payout(100, 1, 1.0))
	assert.Equal(t, int64(0), Payout(100, 0, 2.0))
}
