package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(99))
	assert.Equal(t, 2, LevelForXP(100))
	assert.Equal(t, 2, LevelForXP(399))
	assert.Equal(t, 3, LevelForXP(400))
	assert.Equal(t, 11, LevelForXP(10000))
	assert.Equal(t, 1, LevelForXP(-5))
}

func TestXPForLevel(t *testing.T) {
	assert.Equal(t, int64(0), XPForLevel(0))
	assert.Equal(t, int64(0), XPForLevel(1))
	assert.Equal(t, int64(100), XPForLevel(2))
	assert.Equal(t, int64(400), XPForLevel(3))
	assert.Equal(t, int64(10000), XPForLevel(11))
}

func TestLevelCurveRoundTrip(t *testing.T) {
	for level := 1; level <= 50; level++ {
		threshold := XPForLevel(level)
		assert.Equal(t, level, LevelForXP(threshold), "threshold of level %d", level)
		if threshold > 0 {
			assert.Equal(t, level-1, LevelForXP(threshold-1), "just below level %d", level)
		}
	}
}
