package models

import (
	"math"
	"time"
)

// UserXP tracks experience and level for a user within a guild.
type UserXP struct {
	GuildID           int64
	UserID            int64
	XP                int64
	Level             int
	TotalVoiceSeconds int64
	UpdatedAt         time.Time
}

// XPTransaction is an audit log entry for XP grants.
type XPTransaction struct {
	ID        int64
	GuildID   int64
	UserID    int64
	Amount    int64
	Reason    string
	CreatedAt time.Time
}

// LevelForXP returns the level reached at the given XP total.
// Level 1 starts at 0 XP; each level requires quadratically more.
func LevelForXP(xp int64) int {
	if xp < 0 {
		return 1
	}
	return int(math.Sqrt(float64(xp)/100)) + 1
}

// XPForLevel returns the minimum XP total required for a level.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	n := int64(level - 1)
	return n * n * 100
}
