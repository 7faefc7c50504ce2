package models

import "time"

// Warning is a moderation note issued against a user.
type Warning struct {
	ID          int64
	GuildID     int64
	UserID      int64
	ModeratorID int64
	Reason      string
	CreatedAt   time.Time
}
