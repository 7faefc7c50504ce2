package models

import "time"

// Scrim is an organized practice match. Scrims are persisted as JSON on
// disk rather than in Postgres so they survive restarts without a schema.
type Scrim struct {
	ID        string    `json:"id"`
	GuildID   int64     `json:"guild_id"`
	ChannelID int64     `json:"channel_id"`
	MessageID int64     `json:"message_id"`
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"starts_at"`
	TeamSize  int       `json:"team_size"`
	Players   []int64   `json:"players"`
	Queue     []int64   `json:"queue"`
	CreatedBy int64     `json:"created_by"`
	Notified  bool      `json:"notified"`
	CreatedAt time.Time `json:"created_at"`
}

// Capacity returns the total player slots (both teams).
func (s *Scrim) Capacity() int {
	return s.TeamSize * 2
}

// IsFull reports whether all player slots are taken.
func (s *Scrim) IsFull() bool {
	return len(s.Players) >= s.Capacity()
}

// HasPlayer reports whether the user occupies a player slot.
func (s *Scrim) HasPlayer(userID int64) bool {
	for _, id := range s.Players {
		if id == userID {
			return true
		}
	}
	return false
}

// InQueue reports whether the user is waiting in the overflow queue.
func (s *Scrim) InQueue(userID int64) bool {
	for _, id := range s.Queue {
		if id == userID {
			return true
		}
	}
	return false
}
