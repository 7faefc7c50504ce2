package models

import "time"

// TicketStatus represents the lifecycle state of a support ticket
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// Ticket is a support ticket backed by a private text channel.
type Ticket struct {
	ID        string
	GuildID   int64
	ChannelID int64
	UserID    int64
	Status    TicketStatus
	CreatedAt time.Time
	ClosedAt  *time.Time
}
