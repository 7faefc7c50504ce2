package repository

import (
	"context"
	"fmt"

	"github.com/harrywsong/studiobot-sub000/database"
	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/jackc/pgx/v5"
)

// TicketRepository implements the TicketRepository interface
type TicketRepository struct {
	q queryable
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{q: db.Pool}
}

// newTicketRepositoryWithTx creates a new ticket repository with a transaction
func newTicketRepositoryWithTx(tx queryable) *TicketRepository {
	return &TicketRepository{q: tx}
}

// Create persists a new ticket
func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (id, guild_id, channel_id, user_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		ticket.ID, ticket.GuildID, ticket.ChannelID, ticket.UserID, ticket.Status,
	).Scan(&ticket.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ticket %s: %w", ticket.ID, err)
	}

	return nil
}

// GetOpenByUser returns a user's open ticket, or nil
func (r *TicketRepository) GetOpenByUser(ctx context.Context, guildID, userID int64) (*models.Ticket, error) {
	query := `
		SELECT id, guild_id, channel_id, user_id, status, created_at, closed_at
		FROM tickets
		WHERE guild_id = $1 AND user_id = $2 AND status = 'open'
		LIMIT 1
	`

	var ticket models.Ticket
	err := r.q.QueryRow(ctx, query, guildID, userID).Scan(
		&ticket.ID, &ticket.GuildID, &ticket.ChannelID, &ticket.UserID,
		&ticket.Status, &ticket.CreatedAt, &ticket.ClosedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open ticket for user %d: %w", userID, err)
	}

	return &ticket, nil
}

// GetByChannel returns the ticket backed by a channel, or nil
func (r *TicketRepository) GetByChannel(ctx context.Context, channelID int64) (*models.Ticket, error) {
	query := `
		SELECT id, guild_id, channel_id, user_id, status, created_at, closed_at
		FROM tickets
		WHERE channel_id = $1
	`

	var ticket models.Ticket
	err := r.q.QueryRow(ctx, query, channelID).Scan(
		&ticket.ID, &ticket.GuildID, &ticket.ChannelID, &ticket.UserID,
		&ticket.Status, &ticket.CreatedAt, &ticket.ClosedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket for channel %d: %w", channelID, err)
	}

	return &ticket, nil
}

// Close marks a ticket closed
func (r *TicketRepository) Close(ctx context.Context, id string) error {
	query := `
		UPDATE tickets
		SET status = 'closed', closed_at = NOW()
		WHERE id = $1 AND status = 'open'
	`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to close ticket %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("open ticket %s not found", id)
	}

	return nil
}
