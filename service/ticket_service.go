package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/harrywsong/studiobot-sub000/events"
	"github.com/harrywsong/studiobot-sub000/models"

	"github.com/rs/xid"
)

// ErrTicketExists is returned by Open when the user already has an open ticket.
var ErrTicketExists = errors.New("user already has an open ticket")

type ticketService struct {
	uowFactory UnitOfWorkFactory
}

// NewTicketService creates a new ticket service
func NewTicketService(uowFactory UnitOfWorkFactory) TicketService {
	return &ticketService{uowFactory: uowFactory}
}

func (s *ticketService) Open(ctx context.Context, guildID, userID, channelID int64) (*models.Ticket, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	existing, err := uow.TicketRepository().GetOpenByUser(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing ticket: %w", err)
	}
	if existing != nil {
		return nil, ErrTicketExists
	}

	ticket := &models.Ticket{
		ID:        xid.New().String(),
		GuildID:   guildID,
		ChannelID: channelID,
		UserID:    userID,
		Status:    models.TicketStatusOpen,
	}

	if err := uow.TicketRepository().Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	uow.EventBus().Publish(events.TicketOpenedEvent{
		GuildID:   guildID,
		UserID:    userID,
		ChannelID: channelID,
		TicketID:  ticket.ID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return ticket, nil
}

func (s *ticketService) HasOpen(ctx context.Context, guildID, userID int64) (bool, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	existing, err := uow.TicketRepository().GetOpenByUser(ctx, guildID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check existing ticket: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return existing != nil, nil
}

func (s *ticketService) CloseByChannel(ctx context.Context, guildID, channelID int64) (*models.Ticket, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	ticket, err := uow.TicketRepository().GetByChannel(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("no ticket for channel %d", channelID)
	}
	if ticket.Status == models.TicketStatusClosed {
		return nil, fmt.Errorf("ticket %s is already closed", ticket.ID)
	}

	if err := uow.TicketRepository().Close(ctx, ticket.ID); err != nil {
		return nil, fmt.Errorf("failed to close ticket: %w", err)
	}
	ticket.Status = models.TicketStatusClosed

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return ticket, nil
}
