package service

import (
	"context"
	"testing"

	"github.com/harrywsong/studiobot-sub000/events"
	"github.com/harrywsong/studiobot-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestTicketService_Open(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewTicketService(m.factory)

	m.ticketRepo.On("GetOpenByUser", ctx, int64(100), int64(42)).Return(nil, nil)
	m.ticketRepo.On("Create", ctx, mock.MatchedBy(func(ticket *models.Ticket) bool {
		return ticket.ID != "" &&
			ticket.GuildID == 100 &&
			ticket.UserID == 42 &&
			ticket.ChannelID == 555 &&
			ticket.Status == models.TicketStatusOpen
	})).Return(nil)
	m.eventBus.On("Publish", mock.MatchedBy(func(e events.TicketOpenedEvent) bool {
		return e.UserID == 42 && e.ChannelID == 555 && e.TicketID != ""
	})).Return()

	ticket, err := service.Open(ctx, 100, 42, 555)

	assert.NoError(t, err)
	assert.NotEmpty(t, ticket.ID)
	m.ticketRepo.AssertExpectations(t)
	m.eventBus.AssertExpectations(t)
}

func TestTicketService_Open_AlreadyOpen(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewTicketService(m.factory)

	m.ticketRepo.On("GetOpenByUser", ctx, int64(100), int64(42)).Return(&models.Ticket{
		ID:      "existing",
		GuildID: 100,
		UserID:  42,
		Status:  models.TicketStatusOpen,
	}, nil)

	_, err := service.Open(ctx, 100, 42, 555)

	assert.ErrorIs(t, err, ErrTicketExists)
	m.ticketRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTicketService_CloseByChannel(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewTicketService(m.factory)

	m.ticketRepo.On("GetByChannel", ctx, int64(555)).Return(&models.Ticket{
		ID:        "abc",
		GuildID:   100,
		ChannelID: 555,
		UserID:    42,
		Status:    models.TicketStatusOpen,
	}, nil)
	m.ticketRepo.On("Close", ctx, "abc").Return(nil)

	ticket, err := service.CloseByChannel(ctx, 100, 555)

	assert.NoError(t, err)
	assert.Equal(t, models.TicketStatusClosed, ticket.Status)
	m.ticketRepo.AssertExpectations(t)
}

func TestTicketService_CloseByChannel_NotATicket(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewTicketService(m.factory)

	m.ticketRepo.On("GetByChannel", ctx, int64(999)).Return(nil, nil)

	_, err := service.CloseByChannel(ctx, 100, 999)

	assert.Error(t, err)
	m.ticketRepo.AssertNotCalled(t, "Close", mock.Anything, mock.Anything)
}
