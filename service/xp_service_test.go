package service

import (
	"context"
	"testing"

	"github.com/harrywsong/studiobot-sub000/events"
	"github.com/harrywsong/studiobot-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestXPService_AwardXP_NoLevelChange(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewXPService(m.factory)

	// 50 XP is still level 1
	m.xpRepo.On("AddXP", ctx, int64(100), int64(42), int64(10), int64(0)).Return(&models.UserXP{
		GuildID: 100,
		UserID:  42,
		XP:      50,
		Level:   1,
	}, nil)
	m.xpRepo.On("RecordTransaction", ctx, mock.MatchedBy(func(tx *models.XPTransaction) bool {
		return tx.UserID == 42 && tx.Amount == 10 && tx.Reason == "message"
	})).Return(nil)

	grant, err := service.AwardXP(ctx, 100, 42, 10, "message")

	assert.NoError(t, err)
	assert.False(t, grant.LeveledUp)
	assert.Equal(t, 1, grant.XP.Level)
	m.xpRepo.AssertNotCalled(t, "UpdateLevel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.eventBus.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestXPService_AwardXP_LevelUp(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewXPService(m.factory)

	// Crossing 100 XP moves level 1 -> 2
	m.xpRepo.On("AddXP", ctx, int64(100), int64(42), int64(30), int64(0)).Return(&models.UserXP{
		GuildID: 100,
		UserID:  42,
		XP:      110,
		Level:   1,
	}, nil)
	m.xpRepo.On("UpdateLevel", ctx, int64(100), int64(42), 2).Return(nil)
	m.xpRepo.On("RecordTransaction", ctx, mock.AnythingOfType("*models.XPTransaction")).Return(nil)
	m.eventBus.On("Publish", mock.MatchedBy(func(e events.LevelUpEvent) bool {
		return e.UserID == 42 && e.OldLevel == 1 && e.NewLevel == 2 && e.XP == 110
	})).Return()

	grant, err := service.AwardXP(ctx, 100, 42, 30, "message")

	assert.NoError(t, err)
	assert.True(t, grant.LeveledUp)
	assert.Equal(t, 1, grant.OldLevel)
	assert.Equal(t, 2, grant.XP.Level)
	m.xpRepo.AssertExpectations(t)
	m.eventBus.AssertExpectations(t)
}

func TestXPService_AwardVoiceXP_TracksVoiceSeconds(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewXPService(m.factory)

	m.xpRepo.On("AddXP", ctx, int64(100), int64(42), int64(2), int64(60)).Return(&models.UserXP{
		GuildID: 100,
		UserID:  42,
		XP:      12,
		Level:   1,
	}, nil)
	m.xpRepo.On("RecordTransaction", ctx, mock.MatchedBy(func(tx *models.XPTransaction) bool {
		return tx.Reason == "voice"
	})).Return(nil)

	grant, err := service.AwardVoiceXP(ctx, 100, 42, 2)

	assert.NoError(t, err)
	assert.False(t, grant.LeveledUp)
	m.xpRepo.AssertExpectations(t)
}

func TestXPService_AwardXP_RejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewXPService(m.factory)

	_, err := service.AwardXP(ctx, 100, 42, 0, "message")

	assert.Error(t, err)
	m.factory.AssertNotCalled(t, "CreateForGuild", mock.Anything)
}
