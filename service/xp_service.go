package service

import (
	"context"
	"fmt"

	"github.com/harrywsong/studiobot-sub000/events"
	"github.com/harrywsong/studiobot-sub000/models"
)

type xpService struct {
	uowFactory UnitOfWorkFactory
}

// NewXPService creates a new XP service
func NewXPService(uowFactory UnitOfWorkFactory) XPService {
	return &xpService{uowFactory: uowFactory}
}

func (s *xpService) AwardXP(ctx context.Context, guildID, userID, amount int64, reason string) (*XPGrant, error) {
	return s.award(ctx, guildID, userID, amount, 0, reason)
}

func (s *xpService) AwardVoiceXP(ctx context.Context, guildID, userID, amount int64) (*XPGrant, error) {
	// Voice grants arrive once per minute of presence
	return s.award(ctx, guildID, userID, amount, 60, "voice")
}

func (s *xpService) award(ctx context.Context, guildID, userID, amount, voiceSeconds int64, reason string) (*XPGrant, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	xp, err := uow.XPRepository().AddXP(ctx, guildID, userID, amount, voiceSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to add XP: %w", err)
	}

	grant := &XPGrant{XP: xp, OldLevel: xp.Level}

	newLevel := models.LevelForXP(xp.XP)
	if newLevel != xp.Level {
		if err := uow.XPRepository().UpdateLevel(ctx, guildID, userID, newLevel); err != nil {
			return nil, fmt.Errorf("failed to update level: %w", err)
		}
		if newLevel > xp.Level {
			grant.LeveledUp = true
			uow.EventBus().Publish(events.LevelUpEvent{
				GuildID:  guildID,
				UserID:   userID,
				OldLevel: xp.Level,
				NewLevel: newLevel,
				XP:       xp.XP,
			})
		}
		xp.Level = newLevel
	}

	if err := uow.XPRepository().RecordTransaction(ctx, &models.XPTransaction{
		GuildID: guildID,
		UserID:  userID,
		Amount:  amount,
		Reason:  reason,
	}); err != nil {
		return nil, fmt.Errorf("failed to record XP transaction: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return grant, nil
}

func (s *xpService) Rank(ctx context.Context, guildID, userID int64) (*models.UserXP, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	xp, err := uow.XPRepository().GetByUser(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get XP: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return xp, nil
}

func (s *xpService) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.UserXP, error) {
	if limit <= 0 {
		limit = 10
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	records, err := uow.XPRepository().Top(ctx, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load XP leaderboard: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return records, nil
}
