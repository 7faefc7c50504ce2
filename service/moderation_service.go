package service

import (
	"context"
	"fmt"

	"github.com/harrywsong/studiobot-sub000/models"
)

type moderationService struct {
	uowFactory UnitOfWorkFactory
}

// NewModerationService creates a new moderation service
func NewModerationService(uowFactory UnitOfWorkFactory) ModerationService {
	return &moderationService{uowFactory: uowFactory}
}

func (s *moderationService) Warn(ctx context.Context, guildID, userID, moderatorID int64, reason string) (*models.Warning, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	warning := &models.Warning{
		GuildID:     guildID,
		UserID:      userID,
		ModeratorID: moderatorID,
		Reason:      reason,
	}

	if err := uow.WarningRepository().Create(ctx, warning); err != nil {
		return nil, fmt.Errorf("failed to create warning: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return warning, nil
}

func (s *moderationService) Warnings(ctx context.Context, guildID, userID int64) ([]*models.Warning, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	warnings, err := uow.WarningRepository().GetByUser(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get warnings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return warnings, nil
}
