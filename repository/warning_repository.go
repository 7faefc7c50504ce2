package repository

import (
	"context"
	"fmt"

	"github.com/harrywsong/studiobot-sub000/database"
	"github.com/harrywsong/studiobot-sub000/models"
)

// WarningRepository implements the WarningRepository interface
type WarningRepository struct {
	q queryable
}

// NewWarningRepository creates a new warning repository
func NewWarningRepository(db *database.DB) *WarningRepository {
	return &WarningRepository{q: db.Pool}
}

// newWarningRepositoryWithTx creates a new warning repository with a transaction
func newWarningRepositoryWithTx(tx queryable) *WarningRepository {
	return &WarningRepository{q: tx}
}

// Create persists a new warning
func (r *WarningRepository) Create(ctx context.Context, warning *models.Warning) error {
	query := `
		INSERT INTO warnings (guild_id, user_id, moderator_id, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		warning.GuildID, warning.UserID, warning.ModeratorID, warning.Reason,
	).Scan(&warning.ID, &warning.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create warning for user %d: %w", warning.UserID, err)
	}

	return nil
}

// GetByUser returns all warnings for a user, newest first
func (r *WarningRepository) GetByUser(ctx context.Context, guildID, userID int64) ([]*models.Warning, error) {
	query := `
		SELECT id, guild_id, user_id, moderator_id, reason, created_at
		FROM warnings
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get warnings for user %d: %w", userID, err)
	}
	defer rows.Close()

	var warnings []*models.Warning
	for rows.Next() {
		var warning models.Warning
		err := rows.Scan(
			&warning.ID, &warning.GuildID, &warning.UserID,
			&warning.ModeratorID, &warning.Reason, &warning.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan warning: %w", err)
		}
		warnings = append(warnings, &warning)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate warnings: %w", err)
	}

	return warnings, nil
}
