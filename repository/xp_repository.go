package repository

import (
	"context"
	"fmt"

	"github.com/harrywsong/studiobot-sub000/database"
	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/jackc/pgx/v5"
)

// XPRepository implements the XPRepository interface
type XPRepository struct {
	q queryable
}

// NewXPRepository creates a new XP repository
func NewXPRepository(db *database.DB) *XPRepository {
	return &XPRepository{q: db.Pool}
}

// newXPRepositoryWithTx creates a new XP repository with a transaction
func newXPRepositoryWithTx(tx queryable) *XPRepository {
	return &XPRepository{q: tx}
}

// GetByUser retrieves a user's XP record, or nil when absent
func (r *XPRepository) GetByUser(ctx context.Context, guildID, userID int64) (*models.UserXP, error) {
	query := `
		SELECT guild_id, user_id, xp, level, total_voice_seconds, updated_at
		FROM user_xp
		WHERE guild_id = $1 AND user_id = $2
	`

	var xp models.UserXP
	err := r.q.QueryRow(ctx, query, guildID, userID).Scan(
		&xp.GuildID, &xp.UserID, &xp.XP, &xp.Level, &xp.TotalVoiceSeconds, &xp.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get XP for user %d in guild %d: %w", userID, guildID, err)
	}

	return &xp, nil
}

// AddXP upserts the record, incrementing XP and voice time, and returns the updated row
func (r *XPRepository) AddXP(ctx context.Context, guildID, userID, amount, voiceSeconds int64) (*models.UserXP, error) {
	query := `
		INSERT INTO user_xp (guild_id, user_id, xp, total_voice_seconds)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id, user_id) DO UPDATE
		SET xp = user_xp.xp + EXCLUDED.xp,
		    total_voice_seconds = user_xp.total_voice_seconds + EXCLUDED.total_voice_seconds,
		    updated_at = NOW()
		RETURNING guild_id, user_id, xp, level, total_voice_seconds, updated_at
	`

	var xp models.UserXP
	err := r.q.QueryRow(ctx, query, guildID, userID, amount, voiceSeconds).Scan(
		&xp.GuildID, &xp.UserID, &xp.XP, &xp.Level, &xp.TotalVoiceSeconds, &xp.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add XP for user %d in guild %d: %w", userID, guildID, err)
	}

	return &xp, nil
}

// UpdateLevel stores a recomputed level
func (r *XPRepository) UpdateLevel(ctx context.Context, guildID, userID int64, level int) error {
	query := `
		UPDATE user_xp
		SET level = $3, updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2
	`

	result, err := r.q.Exec(ctx, query, guildID, userID, level)
	if err != nil {
		return fmt.Errorf("failed to update level for user %d in guild %d: %w", userID, guildID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("XP record for user %d in guild %d not found", userID, guildID)
	}

	return nil
}

// Top returns the highest-XP users in a guild
func (r *XPRepository) Top(ctx context.Context, guildID int64, limit int) ([]*models.UserXP, error) {
	query := `
		SELECT guild_id, user_id, xp, level, total_voice_seconds, updated_at
		FROM user_xp
		WHERE guild_id = $1
		ORDER BY xp DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top XP for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var records []*models.UserXP
	for rows.Next() {
		var xp models.UserXP
		err := rows.Scan(&xp.GuildID, &xp.UserID, &xp.XP, &xp.Level, &xp.TotalVoiceSeconds, &xp.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan XP record: %w", err)
		}
		records = append(records, &xp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate XP records: %w", err)
	}

	return records, nil
}

// RecordTransaction appends an XP audit entry
func (r *XPRepository) RecordTransaction(ctx context.Context, tx *models.XPTransaction) error {
	query := `
		INSERT INTO xp_transactions (guild_id, user_id, amount, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, tx.GuildID, tx.UserID, tx.Amount, tx.Reason).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record XP transaction for user %d: %w", tx.UserID, err)
	}

	return nil
}
