package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harrywsong/studiobot-sub000/database"
	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/jackc/pgx/v5"
)

// GuildConfigRepository implements the GuildConfigRepository interface
type GuildConfigRepository struct {
	q queryable
}

// NewGuildConfigRepository creates a new guild config repository
func NewGuildConfigRepository(db *database.DB) *GuildConfigRepository {
	return &GuildConfigRepository{q: db.Pool}
}

// newGuildConfigRepositoryWithTx creates a new guild config repository with a transaction
func newGuildConfigRepositoryWithTx(tx queryable) *GuildConfigRepository {
	return &GuildConfigRepository{q: tx}
}

const guildConfigColumns = `guild_id, guild_name, channels, roles, features, settings, reaction_roles, created_at, updated_at`

// GetByGuildID retrieves a guild's config, or nil if the guild has never been configured
func (r *GuildConfigRepository) GetByGuildID(ctx context.Context, guildID int64) (*models.GuildConfig, error) {
	query := `SELECT ` + guildConfigColumns + ` FROM guild_configs WHERE guild_id = $1`

	config, err := scanGuildConfig(r.q.QueryRow(ctx, query, guildID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get config for guild %d: %w", guildID, err)
	}

	return config, nil
}

// GetOrCreate retrieves a guild's config, creating a default one if absent
func (r *GuildConfigRepository) GetOrCreate(ctx context.Context, guildID int64, guildName string) (*models.GuildConfig, error) {
	existing, err := r.GetByGuildID(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	defaults := models.NewGuildConfig(guildID, guildName)
	channels, roles, features, settings, reactionRoles, err := marshalGuildConfig(defaults)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO guild_configs (guild_id, guild_name, channels, roles, features, settings, reaction_roles)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + guildConfigColumns

	config, err := scanGuildConfig(r.q.QueryRow(ctx, query,
		guildID, guildName, channels, roles, features, settings, reactionRoles))
	if err != nil {
		return nil, fmt.Errorf("failed to create config for guild %d: %w", guildID, err)
	}

	return config, nil
}

// Update persists the full config record
func (r *GuildConfigRepository) Update(ctx context.Context, config *models.GuildConfig) error {
	channels, roles, features, settings, reactionRoles, err := marshalGuildConfig(config)
	if err != nil {
		return err
	}

	query := `
		UPDATE guild_configs
		SET guild_name = $2, channels = $3, roles = $4, features = $5,
		    settings = $6, reaction_roles = $7, updated_at = NOW()
		WHERE guild_id = $1
	`

	result, err := r.q.Exec(ctx, query,
		config.GuildID, config.GuildName, channels, roles, features, settings, reactionRoles)
	if err != nil {
		return fmt.Errorf("failed to update config for guild %d: %w", config.GuildID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("config for guild %d not found", config.GuildID)
	}

	return nil
}

// GetAll returns every stored guild config
func (r *GuildConfigRepository) GetAll(ctx context.Context) ([]*models.GuildConfig, error) {
	query := `SELECT ` + guildConfigColumns + ` FROM guild_configs ORDER BY guild_id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all guild configs: %w", err)
	}
	defer rows.Close()

	var configs []*models.GuildConfig
	for rows.Next() {
		config, err := scanGuildConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guild config: %w", err)
		}
		configs = append(configs, config)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate guild configs: %w", err)
	}

	return configs, nil
}

func marshalGuildConfig(config *models.GuildConfig) (channels, roles, features, settings, reactionRoles []byte, err error) {
	config.EnsureMaps()

	if channels, err = json.Marshal(config.Channels); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal channels: %w", err)
	}
	if roles, err = json.Marshal(config.Roles); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal roles: %w", err)
	}
	if features, err = json.Marshal(config.Features); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal features: %w", err)
	}
	if settings, err = json.Marshal(config.Settings); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	if reactionRoles, err = json.Marshal(config.ReactionRoles); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal reaction roles: %w", err)
	}

	return channels, roles, features, settings, reactionRoles, nil
}

func scanGuildConfig(row pgx.Row) (*models.GuildConfig, error) {
	var config models.GuildConfig
	var channels, roles, features, settings, reactionRoles []byte

	err := row.Scan(
		&config.GuildID,
		&config.GuildName,
		&channels,
		&roles,
		&features,
		&settings,
		&reactionRoles,
		&config.CreatedAt,
		&config.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(channels, &config.Channels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal channels: %w", err)
	}
	if err := json.Unmarshal(roles, &config.Roles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roles: %w", err)
	}
	if err := json.Unmarshal(features, &config.Features); err != nil {
		return nil, fmt.Errorf("failed to unmarshal features: %w", err)
	}
	if err := json.Unmarshal(settings, &config.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if err := json.Unmarshal(reactionRoles, &config.ReactionRoles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reaction roles: %w", err)
	}

	config.EnsureMaps()
	return &config, nil
}
