package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/harrywsong/studiobot-sub000/events"
	"github.com/harrywsong/studiobot-sub000/models"
	log "github.com/sirupsen/logrus"
)

// unknownName is returned by name accessors when a key is not configured
const unknownName = "Unknown"

type guildConfigService struct {
	uowFactory UnitOfWorkFactory

	mu    sync.RWMutex
	cache map[int64]*models.GuildConfig
}

// NewGuildConfigService creates a new guild config service. Reads go through
// an in-memory cache; every write path updates the store first and then
// refreshes the cache, so concurrent admin edits can't lose updates.
func NewGuildConfigService(uowFactory UnitOfWorkFactory) GuildConfigService {
	return &guildConfigService{
		uowFactory: uowFactory,
		cache:      make(map[int64]*models.GuildConfig),
	}
}

// fetch returns the cached config for a guild, loading it from the store on
// a miss. Returns nil for guilds that were never configured.
func (s *guildConfigService) fetch(ctx context.Context, guildID int64) (*models.GuildConfig, error) {
	s.mu.RLock()
	cached, ok := s.cache[guildID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	config, err := uow.GuildConfigRepository().GetByGuildID(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load config for guild %d: %w", guildID, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Unconfigured guilds are not cached so they appear as soon as setup runs
	if config != nil {
		s.mu.Lock()
		s.cache[guildID] = config
		s.mu.Unlock()
	}

	return config, nil
}

// lookup is fetch for accessor paths: errors degrade to "not configured"
// so feature gates and channel lookups never fail a command outright.
func (s *guildConfigService) lookup(ctx context.Context, guildID int64) *models.GuildConfig {
	config, err := s.fetch(ctx, guildID)
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"error":    err,
		}).Warn("Failed to resolve guild config, using defaults")
		return nil
	}
	return config
}

func (s *guildConfigService) GetChannelID(ctx context.Context, guildID int64, key string) int64 {
	config := s.lookup(ctx, guildID)
	if config == nil {
		return 0
	}
	return config.Channels[key].ID
}

func (s *guildConfigService) GetChannelName(ctx context.Context, guildID int64, key string) string {
	config := s.lookup(ctx, guildID)
	if config == nil {
		return unknownName
	}
	if ref, ok := config.Channels[key]; ok {
		return ref.Name
	}
	return unknownName
}

func (s *guildConfigService) GetRoleID(ctx context.Context, guildID int64, key string) int64 {
	config := s.lookup(ctx, guildID)
	if config == nil {
		return 0
	}
	return config.Roles[key].ID
}

func (s *guildConfigService) GetRoleName(ctx context.Context, guildID int64, key string) string {
	config := s.lookup(ctx, guildID)
	if config == nil {
		return unknownName
	}
	if ref, ok := config.Roles[key]; ok {
		return ref.Name
	}
	return unknownName
}

func (s *guildConfigService) IsFeatureEnabled(ctx context.Context, guildID int64, feature string) bool {
	config := s.lookup(ctx, guildID)
	if config == nil {
		return false
	}
	return config.Features[feature]
}

func (s *guildConfigService) Setting(ctx context.Context, guildID int64, key string, def any) any {
	config := s.lookup(ctx, guildID)
	if config == nil {
		return def
	}
	if value, ok := config.Settings[key]; ok {
		return value
	}
	return def
}

func (s *guildConfigService) IntSetting(ctx context.Context, guildID int64, key string, def int64) int64 {
	switch v := s.Setting(ctx, guildID, key, def).(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return def
	}
}

func (s *guildConfigService) FloatSetting(ctx context.Context, guildID int64, key string, def float64) float64 {
	switch v := s.Setting(ctx, guildID, key, def).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return def
	}
}

func (s *guildConfigService) IsConfigured(ctx context.Context, guildID int64) bool {
	return s.lookup(ctx, guildID) != nil
}

func (s *guildConfigService) Configure(ctx context.Context, guildID int64, guildName string) (*models.GuildConfig, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	existing, err := uow.GuildConfigRepository().GetByGuildID(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing config: %w", err)
	}

	config, err := uow.GuildConfigRepository().GetOrCreate(ctx, guildID, guildName)
	if err != nil {
		return nil, fmt.Errorf("failed to configure guild %d: %w", guildID, err)
	}

	// Only announce first-time setup
	if existing == nil {
		uow.EventBus().Publish(events.GuildConfiguredEvent{
			GuildID:   guildID,
			GuildName: guildName,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.store(config)
	return config, nil
}

// mutate loads a guild's config (creating it if needed), applies fn, and
// persists the result, refreshing the cache on success.
func (s *guildConfigService) mutate(ctx context.Context, guildID int64, fn func(*models.GuildConfig)) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	config, err := uow.GuildConfigRepository().GetOrCreate(ctx, guildID, "")
	if err != nil {
		return fmt.Errorf("failed to load config for guild %d: %w", guildID, err)
	}

	fn(config)

	if err := uow.GuildConfigRepository().Update(ctx, config); err != nil {
		return fmt.Errorf("failed to update config for guild %d: %w", guildID, err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.store(config)
	return nil
}

func (s *guildConfigService) SetChannel(ctx context.Context, guildID int64, key string, channelID int64, name string) error {
	return s.mutate(ctx, guildID, func(config *models.GuildConfig) {
		config.Channels[key] = models.ChannelRef{ID: channelID, Name: name}
	})
}

func (s *guildConfigService) SetRole(ctx context.Context, guildID int64, key string, roleID int64, name string) error {
	return s.mutate(ctx, guildID, func(config *models.GuildConfig) {
		config.Roles[key] = models.RoleRef{ID: roleID, Name: name}
	})
}

func (s *guildConfigService) SetFeature(ctx context.Context, guildID int64, feature string, enabled bool) error {
	return s.mutate(ctx, guildID, func(config *models.GuildConfig) {
		config.Features[feature] = enabled
	})
}

func (s *guildConfigService) SetSetting(ctx context.Context, guildID int64, key string, value any) error {
	return s.mutate(ctx, guildID, func(config *models.GuildConfig) {
		config.Settings[key] = value
	})
}

func (s *guildConfigService) ReactionRoles(ctx context.Context, guildID int64) (map[string]map[string]int64, error) {
	config, err := s.fetch(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return map[string]map[string]int64{}, nil
	}
	return config.ReactionRoles, nil
}

func (s *guildConfigService) SetReactionRoles(ctx context.Context, guildID int64, messageID string, mapping map[string]int64) error {
	return s.mutate(ctx, guildID, func(config *models.GuildConfig) {
		if len(mapping) == 0 {
			delete(config.ReactionRoles, messageID)
			return
		}
		config.ReactionRoles[messageID] = mapping
	})
}

func (s *guildConfigService) AllConfigs(ctx context.Context) ([]*models.GuildConfig, error) {
	// All-guild reads bypass the per-guild cache; they run on startup passes
	uow := s.uowFactory.CreateForGuild(0)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	configs, err := uow.GuildConfigRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load all configs: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.mu.Lock()
	for _, config := range configs {
		s.cache[config.GuildID] = config
	}
	s.mu.Unlock()

	return configs, nil
}

func (s *guildConfigService) ExportSnapshot(ctx context.Context, guildID int64) ([]byte, error) {
	config, err := s.fetch(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, fmt.Errorf("guild %d is not configured", guildID)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize config for guild %d: %w", guildID, err)
	}

	return data, nil
}

func (s *guildConfigService) ImportSnapshot(ctx context.Context, guildID int64, data []byte) error {
	var imported models.GuildConfig
	if err := json.Unmarshal(data, &imported); err != nil {
		return fmt.Errorf("invalid config snapshot: %w", err)
	}
	imported.EnsureMaps()

	return s.mutate(ctx, guildID, func(config *models.GuildConfig) {
		// The snapshot wins everything except identity
		config.GuildName = imported.GuildName
		config.Channels = imported.Channels
		config.Roles = imported.Roles
		config.Features = imported.Features
		config.Settings = imported.Settings
		config.ReactionRoles = imported.ReactionRoles
	})
}

func (s *guildConfigService) store(config *models.GuildConfig) {
	s.mu.Lock()
	s.cache[config.GuildID] = config
	s.mu.Unlock()
}
