package service

import (
	"context"
	"time"

	"github.com/harrywsong/studiobot-sub000/events"
	"github.com/harrywsong/studiobot-sub000/models"
)

// GuildConfigRepository defines the interface for guild config data access
type GuildConfigRepository interface {
	// GetByGuildID retrieves a guild's config, or nil if the guild has
	// never been configured
	GetByGuildID(ctx context.Context, guildID int64) (*models.GuildConfig, error)

	// GetOrCreate retrieves a guild's config, creating a default one if absent
	GetOrCreate(ctx context.Context, guildID int64, guildName string) (*models.GuildConfig, error)

	// Update persists the full config record
	Update(ctx context.Context, config *models.GuildConfig) error

	// GetAll returns every stored guild config
	GetAll(ctx context.Context) ([]*models.GuildConfig, error)
}

// WalletRepository defines the interface for coin wallet data access
type WalletRepository interface {
	// GetByUser retrieves a user's wallet, or nil if they have none yet
	GetByUser(ctx context.Context, guildID, userID int64) (*models.Wallet, error)

	// GetForUpdate retrieves a wallet and locks its row for the rest of
	// the transaction, serializing read-then-write flows
	GetForUpdate(ctx context.Context, guildID, userID int64) (*models.Wallet, error)

	// Create creates a wallet seeded with the starting balance
	Create(ctx context.Context, guildID, userID, startingCoins int64) (*models.Wallet, error)

	// AddCoins credits a wallet, incrementing total earned
	AddCoins(ctx context.Context, guildID, userID, amount int64) error

	// DeductCoins debits a wallet if the balance covers it.
	// Returns false with no error when funds are insufficient.
	DeductCoins(ctx context.Context, guildID, userID, amount int64) (bool, error)

	// Top returns the richest wallets in a guild
	Top(ctx context.Context, guildID int64, limit int) ([]*models.Wallet, error)
}

// CoinTransactionRepository defines the interface for the coin audit log
type CoinTransactionRepository interface {
	// Record appends a transaction entry
	Record(ctx context.Context, tx *models.CoinTransaction) error

	// GetByUser returns a user's most recent transactions
	GetByUser(ctx context.Context, guildID, userID int64, limit int) ([]*models.CoinTransaction, error)

	// LastOfType returns a user's most recent transaction of a given type,
	// or nil when none exists
	LastOfType(ctx context.Context, guildID, userID int64, txType models.TransactionType) (*models.CoinTransaction, error)
}

// XPRepository defines the interface for XP data access
type XPRepository interface {
	// GetByUser retrieves a user's XP record, or nil when absent
	GetByUser(ctx context.Context, guildID, userID int64) (*models.UserXP, error)

	// AddXP upserts the record, incrementing XP and voice time, and
	// returns the updated row
	AddXP(ctx context.Context, guildID, userID, amount, voiceSeconds int64) (*models.UserXP, error)

	// UpdateLevel stores a recomputed level
	UpdateLevel(ctx context.Context, guildID, userID int64, level int) error

	// Top returns the highest-XP users in a guild
	Top(ctx context.Context, guildID int64, limit int) ([]*models.UserXP, error)

	// RecordTransaction appends an XP audit entry
	RecordTransaction(ctx context.Context, tx *models.XPTransaction) error
}

// TicketRepository defines the interface for ticket data access
type TicketRepository interface {
	// Create persists a new ticket
	Create(ctx context.Context, ticket *models.Ticket) error

	// GetOpenByUser returns a user's open ticket, or nil
	GetOpenByUser(ctx context.Context, guildID, userID int64) (*models.Ticket, error)

	// GetByChannel returns the ticket backed by a channel, or nil
	GetByChannel(ctx context.Context, channelID int64) (*models.Ticket, error)

	// Close marks a ticket closed
	Close(ctx context.Context, id string) error
}

// WarningRepository defines the interface for moderation warnings
type WarningRepository interface {
	// Create persists a new warning
	Create(ctx context.Context, warning *models.Warning) error

	// GetByUser returns all warnings for a user, newest first
	GetByUser(ctx context.Context, guildID, userID int64) ([]*models.Warning, error)
}

// GuildConfigService resolves per-guild configuration. Accessors never fail:
// lookups against unknown guilds or missing keys return zero-value defaults.
type GuildConfigService interface {
	// GetChannelID returns the configured channel ID, or 0
	GetChannelID(ctx context.Context, guildID int64, key string) int64

	// GetChannelName returns the configured channel name, or "Unknown"
	GetChannelName(ctx context.Context, guildID int64, key string) string

	// GetRoleID returns the configured role ID, or 0
	GetRoleID(ctx context.Context, guildID int64, key string) int64

	// GetRoleName returns the configured role name, or "Unknown"
	GetRoleName(ctx context.Context, guildID int64, key string) string

	// IsFeatureEnabled reports whether a feature flag is on; false for
	// unknown guilds or flags
	IsFeatureEnabled(ctx context.Context, guildID int64, feature string) bool

	// Setting returns an arbitrary setting value or the given default
	Setting(ctx context.Context, guildID int64, key string, def any) any

	// IntSetting returns a numeric setting coerced to int64
	IntSetting(ctx context.Context, guildID int64, key string, def int64) int64

	// FloatSetting returns a numeric setting coerced to float64
	FloatSetting(ctx context.Context, guildID int64, key string, def float64) float64

	// IsConfigured reports whether the guild has completed setup
	IsConfigured(ctx context.Context, guildID int64) bool

	// Configure creates (or returns) the guild's config record with defaults
	Configure(ctx context.Context, guildID int64, guildName string) (*models.GuildConfig, error)

	// SetChannel binds a channel key
	SetChannel(ctx context.Context, guildID int64, key string, channelID int64, name string) error

	// SetRole binds a role key
	SetRole(ctx context.Context, guildID int64, key string, roleID int64, name string) error

	// SetFeature toggles a feature flag
	SetFeature(ctx context.Context, guildID int64, feature string, enabled bool) error

	// SetSetting stores an arbitrary setting value
	SetSetting(ctx context.Context, guildID int64, key string, value any) error

	// ReactionRoles returns the guild's message -> emoji -> role mappings
	ReactionRoles(ctx context.Context, guildID int64) (map[string]map[string]int64, error)

	// SetReactionRoles replaces the mapping for one message
	SetReactionRoles(ctx context.Context, guildID int64, messageID string, mapping map[string]int64) error

	// AllConfigs returns every stored guild config
	AllConfigs(ctx context.Context) ([]*models.GuildConfig, error)

	// ExportSnapshot serializes a guild's config to JSON
	ExportSnapshot(ctx context.Context, guildID int64) ([]byte, error)

	// ImportSnapshot replaces a guild's config from a JSON snapshot
	ImportSnapshot(ctx context.Context, guildID int64, data []byte) error
}

// DailyResult describes the outcome of a daily bonus claim
type DailyResult struct {
	Claimed    bool
	Amount     int64
	NewBalance int64
	NextClaim  time.Time
}

// EconomyService defines coin economy operations
type EconomyService interface {
	// Balance returns a user's coin balance, creating their wallet with the
	// guild's starting balance on first touch
	Balance(ctx context.Context, guildID, userID int64) (int64, error)

	// AddCoins credits a user and logs the transaction, returning the new balance
	AddCoins(ctx context.Context, guildID, userID, amount int64, txType models.TransactionType, description string) (int64, error)

	// RemoveCoins debits a user if funds allow, logging the transaction.
	// Returns false with no error when the balance is insufficient.
	RemoveCoins(ctx context.Context, guildID, userID, amount int64, txType models.TransactionType, description string) (bool, error)

	// Transfer moves coins between users atomically
	Transfer(ctx context.Context, guildID, fromUserID, toUserID, amount int64) error

	// ClaimDaily pays the daily bonus once per UTC day
	ClaimDaily(ctx context.Context, guildID, userID int64) (*DailyResult, error)

	// Leaderboard returns the richest users in a guild
	Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.Wallet, error)
}

// XPGrant describes the result of an XP award
type XPGrant struct {
	XP        *models.UserXP
	LeveledUp bool
	OldLevel  int
}

// XPService defines XP and leveling operations
type XPService interface {
	// AwardXP grants XP, recomputing the level and publishing a level-up
	// event when a threshold is crossed
	AwardXP(ctx context.Context, guildID, userID, amount int64, reason string) (*XPGrant, error)

	// AwardVoiceXP grants XP for a minute of voice presence
	AwardVoiceXP(ctx context.Context, guildID, userID, amount int64) (*XPGrant, error)

	// Rank returns a user's XP record, or nil when they have none
	Rank(ctx context.Context, guildID, userID int64) (*models.UserXP, error)

	// Leaderboard returns the highest-XP users in a guild
	Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.UserXP, error)
}

// TicketService defines support ticket operations
type TicketService interface {
	// Open records a ticket backed by the given channel.
	// Fails with ErrTicketExists when the user already has one open.
	Open(ctx context.Context, guildID, userID, channelID int64) (*models.Ticket, error)

	// HasOpen reports whether the user already has an open ticket
	HasOpen(ctx context.Context, guildID, userID int64) (bool, error)

	// CloseByChannel closes the ticket backed by a channel and returns it
	CloseByChannel(ctx context.Context, guildID, channelID int64) (*models.Ticket, error)
}

// ModerationService defines warning operations
type ModerationService interface {
	// Warn records a warning against a user
	Warn(ctx context.Context, guildID, userID, moderatorID int64, reason string) (*models.Warning, error)

	// Warnings returns all warnings for a user, newest first
	Warnings(ctx context.Context, guildID, userID int64) ([]*models.Warning, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	GuildConfigRepository() GuildConfigRepository
	WalletRepository() WalletRepository
	CoinTransactionRepository() CoinTransactionRepository
	XPRepository() XPRepository
	TicketRepository() TicketRepository
	WarningRepository() WarningRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// CreateForGuild creates a new UnitOfWork instance scoped to a specific guild
	CreateForGuild(guildID int64) UnitOfWork
}
