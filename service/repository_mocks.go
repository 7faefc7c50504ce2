package service

import (
	"context"

	"github.com/harrywsong/studiobot-sub000/events"
	"github.com/harrywsong/studiobot-sub000/models"

	"github.com/stretchr/testify/mock"
)

// MockGuildConfigRepository is a mock implementation of GuildConfigRepository
type MockGuildConfigRepository struct {
	mock.Mock
}

func (m *MockGuildConfigRepository) GetByGuildID(ctx context.Context, guildID int64) (*models.GuildConfig, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildConfig), args.Error(1)
}

func (m *MockGuildConfigRepository) GetOrCreate(ctx context.Context, guildID int64, guildName string) (*models.GuildConfig, error) {
	args := m.Called(ctx, guildID, guildName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildConfig), args.Error(1)
}

func (m *MockGuildConfigRepository) Update(ctx context.Context, config *models.GuildConfig) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}

func (m *MockGuildConfigRepository) GetAll(ctx context.Context) ([]*models.GuildConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GuildConfig), args.Error(1)
}

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByUser(ctx context.Context, guildID, userID int64) (*models.Wallet, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetForUpdate(ctx context.Context, guildID, userID int64) (*models.Wallet, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Create(ctx context.Context, guildID, userID, startingCoins int64) (*models.Wallet, error) {
	args := m.Called(ctx, guildID, userID, startingCoins)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) AddCoins(ctx context.Context, guildID, userID, amount int64) error {
	args := m.Called(ctx, guildID, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) DeductCoins(ctx context.Context, guildID, userID, amount int64) (bool, error) {
	args := m.Called(ctx, guildID, userID, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockWalletRepository) Top(ctx context.Context, guildID int64, limit int) ([]*models.Wallet, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Wallet), args.Error(1)
}

// MockCoinTransactionRepository is a mock implementation of CoinTransactionRepository
type MockCoinTransactionRepository struct {
	mock.Mock
}

func (m *MockCoinTransactionRepository) Record(ctx context.Context, tx *models.CoinTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockCoinTransactionRepository) GetByUser(ctx context.Context, guildID, userID int64, limit int) ([]*models.CoinTransaction, error) {
	args := m.Called(ctx, guildID, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CoinTransaction), args.Error(1)
}

func (m *MockCoinTransactionRepository) LastOfType(ctx context.Context, guildID, userID int64, txType models.TransactionType) (*models.CoinTransaction, error) {
	args := m.Called(ctx, guildID, userID, txType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CoinTransaction), args.Error(1)
}

// MockXPRepository is a mock implementation of XPRepository
type MockXPRepository struct {
	mock.Mock
}

func (m *MockXPRepository) GetByUser(ctx context.Context, guildID, userID int64) (*models.UserXP, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserXP), args.Error(1)
}

func (m *MockXPRepository) AddXP(ctx context.Context, guildID, userID, amount, voiceSeconds int64) (*models.UserXP, error) {
	args := m.Called(ctx, guildID, userID, amount, voiceSeconds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserXP), args.Error(1)
}

func (m *MockXPRepository) UpdateLevel(ctx context.Context, guildID, userID int64, level int) error {
	args := m.Called(ctx, guildID, userID, level)
	return args.Error(0)
}

func (m *MockXPRepository) Top(ctx context.Context, guildID int64, limit int) ([]*models.UserXP, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserXP), args.Error(1)
}

func (m *MockXPRepository) RecordTransaction(ctx context.Context, tx *models.XPTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) GetOpenByUser(ctx context.Context, guildID, userID int64) (*models.Ticket, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByChannel(ctx context.Context, channelID int64) (*models.Ticket, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Close(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockWarningRepository is a mock implementation of WarningRepository
type MockWarningRepository struct {
	mock.Mock
}

func (m *MockWarningRepository) Create(ctx context.Context, warning *models.Warning) error {
	args := m.Called(ctx, warning)
	return args.Error(0)
}

func (m *MockWarningRepository) GetByUser(ctx context.Context, guildID, userID int64) ([]*models.Warning, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Warning), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Tests usually build
// one with newTestUnitOfWork so Begin/Commit/Rollback just succeed.
type MockUnitOfWork struct {
	mock.Mock

	guildConfigRepo GuildConfigRepository
	walletRepo      WalletRepository
	coinTxRepo      CoinTransactionRepository
	xpRepo          XPRepository
	ticketRepo      TicketRepository
	warningRepo     WarningRepository
	eventBus        EventPublisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) GuildConfigRepository() GuildConfigRepository {
	return m.guildConfigRepo
}

func (m *MockUnitOfWork) WalletRepository() WalletRepository {
	return m.walletRepo
}

func (m *MockUnitOfWork) CoinTransactionRepository() CoinTransactionRepository {
	return m.coinTxRepo
}

func (m *MockUnitOfWork) XPRepository() XPRepository {
	return m.xpRepo
}

func (m *MockUnitOfWork) TicketRepository() TicketRepository {
	return m.ticketRepo
}

func (m *MockUnitOfWork) WarningRepository() WarningRepository {
	return m.warningRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// SetRepositories wires mock repositories into the unit of work
func (m *MockUnitOfWork) SetRepositories(
	guildConfigRepo GuildConfigRepository,
	walletRepo WalletRepository,
	coinTxRepo CoinTransactionRepository,
	xpRepo XPRepository,
	ticketRepo TicketRepository,
	warningRepo WarningRepository,
	eventBus EventPublisher,
) {
	m.guildConfigRepo = guildConfigRepo
	m.walletRepo = walletRepo
	m.coinTxRepo = coinTxRepo
	m.xpRepo = xpRepo
	m.ticketRepo = ticketRepo
	m.warningRepo = warningRepo
	m.eventBus = eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) CreateForGuild(guildID int64) UnitOfWork {
	args := m.Called(guildID)
	return args.Get(0).(UnitOfWork)
}
