package service

import (
	"context"
	"testing"
	"time"

	"github.com/harrywsong/studiobot-sub000/events"
	"github.com/harrywsong/studiobot-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// testMocks bundles the mocks most service tests need
type testMocks struct {
	factory         *MockUnitOfWorkFactory
	uow             *MockUnitOfWork
	guildConfigRepo *MockGuildConfigRepository
	walletRepo      *MockWalletRepository
	coinTxRepo      *MockCoinTransactionRepository
	xpRepo          *MockXPRepository
	ticketRepo      *MockTicketRepository
	warningRepo     *MockWarningRepository
	eventBus        *MockEventPublisher
}

// newTestUnitOfWork wires a full mock unit of work with passing
// Begin/Commit/Rollback expectations for the given guild.
func newTestUnitOfWork(ctx context.Context, guildID int64) *testMocks {
	m := &testMocks{
		factory:         new(MockUnitOfWorkFactory),
		uow:             new(MockUnitOfWork),
		guildConfigRepo: new(MockGuildConfigRepository),
		walletRepo:      new(MockWalletRepository),
		coinTxRepo:      new(MockCoinTransactionRepository),
		xpRepo:          new(MockXPRepository),
		ticketRepo:      new(MockTicketRepository),
		warningRepo:     new(MockWarningRepository),
		eventBus:        new(MockEventPublisher),
	}
	m.uow.SetRepositories(m.guildConfigRepo, m.walletRepo, m.coinTxRepo, m.xpRepo, m.ticketRepo, m.warningRepo, m.eventBus)

	m.factory.On("CreateForGuild", guildID).Return(m.uow)
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)

	return m
}

// stubConfigs is a GuildConfigService stub returning fixed settings
type stubConfigs struct {
	GuildConfigService
	settings map[string]any
}

func (s *stubConfigs) IntSetting(ctx context.Context, guildID int64, key string, def int64) int64 {
	if v, ok := s.settings[key]; ok {
		return v.(int64)
	}
	return def
}

func (s *stubConfigs) FloatSetting(ctx context.Context, guildID int64, key string, def float64) float64 {
	if v, ok := s.settings[key]; ok {
		return v.(float64)
	}
	return def
}

func TestEconomyService_Balance_CreatesWalletOnFirstTouch(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewEconomyService(m.factory, &stubConfigs{settings: map[string]any{"starting_coins": int64(500)}})

	m.walletRepo.On("GetByUser", ctx, int64(100), int64(42)).Return(nil, nil)
	m.walletRepo.On("Create", ctx, int64(100), int64(42), int64(500)).Return(&models.Wallet{
		GuildID: 100,
		UserID:  42,
		Coins:   500,
	}, nil)
	m.coinTxRepo.On("Record", ctx, mock.MatchedBy(func(tx *models.CoinTransaction) bool {
		return tx.UserID == 42 && tx.Amount == 500 && tx.Type == models.TransactionTypeStarting
	})).Return(nil)

	balance, err := service.Balance(ctx, 100, 42)

	assert.NoError(t, err)
	assert.Equal(t, int64(500), balance)
	m.walletRepo.AssertExpectations(t)
	m.coinTxRepo.AssertExpectations(t)
}

func TestEconomyService_AddCoins(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewEconomyService(m.factory, &stubConfigs{})

	m.walletRepo.On("GetByUser", ctx, int64(100), int64(42)).Return(&models.Wallet{
		GuildID: 100,
		UserID:  42,
		Coins:   250,
	}, nil)
	m.walletRepo.On("AddCoins", ctx, int64(100), int64(42), int64(80)).Return(nil)
	m.coinTxRepo.On("Record", ctx, mock.MatchedBy(func(tx *models.CoinTransaction) bool {
		return tx.Amount == 80 && tx.Type == models.TransactionTypeGameWin
	})).Return(nil)
	m.eventBus.On("Publish", mock.MatchedBy(func(e events.BalanceChangeEvent) bool {
		return e.UserID == 42 && e.ChangeAmount == 80 && e.NewBalance == 330
	})).Return()

	newBalance, err := service.AddCoins(ctx, 100, 42, 80, models.TransactionTypeGameWin, "crash win")

	assert.NoError(t, err)
	assert.Equal(t, int64(330), newBalance)
	m.walletRepo.AssertExpectations(t)
	m.eventBus.AssertExpectations(t)
}

func TestEconomyService_RemoveCoins_Insufficient(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewEconomyService(m.factory, &stubConfigs{})

	m.walletRepo.On("GetByUser", ctx, int64(100), int64(42)).Return(&models.Wallet{
		GuildID: 100,
		UserID:  42,
		Coins:   30,
	}, nil)
	m.walletRepo.On("DeductCoins", ctx, int64(100), int64(42), int64(50)).Return(false, nil)

	ok, err := service.RemoveCoins(ctx, 100, 42, 50, models.TransactionTypeGameBet, "crash bet")

	assert.NoError(t, err)
	assert.False(t, ok)
	m.walletRepo.AssertExpectations(t)
	// Nothing is logged when the deduction is refused
	m.coinTxRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestEconomyService_Transfer(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewEconomyService(m.factory, &stubConfigs{})

	m.walletRepo.On("GetByUser", ctx, int64(100), int64(1)).Return(&models.Wallet{GuildID: 100, UserID: 1, Coins: 300}, nil)
	m.walletRepo.On("GetByUser", ctx, int64(100), int64(2)).Return(&models.Wallet{GuildID: 100, UserID: 2, Coins: 100}, nil)
	m.walletRepo.On("DeductCoins", ctx, int64(100), int64(1), int64(120)).Return(true, nil)
	m.walletRepo.On("AddCoins", ctx, int64(100), int64(2), int64(120)).Return(nil)
	m.coinTxRepo.On("Record", ctx, mock.MatchedBy(func(tx *models.CoinTransaction) bool {
		return tx.UserID == 1 && tx.Amount == -120 && tx.Type == models.TransactionTypeTransferOut
	})).Return(nil)
	m.coinTxRepo.On("Record", ctx, mock.MatchedBy(func(tx *models.CoinTransaction) bool {
		return tx.UserID == 2 && tx.Amount == 120 && tx.Type == models.TransactionTypeTransferIn
	})).Return(nil)
	m.eventBus.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return().Twice()

	err := service.Transfer(ctx, 100, 1, 2, 120)

	assert.NoError(t, err)
	m.walletRepo.AssertExpectations(t)
	m.coinTxRepo.AssertExpectations(t)
	m.eventBus.AssertExpectations(t)
}

func TestEconomyService_Transfer_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewEconomyService(m.factory, &stubConfigs{})

	m.walletRepo.On("GetByUser", ctx, int64(100), int64(1)).Return(&models.Wallet{GuildID: 100, UserID: 1, Coins: 10}, nil)
	m.walletRepo.On("GetByUser", ctx, int64(100), int64(2)).Return(&models.Wallet{GuildID: 100, UserID: 2, Coins: 100}, nil)
	m.walletRepo.On("DeductCoins", ctx, int64(100), int64(1), int64(120)).Return(false, nil)

	err := service.Transfer(ctx, 100, 1, 2, 120)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	m.walletRepo.AssertNotCalled(t, "AddCoins", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEconomyService_Transfer_SelfRejected(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewEconomyService(m.factory, &stubConfigs{})

	err := service.Transfer(ctx, 100, 1, 1, 50)

	assert.Error(t, err)
	m.factory.AssertNotCalled(t, "CreateForGuild", mock.Anything)
}

func TestEconomyService_ClaimDaily_FirstClaimOfDay(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewEconomyService(m.factory, &stubConfigs{})

	yesterday := time.Now().UTC().Add(-25 * time.Hour)
	m.walletRepo.On("GetByUser", ctx, int64(100), int64(42)).Return(&models.Wallet{GuildID: 100, UserID: 42, Coins: 200}, nil)
	m.walletRepo.On("GetForUpdate", ctx, int64(100), int64(42)).Return(&models.Wallet{GuildID: 100, UserID: 42, Coins: 200}, nil)
	m.coinTxRepo.On("LastOfType", ctx, int64(100), int64(42), models.TransactionTypeDailyBonus).Return(&models.CoinTransaction{
		CreatedAt: yesterday,
	}, nil)
	m.walletRepo.On("AddCoins", ctx, int64(100), int64(42), int64(100)).Return(nil)
	m.coinTxRepo.On("Record", ctx, mock.MatchedBy(func(tx *models.CoinTransaction) bool {
		return tx.Amount == 100 && tx.Type == models.TransactionTypeDailyBonus
	})).Return(nil)
	m.eventBus.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()

	result, err := service.ClaimDaily(ctx, 100, 42)

	assert.NoError(t, err)
	assert.True(t, result.Claimed)
	assert.Equal(t, int64(100), result.Amount)
	assert.Equal(t, int64(300), result.NewBalance)
	m.coinTxRepo.AssertExpectations(t)
}

func TestEconomyService_ClaimDaily_AlreadyClaimedToday(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewEconomyService(m.factory, &stubConfigs{})

	m.walletRepo.On("GetByUser", ctx, int64(100), int64(42)).Return(&models.Wallet{GuildID: 100, UserID: 42, Coins: 300}, nil)
	m.walletRepo.On("GetForUpdate", ctx, int64(100), int64(42)).Return(&models.Wallet{GuildID: 100, UserID: 42, Coins: 300}, nil)
	m.coinTxRepo.On("LastOfType", ctx, int64(100), int64(42), models.TransactionTypeDailyBonus).Return(&models.CoinTransaction{
		CreatedAt: time.Now().UTC(),
	}, nil)

	result, err := service.ClaimDaily(ctx, 100, 42)

	assert.NoError(t, err)
	assert.False(t, result.Claimed)
	assert.Equal(t, int64(300), result.NewBalance)
	assert.True(t, result.NextClaim.After(time.Now().UTC()))
	m.walletRepo.AssertNotCalled(t, "AddCoins", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEconomyService_ClaimDaily_LocksWalletRow(t *testing.T) {
	ctx := context.Background()
	m := newTestUnitOfWork(ctx, 100)

	service := NewEconomyService(m.factory, &stubConfigs{})

	m.walletRepo.On("GetByUser", ctx, int64(100), int64(42)).Return(&models.Wallet{GuildID: 100, UserID: 42, Coins: 0}, nil)
	m.walletRepo.On("GetForUpdate", ctx, int64(100), int64(42)).Return(&models.Wallet{GuildID: 100, UserID: 42, Coins: 0}, nil)
	m.coinTxRepo.On("LastOfType", ctx, int64(100), int64(42), models.TransactionTypeDailyBonus).Return(nil, nil)
	m.walletRepo.On("AddCoins", ctx, int64(100), int64(42), int64(100)).Return(nil)
	m.coinTxRepo.On("Record", ctx, mock.Anything).Return(nil)
	m.eventBus.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()

	result, err := service.ClaimDaily(ctx, 100, 42)

	assert.NoError(t, err)
	assert.True(t, result.Claimed)
	// The daily check must read through the locked row so two claims in
	// flight serialize instead of both granting.
	m.walletRepo.AssertCalled(t, "GetForUpdate", ctx, int64(100), int64(42))
}
