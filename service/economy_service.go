package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harrywsong/studiobot-sub000/events"
	"github.com/harrywsong/studiobot-sub000/models"
)

// ErrInsufficientFunds is returned by Transfer when the sender cannot cover
// the amount.
var ErrInsufficientFunds = errors.New("insufficient coins")

const (
	defaultStartingCoins = 200
	defaultDailyBonus    = 100
)

type economyService struct {
	uowFactory UnitOfWorkFactory
	configs    GuildConfigService
}

// NewEconomyService creates a new economy service
func NewEconomyService(uowFactory UnitOfWorkFactory, configs GuildConfigService) EconomyService {
	return &economyService{
		uowFactory: uowFactory,
		configs:    configs,
	}
}

// ensureWallet returns the user's wallet, creating it with the guild's
// starting balance on first touch.
func (s *economyService) ensureWallet(ctx context.Context, uow UnitOfWork, guildID, userID int64) (*models.Wallet, error) {
	wallet, err := uow.WalletRepository().GetByUser(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet != nil {
		return wallet, nil
	}

	starting := s.configs.IntSetting(ctx, guildID, "starting_coins", defaultStartingCoins)
	wallet, err = uow.WalletRepository().Create(ctx, guildID, userID, starting)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	if starting > 0 {
		if err := uow.CoinTransactionRepository().Record(ctx, &models.CoinTransaction{
			GuildID:     guildID,
			UserID:      userID,
			Amount:      starting,
			Type:        models.TransactionTypeStarting,
			Description: "Starting balance",
		}); err != nil {
			return nil, fmt.Errorf("failed to record starting balance: %w", err)
		}
	}

	return wallet, nil
}

func (s *economyService) Balance(ctx context.Context, guildID, userID int64) (int64, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	wallet, err := s.ensureWallet(ctx, uow, guildID, userID)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return wallet.Coins, nil
}

func (s *economyService) AddCoins(ctx context.Context, guildID, userID, amount int64, txType models.TransactionType, description string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	wallet, err := s.ensureWallet(ctx, uow, guildID, userID)
	if err != nil {
		return 0, err
	}

	if err := uow.WalletRepository().AddCoins(ctx, guildID, userID, amount); err != nil {
		return 0, fmt.Errorf("failed to add coins: %w", err)
	}

	if err := uow.CoinTransactionRepository().Record(ctx, &models.CoinTransaction{
		GuildID:     guildID,
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		Description: description,
	}); err != nil {
		return 0, fmt.Errorf("failed to record transaction: %w", err)
	}

	newBalance := wallet.Coins + amount
	uow.EventBus().Publish(events.BalanceChangeEvent{
		GuildID:         guildID,
		UserID:          userID,
		ChangeAmount:    amount,
		NewBalance:      newBalance,
		TransactionType: txType,
	})

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return newBalance, nil
}

func (s *economyService) RemoveCoins(ctx context.Context, guildID, userID, amount int64, txType models.TransactionType, description string) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	wallet, err := s.ensureWallet(ctx, uow, guildID, userID)
	if err != nil {
		return false, err
	}

	ok, err := uow.WalletRepository().DeductCoins(ctx, guildID, userID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to deduct coins: %w", err)
	}
	if !ok {
		return false, nil
	}

	if err := uow.CoinTransactionRepository().Record(ctx, &models.CoinTransaction{
		GuildID:     guildID,
		UserID:      userID,
		Amount:      -amount,
		Type:        txType,
		Description: description,
	}); err != nil {
		return false, fmt.Errorf("failed to record transaction: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		GuildID:         guildID,
		UserID:          userID,
		ChangeAmount:    -amount,
		NewBalance:      wallet.Coins - amount,
		TransactionType: txType,
	})

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

func (s *economyService) Transfer(ctx context.Context, guildID, fromUserID, toUserID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if fromUserID == toUserID {
		return fmt.Errorf("cannot transfer to yourself")
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	sender, err := s.ensureWallet(ctx, uow, guildID, fromUserID)
	if err != nil {
		return err
	}
	recipient, err := s.ensureWallet(ctx, uow, guildID, toUserID)
	if err != nil {
		return err
	}

	ok, err := uow.WalletRepository().DeductCoins(ctx, guildID, fromUserID, amount)
	if err != nil {
		return fmt.Errorf("failed to deduct from sender: %w", err)
	}
	if !ok {
		return ErrInsufficientFunds
	}

	if err := uow.WalletRepository().AddCoins(ctx, guildID, toUserID, amount); err != nil {
		return fmt.Errorf("failed to credit recipient: %w", err)
	}

	description := fmt.Sprintf("Transfer between %d and %d", fromUserID, toUserID)
	if err := uow.CoinTransactionRepository().Record(ctx, &models.CoinTransaction{
		GuildID:     guildID,
		UserID:      fromUserID,
		Amount:      -amount,
		Type:        models.TransactionTypeTransferOut,
		Description: description,
	}); err != nil {
		return fmt.Errorf("failed to record sender transaction: %w", err)
	}
	if err := uow.CoinTransactionRepository().Record(ctx, &models.CoinTransaction{
		GuildID:     guildID,
		UserID:      toUserID,
		Amount:      amount,
		Type:        models.TransactionTypeTransferIn,
		Description: description,
	}); err != nil {
		return fmt.Errorf("failed to record recipient transaction: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		GuildID:         guildID,
		UserID:          fromUserID,
		ChangeAmount:    -amount,
		NewBalance:      sender.Coins - amount,
		TransactionType: models.TransactionTypeTransferOut,
	})
	uow.EventBus().Publish(events.BalanceChangeEvent{
		GuildID:         guildID,
		UserID:          toUserID,
		ChangeAmount:    amount,
		NewBalance:      recipient.Coins + amount,
		TransactionType: models.TransactionTypeTransferIn,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *economyService) ClaimDaily(ctx context.Context, guildID, userID int64) (*DailyResult, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if _, err := s.ensureWallet(ctx, uow, guildID, userID); err != nil {
		return nil, err
	}

	// Lock the wallet row until commit. A simultaneous claim blocks here
	// and then sees this claim's transaction row in LastOfType.
	wallet, err := uow.WalletRepository().GetForUpdate(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet for user %d in guild %d not found", userID, guildID)
	}

	last, err := uow.CoinTransactionRepository().LastOfType(ctx, guildID, userID, models.TransactionTypeDailyBonus)
	if err != nil {
		return nil, fmt.Errorf("failed to check last daily claim: %w", err)
	}

	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)
	if last != nil && !last.CreatedAt.UTC().Before(today) {
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return &DailyResult{
			Claimed:    false,
			NewBalance: wallet.Coins,
			NextClaim:  today.Add(24 * time.Hour),
		}, nil
	}

	bonus := s.configs.IntSetting(ctx, guildID, "daily_bonus", defaultDailyBonus)
	if err := uow.WalletRepository().AddCoins(ctx, guildID, userID, bonus); err != nil {
		return nil, fmt.Errorf("failed to pay daily bonus: %w", err)
	}

	if err := uow.CoinTransactionRepository().Record(ctx, &models.CoinTransaction{
		GuildID:     guildID,
		UserID:      userID,
		Amount:      bonus,
		Type:        models.TransactionTypeDailyBonus,
		Description: "Daily bonus",
	}); err != nil {
		return nil, fmt.Errorf("failed to record daily bonus: %w", err)
	}

	newBalance := wallet.Coins + bonus
	uow.EventBus().Publish(events.BalanceChangeEvent{
		GuildID:         guildID,
		UserID:          userID,
		ChangeAmount:    bonus,
		NewBalance:      newBalance,
		TransactionType: models.TransactionTypeDailyBonus,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &DailyResult{
		Claimed:    true,
		Amount:     bonus,
		NewBalance: newBalance,
		NextClaim:  today.Add(24 * time.Hour),
	}, nil
}

func (s *economyService) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.Wallet, error) {
	if limit <= 0 {
		limit = 10
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	wallets, err := uow.WalletRepository().Top(ctx, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return wallets, nil
}
