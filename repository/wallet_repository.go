package repository

import (
	"context"
	"fmt"

	"github.com/harrywsong/studiobot-sub000/database"
	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/jackc/pgx/v5"
)

// WalletRepository implements the WalletRepository interface
type WalletRepository struct {
	q queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

// newWalletRepositoryWithTx creates a new wallet repository with a transaction
func newWalletRepositoryWithTx(tx queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

// GetByUser retrieves a user's wallet, or nil if they have none yet
func (r *WalletRepository) GetByUser(ctx context.Context, guildID, userID int64) (*models.Wallet, error) {
	query := `
		SELECT guild_id, user_id, coins, total_earned, total_spent, created_at, updated_at
		FROM wallets
		WHERE guild_id = $1 AND user_id = $2
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, guildID, userID).Scan(
		&wallet.GuildID,
		&wallet.UserID,
		&wallet.Coins,
		&wallet.TotalEarned,
		&wallet.TotalSpent,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet for user %d in guild %d: %w", userID, guildID, err)
	}

	return &wallet, nil
}

// GetForUpdate retrieves a wallet and locks its row until the surrounding
// transaction ends. Callers doing a read-then-write (like the daily bonus
// check) use this so concurrent claims serialize on the row.
func (r *WalletRepository) GetForUpdate(ctx context.Context, guildID, userID int64) (*models.Wallet, error) {
	query := `
		SELECT guild_id, user_id, coins, total_earned, total_spent, created_at, updated_at
		FROM wallets
		WHERE guild_id = $1 AND user_id = $2
		FOR UPDATE
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, guildID, userID).Scan(
		&wallet.GuildID,
		&wallet.UserID,
		&wallet.Coins,
		&wallet.TotalEarned,
		&wallet.TotalSpent,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet for user %d in guild %d: %w", userID, guildID, err)
	}

	return &wallet, nil
}

// Create creates a wallet seeded with the starting balance
func (r *WalletRepository) Create(ctx context.Context, guildID, userID, startingCoins int64) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (guild_id, user_id, coins, total_earned)
		VALUES ($1, $2, $3, $3)
		RETURNING guild_id, user_id, coins, total_earned, total_spent, created_at, updated_at
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, guildID, userID, startingCoins).Scan(
		&wallet.GuildID,
		&wallet.UserID,
		&wallet.Coins,
		&wallet.TotalEarned,
		&wallet.TotalSpent,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %d in guild %d: %w", userID, guildID, err)
	}

	return &wallet, nil
}

// AddCoins credits a wallet, incrementing total earned
func (r *WalletRepository) AddCoins(ctx context.Context, guildID, userID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE wallets
		SET coins = coins + $3, total_earned = total_earned + $3, updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2
	`

	result, err := r.q.Exec(ctx, query, guildID, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to add coins for user %d in guild %d: %w", userID, guildID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("wallet for user %d in guild %d not found", userID, guildID)
	}

	return nil
}

// DeductCoins debits a wallet if the balance covers it. Returns false with
// no error when funds are insufficient; the balance check and the decrement
// are a single statement so concurrent debits cannot overdraw.
func (r *WalletRepository) DeductCoins(ctx context.Context, guildID, userID, amount int64) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE wallets
		SET coins = coins - $3, total_spent = total_spent + $3, updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2 AND coins >= $3
	`

	result, err := r.q.Exec(ctx, query, guildID, userID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to deduct coins for user %d in guild %d: %w", userID, guildID, err)
	}

	return result.RowsAffected() > 0, nil
}

// Top returns the richest wallets in a guild
func (r *WalletRepository) Top(ctx context.Context, guildID int64, limit int) ([]*models.Wallet, error) {
	query := `
		SELECT guild_id, user_id, coins, total_earned, total_spent, created_at, updated_at
		FROM wallets
		WHERE guild_id = $1
		ORDER BY coins DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top wallets for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var wallets []*models.Wallet
	for rows.Next() {
		var wallet models.Wallet
		err := rows.Scan(
			&wallet.GuildID,
			&wallet.UserID,
			&wallet.Coins,
			&wallet.TotalEarned,
			&wallet.TotalSpent,
			&wallet.CreatedAt,
			&wallet.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, &wallet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallets: %w", err)
	}

	return wallets, nil
}
