package repository

import (
	"context"
	"fmt"

	"github.com/harrywsong/studiobot-sub000/database"
	"github.com/harrywsong/studiobot-sub000/models"
	"github.com/jackc/pgx/v5"
)

// CoinTransactionRepository implements the CoinTransactionRepository interface
type CoinTransactionRepository struct {
	q queryable
}

// NewCoinTransactionRepository creates a new coin transaction repository
func NewCoinTransactionRepository(db *database.DB) *CoinTransactionRepository {
	return &CoinTransactionRepository{q: db.Pool}
}

// newCoinTransactionRepositoryWithTx creates a new coin transaction repository with a transaction
func newCoinTransactionRepositoryWithTx(tx queryable) *CoinTransactionRepository {
	return &CoinTransactionRepository{q: tx}
}

// Record appends a transaction entry
func (r *CoinTransactionRepository) Record(ctx context.Context, tx *models.CoinTransaction) error {
	query := `
		INSERT INTO coin_transactions (guild_id, user_id, amount, type, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		tx.GuildID, tx.UserID, tx.Amount, tx.Type, tx.Description,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record coin transaction for user %d: %w", tx.UserID, err)
	}

	return nil
}

// GetByUser returns a user's most recent transactions
func (r *CoinTransactionRepository) GetByUser(ctx context.Context, guildID, userID int64, limit int) ([]*models.CoinTransaction, error) {
	query := `
		SELECT id, guild_id, user_id, amount, type, description, created_at
		FROM coin_transactions
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, guildID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var transactions []*models.CoinTransaction
	for rows.Next() {
		var tx models.CoinTransaction
		err := rows.Scan(&tx.ID, &tx.GuildID, &tx.UserID, &tx.Amount, &tx.Type, &tx.Description, &tx.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coin transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate coin transactions: %w", err)
	}

	return transactions, nil
}

// LastOfType returns a user's most recent transaction of a given type, or nil
func (r *CoinTransactionRepository) LastOfType(ctx context.Context, guildID, userID int64, txType models.TransactionType) (*models.CoinTransaction, error) {
	query := `
		SELECT id, guild_id, user_id, amount, type, description, created_at
		FROM coin_transactions
		WHERE guild_id = $1 AND user_id = $2 AND type = $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	var tx models.CoinTransaction
	err := r.q.QueryRow(ctx, query, guildID, userID, txType).Scan(
		&tx.ID, &tx.GuildID, &tx.UserID, &tx.Amount, &tx.Type, &tx.Description, &tx.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last %s transaction for user %d: %w", txType, userID, err)
	}

	return &tx, nil
}
