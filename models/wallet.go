package models

import "time"

// TransactionType categorizes coin transactions
type TransactionType string

const (
	TransactionTypeStarting    TransactionType = "starting_balance"
	TransactionTypeDailyBonus  TransactionType = "daily_bonus"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"
	TransactionTypeGameBet     TransactionType = "game_bet"
	TransactionTypeGameWin     TransactionType = "game_win"
	TransactionTypeAdminGive   TransactionType = "admin_give"
	TransactionTypeAdminTake   TransactionType = "admin_take"
)

// Wallet holds a user's coin balance within a guild. Balances are isolated
// per guild; the same user has independent wallets in every server.
type Wallet struct {
	GuildID     int64
	UserID      int64
	Coins       int64
	TotalEarned int64
	TotalSpent  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CoinTransaction is an audit log entry for every balance change.
// Debits are recorded with a negative amount.
type CoinTransaction struct {
	ID          int64
	GuildID     int64
	UserID      int64
	Amount      int64
	Type        TransactionType
	Description string
	CreatedAt   time.Time
}
