package repository

import (
	"context"

	"hustle/internal/domain"
)

// WalletRepository defines the persistence operations for wallets and their ledgers.
type WalletRepository interface {
	// Create persists a new wallet. Returns ErrAlreadyExists if the user has one.
	Create(ctx context.Context, wallet *domain.Wallet) error

	// GetByUserID retrieves a wallet with its holds and transactions.
	GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error)

	// Update stores balances and holds and appends txn, provided the stored
	// version still equals wallet.Version. On success wallet.Version is
	// incremented; otherwise ErrConflict is returned and nothing is written.
	Update(ctx context.Context, wallet *domain.Wallet, txn *domain.Transaction) error

	// ListTransactions returns a user's ledger, newest first.
	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
}
