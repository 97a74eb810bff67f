// Package memory provides volatile, in-process implementations of the repositories.
package memory

import (
	"context"
	"sync"

	"hustle/internal/domain"
	"hustle/internal/repository"
)

// WalletRepository is an in-memory implementation of repository.WalletRepository.
type WalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet
}

// NewWalletRepository creates an empty wallet repository.
func NewWalletRepository() *WalletRepository {
	return &WalletRepository{wallets: make(map[string]*domain.Wallet)}
}

// Create persists a new wallet.
func (r *WalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.wallets[wallet.UserID]; ok {
		return repository.ErrAlreadyExists
	}
	r.wallets[wallet.UserID] = wallet.Clone()
	return nil
}

// GetByUserID retrieves a copy of the wallet.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.wallets[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return w.Clone(), nil
}

// Update replaces the stored wallet if its version is unchanged.
func (r *WalletRepository) Update(ctx context.Context, wallet *domain.Wallet, txn *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.wallets[wallet.UserID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != wallet.Version {
		return repository.ErrConflict
	}

	next := wallet.Clone()
	next.Transactions = append(append([]domain.Transaction(nil), stored.Transactions...), *txn)
	next.Version = stored.Version + 1
	r.wallets[wallet.UserID] = next

	wallet.Version = next.Version
	wallet.Transactions = append([]domain.Transaction(nil), next.Transactions...)
	return nil
}

// ListTransactions returns the ledger newest first.
func (r *WalletRepository) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.wallets[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	out := make([]domain.Transaction, len(w.Transactions))
	for i, t := range w.Transactions {
		out[len(out)-1-i] = t
	}
	return out, nil
}

var _ repository.WalletRepository = (*WalletRepository)(nil)
