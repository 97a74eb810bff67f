package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hustle/internal/domain"
	"hustle/internal/repository"
)

// Ledger descriptions.
const (
	descFundsLocked     = "Funds locked for task"
	descPaymentReleased = "Payment released for task"
	descRefund          = "Refund for cancelled task"
	descDeposit         = "Wallet top-up"
)

// WalletService is the escrow ledger. Every mutation of a wallet runs under a
// per-user mutex and is persisted with an optimistic version check.
type WalletService struct {
	repo            repository.WalletRepository
	startingBalance int64
	logger          *zap.Logger
	locks           userLocks
	now             func() time.Time
}

// NewWalletService creates a new WalletService.
func NewWalletService(repo repository.WalletRepository, startingBalance int64, logger *zap.Logger) *WalletService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WalletService{
		repo:            repo,
		startingBalance: startingBalance,
		logger:          logger.Named("wallet"),
		now:             time.Now,
	}
}

// InitializeWallet creates the user's wallet with the starting balance.
// Calling it for an existing wallet returns that wallet unchanged.
func (s *WalletService) InitializeWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	existing, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	wallet := &domain.Wallet{
		UserID:           userID,
		AvailableBalance: s.startingBalance,
		Holds:            map[string]int64{},
		Transactions:     []domain.Transaction{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, wallet); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return s.repo.GetByUserID(ctx, userID)
		}
		return nil, err
	}

	s.logger.Info("wallet initialized", zap.String("user_id", userID), zap.Int64("balance", s.startingBalance))
	return wallet, nil
}

// GetWallet returns the user's wallet.
func (s *WalletService) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	w, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrWalletNotFound
	}
	return w, err
}

// GetTransactions returns the user's ledger, newest first.
func (s *WalletService) GetTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	txns, err := s.repo.ListTransactions(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrWalletNotFound
	}
	return txns, err
}

// LockFunds moves amount from available to locked for refID.
// Fails with ErrInsufficientFunds when the available balance is short.
func (s *WalletService) LockFunds(ctx context.Context, userID string, amount int64, refID string, txnType domain.TransactionType) (*domain.Wallet, error) {
	if !txnType.IsLock() {
		return nil, invalid("type", "must be task_lock or instant_lock")
	}

	return s.mutate(ctx, userID, amount, func(w *domain.Wallet) (*domain.Transaction, error) {
		if w.AvailableBalance < amount {
			return nil, ErrInsufficientFunds
		}
		w.AvailableBalance -= amount
		w.LockedBalance += amount
		w.Holds[refID] += amount

		return &domain.Transaction{
			Amount:        amount,
			Type:          txnType,
			Status:        domain.TransactionLocked,
			Description:   descFundsLocked,
			RelatedTaskID: refID,
		}, nil
	})
}

// ReleaseFunds pays out amount from the funds held for refID.
func (s *WalletService) ReleaseFunds(ctx context.Context, userID string, amount int64, refID string) (*domain.Wallet, error) {
	return s.mutate(ctx, userID, amount, func(w *domain.Wallet) (*domain.Transaction, error) {
		if err := takeHold(w, refID, amount); err != nil {
			return nil, err
		}
		w.LockedBalance -= amount

		return &domain.Transaction{
			Amount:        amount,
			Type:          domain.TransactionTaskPayment,
			Status:        domain.TransactionCompleted,
			Description:   descPaymentReleased,
			RelatedTaskID: refID,
		}, nil
	})
}

// RefundFunds returns amount held for refID to the available balance.
func (s *WalletService) RefundFunds(ctx context.Context, userID string, amount int64, refID string) (*domain.Wallet, error) {
	return s.mutate(ctx, userID, amount, func(w *domain.Wallet) (*domain.Transaction, error) {
		if err := takeHold(w, refID, amount); err != nil {
			return nil, err
		}
		w.LockedBalance -= amount
		w.AvailableBalance += amount

		return &domain.Transaction{
			Amount:        amount,
			Type:          domain.TransactionRefund,
			Status:        domain.TransactionCompleted,
			Description:   descRefund,
			RelatedTaskID: refID,
		}, nil
	})
}

// AddEarnings credits a runner directly.
func (s *WalletService) AddEarnings(ctx context.Context, runnerID string, amount int64, refID, description string) (*domain.Wallet, error) {
	return s.mutate(ctx, runnerID, amount, func(w *domain.Wallet) (*domain.Transaction, error) {
		w.AvailableBalance += amount
		w.TotalEarnings += amount

		return &domain.Transaction{
			Amount:        amount,
			Type:          domain.TransactionTaskPayment,
			Status:        domain.TransactionCompleted,
			Description:   description,
			RelatedTaskID: refID,
		}, nil
	})
}

// Deposit tops up the available balance.
func (s *WalletService) Deposit(ctx context.Context, userID string, amount int64) (*domain.Wallet, error) {
	return s.mutate(ctx, userID, amount, func(w *domain.Wallet) (*domain.Transaction, error) {
		w.AvailableBalance += amount

		return &domain.Transaction{
			Amount:      amount,
			Type:        domain.TransactionDeposit,
			Status:      domain.TransactionCompleted,
			Description: descDeposit,
		}, nil
	})
}

// mutate loads the wallet, applies fn and persists the result with the
// transaction fn returns. A missing wallet is left untouched.
func (s *WalletService) mutate(ctx context.Context, userID string, amount int64, fn func(*domain.Wallet) (*domain.Transaction, error)) (*domain.Wallet, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	w, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	if w.Holds == nil {
		w.Holds = map[string]int64{}
	}

	txn, err := fn(w)
	if err != nil {
		return nil, err
	}

	now := s.now()
	txn.ID = uuid.New().String()
	txn.UserID = userID
	txn.CreatedAt = now
	w.UpdatedAt = now

	if err := s.repo.Update(ctx, w, txn); err != nil {
		return nil, fmt.Errorf("update wallet %s: %w", userID, err)
	}

	s.logger.Debug("wallet updated",
		zap.String("user_id", userID),
		zap.String("type", string(txn.Type)),
		zap.Int64("amount", txn.Amount),
		zap.String("ref_id", txn.RelatedTaskID),
		zap.Int64("available", w.AvailableBalance),
		zap.Int64("locked", w.LockedBalance),
	)
	return w, nil
}

func takeHold(w *domain.Wallet, refID string, amount int64) error {
	held := w.Holds[refID]
	if amount > held {
		return fmt.Errorf("%w: %d requested, %d held for %s", ErrHoldMismatch, amount, held, refID)
	}
	if held == amount {
		delete(w.Holds, refID)
	} else {
		w.Holds[refID] = held - amount
	}
	return nil
}

// userLocks hands out one mutex per user id. Wallets are never destroyed so
// entries are never removed.
type userLocks struct {
	m sync.Map
}

func (l *userLocks) lock(userID string) func() {
	v, _ := l.m.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
