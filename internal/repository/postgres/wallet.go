package postgres

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"hustle/internal/domain"
	"hustle/internal/repository"
)

// WalletRepository is a PostgreSQL implementation of repository.WalletRepository.
type WalletRepository struct {
	q  Querier
	db *sql.DB
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{q: db, db: db}
}

// NewWalletRepositoryWithTx creates a wallet repository using a transaction.
func NewWalletRepositoryWithTx(tx *sql.Tx) *WalletRepository {
	return &WalletRepository{q: tx}
}

// Create persists a new wallet.
func (r *WalletRepository) Create(ctx context.Context, w *domain.Wallet) error {
	query := `
		INSERT INTO wallets (user_id, available_balance, locked_balance, total_earnings, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO NOTHING
	`

	res, err := r.q.ExecContext(ctx, query,
		w.UserID,
		w.AvailableBalance,
		w.LockedBalance,
		w.TotalEarnings,
		w.Version,
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrAlreadyExists
	}
	return nil
}

// GetByUserID retrieves a wallet with its holds and transactions.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	query := `
		SELECT user_id, available_balance, locked_balance, total_earnings, version, created_at, updated_at
		FROM wallets WHERE user_id = $1
	`

	var w domain.Wallet
	err := r.q.QueryRowContext(ctx, query, userID).Scan(
		&w.UserID,
		&w.AvailableBalance,
		&w.LockedBalance,
		&w.TotalEarnings,
		&w.Version,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	w.Holds, err = r.holds(ctx, userID)
	if err != nil {
		return nil, err
	}

	w.Transactions, err = r.transactions(ctx, userID, "ASC")
	if err != nil {
		return nil, err
	}

	return &w, nil
}

// Update writes balances, replaces holds and appends txn in one transaction,
// guarded by the wallet version.
func (r *WalletRepository) Update(ctx context.Context, w *domain.Wallet, txn *domain.Transaction) error {
	err := withTx(ctx, r.db, r.q, func(q Querier) error {
		res, err := q.ExecContext(ctx, `
			UPDATE wallets
			SET available_balance = $1, locked_balance = $2, total_earnings = $3,
			    version = version + 1, updated_at = $4
			WHERE user_id = $5 AND version = $6
		`,
			w.AvailableBalance,
			w.LockedBalance,
			w.TotalEarnings,
			w.UpdatedAt,
			w.UserID,
			w.Version,
		)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return repository.ErrConflict
		}

		if _, err := q.ExecContext(ctx, `DELETE FROM wallet_holds WHERE user_id = $1`, w.UserID); err != nil {
			return err
		}

		refs := make([]string, 0, len(w.Holds))
		for ref, amount := range w.Holds {
			if amount > 0 {
				refs = append(refs, ref)
			}
		}
		sort.Strings(refs)
		for _, ref := range refs {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO wallet_holds (user_id, ref_id, amount) VALUES ($1, $2, $3)`,
				w.UserID, ref, w.Holds[ref],
			); err != nil {
				return err
			}
		}

		_, err = q.ExecContext(ctx, `
			INSERT INTO wallet_transactions (id, user_id, amount, type, status, description, related_task_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			txn.ID,
			txn.UserID,
			txn.Amount,
			txn.Type,
			txn.Status,
			txn.Description,
			txn.RelatedTaskID,
			txn.CreatedAt,
		)
		return err
	})
	if err != nil {
		return err
	}

	w.Version++
	return nil
}

// ListTransactions returns the ledger newest first.
func (r *WalletRepository) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	var exists bool
	if err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, repository.ErrNotFound
	}
	return r.transactions(ctx, userID, "DESC")
}

func (r *WalletRepository) holds(ctx context.Context, userID string) (map[string]int64, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT ref_id, amount FROM wallet_holds WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holds := make(map[string]int64)
	for rows.Next() {
		var ref string
		var amount int64
		if err := rows.Scan(&ref, &amount); err != nil {
			return nil, err
		}
		holds[ref] = amount
	}
	return holds, rows.Err()
}

// order is a fixed literal ("ASC" or "DESC"), never user input.
func (r *WalletRepository) transactions(ctx context.Context, userID, order string) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, status, description, related_task_id, created_at
		FROM wallet_transactions WHERE user_id = $1 ORDER BY created_at ` + order

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0)
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Amount,
			&t.Type,
			&t.Status,
			&t.Description,
			&t.RelatedTaskID,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

var _ repository.WalletRepository = (*WalletRepository)(nil)
