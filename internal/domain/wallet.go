package domain

import "time"

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionDeposit        TransactionType = "deposit"
	TransactionWithdrawal     TransactionType = "withdrawal"
	TransactionTaskLock       TransactionType = "task_lock"
	TransactionTaskPayment    TransactionType = "task_payment"
	TransactionInstantLock    TransactionType = "instant_lock"
	TransactionInstantPayment TransactionType = "instant_payment"
	TransactionRefund         TransactionType = "refund"
)

// IsLock reports whether the type places funds in escrow.
func (t TransactionType) IsLock() bool {
	return t == TransactionTaskLock || t == TransactionInstantLock
}

// TransactionStatus is the settlement state of a ledger entry.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionLocked    TransactionStatus = "locked"
)

// Transaction is an append-only ledger entry. It is never mutated after creation.
type Transaction struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	Amount        int64             `json:"amount"`
	Type          TransactionType   `json:"type"`
	Status        TransactionStatus `json:"status"`
	Description   string            `json:"description"`
	RelatedTaskID string            `json:"related_task_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Wallet is a per-user balance with an escrow bucket.
//
// Holds tracks the amount still in escrow per reference (task) id, so that a
// release or refund can never exceed what was locked for that reference.
// The sum of Holds always equals LockedBalance.
type Wallet struct {
	UserID           string           `json:"user_id"`
	AvailableBalance int64            `json:"available_balance"`
	LockedBalance    int64            `json:"locked_balance"`
	TotalEarnings    int64            `json:"total_earnings"`
	Holds            map[string]int64 `json:"holds,omitempty"`
	Transactions     []Transaction    `json:"transactions"`
	Version          int              `json:"version"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Total is available plus locked funds.
func (w *Wallet) Total() int64 {
	return w.AvailableBalance + w.LockedBalance
}

// Held returns the amount still in escrow for refID.
func (w *Wallet) Held(refID string) int64 {
	return w.Holds[refID]
}

// Clone returns a deep copy.
func (w *Wallet) Clone() *Wallet {
	c := *w
	c.Holds = make(map[string]int64, len(w.Holds))
	for k, v := range w.Holds {
		c.Holds[k] = v
	}
	c.Transactions = append([]Transaction(nil), w.Transactions...)
	return &c
}
