package postgres

import (
	"context"
	"database/sql"
	"errors"

	"hustle/internal/domain"
	"hustle/internal/repository"
)

const instantTaskColumns = `
	id, user_id, item_id, vendor_id, runner_id, item_price, delivery_fee, total_amount,
	pickup_lat, pickup_lng, pickup_address, pickup_city,
	delivery_lat, delivery_lng, delivery_address, delivery_city,
	status, status_version, created_at, assigned_at, started_at, delivered_at, completed_at, cancelled_at,
	cancel_reason, user_phone, special_instructions, is_paid, payment_released`

// InstantTaskRepository is a PostgreSQL implementation of repository.InstantTaskRepository.
type InstantTaskRepository struct {
	q Querier
}

// NewInstantTaskRepository creates a new PostgreSQL instant task repository.
func NewInstantTaskRepository(db *sql.DB) *InstantTaskRepository {
	return &InstantTaskRepository{q: db}
}

// NewInstantTaskRepositoryWithTx creates an instant task repository using a transaction.
func NewInstantTaskRepositoryWithTx(tx *sql.Tx) *InstantTaskRepository {
	return &InstantTaskRepository{q: tx}
}

// Create persists a new task. Locations are stored with their geohash.
func (r *InstantTaskRepository) Create(ctx context.Context, t *domain.InstantTask) error {
	query := `
		INSERT INTO instant_tasks (
			id, user_id, item_id, vendor_id, runner_id, item_price, delivery_fee, total_amount,
			pickup_lat, pickup_lng, pickup_address, pickup_city, pickup_geohash,
			delivery_lat, delivery_lng, delivery_address, delivery_city, delivery_geohash,
			status, status_version, created_at, assigned_at, started_at, delivered_at, completed_at, cancelled_at,
			cancel_reason, user_phone, special_instructions, is_paid, payment_released
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26,
			$27, $28, $29, $30, $31
		)
	`

	_, err := r.q.ExecContext(ctx, query,
		t.ID, t.UserID, t.ItemID, t.VendorID, t.RunnerID, t.ItemPrice, t.DeliveryFee, t.TotalAmount,
		t.PickupLocation.Latitude, t.PickupLocation.Longitude, t.PickupLocation.Address, t.PickupLocation.City,
		t.PickupLocation.Geohash(domain.DefaultGeohashPrecision),
		t.DeliveryLocation.Latitude, t.DeliveryLocation.Longitude, t.DeliveryLocation.Address, t.DeliveryLocation.City,
		t.DeliveryLocation.Geohash(domain.DefaultGeohashPrecision),
		t.Status, t.StatusVersion, t.CreatedAt,
		nullTime(t.AssignedAt), nullTime(t.StartedAt), nullTime(t.DeliveredAt), nullTime(t.CompletedAt), nullTime(t.CancelledAt),
		t.CancelReason, t.UserPhone, t.SpecialInstructions, t.IsPaid, t.PaymentReleased,
	)
	return err
}

// GetByID retrieves a task by ID.
func (r *InstantTaskRepository) GetByID(ctx context.Context, id string) (*domain.InstantTask, error) {
	query := `SELECT ` + instantTaskColumns + ` FROM instant_tasks WHERE id = $1`

	t, err := scanInstantTask(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Update writes the mutable fields if the stored status_version matches.
func (r *InstantTaskRepository) Update(ctx context.Context, t *domain.InstantTask) error {
	query := `
		UPDATE instant_tasks
		SET runner_id = $1, status = $2, status_version = status_version + 1,
		    assigned_at = $3, started_at = $4, delivered_at = $5, completed_at = $6, cancelled_at = $7,
		    cancel_reason = $8, is_paid = $9, payment_released = $10
		WHERE id = $11 AND status_version = $12
	`

	res, err := r.q.ExecContext(ctx, query,
		t.RunnerID, t.Status,
		nullTime(t.AssignedAt), nullTime(t.StartedAt), nullTime(t.DeliveredAt), nullTime(t.CompletedAt), nullTime(t.CancelledAt),
		t.CancelReason, t.IsPaid, t.PaymentReleased,
		t.ID, t.StatusVersion,
	)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return staleOrMissing(ctx, r.q, "instant_tasks", t.ID)
	}

	t.StatusVersion++
	return nil
}

// ListByUser returns the user's tasks newest first.
func (r *InstantTaskRepository) ListByUser(ctx context.Context, userID string) ([]*domain.InstantTask, error) {
	return r.list(ctx, `SELECT `+instantTaskColumns+` FROM instant_tasks WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListByRunner returns the runner's tasks newest first.
func (r *InstantTaskRepository) ListByRunner(ctx context.Context, runnerID string) ([]*domain.InstantTask, error) {
	return r.list(ctx, `SELECT `+instantTaskColumns+` FROM instant_tasks WHERE runner_id = $1 ORDER BY created_at DESC`, runnerID)
}

func (r *InstantTaskRepository) list(ctx context.Context, query string, args ...any) ([]*domain.InstantTask, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*domain.InstantTask, 0)
	for rows.Next() {
		t, err := scanInstantTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanInstantTask(row rowScanner) (*domain.InstantTask, error) {
	var t domain.InstantTask
	var assignedAt, startedAt, deliveredAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&t.ID, &t.UserID, &t.ItemID, &t.VendorID, &t.RunnerID, &t.ItemPrice, &t.DeliveryFee, &t.TotalAmount,
		&t.PickupLocation.Latitude, &t.PickupLocation.Longitude, &t.PickupLocation.Address, &t.PickupLocation.City,
		&t.DeliveryLocation.Latitude, &t.DeliveryLocation.Longitude, &t.DeliveryLocation.Address, &t.DeliveryLocation.City,
		&t.Status, &t.StatusVersion, &t.CreatedAt,
		&assignedAt, &startedAt, &deliveredAt, &completedAt, &cancelledAt,
		&t.CancelReason, &t.UserPhone, &t.SpecialInstructions, &t.IsPaid, &t.PaymentReleased,
	)
	if err != nil {
		return nil, err
	}

	t.AssignedAt = timePtr(assignedAt)
	t.StartedAt = timePtr(startedAt)
	t.DeliveredAt = timePtr(deliveredAt)
	t.CompletedAt = timePtr(completedAt)
	t.CancelledAt = timePtr(cancelledAt)

	return &t, nil
}

// staleOrMissing tells a lost compare-and-swap apart from a missing row.
// table is always a package constant.
func staleOrMissing(ctx context.Context, q Querier, table, id string) error {
	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

var _ repository.InstantTaskRepository = (*InstantTaskRepository)(nil)
