package postgres

import (
	"context"
	"database/sql"
	"errors"

	"hustle/internal/domain"
	"hustle/internal/repository"
)

const customTaskColumns = `
	id, user_id, runner_id, title, description, category, budget, estimated_duration_min,
	pickup_lat, pickup_lng, pickup_address, pickup_city,
	delivery_lat, delivery_lng, delivery_address, delivery_city,
	status, status_version, created_at, accepted_at, started_at, submitted_at, completed_at, cancelled_at,
	cancel_reason, user_phone, user_email, amount_locked, payment_released`

// CustomTaskRepository is a PostgreSQL implementation of repository.CustomTaskRepository.
type CustomTaskRepository struct {
	q Querier
}

// NewCustomTaskRepository creates a new PostgreSQL custom task repository.
func NewCustomTaskRepository(db *sql.DB) *CustomTaskRepository {
	return &CustomTaskRepository{q: db}
}

// NewCustomTaskRepositoryWithTx creates a custom task repository using a transaction.
func NewCustomTaskRepositoryWithTx(tx *sql.Tx) *CustomTaskRepository {
	return &CustomTaskRepository{q: tx}
}

// optionalLocation holds the nullable columns of a location.
type optionalLocation struct {
	Lat, Lng      sql.NullFloat64
	Address, City sql.NullString
	Geohash       sql.NullString
}

func toOptional(l *domain.Location) optionalLocation {
	if l == nil {
		return optionalLocation{}
	}
	return optionalLocation{
		Lat:     sql.NullFloat64{Float64: l.Latitude, Valid: true},
		Lng:     sql.NullFloat64{Float64: l.Longitude, Valid: true},
		Address: sql.NullString{String: l.Address, Valid: true},
		City:    sql.NullString{String: l.City, Valid: true},
		Geohash: sql.NullString{String: l.Geohash(domain.DefaultGeohashPrecision), Valid: true},
	}
}

func (o optionalLocation) location() *domain.Location {
	if !o.Lat.Valid || !o.Lng.Valid {
		return nil
	}
	return &domain.Location{
		Latitude:  o.Lat.Float64,
		Longitude: o.Lng.Float64,
		Address:   o.Address.String,
		City:      o.City.String,
	}
}

// Create persists a new task.
func (r *CustomTaskRepository) Create(ctx context.Context, t *domain.CustomTask) error {
	query := `
		INSERT INTO custom_tasks (
			id, user_id, runner_id, title, description, category, budget, estimated_duration_min,
			pickup_lat, pickup_lng, pickup_address, pickup_city, pickup_geohash,
			delivery_lat, delivery_lng, delivery_address, delivery_city, delivery_geohash,
			status, status_version, created_at, accepted_at, started_at, submitted_at, completed_at, cancelled_at,
			cancel_reason, user_phone, user_email, amount_locked, payment_released
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26,
			$27, $28, $29, $30, $31
		)
	`

	pickup := toOptional(t.PickupLocation)
	delivery := toOptional(t.DeliveryLocation)

	_, err := r.q.ExecContext(ctx, query,
		t.ID, t.UserID, t.RunnerID, t.Title, t.Description, t.Category, t.Budget, t.EstimatedDurationMin,
		pickup.Lat, pickup.Lng, pickup.Address, pickup.City, pickup.Geohash,
		delivery.Lat, delivery.Lng, delivery.Address, delivery.City, delivery.Geohash,
		t.Status, t.StatusVersion, t.CreatedAt,
		nullTime(t.AcceptedAt), nullTime(t.StartedAt), nullTime(t.SubmittedAt), nullTime(t.CompletedAt), nullTime(t.CancelledAt),
		t.CancelReason, t.UserPhone, t.UserEmail, t.AmountLocked, t.PaymentReleased,
	)
	return err
}

// GetByID retrieves a task by ID.
func (r *CustomTaskRepository) GetByID(ctx context.Context, id string) (*domain.CustomTask, error) {
	query := `SELECT ` + customTaskColumns + ` FROM custom_tasks WHERE id = $1`

	t, err := scanCustomTask(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Update writes the mutable fields if the stored status_version matches.
func (r *CustomTaskRepository) Update(ctx context.Context, t *domain.CustomTask) error {
	query := `
		UPDATE custom_tasks
		SET runner_id = $1, status = $2, status_version = status_version + 1,
		    accepted_at = $3, started_at = $4, submitted_at = $5, completed_at = $6, cancelled_at = $7,
		    cancel_reason = $8, amount_locked = $9, payment_released = $10
		WHERE id = $11 AND status_version = $12
	`

	res, err := r.q.ExecContext(ctx, query,
		t.RunnerID, t.Status,
		nullTime(t.AcceptedAt), nullTime(t.StartedAt), nullTime(t.SubmittedAt), nullTime(t.CompletedAt), nullTime(t.CancelledAt),
		t.CancelReason, t.AmountLocked, t.PaymentReleased,
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
		return staleOrMissing(ctx, r.q, "custom_tasks", t.ID)
	}

	t.StatusVersion++
	return nil
}

// ListOpen returns tasks still waiting for a runner, newest first.
func (r *CustomTaskRepository) ListOpen(ctx context.Context) ([]*domain.CustomTask, error) {
	return r.list(ctx, `SELECT `+customTaskColumns+` FROM custom_tasks WHERE status = $1 ORDER BY created_at DESC`, domain.CustomStatusOpen)
}

// ListByUser returns the user's tasks newest first.
func (r *CustomTaskRepository) ListByUser(ctx context.Context, userID string) ([]*domain.CustomTask, error) {
	return r.list(ctx, `SELECT `+customTaskColumns+` FROM custom_tasks WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListByRunner returns the runner's tasks newest first.
func (r *CustomTaskRepository) ListByRunner(ctx context.Context, runnerID string) ([]*domain.CustomTask, error) {
	return r.list(ctx, `SELECT `+customTaskColumns+` FROM custom_tasks WHERE runner_id = $1 ORDER BY created_at DESC`, runnerID)
}

func (r *CustomTaskRepository) list(ctx context.Context, query string, args ...any) ([]*domain.CustomTask, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*domain.CustomTask, 0)
	for rows.Next() {
		t, err := scanCustomTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanCustomTask(row rowScanner) (*domain.CustomTask, error) {
	var t domain.CustomTask
	var pickup, delivery optionalLocation
	var acceptedAt, startedAt, submittedAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&t.ID, &t.UserID, &t.RunnerID, &t.Title, &t.Description, &t.Category, &t.Budget, &t.EstimatedDurationMin,
		&pickup.Lat, &pickup.Lng, &pickup.Address, &pickup.City,
		&delivery.Lat, &delivery.Lng, &delivery.Address, &delivery.City,
		&t.Status, &t.StatusVersion, &t.CreatedAt,
		&acceptedAt, &startedAt, &submittedAt, &completedAt, &cancelledAt,
		&t.CancelReason, &t.UserPhone, &t.UserEmail, &t.AmountLocked, &t.PaymentReleased,
	)
	if err != nil {
		return nil, err
	}

	t.PickupLocation = pickup.location()
	t.DeliveryLocation = delivery.location()
	t.AcceptedAt = timePtr(acceptedAt)
	t.StartedAt = timePtr(startedAt)
	t.SubmittedAt = timePtr(submittedAt)
	t.CompletedAt = timePtr(completedAt)
	t.CancelledAt = timePtr(cancelledAt)

	return &t, nil
}

var _ repository.CustomTaskRepository = (*CustomTaskRepository)(nil)
