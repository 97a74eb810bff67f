package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"hustle/internal/domain"
	"hustle/internal/repository"
)

// RunnerRepository is a PostgreSQL implementation of repository.RunnerRepository.
type RunnerRepository struct {
	q Querier
}

// NewRunnerRepository creates a new PostgreSQL runner repository.
func NewRunnerRepository(db *sql.DB) *RunnerRepository {
	return &RunnerRepository{q: db}
}

// NewRunnerRepositoryWithTx creates a runner repository using a transaction.
func NewRunnerRepositoryWithTx(tx *sql.Tx) *RunnerRepository {
	return &RunnerRepository{q: tx}
}

// Create persists a new runner.
func (r *RunnerRepository) Create(ctx context.Context, runner *domain.Runner) error {
	query := `
		INSERT INTO runners (id, user_id, name, phone, rating, total_deliveries,
			latitude, longitude, address, city, geohash, is_available, earnings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	loc := runner.CurrentLocation
	_, err := r.q.ExecContext(ctx, query,
		runner.ID,
		runner.UserID,
		runner.Name,
		runner.Phone,
		runner.Rating,
		runner.TotalDeliveries,
		loc.Latitude,
		loc.Longitude,
		loc.Address,
		loc.City,
		loc.Geohash(domain.DefaultGeohashPrecision),
		runner.IsAvailable,
		runner.Earnings,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID retrieves a runner by ID.
func (r *RunnerRepository) GetByID(ctx context.Context, id string) (*domain.Runner, error) {
	query := `
		SELECT id, user_id, name, phone, rating, total_deliveries,
			latitude, longitude, address, city, is_available, earnings
		FROM runners WHERE id = $1
	`

	runner, err := scanRunner(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return runner, nil
}

// GetAll retrieves all runners in registration order.
func (r *RunnerRepository) GetAll(ctx context.Context) ([]*domain.Runner, error) {
	query := `
		SELECT id, user_id, name, phone, rating, total_deliveries,
			latitude, longitude, address, city, is_available, earnings
		FROM runners ORDER BY created_at, id
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runners := make([]*domain.Runner, 0)
	for rows.Next() {
		runner, err := scanRunner(rows)
		if err != nil {
			return nil, err
		}
		runners = append(runners, runner)
	}
	return runners, rows.Err()
}

// GetByUserID retrieves the runner owned by an account.
func (r *RunnerRepository) GetByUserID(ctx context.Context, userID string) (*domain.Runner, error) {
	query := `
		SELECT id, user_id, name, phone, rating, total_deliveries,
			latitude, longitude, address, city, is_available, earnings
		FROM runners WHERE user_id = $1 AND user_id <> ''
	`

	runner, err := scanRunner(r.q.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return runner, nil
}

// UpdateLocation moves a runner without touching its totals.
func (r *RunnerRepository) UpdateLocation(ctx context.Context, id string, loc domain.Location) error {
	query := `
		UPDATE runners
		SET latitude = $1, longitude = $2, address = $3, city = $4, geohash = $5
		WHERE id = $6
	`

	return r.exec(ctx, query,
		loc.Latitude,
		loc.Longitude,
		loc.Address,
		loc.City,
		loc.Geohash(domain.DefaultGeohashPrecision),
		id,
	)
}

// SetAvailability toggles whether a runner receives tasks.
func (r *RunnerRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	return r.exec(ctx, `UPDATE runners SET is_available = $1 WHERE id = $2`, available, id)
}

// RecordDelivery increments the runner's totals in place so concurrent
// completions and location pings cannot overwrite each other.
func (r *RunnerRepository) RecordDelivery(ctx context.Context, id string, earned int64) error {
	query := `
		UPDATE runners
		SET total_deliveries = total_deliveries + 1, earnings = earnings + $1
		WHERE id = $2
	`
	return r.exec(ctx, query, earned, id)
}

// exec runs a single-row update and maps zero affected rows to ErrNotFound.
func (r *RunnerRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanRunner(row rowScanner) (*domain.Runner, error) {
	var runner domain.Runner
	err := row.Scan(
		&runner.ID,
		&runner.UserID,
		&runner.Name,
		&runner.Phone,
		&runner.Rating,
		&runner.TotalDeliveries,
		&runner.CurrentLocation.Latitude,
		&runner.CurrentLocation.Longitude,
		&runner.CurrentLocation.Address,
		&runner.CurrentLocation.City,
		&runner.IsAvailable,
		&runner.Earnings,
	)
	if err != nil {
		return nil, err
	}
	return &runner, nil
}

var _ repository.RunnerRepository = (*RunnerRepository)(nil)
