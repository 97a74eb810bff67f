package repository

import (
	"context"

	"hustle/internal/domain"
)

// RunnerRepository defines the persistence operations for runners.
type RunnerRepository interface {
	// Create persists a new runner.
	Create(ctx context.Context, runner *domain.Runner) error

	// GetByID retrieves a runner by ID.
	GetByID(ctx context.Context, id string) (*domain.Runner, error)

	// GetAll retrieves all runners in registration order.
	GetAll(ctx context.Context) ([]*domain.Runner, error)

	// GetByUserID retrieves the runner profile owned by an account.
	GetByUserID(ctx context.Context, userID string) (*domain.Runner, error)

	// UpdateLocation moves a runner without touching any other column.
	UpdateLocation(ctx context.Context, id string, loc domain.Location) error

	// SetAvailability toggles whether a runner receives tasks.
	SetAvailability(ctx context.Context, id string, available bool) error

	// RecordDelivery atomically adds one delivery and earned to the runner's
	// totals.
	RecordDelivery(ctx context.Context, id string, earned int64) error
}
