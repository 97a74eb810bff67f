package repository

import (
	"context"

	"hustle/internal/domain"
)

// InstantTaskRepository defines the persistence operations for instant tasks.
type InstantTaskRepository interface {
	// Create persists a new task.
	Create(ctx context.Context, task *domain.InstantTask) error

	// GetByID retrieves a task by ID.
	GetByID(ctx context.Context, id string) (*domain.InstantTask, error)

	// Update writes the task if the stored StatusVersion equals task.StatusVersion,
	// then increments task.StatusVersion. Returns ErrConflict on a stale version.
	Update(ctx context.Context, task *domain.InstantTask) error

	// ListByUser returns tasks created by a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.InstantTask, error)

	// ListByRunner returns tasks assigned to a runner, newest first.
	ListByRunner(ctx context.Context, runnerID string) ([]*domain.InstantTask, error)
}

// CustomTaskRepository defines the persistence operations for custom tasks.
type CustomTaskRepository interface {
	// Create persists a new task.
	Create(ctx context.Context, task *domain.CustomTask) error

	// GetByID retrieves a task by ID.
	GetByID(ctx context.Context, id string) (*domain.CustomTask, error)

	// Update writes the task if the stored StatusVersion equals task.StatusVersion,
	// then increments task.StatusVersion. Returns ErrConflict on a stale version.
	Update(ctx context.Context, task *domain.CustomTask) error

	// ListOpen returns tasks waiting for a runner, newest first.
	ListOpen(ctx context.Context) ([]*domain.CustomTask, error)

	// ListByUser returns tasks created by a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.CustomTask, error)

	// ListByRunner returns tasks accepted by a runner, newest first.
	ListByRunner(ctx context.Context, runnerID string) ([]*domain.CustomTask, error)
}
