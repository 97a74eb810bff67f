package memory

import (
	"context"
	"sync"

	"hustle/internal/domain"
	"hustle/internal/repository"
)

// RunnerRepository is an in-memory implementation of repository.RunnerRepository.
type RunnerRepository struct {
	mu      sync.RWMutex
	runners map[string]*domain.Runner
	order   []string
}

// NewRunnerRepository creates an empty repository.
func NewRunnerRepository() *RunnerRepository {
	return &RunnerRepository{runners: make(map[string]*domain.Runner)}
}

// Create persists a new runner.
func (r *RunnerRepository) Create(ctx context.Context, runner *domain.Runner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runners[runner.ID]; ok {
		return repository.ErrAlreadyExists
	}
	if runner.UserID != "" {
		for _, existing := range r.runners {
			if existing.UserID == runner.UserID {
				return repository.ErrAlreadyExists
			}
		}
	}
	c := *runner
	r.runners[runner.ID] = &c
	r.order = append(r.order, runner.ID)
	return nil
}

// GetByID retrieves a copy of a runner.
func (r *RunnerRepository) GetByID(ctx context.Context, id string) (*domain.Runner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runner, ok := r.runners[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *runner
	return &c, nil
}

// GetAll returns runners in registration order.
func (r *RunnerRepository) GetAll(ctx context.Context) ([]*domain.Runner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Runner, 0, len(r.order))
	for _, id := range r.order {
		c := *r.runners[id]
		out = append(out, &c)
	}
	return out, nil
}

// GetByUserID retrieves a copy of the runner owned by userID.
func (r *RunnerRepository) GetByUserID(ctx context.Context, userID string) (*domain.Runner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if userID == "" {
		return nil, repository.ErrNotFound
	}
	for _, id := range r.order {
		if runner := r.runners[id]; runner.UserID == userID {
			c := *runner
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

// UpdateLocation moves a runner.
func (r *RunnerRepository) UpdateLocation(ctx context.Context, id string, loc domain.Location) error {
	return r.modify(id, func(runner *domain.Runner) { runner.CurrentLocation = loc })
}

// SetAvailability toggles whether a runner receives tasks.
func (r *RunnerRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	return r.modify(id, func(runner *domain.Runner) { runner.IsAvailable = available })
}

// RecordDelivery adds one delivery and earned to the runner's totals.
func (r *RunnerRepository) RecordDelivery(ctx context.Context, id string, earned int64) error {
	return r.modify(id, func(runner *domain.Runner) {
		runner.TotalDeliveries++
		runner.Earnings += earned
	})
}

// modify applies fn to the stored runner under the write lock.
func (r *RunnerRepository) modify(id string, fn func(*domain.Runner)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	runner, ok := r.runners[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(runner)
	return nil
}

var _ repository.RunnerRepository = (*RunnerRepository)(nil)
