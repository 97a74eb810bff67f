package memory

import (
	"context"
	"sort"
	"sync"

	"hustle/internal/domain"
	"hustle/internal/repository"
)

// InstantTaskRepository is an in-memory implementation of repository.InstantTaskRepository.
type InstantTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.InstantTask
	order []string
}

// NewInstantTaskRepository creates an empty repository.
func NewInstantTaskRepository() *InstantTaskRepository {
	return &InstantTaskRepository{tasks: make(map[string]*domain.InstantTask)}
}

// Create persists a new task.
func (r *InstantTaskRepository) Create(ctx context.Context, task *domain.InstantTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[task.ID]; ok {
		return repository.ErrAlreadyExists
	}
	t := *task
	r.tasks[task.ID] = &t
	r.order = append(r.order, task.ID)
	return nil
}

// GetByID retrieves a copy of a task.
func (r *InstantTaskRepository) GetByID(ctx context.Context, id string) (*domain.InstantTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *t
	return &c, nil
}

// Update compare-and-swaps the task on StatusVersion.
func (r *InstantTaskRepository) Update(ctx context.Context, task *domain.InstantTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tasks[task.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.StatusVersion != task.StatusVersion {
		return repository.ErrConflict
	}

	task.StatusVersion++
	t := *task
	r.tasks[task.ID] = &t
	return nil
}

// ListByUser returns the user's tasks newest first.
func (r *InstantTaskRepository) ListByUser(ctx context.Context, userID string) ([]*domain.InstantTask, error) {
	return r.list(func(t *domain.InstantTask) bool { return t.UserID == userID }), nil
}

// ListByRunner returns the runner's tasks newest first.
func (r *InstantTaskRepository) ListByRunner(ctx context.Context, runnerID string) ([]*domain.InstantTask, error) {
	return r.list(func(t *domain.InstantTask) bool { return t.RunnerID == runnerID }), nil
}

func (r *InstantTaskRepository) list(match func(*domain.InstantTask) bool) []*domain.InstantTask {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.InstantTask, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		t := r.tasks[r.order[i]]
		if match(t) {
			c := *t
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

var _ repository.InstantTaskRepository = (*InstantTaskRepository)(nil)
