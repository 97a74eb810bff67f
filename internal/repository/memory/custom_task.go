package memory

import (
	"context"
	"sort"
	"sync"

	"hustle/internal/domain"
	"hustle/internal/repository"
)

// CustomTaskRepository is an in-memory implementation of repository.CustomTaskRepository.
type CustomTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.CustomTask
	order []string
}

// NewCustomTaskRepository creates an empty repository.
func NewCustomTaskRepository() *CustomTaskRepository {
	return &CustomTaskRepository{tasks: make(map[string]*domain.CustomTask)}
}

// Create persists a new task.
func (r *CustomTaskRepository) Create(ctx context.Context, task *domain.CustomTask) error {
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
func (r *CustomTaskRepository) GetByID(ctx context.Context, id string) (*domain.CustomTask, error) {
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
func (r *CustomTaskRepository) Update(ctx context.Context, task *domain.CustomTask) error {
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

// ListOpen returns tasks still waiting for a runner.
func (r *CustomTaskRepository) ListOpen(ctx context.Context) ([]*domain.CustomTask, error) {
	return r.list(func(t *domain.CustomTask) bool { return t.Status == domain.CustomStatusOpen }), nil
}

// ListByUser returns the user's tasks newest first.
func (r *CustomTaskRepository) ListByUser(ctx context.Context, userID string) ([]*domain.CustomTask, error) {
	return r.list(func(t *domain.CustomTask) bool { return t.UserID == userID }), nil
}

// ListByRunner returns the runner's tasks newest first.
func (r *CustomTaskRepository) ListByRunner(ctx context.Context, runnerID string) ([]*domain.CustomTask, error) {
	return r.list(func(t *domain.CustomTask) bool { return t.RunnerID == runnerID }), nil
}

func (r *CustomTaskRepository) list(match func(*domain.CustomTask) bool) []*domain.CustomTask {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.CustomTask, 0)
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

var _ repository.CustomTaskRepository = (*CustomTaskRepository)(nil)
