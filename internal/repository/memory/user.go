package memory

import (
	"context"
	"strings"
	"sync"

	"hustle/internal/domain"
	"hustle/internal/repository"
)

// UserRepository is an in-memory implementation of repository.UserRepository.
type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]*domain.User
	byEmail map[string]string
}

// NewUserRepository creates an empty repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := r.byEmail[email]; ok {
		return repository.ErrAlreadyExists
	}
	if _, ok := r.users[user.ID]; ok {
		return repository.ErrAlreadyExists
	}
	c := *user
	r.users[user.ID] = &c
	r.byEmail[email] = user.ID
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *r.users[id]
	return &c, nil
}

// Update saves the mutable profile fields.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Name = user.Name
	stored.Phone = user.Phone
	stored.Role = user.Role
	stored.KYCCompleted = user.KYCCompleted
	stored.PhoneVerified = user.PhoneVerified
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
