package repository

import (
	"context"

	"hustle/internal/domain"
)

// UserRepository defines the persistence operations for accounts.
type UserRepository interface {
	// Create persists a new user. Returns ErrAlreadyExists if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update saves the mutable profile fields: name, phone, role and the
	// verification flags. Returns ErrNotFound for an unknown user.
	Update(ctx context.Context, user *domain.User) error
}
