package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"hustle/internal/domain"
	"hustle/internal/repository"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint failure.
const uniqueViolation = "23505"

// UserRepository is a PostgreSQL implementation of repository.UserRepository.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, phone, role, password_hash, kyc_completed, phone_verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Phone,
		user.Role,
		user.PasswordHash,
		user.KYCCompleted,
		user.PhoneVerified,
		user.CreatedAt,
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

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, name, email, phone, role, password_hash, kyc_completed, phone_verified, created_at
		FROM users WHERE id = $1
	`
	return r.get(ctx, query, id)
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, name, email, phone, role, password_hash, kyc_completed, phone_verified, created_at
		FROM users WHERE LOWER(email) = LOWER($1)
	`
	return r.get(ctx, query, email)
}

// Update saves the mutable profile fields.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $1, phone = $2, role = $3, kyc_completed = $4, phone_verified = $5
		WHERE id = $6
	`

	res, err := r.q.ExecContext(ctx, query,
		user.Name,
		user.Phone,
		user.Role,
		user.KYCCompleted,
		user.PhoneVerified,
		user.ID,
	)
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

func (r *UserRepository) get(ctx context.Context, query string, arg string) (*domain.User, error) {
	var user domain.User
	err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.Role,
		&user.PasswordHash,
		&user.KYCCompleted,
		&user.PhoneVerified,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
