package domain

import "time"

// UserRole is what a user does on the marketplace.
type UserRole string

const (
	RoleUser   UserRole = "user"
	RoleRunner UserRole = "runner"
	RoleBoth   UserRole = "both"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleRunner, RoleBoth:
		return true
	}
	return false
}

// User is a registered account.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Role          UserRole  `json:"role"`
	PasswordHash  string    `json:"-"`
	Location      *Location `json:"location,omitempty"`
	KYCCompleted  bool      `json:"kyc_completed"`
	PhoneVerified bool      `json:"phone_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// Session is an authenticated user and their token.
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
