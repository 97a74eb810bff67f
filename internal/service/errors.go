package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidRunnerID is returned when runner ID is empty.
	ErrInvalidRunnerID = errors.New("invalid runner id")

	// ErrInvalidTaskID is returned when task ID is empty.
	ErrInvalidTaskID = errors.New("invalid task id")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidAmount is returned for zero or negative money amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds is returned when a lock exceeds the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrWalletNotFound is returned when the user has no wallet yet.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrHoldMismatch is returned when a release or refund exceeds the amount
	// still held for the task.
	ErrHoldMismatch = errors.New("amount exceeds funds held for task")

	// ErrNoRunnerAvailable is returned when no runner can take a task.
	ErrNoRunnerAvailable = errors.New("no runner available")

	// ErrRunnerNotAssigned is returned when a runner acts on a task that is not theirs.
	ErrRunnerNotAssigned = errors.New("runner not assigned to this task")

	// ErrNotTaskOwner is returned when a user acts on a task they did not create.
	ErrNotTaskOwner = errors.New("task belongs to another user")

	// ErrCannotAcceptOwnTask is returned when a runner accepts a task they posted.
	ErrCannotAcceptOwnTask = errors.New("cannot accept your own task")

	// ErrTaskBeingAccepted is returned when another runner holds the accept lock.
	ErrTaskBeingAccepted = errors.New("task is being accepted by another runner")

	// ErrInvalidCredentials is returned when login fails.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUnauthorized is returned for a missing, invalid or expired session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when a session user acts for another account.
	ErrForbidden = errors.New("not allowed to act for another account")

	// ErrNotRunner is returned when the session user has no runner profile.
	ErrNotRunner = errors.New("account has no runner profile")

	// ErrInvalidOTP is returned for a wrong, expired or never-sent code.
	ErrInvalidOTP = errors.New("invalid or expired verification code")

	// ErrPhoneNotVerified is returned when KYC is attempted before phone verification.
	ErrPhoneNotVerified = errors.New("phone number not verified")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
