package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is matched by every *TransitionError.
var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionError reports an illegal status change on a task.
type TransitionError struct {
	TaskID string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("task %s: cannot move from %s to %s", e.TaskID, e.From, e.To)
}

// Is makes errors.Is(err, ErrInvalidTransition) succeed.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// InstantTaskStatus is the lifecycle state of an instant task.
type InstantTaskStatus string

const (
	InstantStatusOpen       InstantTaskStatus = "open"
	InstantStatusAssigned   InstantTaskStatus = "assigned"
	InstantStatusInProgress InstantTaskStatus = "in_progress"
	InstantStatusDelivered  InstantTaskStatus = "delivered"
	InstantStatusCompleted  InstantTaskStatus = "completed"
	InstantStatusCancelled  InstantTaskStatus = "cancelled"
)

// InstantTransitions is the instant task state flow.
var InstantTransitions = map[InstantTaskStatus][]InstantTaskStatus{
	InstantStatusOpen:       {InstantStatusAssigned, InstantStatusCancelled},
	InstantStatusAssigned:   {InstantStatusInProgress, InstantStatusCancelled},
	InstantStatusInProgress: {InstantStatusDelivered, InstantStatusCancelled},
	InstantStatusDelivered:  {InstantStatusCompleted, InstantStatusCancelled},
}

// CanTransitionInstant reports whether from -> to is allowed.
func CanTransitionInstant(from, to InstantTaskStatus) bool {
	for _, s := range InstantTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s InstantTaskStatus) IsTerminal() bool {
	return len(InstantTransitions[s]) == 0
}

// InstantTask is a delivery of a predefined catalog item.
type InstantTask struct {
	ID                  string            `json:"id"`
	UserID              string            `json:"user_id"`
	ItemID              string            `json:"item_id"`
	VendorID            string            `json:"vendor_id"`
	RunnerID            string            `json:"runner_id,omitempty"`
	ItemPrice           int64             `json:"item_price"`
	DeliveryFee         int64             `json:"delivery_fee"`
	TotalAmount         int64             `json:"total_amount"`
	PickupLocation      Location          `json:"pickup_location"`
	DeliveryLocation    Location          `json:"delivery_location"`
	Status              InstantTaskStatus `json:"status"`
	StatusVersion       int               `json:"status_version"`
	CreatedAt           time.Time         `json:"created_at"`
	AssignedAt          *time.Time        `json:"assigned_at,omitempty"`
	StartedAt           *time.Time        `json:"started_at,omitempty"`
	DeliveredAt         *time.Time        `json:"delivered_at,omitempty"`
	CompletedAt         *time.Time        `json:"completed_at,omitempty"`
	CancelledAt         *time.Time        `json:"cancelled_at,omitempty"`
	CancelReason        string            `json:"cancel_reason,omitempty"`
	UserPhone           string            `json:"user_phone"`
	SpecialInstructions string            `json:"special_instructions,omitempty"`
	IsPaid              bool              `json:"is_paid"`
	PaymentReleased     bool              `json:"payment_released"`
}

// Transition moves the task to status `to` and stamps the matching timestamp.
func (t *InstantTask) Transition(to InstantTaskStatus, at time.Time) error {
	if !CanTransitionInstant(t.Status, to) {
		return &TransitionError{TaskID: t.ID, From: string(t.Status), To: string(to)}
	}

	switch to {
	case InstantStatusAssigned:
		t.AssignedAt = &at
	case InstantStatusInProgress:
		t.StartedAt = &at
	case InstantStatusDelivered:
		t.DeliveredAt = &at
	case InstantStatusCompleted:
		t.CompletedAt = &at
		t.IsPaid = true
		t.PaymentReleased = true
	case InstantStatusCancelled:
		t.CancelledAt = &at
	}
	t.Status = to
	return nil
}

// Assign sets the runner and moves the task to assigned.
func (t *InstantTask) Assign(runnerID string, at time.Time) error {
	if err := t.Transition(InstantStatusAssigned, at); err != nil {
		return err
	}
	t.RunnerID = runnerID
	return nil
}

// CustomTaskStatus is the lifecycle state of a custom task.
type CustomTaskStatus string

const (
	CustomStatusOpen                 CustomTaskStatus = "open"
	CustomStatusAccepted             CustomTaskStatus = "accepted"
	CustomStatusInProgress           CustomTaskStatus = "in_progress"
	CustomStatusAwaitingConfirmation CustomTaskStatus = "awaiting_confirmation"
	CustomStatusCompleted            CustomTaskStatus = "completed"
	CustomStatusCancelled            CustomTaskStatus = "cancelled"
)

// CustomTransitions is the custom task state flow.
var CustomTransitions = map[CustomTaskStatus][]CustomTaskStatus{
	CustomStatusOpen:                 {CustomStatusAccepted, CustomStatusCancelled},
	CustomStatusAccepted:             {CustomStatusInProgress, CustomStatusCancelled},
	CustomStatusInProgress:           {CustomStatusAwaitingConfirmation, CustomStatusCancelled},
	CustomStatusAwaitingConfirmation: {CustomStatusCompleted, CustomStatusCancelled},
}

// CanTransitionCustom reports whether from -> to is allowed.
func CanTransitionCustom(from, to CustomTaskStatus) bool {
	for _, s := range CustomTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s CustomTaskStatus) IsTerminal() bool {
	return len(CustomTransitions[s]) == 0
}

// TaskCategory groups custom tasks.
type TaskCategory string

const (
	CategoryShopping     TaskCategory = "shopping"
	CategoryPickup       TaskCategory = "pickup"
	CategoryDelivery     TaskCategory = "delivery"
	CategorySchoolErrand TaskCategory = "school_errand"
	CategoryDocument     TaskCategory = "document"
	CategoryOther        TaskCategory = "other"
)

// Valid reports whether c is a known category.
func (c TaskCategory) Valid() bool {
	switch c {
	case CategoryShopping, CategoryPickup, CategoryDelivery,
		CategorySchoolErrand, CategoryDocument, CategoryOther:
		return true
	}
	return false
}

// CustomTask is a free-form errand posted by a user.
type CustomTask struct {
	ID                   string           `json:"id"`
	UserID               string           `json:"user_id"`
	RunnerID             string           `json:"runner_id,omitempty"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	Category             TaskCategory     `json:"category"`
	Budget               int64            `json:"budget"`
	EstimatedDurationMin int              `json:"estimated_duration_min,omitempty"`
	PickupLocation       *Location        `json:"pickup_location,omitempty"`
	DeliveryLocation     *Location        `json:"delivery_location,omitempty"`
	Status               CustomTaskStatus `json:"status"`
	StatusVersion        int              `json:"status_version"`
	CreatedAt            time.Time        `json:"created_at"`
	AcceptedAt           *time.Time       `json:"accepted_at,omitempty"`
	StartedAt            *time.Time       `json:"started_at,omitempty"`
	SubmittedAt          *time.Time       `json:"submitted_at,omitempty"`
	CompletedAt          *time.Time       `json:"completed_at,omitempty"`
	CancelledAt          *time.Time       `json:"cancelled_at,omitempty"`
	CancelReason         string           `json:"cancel_reason,omitempty"`
	UserPhone            string           `json:"user_phone"`
	UserEmail            string           `json:"user_email,omitempty"`
	AmountLocked         bool             `json:"amount_locked"`
	PaymentReleased      bool             `json:"payment_released"`
}

// Transition moves the task to status `to` and stamps the matching timestamp.
func (t *CustomTask) Transition(to CustomTaskStatus, at time.Time) error {
	if !CanTransitionCustom(t.Status, to) {
		return &TransitionError{TaskID: t.ID, From: string(t.Status), To: string(to)}
	}

	switch to {
	case CustomStatusAccepted:
		t.AcceptedAt = &at
	case CustomStatusInProgress:
		t.StartedAt = &at
	case CustomStatusAwaitingConfirmation:
		t.SubmittedAt = &at
	case CustomStatusCompleted:
		t.CompletedAt = &at
		t.PaymentReleased = true
	case CustomStatusCancelled:
		t.CancelledAt = &at
	}
	t.Status = to
	return nil
}

// Accept assigns the runner and moves the task to accepted.
func (t *CustomTask) Accept(runnerID string, at time.Time) error {
	if err := t.Transition(CustomStatusAccepted, at); err != nil {
		return err
	}
	t.RunnerID = runnerID
	return nil
}
