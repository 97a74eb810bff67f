package repository

import (
	"context"

	"hustle/internal/domain"
)

// NotificationRepository stores per-user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error

	// ListByUser returns a user's notifications, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error)

	// MarkRead flags one notification as read. Returns ErrNotFound if it does
	// not belong to userID.
	MarkRead(ctx context.Context, userID, id string) error

	// MarkAllRead flags every notification of userID as read.
	MarkAllRead(ctx context.Context, userID string) error

	// DeleteByUser removes every notification of userID.
	DeleteByUser(ctx context.Context, userID string) error
}
