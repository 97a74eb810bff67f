package memory

import (
	"context"
	"sync"

	"hustle/internal/domain"
	"hustle/internal/repository"
)

// NotificationRepository is an in-memory implementation of repository.NotificationRepository.
type NotificationRepository struct {
	mu     sync.RWMutex
	byUser map[string][]*domain.Notification
}

// NewNotificationRepository creates an empty repository.
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{byUser: make(map[string][]*domain.Notification)}
}

// Create stores a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *n
	r.byUser[n.UserID] = append(r.byUser[n.UserID], &c)
	return nil
}

// ListByUser returns the user's notifications newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byUser[userID]
	out := make([]*domain.Notification, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		c := *list[i]
		out = append(out, &c)
	}
	return out, nil
}

// MarkRead flags one notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.byUser[userID] {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

// MarkAllRead flags all of a user's notifications as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.byUser[userID] {
		n.IsRead = true
	}
	return nil
}

// DeleteByUser drops the user's inbox.
func (r *NotificationRepository) DeleteByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byUser, userID)
	return nil
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)
