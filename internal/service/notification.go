package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hustle/internal/domain"
	"hustle/internal/repository"
)

// NotificationService records in-app notifications for task events.
// Runners are addressed by runner ID.
type NotificationService struct {
	repo   repository.NotificationRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, logger: logger.Named("notification"), now: time.Now}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]*domain.Notification, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.repo.ListByUser(ctx, userID)
}

// UnreadCount returns how many of the user's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	list, err := s.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, item := range list {
		if !item.IsRead {
			n++
		}
	}
	return n, nil
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	return s.repo.MarkRead(ctx, userID, id)
}

// MarkAllRead flags all of the user's notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	return s.repo.MarkAllRead(ctx, userID)
}

// Clear deletes all of the user's notifications.
func (s *NotificationService) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	return s.repo.DeleteByUser(ctx, userID)
}

// NotifyInstantTaskAssigned tells the user which runner is bringing their item.
func (s *NotificationService) NotifyInstantTaskAssigned(ctx context.Context, task *domain.InstantTask, runner domain.Runner) {
	s.send(ctx, task.UserID, domain.NotificationInstantTaskAssigned, task.ID,
		"Runner Assigned",
		fmt.Sprintf("%s is on the way with your order.", runner.Name))
	s.send(ctx, runner.ID, domain.NotificationInstantTaskAssigned, task.ID,
		"New Delivery",
		fmt.Sprintf("You have a new delivery worth ₦%d.", task.DeliveryFee))
}

// NotifyCustomTaskAccepted tells the poster a runner took their errand.
func (s *NotificationService) NotifyCustomTaskAccepted(ctx context.Context, task *domain.CustomTask, runner *domain.Runner) {
	s.send(ctx, task.UserID, domain.NotificationCustomTaskAccepted, task.ID,
		"Task Accepted",
		fmt.Sprintf("%s accepted \"%s\".", runner.Name, task.Title))
}

// NotifyTaskStarted tells the user the runner has started.
func (s *NotificationService) NotifyTaskStarted(ctx context.Context, userID, taskID string) {
	s.send(ctx, userID, domain.NotificationTaskStarted, taskID,
		"Task Started", "Your runner has started the task.")
}

// NotifyTaskDelivered asks the user to confirm receipt of an instant task.
func (s *NotificationService) NotifyTaskDelivered(ctx context.Context, userID, taskID string) {
	s.send(ctx, userID, domain.NotificationTaskDelivered, taskID,
		"Order Delivered", "Your order has been delivered. Please confirm receipt.")
}

// NotifyTaskSubmitted asks the user to confirm a finished custom task.
func (s *NotificationService) NotifyTaskSubmitted(ctx context.Context, userID, taskID string) {
	s.send(ctx, userID, domain.NotificationTaskSubmitted, taskID,
		"Task Submitted", "Your runner marked the task as done. Please confirm.")
}

// NotifyTaskCompleted tells both sides the task is done and money has moved.
func (s *NotificationService) NotifyTaskCompleted(ctx context.Context, userID, runnerID, taskID string, paid, earned int64) {
	s.send(ctx, userID, domain.NotificationTaskCompleted, taskID,
		"Task Completed", "Thanks for using Hustle!")
	s.send(ctx, userID, domain.NotificationPaymentReleased, taskID,
		"Payment Released", fmt.Sprintf("₦%d was released to your runner.", paid))
	s.send(ctx, runnerID, domain.NotificationPaymentReceived, taskID,
		"Payment Received", fmt.Sprintf("You earned ₦%d.", earned))
}

// NotifyTaskCancelled tells the user (and runner, if any) the task was cancelled.
func (s *NotificationService) NotifyTaskCancelled(ctx context.Context, userID, runnerID, taskID string, refunded int64) {
	s.send(ctx, userID, domain.NotificationTaskCancelled, taskID,
		"Task Cancelled", fmt.Sprintf("₦%d has been returned to your wallet.", refunded))
	if runnerID != "" {
		s.send(ctx, runnerID, domain.NotificationTaskCancelled, taskID,
			"Task Cancelled", "A task assigned to you was cancelled.")
	}
}

// send stores a notification. Failures are logged and never fail the caller.
func (s *NotificationService) send(ctx context.Context, userID string, typ domain.NotificationType, taskID, title, message string) {
	n := &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		TaskID:    taskID,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Warn("failed to store notification",
			zap.String("user_id", userID),
			zap.String("type", string(typ)),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("notification sent",
		zap.String("user_id", userID),
		zap.String("type", string(typ)),
		zap.String("task_id", taskID),
	)
}
