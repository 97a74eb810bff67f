package domain

import "time"

// NotificationType identifies the event a notification reports.
type NotificationType string

const (
	NotificationInstantTaskAssigned NotificationType = "instant_task_assigned"
	NotificationCustomTaskAccepted  NotificationType = "custom_task_accepted"
	NotificationTaskStarted         NotificationType = "task_started"
	NotificationTaskDelivered       NotificationType = "task_delivered"
	NotificationTaskSubmitted       NotificationType = "task_submitted"
	NotificationTaskCompleted       NotificationType = "task_completed"
	NotificationPaymentReleased     NotificationType = "payment_released"
	NotificationPaymentReceived     NotificationType = "payment_received"
	NotificationTaskCancelled       NotificationType = "task_cancelled"
)

// Notification is a message shown to a user about one of their tasks.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	TaskID    string           `json:"task_id,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
