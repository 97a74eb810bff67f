package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hustle/internal/domain"
	"hustle/internal/repository"
	"hustle/internal/service"
)

func TestNotificationService_ReadTracking(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	env.notifications.NotifyTaskStarted(ctx, "u1", "task-1")
	env.notifications.NotifyTaskDelivered(ctx, "u1", "task-1")
	env.notifications.NotifyTaskCompleted(ctx, "u1", "runner-1", "task-1", 2000, 2000)

	unread, err := env.notifications.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, unread)

	notes, err := env.notifications.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, notes, 4)

	require.NoError(t, env.notifications.MarkRead(ctx, "u1", notes[0].ID))
	unread, err = env.notifications.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, unread)

	assert.ErrorIs(t, env.notifications.MarkRead(ctx, "runner-1", notes[1].ID), repository.ErrNotFound)

	require.NoError(t, env.notifications.MarkAllRead(ctx, "u1"))
	unread, err = env.notifications.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, unread)

	runnerNotes, err := env.notifications.List(ctx, "runner-1")
	require.NoError(t, err)
	require.Len(t, runnerNotes, 1)
	assert.Equal(t, domain.NotificationPaymentReceived, runnerNotes[0].Type)
}

func TestNotificationService_Clear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := newTestEnv(t)

	env.notifications.NotifyTaskStarted(ctx, "u1", "task-1")
	env.notifications.NotifyTaskStarted(ctx, "u2", "task-2")

	require.NoError(t, env.notifications.Clear(ctx, "u1"))

	notes, err := env.notifications.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, notes)

	others, err := env.notifications.List(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, others, 1)

	assert.ErrorIs(t, env.notifications.Clear(ctx, ""), service.ErrInvalidUserID)
}
