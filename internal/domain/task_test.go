package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstantTask_HappyPath(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	task := &InstantTask{ID: "t1", Status: InstantStatusOpen}

	require.NoError(t, task.Assign("runner-1", now))
	assert.Equal(t, "runner-1", task.RunnerID)
	require.NotNil(t, task.AssignedAt)

	require.NoError(t, task.Transition(InstantStatusInProgress, now.Add(time.Minute)))
	require.NotNil(t, task.StartedAt)

	require.NoError(t, task.Transition(InstantStatusDelivered, now.Add(2*time.Minute)))
	require.NotNil(t, task.DeliveredAt)

	require.NoError(t, task.Transition(InstantStatusCompleted, now.Add(3*time.Minute)))
	require.NotNil(t, task.CompletedAt)
	assert.True(t, task.IsPaid)
	assert.True(t, task.PaymentReleased)
	assert.Equal(t, now.Add(3*time.Minute), *task.CompletedAt)
	assert.True(t, task.Status.IsTerminal())
}

func TestInstantTask_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name string
		from InstantTaskStatus
		to   InstantTaskStatus
	}{
		{"skip assignment", InstantStatusOpen, InstantStatusInProgress},
		{"complete before delivery", InstantStatusInProgress, InstantStatusCompleted},
		{"complete cancelled", InstantStatusCancelled, InstantStatusCompleted},
		{"cancel completed", InstantStatusCompleted, InstantStatusCancelled},
		{"reopen", InstantStatusAssigned, InstantStatusOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &InstantTask{ID: "t1", Status: tt.from}
			err := task.Transition(tt.to, time.Now())

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))

			var terr *TransitionError
			require.True(t, errors.As(err, &terr))
			assert.Equal(t, string(tt.from), terr.From)
			assert.Equal(t, string(tt.to), terr.To)
			assert.Equal(t, tt.from, task.Status, "status must not change")
		})
	}
}

func TestInstantTask_CancelFromAnyNonTerminal(t *testing.T) {
	for _, from := range []InstantTaskStatus{
		InstantStatusOpen, InstantStatusAssigned, InstantStatusInProgress, InstantStatusDelivered,
	} {
		task := &InstantTask{ID: "t1", Status: from}
		require.NoError(t, task.Transition(InstantStatusCancelled, time.Now()), from)
		assert.NotNil(t, task.CancelledAt)
	}
}

func TestCustomTask_HappyPath(t *testing.T) {
	now := time.Now()
	task := &CustomTask{ID: "c1", Status: CustomStatusOpen}

	require.NoError(t, task.Accept("runner-9", now))
	assert.Equal(t, "runner-9", task.RunnerID)
	assert.NotNil(t, task.AcceptedAt)

	require.NoError(t, task.Transition(CustomStatusInProgress, now))
	require.NoError(t, task.Transition(CustomStatusAwaitingConfirmation, now))
	assert.NotNil(t, task.SubmittedAt)

	require.NoError(t, task.Transition(CustomStatusCompleted, now))
	assert.NotNil(t, task.CompletedAt)
	assert.True(t, task.PaymentReleased)
}

func TestCustomTask_AcceptTwiceFails(t *testing.T) {
	task := &CustomTask{ID: "c1", Status: CustomStatusOpen}
	require.NoError(t, task.Accept("r1", time.Now()))

	err := task.Accept("r2", time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, "r1", task.RunnerID)
}

func TestCustomTask_CancelledIsTerminal(t *testing.T) {
	task := &CustomTask{ID: "c1", Status: CustomStatusAccepted}
	require.NoError(t, task.Transition(CustomStatusCancelled, time.Now()))

	assert.True(t, task.Status.IsTerminal())
	assert.ErrorIs(t, task.Transition(CustomStatusCompleted, time.Now()), ErrInvalidTransition)
}

func TestTaskCategory_Valid(t *testing.T) {
	assert.True(t, CategorySchoolErrand.Valid())
	assert.False(t, TaskCategory("gardening").Valid())
}

func TestLocation_Geohash(t *testing.T) {
	loc := Location{Latitude: 5.5256, Longitude: 7.4905}
	hash := loc.Geohash(DefaultGeohashPrecision)

	assert.Len(t, hash, int(DefaultGeohashPrecision))
	assert.Equal(t, hash[:5], loc.Geohash(5))
	assert.True(t, loc.Valid())
	assert.False(t, Location{Latitude: 91}.Valid())
}

func TestWallet_CloneIsDeep(t *testing.T) {
	w := &Wallet{
		UserID:           "u1",
		AvailableBalance: 100,
		Holds:            map[string]int64{"t1": 50},
		Transactions:     []Transaction{{ID: "x"}},
	}
	c := w.Clone()
	c.Holds["t1"] = 0
	c.Transactions[0].ID = "y"

	assert.Equal(t, int64(50), w.Held("t1"))
	assert.Equal(t, "x", w.Transactions[0].ID)
}
