package postgres

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hustle/internal/domain"
	"hustle/internal/repository"
)

func newMock(t *testing.T) (*WalletRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWalletRepository(db), mock
}

func TestWalletRepository_GetByUserID(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("SELECT user_id, available_balance").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "available_balance", "locked_balance", "total_earnings", "version", "created_at", "updated_at",
		}).AddRow("u1", 4000, 1000, 0, 3, now, now))
	mock.ExpectQuery("SELECT ref_id, amount FROM wallet_holds").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"ref_id", "amount"}).AddRow("task-1", 1000))
	mock.ExpectQuery("FROM wallet_transactions WHERE user_id = \\$1 ORDER BY created_at ASC").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "amount", "type", "status", "description", "related_task_id", "created_at",
		}).AddRow("tx-1", "u1", 1000, "task_lock", "locked", "Funds locked for task", "task-1", now))

	w, err := repo.GetByUserID(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, int64(4000), w.AvailableBalance)
	assert.Equal(t, int64(1000), w.LockedBalance)
	assert.Equal(t, 3, w.Version)
	assert.Equal(t, int64(1000), w.Held("task-1"))
	require.Len(t, w.Transactions, 1)
	assert.Equal(t, domain.TransactionTaskLock, w.Transactions[0].Type)
	assert.Equal(t, domain.TransactionLocked, w.Transactions[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepository_GetByUserID_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("SELECT user_id, available_balance").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	_, err := repo.GetByUserID(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWalletRepository_UpdateCommits(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	w := &domain.Wallet{
		UserID:           "u1",
		AvailableBalance: 4000,
		LockedBalance:    1000,
		Holds:            map[string]int64{"task-1": 1000, "task-0": 0},
		Version:          2,
		UpdatedAt:        now,
	}
	txn := &domain.Transaction{
		ID: "tx-1", UserID: "u1", Amount: 1000,
		Type: domain.TransactionTaskLock, Status: domain.TransactionLocked,
		Description: "Funds locked for task", RelatedTaskID: "task-1", CreatedAt: now,
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets").
		WithArgs(int64(4000), int64(1000), int64(0), now, "u1", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM wallet_holds").WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO wallet_holds").WithArgs("u1", "task-1", int64(1000)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs("tx-1", "u1", int64(1000), "task_lock", "locked", "Funds locked for task", "task-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), w, txn))
	assert.Equal(t, 3, w.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepository_UpdateStaleVersionRollsBack(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	w := &domain.Wallet{UserID: "u1", Version: 1}
	err := repo.Update(context.Background(), w, &domain.Transaction{ID: "tx"})

	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Equal(t, 1, w.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepository_CreateDuplicate(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec("INSERT INTO wallets").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Create(context.Background(), &domain.Wallet{UserID: "u1"})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
}

func TestInstantTaskRepository_UpdateConflictAndMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewInstantTaskRepository(db)

	exists := regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM instant_tasks WHERE id = $1)")

	mock.ExpectExec("UPDATE instant_tasks").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(exists).WithArgs("t1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	task := &domain.InstantTask{ID: "t1", Status: domain.InstantStatusAssigned, StatusVersion: 0}
	assert.ErrorIs(t, repo.Update(context.Background(), task), repository.ErrConflict)
	assert.Equal(t, 0, task.StatusVersion)

	mock.ExpectExec("UPDATE instant_tasks").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(exists).WithArgs("t2").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	assert.ErrorIs(t, repo.Update(context.Background(), &domain.InstantTask{ID: "t2"}), repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstantTaskRepository_UpdateBumpsVersion(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewInstantTaskRepository(db)

	mock.ExpectExec("UPDATE instant_tasks").
		WithArgs("r1", "assigned", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			"", false, false, "t1", 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now()
	task := &domain.InstantTask{ID: "t1", RunnerID: "r1", Status: domain.InstantStatusAssigned, StatusVersion: 4, AssignedAt: &now}
	require.NoError(t, repo.Update(context.Background(), task))
	assert.Equal(t, 5, task.StatusVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstantTaskRepository_CreateStoresGeohash(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewInstantTaskRepository(db)

	pickup := domain.Location{Latitude: 5.5256, Longitude: 7.4905}
	delivery := domain.Location{Latitude: 5.5332, Longitude: 7.4812}

	args := make([]driver.Value, 31)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	args[12] = pickup.Geohash(domain.DefaultGeohashPrecision)
	args[17] = delivery.Geohash(domain.DefaultGeohashPrecision)

	mock.ExpectExec("INSERT INTO instant_tasks").WithArgs(args...).WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(context.Background(), &domain.InstantTask{
		ID: "t1", Status: domain.InstantStatusOpen, PickupLocation: pickup, DeliveryLocation: delivery, CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomTaskRepository_GetByIDWithoutLocations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCustomTaskRepository(db)
	now := time.Now()

	cols := []string{
		"id", "user_id", "runner_id", "title", "description", "category", "budget", "estimated_duration_min",
		"pickup_lat", "pickup_lng", "pickup_address", "pickup_city",
		"delivery_lat", "delivery_lng", "delivery_address", "delivery_city",
		"status", "status_version", "created_at", "accepted_at", "started_at", "submitted_at", "completed_at", "cancelled_at",
		"cancel_reason", "user_phone", "user_email", "amount_locked", "payment_released",
	}
	mock.ExpectQuery("FROM custom_tasks WHERE id = \\$1").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"c1", "u1", "r1", "Buy textbooks", "Two maths textbooks", "school_errand", 3000, 45,
			nil, nil, nil, nil,
			5.5332, 7.4812, "University Gate", "Umuahia",
			"accepted", 1, now, now, nil, nil, nil, nil,
			"", "08012345678", "", true, false,
		))

	task, err := repo.GetByID(context.Background(), "c1")
	require.NoError(t, err)

	assert.Nil(t, task.PickupLocation)
	require.NotNil(t, task.DeliveryLocation)
	assert.Equal(t, "Umuahia", task.DeliveryLocation.City)
	assert.Equal(t, domain.CustomStatusAccepted, task.Status)
	assert.Equal(t, domain.CategorySchoolErrand, task.Category)
	require.NotNil(t, task.AcceptedAt)
	assert.Nil(t, task.StartedAt)
	assert.True(t, task.AmountLocked)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnError(&pq.Error{Code: uniqueViolation})

	err = repo.Create(context.Background(), &domain.User{ID: "u1", Email: "a@b.co"})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
}

func TestRunnerRepository_TargetedUpdates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRunnerRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("SET total_deliveries = total_deliveries + 1, earnings = earnings + $1")).
		WithArgs(int64(1500), "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE runners SET is_available = $1 WHERE id = $2")).
		WithArgs(false, "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET latitude = $1, longitude = $2")).
		WithArgs(5.53, 7.49, "", "Umuahia", sqlmock.AnyArg(), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.RecordDelivery(ctx, "r1", 1500))
	require.NoError(t, repo.SetAvailability(ctx, "r1", false))
	err = repo.UpdateLocation(ctx, "ghost", domain.Location{Latitude: 5.53, Longitude: 7.49, City: "Umuahia"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunnerRepository_GetByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRunnerRepository(db)

	columns := []string{"id", "user_id", "name", "phone", "rating", "total_deliveries",
		"latitude", "longitude", "address", "city", "is_available", "earnings"}
	mock.ExpectQuery("FROM runners WHERE user_id = \\$1").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("r1", "u1", "Chidi", "08012345678", 4.8, 12, 5.52, 7.49, "", "Umuahia", true, 9000))
	mock.ExpectQuery("FROM runners WHERE user_id = \\$1").
		WithArgs("u2").
		WillReturnRows(sqlmock.NewRows(columns))

	runner, err := repo.GetByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "r1", runner.ID)
	assert.Equal(t, 12, runner.TotalDeliveries)

	_, err = repo.GetByUserID(context.Background(), "u2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunnerRepository_CreateDuplicateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRunnerRepository(db)

	mock.ExpectExec("INSERT INTO runners").WillReturnError(&pq.Error{Code: uniqueViolation})

	err = repo.Create(context.Background(), &domain.Runner{ID: "r2", UserID: "u1"})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
}

func TestUserRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("SET name = $1, phone = $2, role = $3, kyc_completed = $4, phone_verified = $5")).
		WithArgs("Ada", "08031234567", "user", true, false, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 0))

	user := &domain.User{ID: "u1", Name: "Ada", Phone: "08031234567", Role: domain.RoleUser, KYCCompleted: true}
	require.NoError(t, repo.Update(context.Background(), user))
	assert.ErrorIs(t, repo.Update(context.Background(), &domain.User{ID: "ghost"}), repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
