package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hustle/internal/domain"
	"hustle/internal/redis"
	"hustle/internal/repository"
)

// CustomTaskService orchestrates free-form errands: the budget is escrowed on
// posting and paid to the runner on confirmation.
type CustomTaskService struct {
	repo          repository.CustomTaskRepository
	wallets       *WalletService
	runners       *RunnerService
	notifier      *NotificationService
	lockStore     redis.LockStoreInterface
	acceptLockTTL time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewCustomTaskService creates a new CustomTaskService. lockStore may be nil,
// in which case acceptance relies on the repository version check alone.
func NewCustomTaskService(
	repo repository.CustomTaskRepository,
	wallets *WalletService,
	runners *RunnerService,
	notifier *NotificationService,
	lockStore redis.LockStoreInterface,
	acceptLockTTL time.Duration,
	logger *zap.Logger,
) *CustomTaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomTaskService{
		repo:          repo,
		wallets:       wallets,
		runners:       runners,
		notifier:      notifier,
		lockStore:     lockStore,
		acceptLockTTL: acceptLockTTL,
		logger:        logger.Named("custom_task"),
		now:           time.Now,
	}
}

// CreateCustomTaskRequest contains the parameters for posting an errand.
type CreateCustomTaskRequest struct {
	UserID               string
	UserPhone            string
	UserEmail            string
	Title                string
	Description          string
	Category             domain.TaskCategory
	Budget               int64
	EstimatedDurationMin int
	Pickup               *domain.Location
	Delivery             *domain.Location
}

// Create posts an open errand and locks its budget in the poster's wallet.
func (s *CustomTaskService) Create(ctx context.Context, req CreateCustomTaskRequest) (*domain.CustomTask, error) {
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, invalid("title", "is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, invalid("description", "is required")
	}
	if req.Budget <= 0 {
		return nil, invalid("budget", "must be positive")
	}
	if req.Category == "" {
		req.Category = domain.CategoryOther
	}
	if !req.Category.Valid() {
		return nil, invalid("category", "unknown category")
	}
	if req.EstimatedDurationMin < 0 {
		return nil, invalid("estimated_duration_min", "must not be negative")
	}
	if !validLocationPtr(req.Pickup) || !validLocationPtr(req.Delivery) {
		return nil, ErrInvalidLocation
	}

	task := &domain.CustomTask{
		ID:                   uuid.New().String(),
		UserID:               req.UserID,
		Title:                strings.TrimSpace(req.Title),
		Description:          strings.TrimSpace(req.Description),
		Category:             req.Category,
		Budget:               req.Budget,
		EstimatedDurationMin: req.EstimatedDurationMin,
		PickupLocation:       req.Pickup,
		DeliveryLocation:     req.Delivery,
		Status:               domain.CustomStatusOpen,
		CreatedAt:            s.now(),
		UserPhone:            req.UserPhone,
		UserEmail:            req.UserEmail,
	}

	if _, err := s.wallets.InitializeWallet(ctx, req.UserID); err != nil {
		return nil, err
	}
	if _, err := s.wallets.LockFunds(ctx, req.UserID, task.Budget, task.ID, domain.TransactionTaskLock); err != nil {
		return nil, err
	}
	task.AmountLocked = true

	if err := s.repo.Create(ctx, task); err != nil {
		if _, rerr := s.wallets.RefundFunds(ctx, task.UserID, task.Budget, task.ID); rerr != nil {
			s.logger.Error("failed to refund unsaved task", zap.String("task_id", task.ID), zap.Error(rerr))
		}
		return nil, err
	}

	s.logger.Info("custom task posted", zap.String("task_id", task.ID), zap.Int64("budget", task.Budget))
	return task, nil
}

// ListOpen returns errands waiting for a runner, newest first.
func (s *CustomTaskService) ListOpen(ctx context.Context) ([]*domain.CustomTask, error) {
	return s.repo.ListOpen(ctx)
}

// Accept assigns the runner to an open errand. Concurrent accepts are
// serialized by a short-lived lock; of two racing runners only one wins and
// the other gets ErrTaskBeingAccepted or a conflict.
func (s *CustomTaskService) Accept(ctx context.Context, taskID, runnerID string) (*domain.CustomTask, error) {
	runner, err := s.runners.Get(ctx, runnerID)
	if err != nil {
		return nil, err
	}

	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if runner.UserID != "" && runner.UserID == task.UserID {
		return nil, ErrCannotAcceptOwnTask
	}

	if s.lockStore != nil {
		ok, err := s.lockStore.AcquireTaskLock(ctx, task.ID, s.acceptLockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire accept lock: %w", err)
		}
		if !ok {
			return nil, ErrTaskBeingAccepted
		}
		defer func() {
			if err := s.lockStore.ReleaseTaskLock(ctx, task.ID); err != nil {
				s.logger.Warn("failed to release accept lock", zap.String("task_id", task.ID), zap.Error(err))
			}
		}()
	}

	if err := task.Accept(runner.ID, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("custom task accepted", zap.String("task_id", task.ID), zap.String("runner_id", runner.ID))
	s.notifier.NotifyCustomTaskAccepted(ctx, task, runner)
	return task, nil
}

// Start marks the errand in progress. Only the accepting runner may start it.
func (s *CustomTaskService) Start(ctx context.Context, taskID, runnerID string) (*domain.CustomTask, error) {
	task, err := s.advanceAsRunner(ctx, taskID, runnerID, domain.CustomStatusInProgress)
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyTaskStarted(ctx, task.UserID, task.ID)
	return task, nil
}

// Submit hands the finished errand to the poster for confirmation.
func (s *CustomTaskService) Submit(ctx context.Context, taskID, runnerID string) (*domain.CustomTask, error) {
	task, err := s.advanceAsRunner(ctx, taskID, runnerID, domain.CustomStatusAwaitingConfirmation)
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyTaskSubmitted(ctx, task.UserID, task.ID)
	return task, nil
}

// Confirm completes the errand, releasing the budget to the runner. The runner
// is resolved before the status is committed, so a failed lookup leaves the
// errand awaiting confirmation with the budget still held.
func (s *CustomTaskService) Confirm(ctx context.Context, taskID, userID string) (*domain.CustomTask, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, ErrNotTaskOwner
	}

	runner, err := s.runners.Get(ctx, task.RunnerID)
	if err != nil {
		return nil, fmt.Errorf("resolve runner for task %s: %w", task.ID, err)
	}
	walletID := runnerWalletID(runner)
	if _, err := s.wallets.InitializeWallet(ctx, walletID); err != nil {
		return nil, err
	}

	if err := task.Transition(domain.CustomStatusCompleted, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	if err := s.settle(ctx, task, runner); err != nil {
		s.logger.Error("custom task settlement failed", zap.String("task_id", task.ID), zap.Error(err))
		return nil, fmt.Errorf("settle task %s: %w", task.ID, err)
	}

	s.notifier.NotifyTaskCompleted(ctx, task.UserID, task.RunnerID, task.ID, task.Budget, task.Budget)
	return task, nil
}

// Cancel cancels a non-terminal errand owned by userID and refunds the budget.
func (s *CustomTaskService) Cancel(ctx context.Context, taskID, userID, reason string) (*domain.CustomTask, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, ErrNotTaskOwner
	}

	if err := task.Transition(domain.CustomStatusCancelled, s.now()); err != nil {
		return nil, err
	}
	task.CancelReason = strings.TrimSpace(reason)
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	var refunded int64
	if task.AmountLocked {
		if _, err := s.wallets.RefundFunds(ctx, task.UserID, task.Budget, task.ID); err != nil {
			s.logger.Error("custom task refund failed", zap.String("task_id", task.ID), zap.Error(err))
			return nil, fmt.Errorf("refund task %s: %w", task.ID, err)
		}
		refunded = task.Budget
	}

	s.notifier.NotifyTaskCancelled(ctx, task.UserID, task.RunnerID, task.ID, refunded)
	return task, nil
}

// Get returns an errand by ID.
func (s *CustomTaskService) Get(ctx context.Context, taskID string) (*domain.CustomTask, error) {
	if taskID == "" {
		return nil, ErrInvalidTaskID
	}
	return s.repo.GetByID(ctx, taskID)
}

// ListByUser returns errands posted by the user, newest first.
func (s *CustomTaskService) ListByUser(ctx context.Context, userID string) ([]*domain.CustomTask, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.repo.ListByUser(ctx, userID)
}

// ListByRunner returns errands accepted by the runner, newest first.
func (s *CustomTaskService) ListByRunner(ctx context.Context, runnerID string) ([]*domain.CustomTask, error) {
	if runnerID == "" {
		return nil, ErrInvalidRunnerID
	}
	return s.repo.ListByRunner(ctx, runnerID)
}

func (s *CustomTaskService) advanceAsRunner(ctx context.Context, taskID, runnerID string, to domain.CustomTaskStatus) (*domain.CustomTask, error) {
	if runnerID == "" {
		return nil, ErrInvalidRunnerID
	}
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.RunnerID != runnerID {
		return nil, ErrRunnerNotAssigned
	}

	if err := task.Transition(to, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *CustomTaskService) settle(ctx context.Context, task *domain.CustomTask, runner *domain.Runner) error {
	if _, err := s.wallets.ReleaseFunds(ctx, task.UserID, task.Budget, task.ID); err != nil {
		return err
	}
	if _, err := s.wallets.AddEarnings(ctx, runnerWalletID(runner), task.Budget, task.ID, descCustomTaskPayment); err != nil {
		return err
	}

	return s.runners.RecordDelivery(ctx, runner.ID, task.Budget)
}
