package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hustle/internal/catalog"
	"hustle/internal/domain"
	"hustle/internal/geo"
	"hustle/internal/pricing"
	"hustle/internal/repository"
)

// Earnings descriptions credited to runners.
const (
	descDeliveryFare      = "Delivery fare"
	descItemReimbursement = "Item reimbursement"
	descCustomTaskPayment = "Custom task payment"
)

// InstantTaskService orchestrates deliveries of catalog items: pricing,
// escrow, runner assignment and settlement.
type InstantTaskService struct {
	repo      repository.InstantTaskRepository
	catalog   *catalog.Catalog
	estimator *pricing.Estimator
	wallets   *WalletService
	runners   *RunnerService
	notifier  *NotificationService
	logger    *zap.Logger
	now       func() time.Time
}

// NewInstantTaskService creates a new InstantTaskService.
func NewInstantTaskService(
	repo repository.InstantTaskRepository,
	cat *catalog.Catalog,
	estimator *pricing.Estimator,
	wallets *WalletService,
	runners *RunnerService,
	notifier *NotificationService,
	logger *zap.Logger,
) *InstantTaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstantTaskService{
		repo:      repo,
		catalog:   cat,
		estimator: estimator,
		wallets:   wallets,
		runners:   runners,
		notifier:  notifier,
		logger:    logger.Named("instant_task"),
		now:       time.Now,
	}
}

// InstantQuote is the price of delivering a catalog item.
type InstantQuote struct {
	Item                  domain.PredefinedItem  `json:"item"`
	Vendor                domain.Vendor          `json:"vendor"`
	PickupLocation        domain.Location        `json:"pickup_location"`
	DeliveryLocation      domain.Location        `json:"delivery_location"`
	Fare                  domain.FareCalculation `json:"fare"`
	TotalAmount           int64                  `json:"total_amount"`
	EstimatedDeliveryMins int                    `json:"estimated_delivery_mins"`
}

// Quote prices delivery of itemID to delivery. Pickup defaults to the vendor.
func (s *InstantTaskService) Quote(ctx context.Context, itemID string, pickup *domain.Location, delivery domain.Location) (*InstantQuote, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, invalid("item_id", "is required")
	}
	if !delivery.Valid() || !validLocationPtr(pickup) {
		return nil, ErrInvalidLocation
	}

	item, vendor, err := s.catalog.OrderableItem(itemID)
	if err != nil {
		return nil, err
	}

	from := vendor.Location
	if pickup != nil {
		from = *pickup
	}

	fare := s.estimator.DeliveryFare(geo.Distance(from, delivery))
	return &InstantQuote{
		Item:                  item,
		Vendor:                vendor,
		PickupLocation:        from,
		DeliveryLocation:      delivery,
		Fare:                  fare,
		TotalAmount:           item.Price + fare.TotalFare,
		EstimatedDeliveryMins: geo.EstimateDeliveryTime(fare.DistanceKm),
	}, nil
}

// CreateInstantTaskRequest contains the parameters for ordering an item.
type CreateInstantTaskRequest struct {
	UserID              string
	UserPhone           string
	ItemID              string
	Pickup              *domain.Location
	Delivery            domain.Location
	SpecialInstructions string
}

// Create prices the order, locks the total in the user's wallet and assigns
// the nearest available runner. If no runner is available the funds are
// refunded and ErrNoRunnerAvailable is returned.
func (s *InstantTaskService) Create(ctx context.Context, req CreateInstantTaskRequest) (*domain.InstantTask, error) {
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}

	quote, err := s.Quote(ctx, req.ItemID, req.Pickup, req.Delivery)
	if err != nil {
		return nil, err
	}

	task := &domain.InstantTask{
		ID:                  uuid.New().String(),
		UserID:              req.UserID,
		ItemID:              quote.Item.ID,
		VendorID:            quote.Vendor.ID,
		ItemPrice:           quote.Item.Price,
		DeliveryFee:         quote.Fare.TotalFare,
		TotalAmount:         quote.TotalAmount,
		PickupLocation:      quote.PickupLocation,
		DeliveryLocation:    quote.DeliveryLocation,
		Status:              domain.InstantStatusOpen,
		CreatedAt:           s.now(),
		UserPhone:           req.UserPhone,
		SpecialInstructions: strings.TrimSpace(req.SpecialInstructions),
	}

	if _, err := s.wallets.InitializeWallet(ctx, req.UserID); err != nil {
		return nil, err
	}
	if _, err := s.wallets.LockFunds(ctx, req.UserID, task.TotalAmount, task.ID, domain.TransactionInstantLock); err != nil {
		return nil, err
	}

	runner, err := s.runners.FindNearest(ctx, task.PickupLocation)
	if err != nil {
		s.refundAfterFailedCreate(ctx, task)
		return nil, err
	}

	if err := task.Assign(runner.ID, s.now()); err != nil {
		s.refundAfterFailedCreate(ctx, task)
		return nil, err
	}
	if err := s.repo.Create(ctx, task); err != nil {
		s.refundAfterFailedCreate(ctx, task)
		return nil, err
	}

	s.logger.Info("instant task assigned",
		zap.String("task_id", task.ID),
		zap.String("runner_id", runner.ID),
		zap.Int64("total", task.TotalAmount),
	)
	s.notifier.NotifyInstantTaskAssigned(ctx, task, *runner)
	return task, nil
}

// Start marks the task in progress. Only the assigned runner may start it.
func (s *InstantTaskService) Start(ctx context.Context, taskID, runnerID string) (*domain.InstantTask, error) {
	task, err := s.advanceAsRunner(ctx, taskID, runnerID, domain.InstantStatusInProgress)
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyTaskStarted(ctx, task.UserID, task.ID)
	return task, nil
}

// MarkDelivered records the hand-over. Only the assigned runner may do this.
func (s *InstantTaskService) MarkDelivered(ctx context.Context, taskID, runnerID string) (*domain.InstantTask, error) {
	task, err := s.advanceAsRunner(ctx, taskID, runnerID, domain.InstantStatusDelivered)
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyTaskDelivered(ctx, task.UserID, task.ID)
	return task, nil
}

// Complete confirms receipt. The held total is released from the user and the
// runner is paid the delivery fee plus the item reimbursement. The runner and
// its wallet are resolved before the status is committed, so a failure there
// leaves the task delivered and the call can be retried.
func (s *InstantTaskService) Complete(ctx context.Context, taskID, userID string) (*domain.InstantTask, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, ErrNotTaskOwner
	}

	runner, err := s.payee(ctx, task.RunnerID)
	if err != nil {
		return nil, fmt.Errorf("resolve runner for task %s: %w", task.ID, err)
	}

	if err := task.Transition(domain.InstantStatusCompleted, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	if err := s.settle(ctx, task, runner); err != nil {
		s.logger.Error("instant task settlement failed", zap.String("task_id", task.ID), zap.Error(err))
		return nil, fmt.Errorf("settle task %s: %w", task.ID, err)
	}

	s.notifier.NotifyTaskCompleted(ctx, task.UserID, task.RunnerID, task.ID, task.TotalAmount, task.TotalAmount)
	return task, nil
}

// Cancel cancels a non-terminal task owned by userID and refunds the total.
func (s *InstantTaskService) Cancel(ctx context.Context, taskID, userID, reason string) (*domain.InstantTask, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, ErrNotTaskOwner
	}

	if err := task.Transition(domain.InstantStatusCancelled, s.now()); err != nil {
		return nil, err
	}
	task.CancelReason = strings.TrimSpace(reason)
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	if _, err := s.wallets.RefundFunds(ctx, task.UserID, task.TotalAmount, task.ID); err != nil {
		s.logger.Error("instant task refund failed", zap.String("task_id", task.ID), zap.Error(err))
		return nil, fmt.Errorf("refund task %s: %w", task.ID, err)
	}

	s.notifier.NotifyTaskCancelled(ctx, task.UserID, task.RunnerID, task.ID, task.TotalAmount)
	return task, nil
}

// Get returns a task by ID.
func (s *InstantTaskService) Get(ctx context.Context, taskID string) (*domain.InstantTask, error) {
	if taskID == "" {
		return nil, ErrInvalidTaskID
	}
	return s.repo.GetByID(ctx, taskID)
}

// GetForUser returns a task if userID owns it or is the account behind its
// runner. Anyone else gets ErrNotTaskOwner.
func (s *InstantTaskService) GetForUser(ctx context.Context, taskID, userID string) (*domain.InstantTask, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID == userID {
		return task, nil
	}
	if task.RunnerID != "" {
		runner, err := s.runners.Get(ctx, task.RunnerID)
		if err == nil && runner.UserID != "" && runner.UserID == userID {
			return task, nil
		}
	}
	return nil, ErrNotTaskOwner
}

// ListByUser returns the user's tasks, newest first.
func (s *InstantTaskService) ListByUser(ctx context.Context, userID string) ([]*domain.InstantTask, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.repo.ListByUser(ctx, userID)
}

// ListByRunner returns the runner's tasks, newest first.
func (s *InstantTaskService) ListByRunner(ctx context.Context, runnerID string) ([]*domain.InstantTask, error) {
	if runnerID == "" {
		return nil, ErrInvalidRunnerID
	}
	return s.repo.ListByRunner(ctx, runnerID)
}

func (s *InstantTaskService) advanceAsRunner(ctx context.Context, taskID, runnerID string, to domain.InstantTaskStatus) (*domain.InstantTask, error) {
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

// payee loads the assigned runner and makes sure its wallet exists.
func (s *InstantTaskService) payee(ctx context.Context, runnerID string) (*domain.Runner, error) {
	runner, err := s.runners.Get(ctx, runnerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.wallets.InitializeWallet(ctx, runnerWalletID(runner)); err != nil {
		return nil, err
	}
	return runner, nil
}

func (s *InstantTaskService) settle(ctx context.Context, task *domain.InstantTask, runner *domain.Runner) error {
	if _, err := s.wallets.ReleaseFunds(ctx, task.UserID, task.TotalAmount, task.ID); err != nil {
		return err
	}

	walletID := runnerWalletID(runner)
	if _, err := s.wallets.AddEarnings(ctx, walletID, task.DeliveryFee, task.ID, descDeliveryFare); err != nil {
		return err
	}
	if task.ItemPrice > 0 {
		if _, err := s.wallets.AddEarnings(ctx, walletID, task.ItemPrice, task.ID, descItemReimbursement); err != nil {
			return err
		}
	}

	return s.runners.RecordDelivery(ctx, runner.ID, task.TotalAmount)
}

func (s *InstantTaskService) refundAfterFailedCreate(ctx context.Context, task *domain.InstantTask) {
	if _, err := s.wallets.RefundFunds(ctx, task.UserID, task.TotalAmount, task.ID); err != nil {
		s.logger.Error("failed to refund unassigned task",
			zap.String("task_id", task.ID),
			zap.String("user_id", task.UserID),
			zap.Error(err),
		)
	}
}

// runnerWalletID is the wallet a runner is paid into: their user account's
// wallet when they have one, otherwise a wallet keyed by the runner ID.
func runnerWalletID(r *domain.Runner) string {
	if r.UserID != "" {
		return r.UserID
	}
	return r.ID
}

