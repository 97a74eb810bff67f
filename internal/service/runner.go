package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hustle/internal/domain"
	"hustle/internal/geo"
	"hustle/internal/redis"
	"hustle/internal/repository"
)

// newRunnerRating is the rating a runner starts with.
const newRunnerRating = 5.0

// RunnerService manages runners and finds them by proximity.
type RunnerService struct {
	repo          repository.RunnerRepository
	locationStore redis.LocationStoreInterface
	logger        *zap.Logger
}

// NewRunnerService creates a new RunnerService. locationStore may be nil, in
// which case proximity queries scan the repository.
func NewRunnerService(repo repository.RunnerRepository, locationStore redis.LocationStoreInterface, logger *zap.Logger) *RunnerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunnerService{
		repo:          repo,
		locationStore: locationStore,
		logger:        logger.Named("runner"),
	}
}

// RegisterRunnerRequest contains the parameters for registering a runner.
type RegisterRunnerRequest struct {
	UserID   string
	Name     string
	Phone    string
	Location domain.Location
}

// Register creates an available runner at the given location.
func (s *RunnerService) Register(ctx context.Context, req RegisterRunnerRequest) (*domain.Runner, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, invalid("name", "is required")
	}
	if !isValidPhone(req.Phone) {
		return nil, invalid("phone", "must be a valid Nigerian phone number")
	}
	if !req.Location.Valid() {
		return nil, ErrInvalidLocation
	}

	runner := &domain.Runner{
		ID:              uuid.New().String(),
		UserID:          req.UserID,
		Name:            strings.TrimSpace(req.Name),
		Phone:           req.Phone,
		Rating:          newRunnerRating,
		CurrentLocation: req.Location,
		IsAvailable:     true,
	}
	if err := s.repo.Create(ctx, runner); err != nil {
		return nil, err
	}

	s.index(ctx, runner)
	s.logger.Info("runner registered", zap.String("runner_id", runner.ID))
	return runner, nil
}

// Get returns a runner by ID.
func (s *RunnerService) Get(ctx context.Context, id string) (*domain.Runner, error) {
	if id == "" {
		return nil, ErrInvalidRunnerID
	}
	return s.repo.GetByID(ctx, id)
}

// List returns all runners.
func (s *RunnerService) List(ctx context.Context) ([]*domain.Runner, error) {
	return s.repo.GetAll(ctx)
}

// ListAvailable returns runners currently taking tasks, in registration order.
func (s *RunnerService) ListAvailable(ctx context.Context) ([]domain.Runner, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	available := make([]domain.Runner, 0, len(all))
	for _, r := range all {
		if r.IsAvailable {
			available = append(available, *r)
		}
	}
	return available, nil
}

// ForUser returns the runner profile owned by userID, or ErrNotRunner.
func (s *RunnerService) ForUser(ctx context.Context, userID string) (*domain.Runner, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	runner, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotRunner
	}
	return runner, err
}

// UpdateAvailability toggles whether a runner receives tasks.
func (s *RunnerService) UpdateAvailability(ctx context.Context, id string, available bool) (*domain.Runner, error) {
	if id == "" {
		return nil, ErrInvalidRunnerID
	}
	if err := s.repo.SetAvailability(ctx, id, available); err != nil {
		return nil, err
	}
	return s.reindex(ctx, id)
}

// UpdateLocation moves a runner.
func (s *RunnerService) UpdateLocation(ctx context.Context, id string, loc domain.Location) (*domain.Runner, error) {
	if !loc.Valid() {
		return nil, ErrInvalidLocation
	}
	if id == "" {
		return nil, ErrInvalidRunnerID
	}
	if err := s.repo.UpdateLocation(ctx, id, loc); err != nil {
		return nil, err
	}
	return s.reindex(ctx, id)
}

// FindNearest returns the available runner closest to target.
func (s *RunnerService) FindNearest(ctx context.Context, target domain.Location) (*domain.Runner, error) {
	if !target.Valid() {
		return nil, ErrInvalidLocation
	}

	available, err := s.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	runner, ok := geo.Nearest(target, available)
	if !ok {
		return nil, ErrNoRunnerAvailable
	}
	return &runner, nil
}

// Nearby returns available runners within radiusKm of target, closest first.
func (s *RunnerService) Nearby(ctx context.Context, target domain.Location, radiusKm float64) ([]domain.SelectedRunner, error) {
	if !target.Valid() {
		return nil, ErrInvalidLocation
	}
	if radiusKm <= 0 {
		return nil, invalid("radius_km", "must be positive")
	}

	candidates, err := s.candidatesWithin(ctx, target, radiusKm)
	if err != nil {
		return nil, err
	}
	return geo.Rank(target, candidates), nil
}

// RecordDelivery credits a completed delivery to the runner's stats.
func (s *RunnerService) RecordDelivery(ctx context.Context, id string, earned int64) error {
	if id == "" {
		return ErrInvalidRunnerID
	}
	return s.repo.RecordDelivery(ctx, id, earned)
}

func (s *RunnerService) candidatesWithin(ctx context.Context, target domain.Location, radiusKm float64) ([]domain.Runner, error) {
	if s.locationStore != nil {
		nearby, err := s.locationStore.FindNearbyRunners(ctx, target.Latitude, target.Longitude, radiusKm)
		if err == nil {
			out := make([]domain.Runner, 0, len(nearby))
			for _, loc := range nearby {
				runner, err := s.repo.GetByID(ctx, loc.RunnerID)
				if errors.Is(err, repository.ErrNotFound) {
					continue
				}
				if err != nil {
					return nil, err
				}
				if runner.IsAvailable {
					out = append(out, *runner)
				}
			}
			return out, nil
		}
		s.logger.Warn("geo index lookup failed, scanning runners", zap.Error(err))
	}

	available, err := s.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Runner, 0, len(available))
	for _, r := range available {
		if geo.Distance(target, r.CurrentLocation) <= radiusKm {
			out = append(out, r)
		}
	}
	return out, nil
}

// reindex reloads the runner after a partial update and refreshes the geo index.
func (s *RunnerService) reindex(ctx context.Context, id string) (*domain.Runner, error) {
	runner, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.index(ctx, runner)
	return runner, nil
}

// index mirrors the runner into the geo index: present while available.
func (s *RunnerService) index(ctx context.Context, runner *domain.Runner) {
	if s.locationStore == nil {
		return
	}

	var err error
	if runner.IsAvailable {
		err = s.locationStore.UpdateLocation(ctx, runner.ID, runner.CurrentLocation.Latitude, runner.CurrentLocation.Longitude)
	} else {
		err = s.locationStore.RemoveLocation(ctx, runner.ID)
	}
	if err != nil {
		s.logger.Warn("failed to update geo index", zap.String("runner_id", runner.ID), zap.Error(err))
	}
}
