package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"hustle/internal/auth"
	"hustle/internal/catalog"
	"hustle/internal/domain"
	"hustle/internal/pricing"
	"hustle/internal/redis"
	"hustle/internal/repository/memory"
	"hustle/internal/service"
)

const startingBalance = 5000

// Umuahia town centre, where vendor_1 sits.
var umuahia = domain.Location{Latitude: 5.5256, Longitude: 7.4905, City: "Umuahia"}

type testEnv struct {
	mr *miniredis.Miniredis

	walletRepo  *memory.WalletRepository
	runnerRepo  *flakyRunnerRepository
	instantRepo *memory.InstantTaskRepository
	customRepo  *memory.CustomTaskRepository
	notifRepo   *memory.NotificationRepository

	locks *redis.LockStore

	wallets       *service.WalletService
	runners       *service.RunnerService
	notifications *service.NotificationService
	instant       *service.InstantTaskService
	custom        *service.CustomTaskService
	auth          *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cat, err := catalog.Default()
	require.NoError(t, err)

	env := &testEnv{
		mr:          mr,
		walletRepo:  memory.NewWalletRepository(),
		runnerRepo:  &flakyRunnerRepository{RunnerRepository: memory.NewRunnerRepository()},
		instantRepo: memory.NewInstantTaskRepository(),
		customRepo:  memory.NewCustomTaskRepository(),
		notifRepo:   memory.NewNotificationRepository(),
		locks:       redis.NewLockStore(client),
	}

	env.wallets = service.NewWalletService(env.walletRepo, startingBalance, nil)
	env.runners = service.NewRunnerService(env.runnerRepo, redis.NewLocationStore(client), nil)
	env.notifications = service.NewNotificationService(env.notifRepo, nil)
	env.instant = service.NewInstantTaskService(
		env.instantRepo, cat, pricing.NewEstimator(domain.DefaultFareConfig(), nil),
		env.wallets, env.runners, env.notifications, nil,
	)
	env.custom = service.NewCustomTaskService(
		env.customRepo, env.wallets, env.runners, env.notifications,
		env.locks, 10*time.Second, nil,
	)
	env.auth = service.NewAuthService(
		memory.NewUserRepository(), env.wallets,
		auth.NewTokenManager("test-secret", time.Hour),
		redis.NewSessionStore(client), redis.NewOTPStore(client), time.Hour, nil,
	)
	return env
}

var errRunnerStoreDown = errors.New("runner store unavailable")

// flakyRunnerRepository fails runner reads while failGet is set.
type flakyRunnerRepository struct {
	*memory.RunnerRepository
	failGet atomic.Bool
}

func (r *flakyRunnerRepository) GetByID(ctx context.Context, id string) (*domain.Runner, error) {
	if r.failGet.Load() {
		return nil, errRunnerStoreDown
	}
	return r.RunnerRepository.GetByID(ctx, id)
}

func (e *testEnv) registerRunner(t *testing.T, userID string, loc domain.Location) *domain.Runner {
	t.Helper()
	r, err := e.runners.Register(context.Background(), service.RegisterRunnerRequest{
		UserID:   userID,
		Name:     "Runner " + userID,
		Phone:    "08012345678",
		Location: loc,
	})
	require.NoError(t, err)
	return r
}
