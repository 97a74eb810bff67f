package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hustle/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, int64(500), cfg.Pricing.BaseFee)
	assert.Equal(t, int64(150), cfg.Pricing.PerKmRate)
	assert.Equal(t, int64(2), cfg.Pricing.BaseDistanceKm)
	assert.Equal(t, int64(500), cfg.Pricing.PlatformFeeBasisPoints)
	assert.Equal(t, int64(800), cfg.Pricing.MinimumTotal)
	assert.Equal(t, int64(5000), cfg.Wallet.StartingBalance)
	assert.Empty(t, cfg.Pricing.Coupons)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, domain.DefaultFareConfig(), cfg.Pricing.FareConfig())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "POSTGRES")
	t.Setenv("WALLET_STARTING_BALANCE", "10000")
	t.Setenv("PRICING_COUPONS", "welcome:200, STUDENT:150")
	t.Setenv("AUTH_TOKEN_TTL", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, int64(10000), cfg.Wallet.StartingBalance)
	assert.Equal(t, map[string]int64{"WELCOME": 200, "STUDENT": 150}, cfg.Pricing.Coupons)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PRICING_BASE_FEE=700\nREDIS_ADDR=cache:6379\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(700), cfg.Pricing.BaseFee)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
}

func TestLoad_RejectsUnknownStorage(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load()
	assert.Error(t, err)
}

func TestParseCoupons_Invalid(t *testing.T) {
	_, err := parseCoupons("NOAMOUNT")
	assert.Error(t, err)

	_, err = parseCoupons("BAD:-5")
	assert.Error(t, err)
}
