package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hustle/internal/domain"
)

func newTestEstimator() *Estimator {
	return NewEstimator(domain.DefaultFareConfig(), map[string]int64{"welcome": 200, "BIG": 100000})
}

func TestEstimateErrand_ReferenceExample(t *testing.T) {
	p := newTestEstimator().EstimateErrand(5, 0, 0)

	assert.Equal(t, int64(500), p.BaseFee)
	assert.Equal(t, int64(450), p.DistanceFee)
	assert.Equal(t, int64(950), p.Subtotal())
	assert.Equal(t, int64(48), p.PlatformFee)
	assert.Equal(t, int64(0), p.Discount)
	assert.Equal(t, int64(998), p.TotalAmount)
}

func TestEstimateErrand_DistanceFee(t *testing.T) {
	e := newTestEstimator()

	tests := []struct {
		distance float64
		want     int64
	}{
		{0, 0},
		{1.5, 0},
		{2, 0},
		{2.004, 150},
		{2.01, 150},
		{2.3, 150},
		{3, 150},
		{3.01, 300},
		{5.000000000000001, 450},
		{10.5, 1350},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.EstimateErrand(tt.distance, 0, 0).DistanceFee, "distance %v", tt.distance)
	}
}

func TestEstimateErrand_ZeroDistanceStillChargesBase(t *testing.T) {
	p := newTestEstimator().EstimateErrand(0, 0, 0)

	assert.Equal(t, int64(500), p.BaseFee)
	assert.Equal(t, int64(25), p.PlatformFee)
	assert.Equal(t, int64(800), p.TotalAmount, "floored at minimum total")
}

func TestEstimateErrand_ComponentsSumToTotal(t *testing.T) {
	e := newTestEstimator()

	for _, d := range []float64{0, 1, 2.5, 5, 12.34, 48.54} {
		for _, item := range []int64{0, 300, 2500, 10000} {
			for _, discount := range []int64{0, 100, 50000} {
				p := e.EstimateErrand(d, item, discount)
				sum := p.BaseFee + p.DistanceFee + p.ItemPurchaseCost + p.PlatformFee - p.Discount

				assert.GreaterOrEqual(t, p.TotalAmount, int64(800))
				assert.GreaterOrEqual(t, p.Discount, int64(0))
				assert.LessOrEqual(t, p.Discount, p.Subtotal()+p.PlatformFee)
				if sum >= 800 {
					assert.Equal(t, sum, p.TotalAmount)
				} else {
					assert.Equal(t, int64(800), p.TotalAmount)
				}
			}
		}
	}
}

func TestEstimateErrand_NegativeDiscountIgnored(t *testing.T) {
	p := newTestEstimator().EstimateErrand(5, 0, -300)
	assert.Equal(t, int64(0), p.Discount)
	assert.Equal(t, int64(998), p.TotalAmount)
}

func TestDeliveryFare(t *testing.T) {
	e := newTestEstimator()

	fare := e.DeliveryFare(1)
	assert.Equal(t, int64(500), fare.TotalFare)

	fare = e.DeliveryFare(4.2)
	assert.Equal(t, int64(500), fare.BaseFare)
	assert.Equal(t, int64(450), fare.DistanceFare)
	assert.Equal(t, int64(950), fare.TotalFare)

	fare = e.DeliveryFare(2.001)
	assert.Equal(t, int64(150), fare.DistanceFare, "any started km past the base distance is charged")
	assert.Equal(t, int64(650), fare.TotalFare)

	cfg := domain.DefaultFareConfig()
	cfg.FlatRate = 100
	fare = NewEstimator(cfg, nil).DeliveryFare(0)
	assert.Equal(t, int64(500), fare.TotalFare, "floored at minimum fare")
}

func TestEstimateBetween(t *testing.T) {
	e := newTestEstimator()
	a := domain.Location{Latitude: 5.5256, Longitude: 7.4905}
	b := domain.Location{Latitude: 5.5332, Longitude: 7.4812}

	p, err := e.EstimateBetween(a, b, 2500, "Welcome")
	require.NoError(t, err)
	assert.Equal(t, int64(200), p.Discount)
	assert.Equal(t, int64(0), p.DistanceFee)
	assert.Greater(t, p.EstimatedDistanceKm, 0.0)

	_, err = e.EstimateBetween(a, b, 0, "NOPE")
	assert.ErrorIs(t, err, ErrUnknownCoupon)

	_, err = e.EstimateBetween(a, b, -1, "")
	assert.ErrorIs(t, err, ErrInvalidItemCost)
}

func TestEstimateBetween_DiscountCapped(t *testing.T) {
	p, err := newTestEstimator().EstimateBetween(domain.Location{}, domain.Location{}, 0, "big")
	require.NoError(t, err)

	assert.Equal(t, p.Subtotal()+p.PlatformFee, p.Discount)
	assert.Equal(t, int64(800), p.TotalAmount)
}
