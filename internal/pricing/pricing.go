// Package pricing computes errand prices and instant delivery fares.
package pricing

import (
	"errors"
	"math"
	"strings"

	"hustle/internal/domain"
	"hustle/internal/geo"
)

var (
	// ErrUnknownCoupon is returned for a coupon code missing from the table.
	ErrUnknownCoupon = errors.New("unknown coupon code")

	// ErrInvalidItemCost is returned for a negative item cost.
	ErrInvalidItemCost = errors.New("invalid item cost")
)

const (
	basisPointsDenominator = 10000
	distanceEpsilonKm      = 1e-9
)

// Estimator prices errands and deliveries against a fixed tariff.
type Estimator struct {
	cfg     domain.FareConfig
	coupons map[string]int64
}

// NewEstimator creates an Estimator. coupons maps upper-cased codes to flat discounts.
func NewEstimator(cfg domain.FareConfig, coupons map[string]int64) *Estimator {
	c := make(map[string]int64, len(coupons))
	for code, amount := range coupons {
		c[strings.ToUpper(code)] = amount
	}
	return &Estimator{cfg: cfg, coupons: c}
}

// Config returns the tariff in use.
func (e *Estimator) Config() domain.FareConfig {
	return e.cfg
}

// EstimateErrand returns the itemized price of an errand over distanceKm.
// Distance must be non-negative. The discount is capped at the pre-discount
// amount and the total is floored at MinimumTotal.
func (e *Estimator) EstimateErrand(distanceKm float64, itemCost, discount int64) domain.ErrandPricing {
	p := domain.ErrandPricing{
		BaseFee:             e.cfg.FlatRate,
		DistanceFee:         e.distanceFee(distanceKm),
		ItemPurchaseCost:    itemCost,
		EstimatedDistanceKm: distanceKm,
	}

	subtotal := p.Subtotal()
	p.PlatformFee = ceilBasisPoints(subtotal, e.cfg.PlatformFeeBasisPoints)

	gross := subtotal + p.PlatformFee
	p.Discount = min(max(discount, 0), gross)
	p.TotalAmount = max(gross-p.Discount, e.cfg.MinimumTotal)

	return p
}

// DeliveryFare returns the instant task delivery fare for distanceKm.
func (e *Estimator) DeliveryFare(distanceKm float64) domain.FareCalculation {
	fare := domain.FareCalculation{
		DistanceKm:   distanceKm,
		BaseFare:     e.cfg.FlatRate,
		DistanceFare: e.distanceFee(distanceKm),
	}
	fare.TotalFare = max(fare.BaseFare+fare.DistanceFare, e.cfg.MinimumFare)
	return fare
}

// EstimateBetween prices an errand from pickup to dropoff, applying coupon if set.
func (e *Estimator) EstimateBetween(pickup, dropoff domain.Location, itemCost int64, coupon string) (domain.ErrandPricing, error) {
	if itemCost < 0 {
		return domain.ErrandPricing{}, ErrInvalidItemCost
	}

	discount, err := e.CouponDiscount(coupon)
	if err != nil {
		return domain.ErrandPricing{}, err
	}

	return e.EstimateErrand(geo.Distance(pickup, dropoff), itemCost, discount), nil
}

// CouponDiscount resolves a coupon code. An empty code is no discount.
func (e *Estimator) CouponDiscount(code string) (int64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0, nil
	}
	amount, ok := e.coupons[code]
	if !ok {
		return 0, ErrUnknownCoupon
	}
	return amount, nil
}

// distanceFee charges PerKmRate for every started km past BaseDistanceKm.
func (e *Estimator) distanceFee(distanceKm float64) int64 {
	excess := distanceKm - float64(e.cfg.BaseDistanceKm)
	if excess <= 0 {
		return 0
	}
	// The epsilon absorbs float noise such as 3.0000000000000004 so whole
	// kilometres are not rounded up to the next one.
	km := int64(math.Ceil(excess - distanceEpsilonKm))
	return km * e.cfg.PerKmRate
}

func ceilBasisPoints(amount, bps int64) int64 {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	return (amount*bps + basisPointsDenominator - 1) / basisPointsDenominator
}
