package domain

// FareConfig is the tariff applied by the fare estimator. Amounts are whole Naira.
type FareConfig struct {
	FlatRate               int64
	PerKmRate              int64
	BaseDistanceKm         int64
	MinimumFare            int64
	PlatformFeeBasisPoints int64 // 500 = 5%
	MinimumTotal           int64
}

// DefaultFareConfig returns the standard tariff.
func DefaultFareConfig() FareConfig {
	return FareConfig{
		FlatRate:               500,
		PerKmRate:              150,
		BaseDistanceKm:         2,
		MinimumFare:            500,
		PlatformFeeBasisPoints: 500,
		MinimumTotal:           800,
	}
}

// FareCalculation is the delivery fare for an instant task.
type FareCalculation struct {
	DistanceKm   float64 `json:"distance_km"`
	BaseFare     int64   `json:"base_fare"`
	DistanceFare int64   `json:"distance_fare"`
	TotalFare    int64   `json:"total_fare"`
}

// ErrandPricing is an itemized price for an errand.
type ErrandPricing struct {
	BaseFee             int64   `json:"base_fee"`
	DistanceFee         int64   `json:"distance_fee"`
	ItemPurchaseCost    int64   `json:"item_purchase_cost"`
	PlatformFee         int64   `json:"platform_fee"`
	Discount            int64   `json:"discount"`
	TotalAmount         int64   `json:"total_amount"`
	EstimatedDistanceKm float64 `json:"estimated_distance_km"`
}

// Subtotal is the pre-fee sum of base, distance and item cost.
func (p ErrandPricing) Subtotal() int64 {
	return p.BaseFee + p.DistanceFee + p.ItemPurchaseCost
}
