package domain

// Runner is a delivery agent.
type Runner struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id,omitempty"`
	Name            string   `json:"name"`
	Phone           string   `json:"phone"`
	Rating          float64  `json:"rating"`
	TotalDeliveries int      `json:"total_deliveries"`
	CurrentLocation Location `json:"current_location"`
	IsAvailable     bool     `json:"is_available"`
	Earnings        int64    `json:"earnings"`
}

// SelectedRunner is a runner as presented to a user picking one.
type SelectedRunner struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Rating              float64 `json:"rating"`
	TotalDeliveries     int     `json:"total_deliveries"`
	DistanceKm          float64 `json:"distance_km"`
	EstimatedArrivalMin int     `json:"estimated_arrival_min"`
	Phone               string  `json:"phone"`
}
