package geo

import (
	"sort"

	"hustle/internal/domain"
)

// Nearest returns the candidate closest to target. Ties go to the runner that
// appears first. ok is false when candidates is empty.
func Nearest(target domain.Location, candidates []domain.Runner) (nearest domain.Runner, ok bool) {
	if len(candidates) == 0 {
		return domain.Runner{}, false
	}

	best := 0
	bestDistance := Distance(target, candidates[0].CurrentLocation)
	for i := 1; i < len(candidates); i++ {
		d := Distance(target, candidates[i].CurrentLocation)
		if d < bestDistance {
			best = i
			bestDistance = d
		}
	}

	return candidates[best], true
}

// Rank returns runners ordered by distance to target, closest first, with an
// arrival estimate for each. Runners at equal distance keep their input order.
func Rank(target domain.Location, runners []domain.Runner) []domain.SelectedRunner {
	ranked := make([]domain.SelectedRunner, 0, len(runners))
	for _, r := range runners {
		d := Distance(target, r.CurrentLocation)
		ranked = append(ranked, domain.SelectedRunner{
			ID:                  r.ID,
			Name:                r.Name,
			Rating:              r.Rating,
			TotalDeliveries:     r.TotalDeliveries,
			DistanceKm:          d,
			EstimatedArrivalMin: EstimateDeliveryTime(d),
			Phone:               r.Phone,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	return ranked
}
