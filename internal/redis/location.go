package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const runnerLocationKey = "runners:locations"

// RunnerLocation is a runner's position in the geo index.
type RunnerLocation struct {
	RunnerID   string
	Lat        float64
	Lng        float64
	DistanceKm float64
}

// LocationStore handles runner location operations in Redis.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// UpdateLocation stores a runner's location using GEOADD.
func (s *LocationStore) UpdateLocation(ctx context.Context, runnerID string, lat, lng float64) error {
	return s.client.GeoAdd(ctx, runnerLocationKey, &redis.GeoLocation{
		Name:      runnerID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// FindNearbyRunners returns runners within radiusKm, closest first.
func (s *LocationStore) FindNearbyRunners(ctx context.Context, lat, lng, radiusKm float64) ([]RunnerLocation, error) {
	results, err := s.client.GeoRadius(ctx, runnerLocationKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]RunnerLocation, 0, len(results))
	for _, r := range results {
		locations = append(locations, RunnerLocation{
			RunnerID:   r.Name,
			Lat:        r.Latitude,
			Lng:        r.Longitude,
			DistanceKm: r.Dist,
		})
	}

	return locations, nil
}

// RemoveLocation removes a runner from the geo index.
func (s *LocationStore) RemoveLocation(ctx context.Context, runnerID string) error {
	return s.client.ZRem(ctx, runnerLocationKey, runnerID).Err()
}
