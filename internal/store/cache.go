// internal/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"planmytrip/internal/models"
)

const itineraryKeyPrefix = "itinerary:"

// ItineraryCache keeps saved itineraries in Redis. Saved itineraries never
// change, so entries only leave the cache on delete or expiry.
type ItineraryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewItineraryCache(rdb *redis.Client, ttl time.Duration) *ItineraryCache {
	return &ItineraryCache{rdb: rdb, ttl: ttl}
}

func itineraryKey(id string) string {
	return itineraryKeyPrefix + id
}

// Get returns (nil, nil) on a miss.
func (c *ItineraryCache) Get(ctx context.Context, id string) (*models.SavedItinerary, error) {
	data, err := c.rdb.Get(ctx, itineraryKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var saved models.SavedItinerary
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *ItineraryCache) Set(ctx context.Context, saved *models.SavedItinerary) error {
	data, err := json.Marshal(saved)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, itineraryKey(saved.ID), data, c.ttl).Err()
}

func (c *ItineraryCache) Delete(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, itineraryKey(id)).Err()
}
