package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/playpal-app/backend/internal/domain/rules"
)

var ErrCacheMiss = errors.New("availability cache miss")

const availabilityPrefix = "availability:"

// AvailabilityCache holds rendered day-slot listings per venue and date.
// Entries are short-lived and dropped after any write that can change
// availability; the database stays the source of truth.
type AvailabilityCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewAvailabilityCache(client *goredis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AvailabilityCache{client: client, ttl: ttl}
}

func (c *AvailabilityCache) Get(ctx context.Context, venueID int64, day string) ([]rules.Slot, error) {
	if c.client == nil {
		return nil, ErrCacheMiss
	}
	if venueID <= 0 || day == "" {
		return nil, fmt.Errorf("invalid availability cache key")
	}

	raw, err := c.client.Get(ctx, availabilityKey(venueID, day)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("get availability cache: %w", err)
	}

	var slots []rules.Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, fmt.Errorf("decode availability cache: %w", err)
	}

	return slots, nil
}

func (c *AvailabilityCache) Set(ctx context.Context, venueID int64, day string, slots []rules.Slot) error {
	if c.client == nil {
		return nil
	}
	if venueID <= 0 || day == "" {
		return fmt.Errorf("invalid availability cache key")
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode availability cache: %w", err)
	}

	if err := c.client.Set(ctx, availabilityKey(venueID, day), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set availability cache: %w", err)
	}

	return nil
}

// InvalidateVenue drops every cached day for the venue.
func (c *AvailabilityCache) InvalidateVenue(ctx context.Context, venueID int64) error {
	if c.client == nil {
		return nil
	}
	if venueID <= 0 {
		return fmt.Errorf("invalid venue id")
	}

	pattern := availabilityPrefix + strconv.FormatInt(venueID, 10) + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("delete availability key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan availability keys: %w", err)
	}

	return nil
}

func availabilityKey(venueID int64, day string) string {
	return availabilityPrefix + strconv.FormatInt(venueID, 10) + ":" + day
}
