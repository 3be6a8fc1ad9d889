// Package cache provides a redis-backed snapshot cache for event listings.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"sportsbook/internal/model"
)

const oddsKeyPrefix = "odds:events:"

// OddsCache stores event listing snapshots in redis with a TTL. The
// database stays the source of truth: every cache failure is logged at
// debug and treated as a miss.
type OddsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates an OddsCache on the given client.
func New(client *redis.Client, ttl time.Duration) *OddsCache {
	return &OddsCache{client: client, ttl: ttl}
}

func oddsKey(sport string) string {
	if sport == "" {
		return oddsKeyPrefix + "all"
	}
	return oddsKeyPrefix + sport
}

// GetEvents returns the cached listing for a sport, if present.
func (c *OddsCache) GetEvents(ctx context.Context, sport string) ([]*model.Event, bool) {
	data, err := c.client.Get(ctx, oddsKey(sport)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Debug().Err(err).Str("sport", sport).Msg("odds cache read failed")
		}
		return nil, false
	}

	var events []*model.Event
	if err := json.Unmarshal(data, &events); err != nil {
		log.Debug().Err(err).Str("sport", sport).Msg("odds cache entry corrupt")
		return nil, false
	}
	return events, true
}

// SetEvents stores a listing snapshot.
func (c *OddsCache) SetEvents(ctx context.Context, sport string, events []*model.Event) {
	data, err := json.Marshal(events)
	if err != nil {
		log.Debug().Err(err).Str("sport", sport).Msg("odds cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, oddsKey(sport), data, c.ttl).Err(); err != nil {
		log.Debug().Err(err).Str("sport", sport).Msg("odds cache write failed")
	}
}

// Invalidate drops every cached listing. Called after any catalog write so
// readers never see a finalized event as still open.
func (c *OddsCache) Invalidate(ctx context.Context) {
	keys := []string{oddsKey("")}
	for _, sport := range model.Sports() {
		keys = append(keys, oddsKey(sport))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Debug().Err(err).Msg("odds cache invalidate failed")
	}
}
