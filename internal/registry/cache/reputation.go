// Package cache provides a Redis-backed read cache for reputation scores.
//
// The cache is advisory: misses and Redis failures fall back to the store,
// so the read path keeps its never-fails contract.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	id "carehub/pkg/domain"
	"carehub/pkg/platform/sentinel"
)

// DefaultTTL keeps scores fresh enough for listing pages without hammering
// the store on every read.
const DefaultTTL = 30 * time.Second

// Reputation caches per-identity reputation scores.
type Reputation struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps a Redis client. A zero ttl falls back to DefaultTTL.
func New(client *redis.Client, ttl time.Duration) *Reputation {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Reputation{client: client, ttl: ttl}
}

func key(identity id.Identity) string {
	return "carehub:reputation:" + identity.String()
}

// Score returns the cached score, sentinel.ErrNotFound on a miss, or
// sentinel.ErrUnavailable when Redis cannot answer.
func (r *Reputation) Score(ctx context.Context, identity id.Identity) (uint64, error) {
	val, err := r.client.Get(ctx, key(identity)).Result()
	if err == redis.Nil {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	score, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		// Corrupt entry; treat as a miss so the store refills it.
		return 0, sentinel.ErrNotFound
	}
	return score, nil
}

// SetScore stores the score with the configured TTL.
func (r *Reputation) SetScore(ctx context.Context, identity id.Identity, score uint64) error {
	if err := r.client.Set(ctx, key(identity), strconv.FormatUint(score, 10), r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

// Invalidate drops the cached score after an accrual so readers never see a
// value going backwards relative to the store.
func (r *Reputation) Invalidate(ctx context.Context, identity id.Identity) error {
	if err := r.client.Del(ctx, key(identity)).Err(); err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}
