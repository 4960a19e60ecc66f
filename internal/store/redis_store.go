package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/evyataryagoni/iplocation/internal/metrics"
	"github.com/evyataryagoni/iplocation/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	redisDatastore = "redis"

	// cacheKeyPrefix prefixes every cached lookup: ip:<address>
	cacheKeyPrefix = "ip:"

	// notFoundValue caches a lookup that no range covers
	notFoundValue = "-"
)

// CachedStore is a Redis read-through cache in front of another Store.
// Lookups that no range covers are cached too.
type CachedStore struct {
	next    Store
	client  *redis.Client
	ctx     context.Context
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewCachedStore connects to Redis and wraps next.
// A ttl of zero keeps entries until Purge.
func NewCachedStore(next Store, addr, password string, db int, ttl time.Duration, m *metrics.Metrics) (*CachedStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &CachedStore{
		next:    next,
		client:  client,
		ctx:     ctx,
		ttl:     ttl,
		metrics: m,
	}, nil
}

// FindByIP answers from Redis when possible and fills the cache from the
// wrapped store otherwise. Redis failures fall through to the wrapped store.
func (s *CachedStore) FindByIP(ip netip.Addr) (*models.IPLocation, error) {
	key := cacheKey(ip)

	val, err := s.client.Get(s.ctx, key).Result()
	switch {
	case err == nil:
		if val == notFoundValue {
			s.metrics.CacheResult(redisDatastore, "hit")
			return nil, ErrNotFound
		}
		var location models.IPLocation
		if err := json.Unmarshal([]byte(val), &location); err == nil {
			s.metrics.CacheResult(redisDatastore, "hit")
			return &location, nil
		}
		// undecodable entry, refill below
		s.metrics.CacheResult(redisDatastore, "error")
	case errors.Is(err, redis.Nil):
		s.metrics.CacheResult(redisDatastore, "miss")
	default:
		s.metrics.CacheResult(redisDatastore, "error")
	}

	location, err := s.next.FindByIP(ip)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.client.Set(s.ctx, key, notFoundValue, s.ttl)
		}
		return nil, err
	}

	if data, err := json.Marshal(location); err == nil {
		s.client.Set(s.ctx, key, data, s.ttl)
	}
	return location, nil
}

// Purge removes every cached lookup. It must be called whenever the wrapped
// store starts serving a different compilation.
func (s *CachedStore) Purge() (int, error) {
	removed := 0
	iter := s.client.Scan(s.ctx, 0, cacheKeyPrefix+"*", 1000).Iterator()
	var batch []string
	for iter.Next(s.ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 1000 {
			n, err := s.client.Del(s.ctx, batch...).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to purge cache: %w", err)
			}
			removed += int(n)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("failed to scan cache: %w", err)
	}
	if len(batch) > 0 {
		n, err := s.client.Del(s.ctx, batch...).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to purge cache: %w", err)
		}
		removed += int(n)
	}
	return removed, nil
}

// Close closes the Redis connection and the wrapped store
func (s *CachedStore) Close() error {
	var errs []error
	if s.client != nil {
		errs = append(errs, s.client.Close())
	}
	if s.next != nil {
		errs = append(errs, s.next.Close())
	}
	return errors.Join(errs...)
}

func cacheKey(ip netip.Addr) string {
	return cacheKeyPrefix + ip.String()
}
