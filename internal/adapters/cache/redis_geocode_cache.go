package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"geo-registration-service/internal/domain"
	"geo-registration-service/internal/platform/obs"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "geocode:"

// RedisGeocodeCache stores coordinates as GeoJSON-ordered [lon, lat] arrays
// under "geocode:<address>" keys with a fixed TTL.
type RedisGeocodeCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisGeocodeCache(client *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{Client: client, TTL: ttl}
}

func redisKey(address string) string {
	return redisKeyPrefix + strings.ToLower(address)
}

func (r *RedisGeocodeCache) Get(ctx context.Context, address string) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.redis.Get")(&err)

	if r.Client == nil {
		return domain.Coordinates{}, false, errors.New("geocode cache: redis client is nil")
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Coordinates{}, false, nil
	}

	raw, err := r.Client.Get(ctx, redisKey(address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache: redis get: %w", err)
	}

	var pair []float64
	if err := json.Unmarshal(raw, &pair); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache: decode %q: %w", address, err)
	}

	c, ok := domain.CoordsFromList(pair)
	if !ok {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache: invalid coordinate format for %q", address)
	}

	return c, true, nil
}

func (r *RedisGeocodeCache) Put(ctx context.Context, address string, c domain.Coordinates) error {
	if r.Client == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	if strings.TrimSpace(address) == "" {
		return fmt.Errorf("insert geocode cache: empty address key")
	}

	payload, err := json.Marshal(c.CoordsToList())
	if err != nil {
		return fmt.Errorf("insert geocode cache: encode: %w", err)
	}

	if err := r.Client.Set(ctx, redisKey(address), payload, r.TTL).Err(); err != nil {
		return fmt.Errorf("insert geocode cache address=%q: %w", address, err)
	}

	return nil
}
