package cache

import (
	"context"
	"geo-registration-service/internal/domain"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisCache(t *testing.T, ttl time.Duration) (*RedisGeocodeCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisGeocodeCache(client, ttl), mr
}

func TestRedisGeocodeCacheRoundTrip(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Hour)
	ctx := context.Background()

	want := domain.Coordinates{Lon: 2.2945, Lat: 48.8584}
	if err := c.Put(ctx, "Champ de Mars", want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := c.Get(ctx, "champ de mars")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || got != want {
		t.Fatalf("get = %+v, %v; want %+v, true", got, ok, want)
	}

	raw, err := mr.Get("geocode:champ de mars")
	if err != nil {
		t.Fatalf("raw get: %v", err)
	}
	if raw != "[2.2945,48.8584]" {
		t.Fatalf("stored value = %q, want [lon,lat]", raw)
	}
	if ttl := mr.TTL("geocode:champ de mars"); ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h", ttl)
	}
}

func TestRedisGeocodeCacheMissAndExpiry(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Minute)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "unknown"); err != nil || ok {
		t.Fatalf("get unknown = %v, %v; want miss", ok, err)
	}

	if err := c.Put(ctx, "Lyon", domain.Coordinates{Lon: 4.83, Lat: 45.76}); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, ok, err := c.Get(ctx, "Lyon"); err != nil || ok {
		t.Fatalf("get after expiry = %v, %v; want miss", ok, err)
	}
}

func TestRedisGeocodeCacheCorruptValue(t *testing.T) {
	c, mr := newTestRedisCache(t, 0)

	if err := mr.Set("geocode:bad", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, _, err := c.Get(context.Background(), "bad"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRedisGeocodeCacheRejectsEmptyKey(t *testing.T) {
	c, _ := newTestRedisCache(t, 0)

	if err := c.Put(context.Background(), "  ", domain.Coordinates{}); err == nil {
		t.Fatal("expected error for empty key")
	}
}
