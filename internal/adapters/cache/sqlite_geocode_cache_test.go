package cache

import (
	"context"
	"database/sql"
	"geo-registration-service/internal/domain"
	"geo-registration-service/internal/platform/db"
	"testing"
	"time"
)

func newSqliteCacheDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if _, err := conn.Exec(`CREATE TABLE geocode_cache (address TEXT PRIMARY KEY, lon REAL NOT NULL, lat REAL NOT NULL, updated_at TEXT NOT NULL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return conn
}

func TestSqliteGeocodeCacheRoundTrip(t *testing.T) {
	c := NewSqliteGeocodeCache(newSqliteCacheDB(t), 0)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "Paris"); err != nil || ok {
		t.Fatalf("get before put = %v, %v; want miss", ok, err)
	}

	if err := c.Put(ctx, "Paris", domain.Coordinates{Lon: 2.35, Lat: 48.85}); err != nil {
		t.Fatalf("put: %v", err)
	}
	// Replacing an entry keeps a single row per address.
	if err := c.Put(ctx, "Paris", domain.Coordinates{Lon: 2.3522, Lat: 48.8566}); err != nil {
		t.Fatalf("put again: %v", err)
	}

	got, ok, err := c.Get(ctx, "Paris")
	if err != nil || !ok {
		t.Fatalf("get = %v, %v", ok, err)
	}
	if got != (domain.Coordinates{Lon: 2.3522, Lat: 48.8566}) {
		t.Fatalf("got %+v", got)
	}
}

func TestSqliteGeocodeCacheExpiresAfterTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewSqliteGeocodeCache(newSqliteCacheDB(t), time.Hour)
	c.Now = func() time.Time { return now }
	ctx := context.Background()

	if err := c.Put(ctx, "Paris", domain.Coordinates{Lon: 2.35, Lat: 48.85}); err != nil {
		t.Fatalf("put: %v", err)
	}

	now = now.Add(59 * time.Minute)
	if _, ok, err := c.Get(ctx, "Paris"); err != nil || !ok {
		t.Fatalf("fresh entry = %v, %v; want hit", ok, err)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, err := c.Get(ctx, "Paris"); err != nil || ok {
		t.Fatalf("stale entry = %v, %v; want miss", ok, err)
	}

	// A refresh restarts the clock.
	if err := c.Put(ctx, "Paris", domain.Coordinates{Lon: 2.35, Lat: 48.85}); err != nil {
		t.Fatalf("put again: %v", err)
	}
	if _, ok, err := c.Get(ctx, "Paris"); err != nil || !ok {
		t.Fatalf("refreshed entry = %v, %v; want hit", ok, err)
	}
}
