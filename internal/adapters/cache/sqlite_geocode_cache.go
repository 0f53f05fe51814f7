package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"geo-registration-service/internal/domain"
	"strings"
	"time"
)

// SQLite backed cache mapping address strings to geographic coordinates.
// Address keys are expected to be normalized by the caller.
// updated_at is RFC3339 UTC text, so string order is time order.
type SqliteGeocodeCache struct {
	DB  *sql.DB
	TTL time.Duration
	Now func() time.Time
}

func NewSqliteGeocodeCache(db *sql.DB, ttl time.Duration) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db, TTL: ttl, Now: time.Now}
}

func sqliteTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Fetch cached coordinates for one address.
func (s *SqliteGeocodeCache) Get(ctx context.Context, address string) (domain.Coordinates, bool, error) {
	if s.DB == nil {
		return domain.Coordinates{}, false, errors.New("geocode cache: db is nil")
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Coordinates{}, false, nil
	}

	var lon, lat float64
	err := s.DB.QueryRowContext(ctx, `
	SELECT
        lon,
        lat
    FROM geocode_cache
    WHERE address = ?
      AND updated_at > ?;
	`, address, sqliteTime(cutoff(s.Now, s.TTL))).Scan(&lon, &lat)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	return domain.Coordinates{Lon: lon, Lat: lat}, true, nil
}

// Store an address -> coordinate mapping in the cache.
func (s *SqliteGeocodeCache) Put(ctx context.Context, address string, c domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if strings.TrimSpace(address) == "" {
		return fmt.Errorf("insert geocode cache: empty address key")
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO geocode_cache (
        address,
        lon,
        lat,
        updated_at
    )
    VALUES (?, ?, ?, ?);
	`, address, c.Lon, c.Lat, sqliteTime(now()))
	if err != nil {
		return fmt.Errorf("insert geocode cache address=%q: %w", address, err)
	}

	return nil
}
