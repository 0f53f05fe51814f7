package cache

import (
	"context"
	"database/sql/driver"
	"errors"
	"geo-registration-service/internal/domain"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSQLGeocodeCacheGetHit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"lon", "lat"}).AddRow(2.35, 48.85)
	mock.ExpectQuery(regexp.QuoteMeta("FROM geocode_cache")).WithArgs("Paris", sqlmock.AnyArg()).WillReturnRows(rows)

	c, ok, err := NewSQLGeocodeCache(db, 0).Get(context.Background(), " Paris ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || c != (domain.Coordinates{Lon: 2.35, Lat: 48.85}) {
		t.Fatalf("get = %+v, %v", c, ok)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSQLGeocodeCacheGetMiss(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM geocode_cache").WithArgs("Nowhere", sqlmock.AnyArg()).WillReturnRows(sqlmock.NewRows([]string{"lon", "lat"}))

	_, ok, err := NewSQLGeocodeCache(db, 0).Get(context.Background(), "Nowhere")
	if err != nil || ok {
		t.Fatalf("get = %v, %v; want miss", ok, err)
	}
}

func TestSQLGeocodeCacheGetError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM geocode_cache").WillReturnError(errors.New("connection reset"))

	if _, _, err := NewSQLGeocodeCache(db, 0).Get(context.Background(), "Paris"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSQLGeocodeCachePutUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("(?s)INSERT INTO geocode_cache.*ON CONFLICT \\(address\\) DO UPDATE").
		WithArgs("Paris", 2.35, 48.85).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewSQLGeocodeCache(db, 0).Put(context.Background(), "Paris", domain.Coordinates{Lon: 2.35, Lat: 48.85}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// timeArg matches a time.Time query argument by instant.
type timeArg time.Time

func (a timeArg) Match(v driver.Value) bool {
	got, ok := v.(time.Time)
	return ok && got.Equal(time.Time(a))
}

func TestSQLGeocodeCacheGetSkipsExpiredEntries(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewSQLGeocodeCache(db, time.Hour)
	c.Now = func() time.Time { return now }

	mock.ExpectQuery(regexp.QuoteMeta("AND updated_at > $2")).
		WithArgs("Paris", timeArg(now.Add(-time.Hour))).
		WillReturnRows(sqlmock.NewRows([]string{"lon", "lat"}))

	if _, ok, err := c.Get(context.Background(), "Paris"); err != nil || ok {
		t.Fatalf("get = %v, %v; want miss", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSQLGeocodeCacheZeroTTLNeverExpires(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM geocode_cache").
		WithArgs("Paris", timeArg(time.Time{})).
		WillReturnRows(sqlmock.NewRows([]string{"lon", "lat"}).AddRow(2.35, 48.85))

	if _, ok, err := NewSQLGeocodeCache(db, 0).Get(context.Background(), "Paris"); err != nil || !ok {
		t.Fatalf("get = %v, %v; want hit", ok, err)
	}
}
