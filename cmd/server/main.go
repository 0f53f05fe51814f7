package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"geo-registration-service/internal/adapters/cache"
	"geo-registration-service/internal/adapters/geocoding"
	"geo-registration-service/internal/adapters/identity"
	"geo-registration-service/internal/adapters/repositories"
	"geo-registration-service/internal/api"
	"geo-registration-service/internal/api/sessions"
	"geo-registration-service/internal/config"
	"geo-registration-service/internal/domain"
	"geo-registration-service/internal/platform/db"
	"geo-registration-service/internal/ports"
	"geo-registration-service/internal/services"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires concrete adapters (Postgres or SQLite, Redis, BAN, Google) behind
// ports and runs the HTTP server until SIGINT/SIGTERM.
func main() {
	if !config.LoadDotEnv() {
		log.Println("No .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	conn, repo, sqlCache, err := openStore(ctx, cfg.Database, cfg.Geocoder.CacheTTL)
	if err != nil {
		return err
	}
	defer conn.Close()

	geocodeCache, closeCache, err := chooseGeocodeCache(ctx, cfg.Redis, cfg.Geocoder.CacheTTL, sqlCache)
	if err != nil {
		return err
	}
	defer closeCache()

	geocoder, err := geocoding.NewBANGeocoder(geocoding.BANConfig{
		BaseURL:     cfg.Geocoder.BaseURL,
		Timeout:     cfg.Geocoder.Timeout,
		MaxAttempts: cfg.Geocoder.MaxAttempts,
	}, geocodeCache)
	if err != nil {
		return err
	}

	gate := services.NewRegistrationGate(geocoder)
	gate.Reference = domain.Coordinates{Lat: cfg.Gate.ReferenceLat, Lon: cfg.Gate.ReferenceLon}
	gate.MaxDistanceKm = cfg.Gate.MaxDistanceKm

	users := services.NewUserService(repo, gate)

	provider, err := identity.NewGoogleProvider(identity.GoogleConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
	})
	if err != nil {
		return err
	}

	router, err := api.NewRouter(api.Deps{
		Users:         users,
		Identity:      provider,
		Sessions:      sessions.NewCookieStore(cfg.Session.Key, cfg.Session.SecureCookies),
		DB:            conn,
		MaxDistanceKm: cfg.Gate.MaxDistanceKm,
		ReferenceName: cfg.Gate.ReferenceName,
	})
	if err != nil {
		return err
	}

	// Write timeout covers the geocoder round trip on registration.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Server listening addr=%s", srv.Addr)
		return srv.ListenAndServe()
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Println("Shutting down server...")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	log.Println("Server stopped")
	return nil
}

// openStore connects to Postgres when DATABASE_URL is set and to a local
// SQLite file otherwise, and makes sure the schema exists.
func openStore(ctx context.Context, cfg config.DatabaseConfig, cacheTTL time.Duration) (*sql.DB, ports.UserRepository, ports.GeocodeCache, error) {
	if cfg.URL != "" {
		conn, err := db.Open(cfg.URL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := repositories.InitSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, nil, err
		}
		log.Println("Using Postgres store")
		return conn, repositories.NewPostgresUserRepository(conn), cache.NewSQLGeocodeCache(conn, cacheTTL), nil
	}

	conn, err := db.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := repositories.InitSqliteSchema(conn); err != nil {
		conn.Close()
		return nil, nil, nil, err
	}
	log.Printf("Using SQLite store path=%s", cfg.SQLitePath)
	return conn, repositories.NewSqliteUserRepository(conn), cache.NewSqliteGeocodeCache(conn, cacheTTL), nil
}

// chooseGeocodeCache prefers Redis when configured; otherwise geocode
// results are cached in the database.
func chooseGeocodeCache(ctx context.Context, cfg config.RedisConfig, ttl time.Duration, fallback ports.GeocodeCache) (ports.GeocodeCache, func(), error) {
	if cfg.URL == "" {
		return fallback, func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	log.Println("Using Redis geocode cache")
	return cache.NewRedisGeocodeCache(client, ttl), func() { _ = client.Close() }, nil
}
