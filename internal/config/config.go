package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Database DatabaseConfig
	Redis    RedisConfig
	Geocoder GeocoderConfig
	Gate     GateConfig
	Session  SessionConfig
	Google   GoogleConfig
	HTTP     HTTPConfig
}

type DatabaseConfig struct {
	// Postgres connection string. When empty, SQLite at SQLitePath is used.
	URL        string
	SQLitePath string
}

type RedisConfig struct {
	URL string
}

type GeocoderConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	// CacheTTL applies to every geocode cache backend.
	CacheTTL time.Duration
}

type GateConfig struct {
	ReferenceName string
	ReferenceLat  float64
	ReferenceLon  float64
	MaxDistanceKm float64
}

type SessionConfig struct {
	Key           []byte
	SecureCookies bool
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

const minSessionKeyLen = 32

// LoadDotEnv reads a .env file if there is one. Real environment variables win.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads the server configuration from the environment.
// Every malformed value is reported, not just the first.
func Load() (Config, error) {
	var p parser

	cfg := Config{
		Port: Get("PORT", "8080"),
		Database: DatabaseConfig{
			URL:        Get("DATABASE_URL", ""),
			SQLitePath: Get("DB_PATH", "data/app.db"),
		},
		Redis: RedisConfig{
			URL: Get("REDIS_URL", ""),
		},
		Geocoder: GeocoderConfig{
			BaseURL:     Get("GEOCODER_BASE_URL", "https://api-adresse.data.gouv.fr"),
			Timeout:     p.getDuration("GEOCODER_TIMEOUT", 5*time.Second),
			MaxAttempts: p.getInt("GEOCODER_MAX_ATTEMPTS", 1),
			CacheTTL:    p.getDuration("GEOCODE_CACHE_TTL", 24*time.Hour),
		},
		Gate: GateConfig{
			ReferenceName: Get("REFERENCE_NAME", "Paris"),
			ReferenceLat:  p.getFloat("REFERENCE_LAT", 48.8566),
			ReferenceLon:  p.getFloat("REFERENCE_LON", 2.3522),
			MaxDistanceKm: p.getFloat("MAX_DISTANCE_KM", 50),
		},
		Session: SessionConfig{
			Key:           []byte(Get("SESSION_KEY", "")),
			SecureCookies: p.getBool("SECURE_COOKIES", false),
		},
		Google: GoogleConfig{
			ClientID:     Get("GOOGLE_CLIENT_ID", ""),
			ClientSecret: Get("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  Get("OAUTH_REDIRECT_URL", "http://localhost:8080/auth/callback"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     p.getDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    p.getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: p.getDuration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
	}

	if len(cfg.Session.Key) < minSessionKeyLen {
		p.errs = append(p.errs, fmt.Errorf("SESSION_KEY must be at least %d bytes", minSessionKeyLen))
	}
	if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" {
		p.errs = append(p.errs, errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required"))
	}
	if cfg.Geocoder.MaxAttempts < 1 {
		p.errs = append(p.errs, errors.New("GEOCODER_MAX_ATTEMPTS must be at least 1"))
	}
	if cfg.Gate.MaxDistanceKm <= 0 {
		p.errs = append(p.errs, errors.New("MAX_DISTANCE_KM must be positive"))
	}
	if cfg.Gate.ReferenceLat < -90 || cfg.Gate.ReferenceLat > 90 {
		p.errs = append(p.errs, fmt.Errorf("REFERENCE_LAT %v must be within [-90, 90]", cfg.Gate.ReferenceLat))
	}
	if cfg.Gate.ReferenceLon < -180 || cfg.Gate.ReferenceLon > 180 {
		p.errs = append(p.errs, fmt.Errorf("REFERENCE_LON %v must be within [-180, 180]", cfg.Gate.ReferenceLon))
	}

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// parser collects conversion errors so Load can report them together.
type parser struct {
	errs []error
}

func (p *parser) getDuration(key string, fallback time.Duration) time.Duration {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return fallback
	}
	return d
}

func (p *parser) getInt(key string, fallback int) int {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return fallback
	}
	return n
}

func (p *parser) getFloat(key string, fallback float64) float64 {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid number %q", key, raw))
		return fallback
	}
	return f
}

func (p *parser) getBool(key string, fallback bool) bool {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid boolean %q", key, raw))
		return fallback
	}
	return b
}
