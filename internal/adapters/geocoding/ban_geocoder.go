package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"geo-registration-service/internal/domain"
	"geo-registration-service/internal/platform/obs"
	"geo-registration-service/internal/ports"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api-adresse.data.gouv.fr"

// BANConfig configures the Base Adresse Nationale geocoder.
type BANConfig struct {
	BaseURL string
	// Timeout bounds each upstream call. Zero means 5 seconds.
	Timeout time.Duration
	// MaxAttempts is the number of tries for transient failures. Values below 1 mean 1.
	MaxAttempts int
}

// BANGeocoder implements ports.Geocoder using the French national address
// search API (api-adresse.data.gouv.fr). Only the first candidate is used.
//
// The geocoder is safe for concurrent use.
type BANGeocoder struct {
	session     *http.Client
	baseURL     string
	maxAttempts int
	cache       ports.GeocodeCache
}

type searchResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// NewBANGeocoder builds a geocoder. cache may be nil.
func NewBANGeocoder(cfg BANConfig, cache ports.GeocodeCache) (*BANGeocoder, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("geocoder base url %q must be http(s)", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	return &BANGeocoder{
		session:     &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		maxAttempts: attempts,
		cache:       cache,
	}, nil
}

// normalize ensures consistent cache keys and queries by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (g *BANGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ban.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, fmt.Errorf("geocode: empty address: %w", domain.ErrAddressNotFound)
	}

	// Cache errors are logged; the lookup falls through to the API.
	if g.cache != nil {
		c, ok, err := g.cache.Get(ctx, norm)
		if err != nil {
			log.Printf("geocode cache read failed: %v", err)
		} else if ok {
			return c, nil
		}
	}

	c, err := g.search(ctx, norm)
	if err != nil {
		return domain.Coordinates{}, err
	}

	if g.cache != nil {
		if err := g.cache.Put(ctx, norm, c); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	return c, nil
}

// search resolves a single normalized address with /search/?q=...&limit=1.
func (g *BANGeocoder) search(ctx context.Context, norm string) (domain.Coordinates, error) {
	q := url.Values{}
	q.Set("q", norm)
	q.Set("limit", "1")

	resp, err := g.getWithRetry(ctx, g.baseURL+"/search/?"+q.Encode())
	if err != nil {
		// The API answers 400 for queries it cannot search (too short, no letters...).
		var he *httpStatusError
		if errors.As(err, &he) && he.Code == http.StatusBadRequest {
			return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, domain.ErrAddressNotFound)
		}
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w: %w", norm, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w: %w", domain.ErrUpstreamUnavailable, err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q: %w", norm, domain.ErrAddressNotFound)
	}

	c, ok := domain.CoordsFromList(decoded.Features[0].Geometry.Coordinates)
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q: %w", norm, domain.ErrUpstreamUnavailable)
	}

	return c, nil
}
