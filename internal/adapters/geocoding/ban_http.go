package geocoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	errBodyLimit   = 4 << 10
	initialBackoff = 200 * time.Millisecond
)

// httpStatusError is a non-2xx answer from the address API.
type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("address api status %d: %s", e.Code, e.Body)
}

// get sends one GET and turns 4xx/5xx answers into *httpStatusError.
func (g *BANGeocoder) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}

	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
	return nil, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}

// transient reports whether another attempt could succeed.
func transient(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		return he.Code == http.StatusTooManyRequests || he.Code >= http.StatusInternalServerError
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// getWithRetry repeats transient failures up to maxAttempts times with
// doubling backoff. maxAttempts == 1 sends the request exactly once.
func (g *BANGeocoder) getWithRetry(ctx context.Context, rawURL string) (*http.Response, error) {
	wait := initialBackoff

	for attempt := 1; ; attempt++ {
		resp, err := g.get(ctx, rawURL)
		if err == nil {
			return resp, nil
		}
		if attempt >= g.maxAttempts || !transient(err) || ctx.Err() != nil {
			return nil, err
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
}
