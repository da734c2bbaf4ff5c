package services

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitedTransport delays requests so that no more than the configured rate reach the API.
type RateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

// NewRateLimitedTransport wraps base. A non-positive rps disables limiting.
func NewRateLimitedTransport(base http.RoundTripper, rps float64) *RateLimitedTransport {
	if base == nil {
		base = http.DefaultTransport
	}

	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &RateLimitedTransport{base: base, limiter: rate.NewLimiter(limit, 1)}
}

// RoundTrip waits for the limiter, honoring the request context, then forwards the request.
func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
