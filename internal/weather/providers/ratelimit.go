package providers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/i474232898/weather-now/internal/weather"
)

// RateLimitedFetcher wraps a weather.Fetcher with a token bucket so bursts of
// refreshes and searches stay inside the provider's free-tier quota.
type RateLimitedFetcher struct {
	fetcher weather.Fetcher
	limiter *rate.Limiter
}

// NewRateLimitedFetcher allows rps requests per second (fractional allowed)
// with the given burst.
func NewRateLimitedFetcher(fetcher weather.Fetcher, rps float64, burst int) *RateLimitedFetcher {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedFetcher{
		fetcher: fetcher,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// FetchWeather waits for a token, then forwards to the wrapped fetcher.
func (r *RateLimitedFetcher) FetchWeather(ctx context.Context, target weather.RequestTarget) (weather.Record, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return weather.Record{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.fetcher.FetchWeather(ctx, target)
}

var _ weather.Fetcher = (*RateLimitedFetcher)(nil)
