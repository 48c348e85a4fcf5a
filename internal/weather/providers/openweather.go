package providers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-now/internal/weather"
)

// OpenWeatherProvider implements weather.Fetcher for the OpenWeatherMap
// current-weather endpoint.
type OpenWeatherProvider struct {
	name    string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewOpenWeatherProvider(client *http.Client, logger *zap.Logger) *OpenWeatherProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenWeatherProvider{
		name:    "openweathermap",
		client:  client,
		circuit: newBreaker("openweather"),
		logger:  logger,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// FetchWeather performs one lookup for a target built by weather.QueryBuilder.
func (p *OpenWeatherProvider) FetchWeather(ctx context.Context, target weather.RequestTarget) (weather.Record, error) {
	if target.URL == nil || target.URL.Host == "" {
		return weather.Record{}, fmt.Errorf("%w: empty request target", weather.ErrInvalidURL)
	}

	body, err := doRequest(ctx, p.client, p.circuit, target.URL.String())
	if err != nil {
		return weather.Record{}, fmt.Errorf("%s: %w", p.name, err)
	}

	rec, err := weather.DecodeRecord(body)
	if err != nil {
		return weather.Record{}, fmt.Errorf("%s: %w", p.name, err)
	}

	p.logger.Debug("weather fetched",
		zap.String("provider", p.name),
		zap.String("location", weather.Stringify(rec.LocationName)))
	return rec, nil
}

var _ weather.Fetcher = (*OpenWeatherProvider)(nil)
