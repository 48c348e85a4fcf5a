package weather

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
)

// SecretKeyName is the name of the provider key in the secret source.
const SecretKeyName = "openWeatherMapKey"

// SecretSource resolves named secrets. Implementations wrap ErrConfiguration
// when the source is absent or malformed.
type SecretSource interface {
	Secret(name string) (string, error)
}

// RequestTarget is a fully-qualified provider request.
type RequestTarget struct {
	URL *url.URL
}

func (t RequestTarget) String() string {
	if t.URL == nil {
		return ""
	}
	return t.URL.String()
}

// QueryBuilder turns a city or a coordinate into a provider request target.
type QueryBuilder struct {
	BaseURL string
	Secrets SecretSource
}

// NewQueryBuilder creates a QueryBuilder for the given current-weather endpoint.
func NewQueryBuilder(baseURL string, secrets SecretSource) QueryBuilder {
	return QueryBuilder{BaseURL: baseURL, Secrets: secrets}
}

// BuildCityQuery targets a US city by name. An empty name is let through and
// rejected by the provider.
func (b QueryBuilder) BuildCityQuery(city string) (RequestTarget, error) {
	values := url.Values{}
	values.Set("q", city+",US")
	return b.build(values)
}

// BuildCoordinateQuery targets a latitude/longitude pair.
func (b QueryBuilder) BuildCoordinateQuery(lat, lon float64) (RequestTarget, error) {
	if !isFinite(lat) || !isFinite(lon) {
		return RequestTarget{}, fmt.Errorf("%w: non-finite coordinate %v,%v", ErrInvalidURL, lat, lon)
	}
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return b.build(values)
}

func (b QueryBuilder) build(values url.Values) (RequestTarget, error) {
	if b.Secrets == nil {
		return RequestTarget{}, fmt.Errorf("%w: no secret source configured", ErrConfiguration)
	}
	key, err := b.Secrets.Secret(SecretKeyName)
	if err != nil {
		return RequestTarget{}, err
	}
	if key == "" {
		return RequestTarget{}, fmt.Errorf("%w: %s is empty", ErrConfiguration, SecretKeyName)
	}

	u, err := url.Parse(b.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return RequestTarget{}, fmt.Errorf("%w: base url %q", ErrInvalidURL, b.BaseURL)
	}

	values.Set("appid", key)
	values.Set("units", "imperial")
	u.RawQuery = values.Encode()

	return RequestTarget{URL: u}, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
