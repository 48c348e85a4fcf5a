package location

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-now/internal/weather"
)

// StaticBackend answers with a fixed coordinate and a fixed prompt outcome.
// A nil Coordinate makes Locate fail.
type StaticBackend struct {
	Coordinate   *weather.Coordinate
	PromptResult weather.AuthorizationStatus
}

func (b StaticBackend) Authorize(ctx context.Context) (weather.AuthorizationStatus, error) {
	if b.PromptResult == "" {
		return weather.AuthorizationDenied, nil
	}
	return b.PromptResult, nil
}

func (b StaticBackend) Locate(ctx context.Context) ([]weather.Coordinate, error) {
	if b.Coordinate == nil {
		return nil, fmt.Errorf("%w: no static coordinate configured", weather.ErrLocation)
	}
	return []weather.Coordinate{*b.Coordinate}, nil
}

// geocoderMu guards the geocoder package globals, which hold the API key.
var geocoderMu sync.Mutex

// Address is the device's street address for GeocodeBackend.
type Address struct {
	Street string
	Number int
	City   string
	State  string
	Postal string
}

// GeocodeBackend resolves a configured address into coordinates through the
// Google Geocoding API. It is authorized only when an API key is set.
type GeocodeBackend struct {
	Address Address
	APIKey  string
}

func (b GeocodeBackend) Authorize(ctx context.Context) (weather.AuthorizationStatus, error) {
	if b.APIKey == "" {
		return weather.AuthorizationDenied, nil
	}
	return weather.AuthorizationAuthorized, nil
}

func (b GeocodeBackend) Locate(ctx context.Context) ([]weather.Coordinate, error) {
	if b.APIKey == "" {
		return nil, fmt.Errorf("%w: geocoder api key is not configured", weather.ErrLocation)
	}
	loc, err := b.geocode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrLocation, err)
	}
	return []weather.Coordinate{{Latitude: loc.Latitude, Longitude: loc.Longitude}}, nil
}

func (b GeocodeBackend) geocode() (loc geocoder.Location, err error) {
	geocoderMu.Lock()
	defer geocoderMu.Unlock()

	// Geocoding indexes the first result without checking that one exists.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("geocoder returned no results: %v", r)
		}
	}()

	geocoder.ApiKey = b.APIKey
	return geocoder.Geocoding(geocoder.Address{
		Street:     b.Address.Street,
		Number:     b.Address.Number,
		City:       b.Address.City,
		State:      b.Address.State,
		PostalCode: b.Address.Postal,
		Country:    "United States",
	})
}
