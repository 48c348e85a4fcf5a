package location

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-now/internal/weather"
)

// withGeocoderServer points the geocoder package at handler for one test.
func withGeocoderServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	prev := geocoder.ApiUrl
	geocoder.ApiUrl = srv.URL + "/geocode/json?"
	t.Cleanup(func() {
		geocoder.ApiUrl = prev
		srv.Close()
	})
}

func TestGeocodeBackendConcurrentKeys(t *testing.T) {
	withGeocoderServer(t, func(w http.ResponseWriter, r *http.Request) {
		lat := map[string]float64{"key-a": 10, "key-b": 20}[r.URL.Query().Get("key")]
		fmt.Fprintf(w, `{"status":"OK","results":[{"geometry":{"location":{"lat":%v,"lng":-1}}}]}`, lat)
	})

	backends := map[float64]GeocodeBackend{
		10: {APIKey: "key-a", Address: Address{City: "Plano", State: "TX"}},
		20: {APIKey: "key-b", Address: Address{City: "Austin", State: "TX"}},
	}

	var wg sync.WaitGroup
	for want, b := range backends {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(want float64, b GeocodeBackend) {
				defer wg.Done()
				fixes, err := b.Locate(context.Background())
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if fixes[0].Latitude != want {
					t.Errorf("key %s: expected latitude %v, got %v", b.APIKey, want, fixes[0].Latitude)
				}
			}(want, b)
		}
	}
	wg.Wait()
}

func TestGeocodeBackendEmptyResults(t *testing.T) {
	withGeocoderServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","results":[]}`))
	})

	_, err := GeocodeBackend{APIKey: "k"}.Locate(context.Background())
	if !errors.Is(err, weather.ErrLocation) {
		t.Fatalf("expected ErrLocation, got %v", err)
	}
}
