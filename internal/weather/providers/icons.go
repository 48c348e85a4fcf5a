package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"
)

// IconDownloader fetches condition icons from the OpenWeatherMap image host.
type IconDownloader struct {
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewIconDownloader(client *http.Client, baseURL string) *IconDownloader {
	return &IconDownloader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		circuit: newBreaker("openweather-icons"),
	}
}

// IconURL returns <base>/<code>@2x.png.
func (d *IconDownloader) IconURL(code string) string {
	return fmt.Sprintf("%s/%s@2x.png", d.baseURL, url.PathEscape(code))
}

// Download returns the raw image bytes for an icon code.
func (d *IconDownloader) Download(ctx context.Context, code string) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("empty icon code")
	}
	return doRequest(ctx, d.client, d.circuit, d.IconURL(code))
}
