package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-now/internal/weather"
)

type AppConfig struct {
	Env  string
	Port string

	OpenWeatherBaseURL string
	IconBaseURL        string

	// KeysFile holds openWeatherMapKey; when empty OPENWEATHER_API_KEY is used.
	KeysFile string

	HTTPTimeout time.Duration

	// Optional client-side limit on weather lookups (0 = off).
	FetchRateLimitRPS   float64
	FetchRateLimitBurst int

	IconCacheCapacity int

	// RefreshInterval re-runs the location decision periodically (0 = off).
	RefreshInterval time.Duration

	PreferencesBackend string // memory, sqlite, redis
	SQLitePath         string
	RedisURL           string

	Location LocationConfig

	KafkaBrokers []string
	KafkaTopic   string
}

// LocationConfig selects and configures the location backend.
type LocationConfig struct {
	Backend         string // static, geocode
	InitialStatus   weather.AuthorizationStatus
	PromptResult    weather.AuthorizationStatus
	ForwardFailures bool

	// static backend
	Coordinate *weather.Coordinate

	// geocode backend
	Street         string
	Number         int
	City           string
	State          string
	Postal         string
	GeocoderAPIKey string
}

// LoadDotenv loads a .env file from the working directory into the
// environment. Variables already set are kept. A missing file is reported but
// is not fatal to callers.
func LoadDotenv() error {
	return godotenv.Load()
}

// Load reads configuration from environment with sensible defaults. Call
// LoadDotenv first to pick up a .env file.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.Env = getenvDefault("APP_ENV", "production")
	cfg.Port = getenvDefault("PORT", "8080")

	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather")
	cfg.IconBaseURL = getenvDefault("ICON_BASE_URL", "https://openweathermap.org/img/wn")
	cfg.KeysFile = os.Getenv("KEYS_FILE")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	rps, err := strconv.ParseFloat(getenvDefault("FETCH_RATE_LIMIT_RPS", "0"), 64)
	if err != nil || rps < 0 {
		return nil, fmt.Errorf("invalid FETCH_RATE_LIMIT_RPS: %q", os.Getenv("FETCH_RATE_LIMIT_RPS"))
	}
	cfg.FetchRateLimitRPS = rps
	cfg.FetchRateLimitBurst = getenvInt("FETCH_RATE_LIMIT_BURST", 1)

	// 18 icon codes exist; 20 keeps the cache non-evicting in practice.
	cfg.IconCacheCapacity = getenvInt("ICON_CACHE_CAPACITY", 20)

	cfg.PreferencesBackend = strings.ToLower(getenvDefault("PREFERENCES_BACKEND", "memory"))
	switch cfg.PreferencesBackend {
	case "memory", "sqlite", "redis":
	default:
		return nil, fmt.Errorf("invalid PREFERENCES_BACKEND: %q", cfg.PreferencesBackend)
	}
	cfg.SQLitePath = getenvDefault("SQLITE_PATH", "weather-now.db")
	cfg.RedisURL = getenvDefault("REDIS_URL", "redis://localhost:6379")

	loc, err := loadLocation()
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	cfg.KafkaTopic = getenvDefault("KAFKA_TOPIC", "weather-updates")

	return cfg, nil
}

func loadLocation() (LocationConfig, error) {
	var lc LocationConfig

	lc.Backend = strings.ToLower(getenvDefault("LOCATION_BACKEND", "static"))
	if lc.Backend != "static" && lc.Backend != "geocode" {
		return lc, fmt.Errorf("invalid LOCATION_BACKEND: %q", lc.Backend)
	}

	var ok bool
	if lc.InitialStatus, ok = weather.ParseAuthorizationStatus(getenvDefault("LOCATION_AUTHORIZATION", "not_determined")); !ok {
		return lc, fmt.Errorf("invalid LOCATION_AUTHORIZATION: %q", os.Getenv("LOCATION_AUTHORIZATION"))
	}
	if lc.PromptResult, ok = weather.ParseAuthorizationStatus(getenvDefault("LOCATION_PROMPT_RESULT", "authorized")); !ok {
		return lc, fmt.Errorf("invalid LOCATION_PROMPT_RESULT: %q", os.Getenv("LOCATION_PROMPT_RESULT"))
	}
	lc.ForwardFailures = getenvDefault("LOCATION_FORWARD_FAILURES", "false") == "true"

	latStr, lonStr := os.Getenv("LOCATION_LATITUDE"), os.Getenv("LOCATION_LONGITUDE")
	if latStr != "" || lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return lc, fmt.Errorf("invalid LOCATION_LATITUDE: %w", err)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return lc, fmt.Errorf("invalid LOCATION_LONGITUDE: %w", err)
		}
		lc.Coordinate = &weather.Coordinate{Latitude: lat, Longitude: lon}
	}

	lc.Street = os.Getenv("LOCATION_ADDRESS_STREET")
	lc.Number = getenvInt("LOCATION_ADDRESS_NUMBER", 0)
	lc.City = os.Getenv("LOCATION_ADDRESS_CITY")
	lc.State = os.Getenv("LOCATION_ADDRESS_STATE")
	lc.Postal = os.Getenv("LOCATION_ADDRESS_POSTAL_CODE")
	lc.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	return lc, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
