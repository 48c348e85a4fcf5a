package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-now/internal/api/http"
	"github.com/i474232898/weather-now/internal/config"
	"github.com/i474232898/weather-now/internal/iconcache"
	"github.com/i474232898/weather-now/internal/location"
	"github.com/i474232898/weather-now/internal/messaging"
	"github.com/i474232898/weather-now/internal/scheduler"
	"github.com/i474232898/weather-now/internal/store"
	"github.com/i474232898/weather-now/internal/weather"
	"github.com/i474232898/weather-now/internal/weather/providers"
)

func main() {
	dotenvErr := config.LoadDotenv()

	zlog, err := newLogger(os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zlog.Sync()

	if dotenvErr != nil {
		zlog.Info("no .env file loaded", zap.Error(dotenvErr))
	}

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal("failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider := providers.NewOpenWeatherProvider(httpClient, zlog.Named("openweather"))
	zlog.Info("weather provider configured",
		zap.String("provider", provider.Name()),
		zap.String("baseURL", cfg.OpenWeatherBaseURL))

	var fetcher weather.Fetcher = provider
	if cfg.FetchRateLimitRPS > 0 {
		fetcher = providers.NewRateLimitedFetcher(fetcher, cfg.FetchRateLimitRPS, cfg.FetchRateLimitBurst)
	}

	icons := iconcache.New(
		cfg.IconCacheCapacity,
		providers.NewIconDownloader(httpClient, cfg.IconBaseURL),
		zlog.Named("iconcache"),
	)

	prefs, closePrefs, err := newPreferenceStore(ctx, cfg)
	if err != nil {
		zlog.Fatal("failed to open preference store", zap.String("backend", cfg.PreferencesBackend), zap.Error(err))
	}
	defer closePrefs()

	locService := location.NewService(newLocationBackend(cfg.Location), location.Options{
		InitialStatus:   cfg.Location.InitialStatus,
		ForwardFailures: cfg.Location.ForwardFailures,
		Timeout:         cfg.HTTPTimeout,
	}, zlog.Named("location"))

	coordinator := weather.NewCoordinator(
		weather.NewQueryBuilder(cfg.OpenWeatherBaseURL, cfg.Secrets()),
		fetcher,
		icons,
		locService,
		prefs,
		zlog.Named("coordinator"),
	)

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := messaging.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, zlog.Named("kafka"))
		if err != nil {
			zlog.Fatal("failed to start kafka producer", zap.Error(err))
		}
		defer producer.Close()
		coordinator.OnWeather(producer.PublishAsync)
	}

	coordinator.Start(ctx)

	// Scheduler that periodically refreshes the current weather.
	sched := scheduler.New(cfg.RefreshInterval, coordinator, zlog.Named("scheduler"))
	if err := sched.Start(ctx); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-now",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterHealth(app, icons)
	httpapi.RegisterRoutes(app, coordinator, locService)

	go func() {
		zlog.Info("http server listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Warn("fiber server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
	coordinator.Wait()
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newPreferenceStore(ctx context.Context, cfg *config.AppConfig) (weather.PreferenceStore, func(), error) {
	switch cfg.PreferencesBackend {
	case "sqlite":
		s, err := store.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "redis":
		client, err := store.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		s := store.NewRedisStore(client)
		return s, func() { _ = s.Close() }, nil
	default:
		return store.NewMemoryStore(), func() {}, nil
	}
}

func newLocationBackend(lc config.LocationConfig) location.Backend {
	if lc.Backend == "geocode" {
		return location.GeocodeBackend{
			Address: location.Address{
				Street: lc.Street,
				Number: lc.Number,
				City:   lc.City,
				State:  lc.State,
				Postal: lc.Postal,
			},
			APIKey: lc.GeocoderAPIKey,
		}
	}
	return location.StaticBackend{
		Coordinate:   lc.Coordinate,
		PromptResult: lc.PromptResult,
	}
}
