package httpapi

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-now/internal/weather"
)

var validate = validator.New()

// WeatherService is the presentation-facing side of the coordinator.
type WeatherService interface {
	CurrentWeather() *weather.Record
	CurrentIcon() *weather.Icon
	SearchCity(ctx context.Context, city string)
	Refresh(ctx context.Context, onDone func())
}

// LocationControl lets clients play the role of the platform location service.
type LocationControl interface {
	AuthorizationStatus() weather.AuthorizationStatus
	SetAuthorization(status weather.AuthorizationStatus)
	ReportCoordinate(coord weather.Coordinate)
}

// CacheStats reports icon cache occupancy; *iconcache.Cache satisfies it.
type CacheStats interface {
	Len() int
	Stats() (hits, misses int)
}

// RegisterHealth adds the health route. icons may be nil.
func RegisterHealth(app *fiber.App, icons CacheStats) {
	app.Get("/health", func(c *fiber.Ctx) error {
		resp := fiber.Map{
			"status":  "ok",
			"service": "weather-now",
		}
		if icons != nil {
			hits, misses := icons.Stats()
			resp["iconCache"] = fiber.Map{
				"entries": icons.Len(),
				"hits":    hits,
				"misses":  misses,
			}
		}
		return c.JSON(resp)
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. loc may be nil.
func RegisterRoutes(app *fiber.App, service WeatherService, loc LocationControl) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		rec := service.CurrentWeather()
		return c.JSON(fiber.Map{
			"view":   weather.Render(rec),
			"record": rec,
		})
	})

	v1.Get("/weather/icon", func(c *fiber.Ctx) error {
		icon := service.CurrentIcon()
		if icon == nil {
			return fiber.NewError(fiber.StatusNotFound, "no weather icon available")
		}
		c.Set(fiber.HeaderContentType, "image/png")
		c.Set("X-Icon-Code", icon.Code)
		return c.Send(icon.Data)
	})

	v1.Post("/weather/search", func(c *fiber.Ctx) error {
		var req searchRequest
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		service.SearchCity(c.UserContext(), req.City)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"status": "fetching",
			"city":   req.City,
		})
	})

	v1.Post("/weather/refresh", func(c *fiber.Ctx) error {
		dispatched := false
		service.Refresh(c.UserContext(), func() {
			dispatched = true
		})
		return c.JSON(fiber.Map{"dispatched": dispatched})
	})

	if loc == nil {
		return
	}

	v1.Get("/location/authorization", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": loc.AuthorizationStatus()})
	})

	v1.Put("/location/authorization", func(c *fiber.Ctx) error {
		var req authorizationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		status, _ := weather.ParseAuthorizationStatus(req.Status)
		loc.SetAuthorization(status)
		return c.JSON(fiber.Map{"status": status})
	})

	v1.Post("/location/coordinates", func(c *fiber.Ctx) error {
		var req coordinateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc.ReportCoordinate(weather.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude})
		return c.SendStatus(fiber.StatusAccepted)
	})
}

// searchRequest accepts the city from a JSON body or the "city" query parameter.
type searchRequest struct {
	City string `json:"city" validate:"required"`
}

func (r *searchRequest) bind(c *fiber.Ctx) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(r); err != nil {
			return err
		}
	}
	if r.City == "" {
		r.City = c.Query("city")
	}
	r.City = strings.TrimSpace(r.City)
	return validate.Struct(r)
}

type authorizationRequest struct {
	Status string `json:"status" validate:"required,oneof=not_determined authorized authorized_always authorized_when_in_use denied restricted"`
}

type coordinateRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}
