package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/i474232898/agro-climate/internal/advisor"
	"github.com/i474232898/agro-climate/internal/climate"
	"github.com/i474232898/agro-climate/internal/metrics"
	"github.com/i474232898/agro-climate/internal/store"
)

var validate = validator.New()

// healthHistory bounds the probe history listed by /health.
const healthHistory = 10

// ClimateService serves the direct climate routes.
type ClimateService interface {
	HourlySnapshot(ctx context.Context, coords climate.Coordinates, window climate.DateWindow) (climate.ClimateSnapshot, error)
	PastWeather(ctx context.Context, place string, days int) (climate.Breakdown, error)
}

// AdvisorService serves the model backed routes.
type AdvisorService interface {
	PredictCrops(ctx context.Context, place string) (advisor.CropReport, error)
	Insights(ctx context.Context, place string) (advisor.Insight, error)
}

// Deps are the collaborators of the HTTP layer. Probes and Metrics may be nil.
type Deps struct {
	Climate ClimateService
	Advisor AdvisorService
	Probes  *store.MemoryStore
	Metrics *metrics.Metrics
	// Provider is the name probes are recorded under.
	Provider string
	Log      zerolog.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. It must be
// called after all middleware since it installs the catch-all 404.
func RegisterRoutes(app *fiber.App, d Deps) {
	h := handlers{Deps: d}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to the agro-climate API!"})
	})
	app.Get("/health", h.health)
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
	}

	api := app.Group("/api")
	api.Get("/weather", h.weather)
	api.Get("/past-weather", h.pastWeather)
	api.Get("/crops", h.crops)
	api.Get("/insights", h.insights)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Route not found"})
	})
}

type handlers struct {
	Deps
}

// weatherQuery holds the /api/weather query parameters.
type weatherQuery struct {
	Latitude  string `query:"latitude" validate:"required,latitude"`
	Longitude string `query:"longitude" validate:"required,longitude"`
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
}

func (h handlers) weather(c *fiber.Ctx) error {
	var q weatherQuery
	if err := c.QueryParser(&q); err != nil {
		return weatherError(c, fiber.StatusBadRequest, err.Error())
	}
	if q.Latitude == "" || q.Longitude == "" {
		return weatherError(c, fiber.StatusBadRequest, "Missing required parameters: latitude, longitude")
	}
	if err := validate.Struct(q); err != nil {
		return weatherError(c, fiber.StatusBadRequest, "Invalid parameters: latitude must be within [-90, 90] and longitude within [-180, 180]")
	}

	// Both parse: the validator accepted them as coordinates.
	lat, _ := strconv.ParseFloat(q.Latitude, 64)
	lon, _ := strconv.ParseFloat(q.Longitude, 64)

	window, err := climate.ExplicitWindow(q.StartDate, q.EndDate)
	if err != nil {
		return weatherError(c, fiber.StatusBadRequest, err.Error())
	}

	snapshot, err := h.Climate.HourlySnapshot(c.UserContext(), climate.Coordinates{Latitude: lat, Longitude: lon}, window)
	if err != nil {
		h.Log.Error().Err(err).Float64("latitude", lat).Float64("longitude", lon).Msg("weather request failed")
		return weatherError(c, fiber.StatusInternalServerError, "Failed to fetch weather data: "+err.Error())
	}

	return c.JSON(fiber.Map{"success": true, "data": snapshot})
}

func weatherError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

func (h handlers) pastWeather(c *fiber.Ctx) error {
	place := strings.TrimSpace(c.Query("place"))
	rawDays := strings.TrimSpace(c.Query("days"))
	if place == "" || rawDays == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required query parameters: place, days"})
	}
	days, err := leadingInt(rawDays)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "days must be an integer"})
	}

	breakdown, err := h.Climate.PastWeather(c.UserContext(), place, days)
	switch {
	case err == nil:
		return c.JSON(breakdown)
	case errors.Is(err, climate.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required query parameters: place, days"})
	case errors.Is(err, climate.ErrPlaceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Place not found."})
	case errors.Is(err, climate.ErrMissingData):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No weather data found for this location and date range."})
	default:
		h.Log.Error().Err(err).Str("place", place).Int("days", days).Msg("past weather request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to fetch past weather data",
			"details": err.Error(),
		})
	}
}

// leadingInt parses the integer prefix of s, so "14.5" and "7d" read as 14
// and 7. Input without leading digits is an error.
func leadingInt(s string) (int, error) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(s[:end])
}

func (h handlers) crops(c *fiber.Ctx) error {
	place := c.Query("place")

	report, err := h.Advisor.PredictCrops(c.UserContext(), place)
	switch {
	case err == nil:
		return c.JSON(report)
	case errors.Is(err, climate.ErrConfiguration):
		h.Log.Error().Err(err).Msg("crop prediction unavailable")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "GEMINI_API_KEY not configured"})
	case errors.Is(err, climate.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Place query parameter is required"})
	default:
		h.Log.Error().Err(err).Str("place", place).Msg("crop prediction failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to predict crops",
			"details": err.Error(),
		})
	}
}

func (h handlers) insights(c *fiber.Ctx) error {
	place := c.Query("place")
	if strings.TrimSpace(place) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "The 'place' query parameter is required."})
	}

	insight, err := h.Advisor.Insights(c.UserContext(), place)
	if err != nil {
		h.Log.Error().Err(err).Str("place", place).Msg("insights request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
	return c.JSON(insight)
}

func (h handlers) health(c *fiber.Ctx) error {
	resp := fiber.Map{"status": "ok", "service": ServiceName}
	if h.Probes != nil {
		if probe, err := h.Probes.Latest(h.Provider); err == nil {
			resp["provider"] = probe
		}
		if history, err := h.Probes.History(h.Provider); err == nil {
			resp["probes"] = recentProbes(history)
		}
	}
	return c.JSON(resp)
}

// recentProbes returns at most healthHistory results, newest first.
func recentProbes(history []store.ProbeResult) []store.ProbeResult {
	n := min(len(history), healthHistory)
	out := make([]store.ProbeResult, 0, n)
	for i := len(history) - 1; i >= len(history)-n; i-- {
		out = append(out, history[i])
	}
	return out
}
