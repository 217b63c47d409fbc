package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/i474232898/agro-climate/internal/metrics"
)

// ServiceName identifies the service in logs and the health endpoint.
const ServiceName = "agro-climate"

type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// New builds the Fiber app with middleware and all routes registered.
func New(d Deps, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               ServiceName,
		DisableStartupMessage: true,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		ErrorHandler:          ErrorHandler(d.Log),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(requestLogger(d.Log))
	app.Use(observe(d.Metrics))

	RegisterRoutes(app, d)
	return app
}

// ErrorHandler renders errors no handler dealt with. Client errors keep
// their status; everything else is a generic 500.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
			if fe.Code == fiber.StatusNotFound {
				return c.Status(fe.Code).JSON(fiber.Map{"error": "Route not found"})
			}
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		log.Error().Err(err).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("path", c.Path()).
			Msg("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong!"})
	}
}

func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		log.Info().
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", statusOf(c, err)).
			Dur("duration", time.Since(start)).
			Str("remote_addr", c.IP()).
			Str("user_agent", c.Get(fiber.HeaderUserAgent)).
			Msg("request completed")
		return err
	}
}

func observe(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		m.ObserveHTTP(c.Route().Path, statusOf(c, err), time.Since(start))
		return err
	}
}

// statusOf reports the status the client will see. A returned error is
// rendered by the error handler only after the middleware chain unwinds.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
