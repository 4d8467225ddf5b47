// Package server assembles the fiber application: middleware, the route
// table of every controller, and the liveness and health routes.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// Routes is implemented by every controller.
type Routes interface {
	Register(r fiber.Router)
}

type Config struct {
	// ClientURL restricts CORS to one origin with credentials. Empty allows
	// any origin without credentials.
	ClientURL string
	Store     Pinger
	Log       *zap.Logger
}

func New(cfg Config, controllers ...Routes) *fiber.App {
	log := cfg.Log

	app := fiber.New(fiber.Config{
		AppName:               "tastyhaat",
		DisableStartupMessage: true,
		UnescapePath:          true,
		Immutable:             true, // params outlive the handler in span attributes
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal Server Error"

			var fe *fiber.Error
			if errors.As(err, &fe) {
				code, msg = fe.Code, fe.Message
			}
			if code >= fiber.StatusInternalServerError {
				log.Error("unhandled request error",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Error(err),
				)
			}
			return c.Status(code).JSON(fiber.Map{"error": msg})
		},
	})

	app.Use(recover.New())
	app.Use(corsMiddleware(cfg.ClientURL))
	app.Use(otelfiber.Middleware())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("TastyHaat Server is running")
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		if cfg.Store != nil {
			if err := cfg.Store.Ping(ctx); err != nil {
				log.Warn("health check failed", zap.Error(err))
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	for _, ctrl := range controllers {
		ctrl.Register(app)
	}
	return app
}

func corsMiddleware(clientURL string) fiber.Handler {
	if clientURL == "" {
		return cors.New()
	}
	return cors.New(cors.Config{
		AllowOrigins:     clientURL,
		AllowCredentials: true,
	})
}
