package server

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/fiberzerolog"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
)

// NewFiber builds the app with the shared middleware chain. allowOrigin is
// the frontend origin; credentials must be allowed for session cookies.
func NewFiber(allowOrigin string) *fiber.App {
	app := fiber.New(fiber.Config{
		ProxyHeader: "X-Real-Ip",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		Network:     "tcp4",
	})

	app.Use(recover.New())
	app.Use(helmet.New())

	app.Use(fiberzerolog.New(fiberzerolog.Config{
		Logger: &log.Logger,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigin,
		AllowCredentials: true,
		AllowMethods:     "GET, POST, DELETE, PUT, OPTIONS",
		AllowHeaders:     "authorization, content-type, origin, x-request-id",
		MaxAge:           864000,
	}))

	return app
}
