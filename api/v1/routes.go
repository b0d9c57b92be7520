package v1

import (
	"github.com/gofiber/fiber/v2"

	"evote/api/v1/handlers"
	"evote/internal/poll"
	"evote/internal/session"
	"evote/pkg/third/google"
)

// Deps is everything the route tree needs, built once in main.
type Deps struct {
	Users           handlers.UserStore
	Polls           *poll.Service
	Sessions        *session.Manager
	OAuth           *google.Client
	ContractAddress string
	FrontendURL     string
}

func SetupRoutes(app *fiber.App, d Deps) {
	handlers.RegisterAuth(app.Group("/auth"), d.Users, d.Sessions, d.OAuth, d.FrontendURL)
	handlers.RegisterPolls(app.Group("/polls"), d.Polls, d.Sessions)
	handlers.RegisterContract(app, d.ContractAddress)

	handlers.RegisterSystem(app.Group("/api/v1/system"))
}
