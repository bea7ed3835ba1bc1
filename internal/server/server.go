// Package server assembles the fiber application and its routes.
package server

import (
	"time"

	"github.com/Varun5711/todocal/internal/apperr"
	"github.com/Varun5711/todocal/internal/handlers"
	"github.com/Varun5711/todocal/internal/logger"
	"github.com/Varun5711/todocal/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type UserService interface {
	handlers.AccountService
	middleware.Authenticator
}

type Deps struct {
	Users       UserService
	Todos       handlers.TodoService
	Limiter     *middleware.RateLimiter
	Log         *logger.Logger
	Environment string
	CORSOrigin  string
	Clock       func() time.Time
}

func New(deps Deps) *fiber.App {
	log := deps.Log
	if log == nil {
		log = logger.New("http")
	}

	app := fiber.New(fiber.Config{
		AppName:               "todo-api",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(log),
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		IdleTimeout:           60 * time.Second,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: deps.Environment != "production"}))
	app.Use(middleware.RequestLogger(log))
	origin := deps.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	// fiber refuses credentials together with a wildcard origin.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origin,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origin != "*",
	}))

	handlers.NewSwaggerHandler().RegisterRoutes(app)
	registerRoutes(app, deps)

	app.Use(func(c *fiber.Ctx) error {
		return apperr.NotFound("Route not found")
	})

	return app
}

func registerRoutes(app *fiber.App, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.Users)
	todoHandler := handlers.NewTodoHandler(deps.Todos)
	healthHandler := handlers.NewHealthHandler(deps.Environment, deps.Clock)
	requireAuth := middleware.AuthMiddleware(deps.Users)

	api := app.Group("/api")
	api.Get("/health", healthHandler.Health)

	authGroup := api.Group("/auth")
	if deps.Limiter != nil {
		authGroup.Post("/register", deps.Limiter.Handler(), authHandler.Register)
		authGroup.Post("/login", deps.Limiter.Handler(), authHandler.Login)
	} else {
		authGroup.Post("/register", authHandler.Register)
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Get("/me", requireAuth, authHandler.Me)

	todos := api.Group("/todos", requireAuth)
	todos.Get("/", todoHandler.List)
	todos.Get("/stats/:month", todoHandler.Stats)
	todos.Post("/", todoHandler.Create)
	todos.Put("/:id", todoHandler.Toggle)
	todos.Patch("/:id", todoHandler.Update)
	todos.Delete("/:id", todoHandler.Delete)
}
