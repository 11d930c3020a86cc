// Package main provides the Flowgen API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/flowgen/pkg/catalogue"
	"github.com/dukex/flowgen/pkg/eventbus"
	"github.com/dukex/flowgen/pkg/generation"
	"github.com/dukex/flowgen/pkg/jobs"
	"github.com/dukex/flowgen/pkg/persistence"
	"github.com/dukex/flowgen/pkg/provider"
	"github.com/dukex/flowgen/pkg/services"
	"github.com/dukex/flowgen/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	queue       jobs.Queue
	eventBus    eventbus.EventBus
	completions provider.Provider
	catalogue   *catalogue.Catalogue
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	store persistence.Persistence,
	queue jobs.Queue,
	eventBus eventbus.EventBus,
	completions provider.Provider,
) *API {
	return &API{
		logger:      logger,
		persistence: store,
		queue:       queue,
		eventBus:    eventBus,
		completions: completions,
		catalogue:   catalogue.Default(),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	generator := generation.NewGenerator(a.completions, a.catalogue, a.logger)
	generationService := services.NewGeneration(
		generator, a.persistence, a.queue, a.eventBus, "", a.logger)

	handlers := web.NewAPIHandlers(
		generationService, a.catalogue, a.persistence, a.queue, a.completions, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowgen API")
	})

	w := app.Group("/workflows")
	w.Post("/generate", handlers.GenerateWorkflow)
	w.Post("/generate/async", handlers.GenerateWorkflowAsync)
	w.Get("/jobs", handlers.GetJobs)
	w.Get("/jobs/:id", handlers.GetJob)

	app.Get("/catalogue/nodes", handlers.GetCatalogueNodes)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
