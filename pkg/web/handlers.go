// Package web provides HTTP handlers and REST API endpoints for workflow generation.
package web

import (
	"net/http"
	"time"

	"github.com/dukex/flowgen/pkg/catalogue"
	"github.com/dukex/flowgen/pkg/jobs"
	"github.com/dukex/flowgen/pkg/persistence"
	"github.com/dukex/flowgen/pkg/provider"
	"github.com/dukex/flowgen/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	generationService *services.Generation
	catalogue         *catalogue.Catalogue
	persistence       persistence.Persistence
	queue             jobs.Queue
	completions       provider.Provider
	validator         *validator.Validate
}

func NewAPIHandlers(
	generationService *services.Generation,
	cat *catalogue.Catalogue,
	store persistence.Persistence,
	queue jobs.Queue,
	completions provider.Provider,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		generationService: generationService,
		catalogue:         cat,
		persistence:       store,
		queue:             queue,
		completions:       completions,
		validator:         validator,
	}
}

// GenerateWorkflow runs the full pipeline inline and returns the result.
func (h *APIHandlers) GenerateWorkflow(c fiber.Ctx) error {
	req, err := h.parseGenerateRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.generationService.Generate(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

// GenerateWorkflowAsync queues the request and returns the job id.
func (h *APIHandlers) GenerateWorkflowAsync(c fiber.Ctx) error {
	req, err := h.parseGenerateRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	job, err := h.generationService.SubmitJob(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(TransformJobSubmittedResponse(job))
}

func (h *APIHandlers) parseGenerateRequest(c fiber.Ctx) (*services.GenerateRequest, error) {
	var req GenerateWorkflowRequest

	err := c.Bind().JSON(&req)
	if err != nil {
		return nil, err
	}

	err = h.validator.Struct(req)
	if err != nil {
		return nil, err
	}

	return &services.GenerateRequest{
		Prompt:          req.Prompt,
		Answers:         req.Answers,
		Config:          req.Config,
		CurrentWorkflow: req.CurrentWorkflow,
	}, nil
}

func (h *APIHandlers) GetJob(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Job ID is required")
	}

	job, err := h.generationService.JobByID(c.Context(), id)
	if err != nil {
		if persistence.IsJobNotFound(err) {
			return notFound(c, "Generation job not found")
		}

		return handleServiceError(c, err)
	}

	return c.JSON(job)
}

func (h *APIHandlers) GetJobs(c fiber.Ctx) error {
	jobList, err := h.generationService.Jobs(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"jobs":        jobList,
		"total_count": len(jobList),
	})
}

// GetCatalogueNodes lists every node type the generator can place.
func (h *APIHandlers) GetCatalogueNodes(c fiber.Ctx) error {
	definitions := h.catalogue.Definitions()

	return c.JSON(fiber.Map{
		"nodes":       definitions,
		"total_count": len(definitions),
	})
}

// HealthCheck reports repository and queue health plus the completion
// provider's reachability. A provider outage does not flip the overall
// status: generation degrades to heuristics instead of failing.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryErr := h.persistence.HealthCheck(c.Context())
	queueErr := h.queue.HealthCheck(c.Context())

	providerStart := time.Now()
	providerErr := h.completions.HealthCheck(c.Context())
	providerLatency := time.Since(providerStart)

	status := "unhealthy"
	message := "Flowgen API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repositoryErr == nil && queueErr == nil {
		status = "healthy"
		message = "Flowgen API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": checkResult(repositoryErr),
			"queue":      checkResult(queueErr),
			"completions": fiber.Map{
				"status":     checkResult(providerErr),
				"latency_ms": providerLatency.Milliseconds(),
			},
		},
		"timestamp": time.Now().UTC(),
	})
}

func checkResult(err error) string {
	if err != nil {
		return err.Error()
	}

	return "ok"
}
