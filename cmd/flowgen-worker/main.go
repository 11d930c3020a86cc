package main

import (
	"context"
	"os"

	"github.com/dukex/flowgen/pkg/catalogue"
	"github.com/dukex/flowgen/pkg/cmd"
	"github.com/dukex/flowgen/pkg/generation"
	"github.com/dukex/flowgen/pkg/log"
	"github.com/dukex/flowgen/pkg/otelhelper"
	"github.com/dukex/flowgen/pkg/services"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "flowgen-worker",
		EnableShellCompletion: true,
		Usage:                 "Start workers to process queued generation jobs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for job persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "queue-url",
				Usage:    "Job queue URL (redis://... or 'memory')",
				Required: true,
				Sources:  cli.EnvVars("QUEUE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "ollama-url",
				Usage:   "Base URL of the Ollama completion server",
				Value:   "http://localhost:11434",
				Sources: cli.EnvVars("OLLAMA_URL"),
			},
			&cli.StringFlag{
				Name:    "models",
				Usage:   "Comma-separated completion model preference list",
				Value:   "",
				Sources: cli.EnvVars("MODELS"),
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Usage:   "Number of jobs processed in parallel",
				Value:   2,
				Sources: cli.EnvVars("CONCURRENCY"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OTLP trace export",
				Value:   false,
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("flowgen-worker").With("worker_id", workerID)

			logger.InfoContext(ctx, "Initializing Flowgen Worker")

			if command.Bool("tracing") {
				_, err := otelhelper.NewTracer(ctx, "flowgen-worker")
				if err != nil {
					logger.ErrorContext(ctx, "Failed to initialize tracer", "error", err)
				}
			}

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			queue := cmd.NewQueue(ctx, logger, command.String("queue-url"))
			defer func() {
				err := queue.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close queue", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			completions := cmd.NewProvider(
				command.String("ollama-url"), command.String("models"), logger)

			generator := generation.NewGenerator(completions, catalogue.Default(), logger)
			generationService := services.NewGeneration(
				generator, persistence, queue, eventBus, workerID, logger)

			worker := NewWorkerManager(
				workerID,
				queue,
				generationService,
				logger,
				command.Int("concurrency"),
			)

			err := worker.Start(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start worker", "error", err)
			}

			return nil
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
