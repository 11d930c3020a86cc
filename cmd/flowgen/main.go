// Package main provides the one-shot Flowgen command line generator.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dukex/flowgen/pkg/catalogue"
	"github.com/dukex/flowgen/pkg/cmd"
	"github.com/dukex/flowgen/pkg/generation"
	"github.com/dukex/flowgen/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "flowgen",
		Usage:                 "Generate a workflow from a natural-language prompt",
		ArgsUsage:             "<prompt>",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
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
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format (json, markdown)",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"f"},
				Usage:   "Write the artifact to a file instead of stdout",
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			prompt := strings.TrimSpace(strings.Join(command.Args().Slice(), " "))
			if prompt == "" {
				return cli.Exit("a prompt is required", 1)
			}

			logger := log.WithModule("flowgen")
			completions := cmd.NewProvider(
				command.String("ollama-url"), command.String("models"), logger)

			generator := generation.NewGenerator(completions, catalogue.Default(), logger)

			result, err := generator.Generate(ctx, prompt, generation.GenerateOptions{})
			if err != nil {
				return cli.Exit(fmt.Sprintf("generation failed: %v", err), 1)
			}

			out := os.Stdout

			if path := command.String("out"); path != "" {
				out, err = os.Create(path)
				if err != nil {
					return cli.Exit(fmt.Sprintf("failed to create output file: %v", err), 1)
				}

				defer func() { _ = out.Close() }()
			}

			switch command.String("output") {
			case "markdown":
				fmt.Fprintln(out, result.Documentation)

				for _, suggestion := range result.Suggestions {
					fmt.Fprintln(out, "- "+suggestion)
				}
			default:
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")

				err = encoder.Encode(result)
				if err != nil {
					return cli.Exit(fmt.Sprintf("failed to encode result: %v", err), 1)
				}
			}

			return nil
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
