package cmd

import (
	"log/slog"
	"strings"

	"github.com/dukex/flowgen/pkg/provider"
)

// NewProvider creates the completion provider. The models string is a
// comma-separated preference list; empty keeps the provider default.
func NewProvider(baseURL, models string, logger *slog.Logger) provider.Provider {
	opts := []provider.OllamaOption{}

	if models != "" {
		names := []string{}

		for _, name := range strings.Split(models, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				names = append(names, name)
			}
		}

		opts = append(opts, provider.WithModels(names...))
	}

	return provider.NewOllama(baseURL, logger, opts...)
}
