// cmd/common.go
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// splitCatalogFlag turns a comma-separated --catalog value into a list of
// file paths, rejecting an empty flag outright.
func splitCatalogFlag(flag string) ([]string, error) {
	parts := strings.Split(flag, ",")
	paths := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("--catalog must name at least one category XML file")
	}
	return paths, nil
}

// ConfigureLogger sets up a structured logger with appropriate options
func ConfigureLogger(verbose bool, jsonFormat bool) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if verbose {
		opts.Level = slog.LevelDebug
	}

	if jsonFormat {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)

	// Set as default logger
	slog.SetDefault(logger)

	return logger
}
