package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/eurolife-dashboard/internal/adapter/source"
	"github.com/couchcryptid/eurolife-dashboard/internal/config"
	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
	"github.com/couchcryptid/eurolife-dashboard/internal/observability"
)

// globals shared by every subcommand.
type globals struct {
	format       string
	logLevel     string
	fetchTimeout time.Duration
	metrics      *observability.Metrics
}

func newRootCmd() *cobra.Command {
	// Unregistered: the CLI exposes no metrics endpoint.
	g := &globals{metrics: observability.NewMetricsForTesting()}

	root := &cobra.Command{
		Use:   "eurolifectl",
		Short: "Offline tools for the EuroLife dashboard sources",
		Long: `Offline tools for the EuroLife dashboard sources.

Sources may be local paths or http(s) URLs. Output is YAML (default) or JSON.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.format, "format", "yaml", "output format: yaml or json")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level")
	root.PersistentFlags().DurationVar(&g.fetchTimeout, "fetch-timeout", 10*time.Second, "timeout for remote sources")

	root.AddCommand(newJoinCmd(g), newResolveCmd(g), newValidateCmd(g))
	return root
}

func (g *globals) logger() *slog.Logger {
	return observability.NewLogger(&config.Config{LogLevel: g.logLevel, LogFormat: "text"})
}

func (g *globals) fetcher() *source.Fetcher {
	return source.NewFetcher(g.fetchTimeout, g.logger(), g.metrics)
}

// loadTables fetches and decodes the two statistical sources.
func (g *globals) loadTables(ctx context.Context, satisfaction, income string) ([]domain.RawRow, []domain.RawRow, error) {
	loader := source.NewTableLoader(
		g.fetcher(),
		source.Sources{Satisfaction: satisfaction, Income: income},
		g.logger(),
	)
	in, err := loader.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return in.Satisfaction, in.Income, nil
}

// write encodes v in the selected format.
func (g *globals) write(out io.Writer, v any) error {
	switch g.format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported format %q (use yaml or json)", g.format)
	}
}
