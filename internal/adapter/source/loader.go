package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
)

// Getter fetches a source document by path or URL.
type Getter interface {
	Fetch(ctx context.Context, src string) ([]byte, error)
}

// ErrNoBoundaries is returned by a dashboard loader whose Geo source is empty.
var ErrNoBoundaries = errors.New("boundaries: no geo source configured")

// Sources locates the dashboard inputs. Aliases is optional. Geo is required
// unless the loader was created with NewTableLoader.
type Sources struct {
	Satisfaction string
	Income       string
	Geo          string
	Aliases      string
}

// Loader fetches and decodes all sources of one dataset load.
type Loader struct {
	getter     Getter
	sources    Sources
	logger     *slog.Logger
	tablesOnly bool
}

// NewLoader creates a Loader reading all dashboard sources through getter,
// boundary polygons included.
func NewLoader(getter Getter, sources Sources, logger *slog.Logger) *Loader {
	return &Loader{getter: getter, sources: sources, logger: logger}
}

// NewTableLoader creates a Loader that reads only the two statistical
// tables and the alias table. Sources.Geo is ignored.
func NewTableLoader(getter Getter, sources Sources, logger *slog.Logger) *Loader {
	return &Loader{getter: getter, sources: sources, logger: logger, tablesOnly: true}
}

// Load fetches every source concurrently. The first failure cancels the
// remaining fetches and no partial set of inputs is returned.
func (l *Loader) Load(ctx context.Context) (domain.Inputs, error) {
	if !l.tablesOnly && l.sources.Geo == "" {
		return domain.Inputs{}, ErrNoBoundaries
	}

	var b domain.Inputs
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := l.fetchRows(ctx, l.sources.Satisfaction, SatisfactionColumns)
		if err != nil {
			return fmt.Errorf("satisfaction: %w", err)
		}
		b.Satisfaction = rows
		return nil
	})

	g.Go(func() error {
		rows, err := l.fetchRows(ctx, l.sources.Income, IncomeColumns)
		if err != nil {
			return fmt.Errorf("income: %w", err)
		}
		b.Income = rows
		return nil
	})

	if !l.tablesOnly {
		g.Go(func() error {
			data, err := l.getter.Fetch(ctx, l.sources.Geo)
			if err != nil {
				return fmt.Errorf("boundaries: %w", err)
			}
			features, err := DecodeFeatures(data)
			if err != nil {
				return fmt.Errorf("boundaries: %w", err)
			}
			b.Features = features
			return nil
		})
	}

	if l.sources.Aliases != "" {
		g.Go(func() error {
			data, err := l.getter.Fetch(ctx, l.sources.Aliases)
			if err != nil {
				return fmt.Errorf("alias table: %w", err)
			}
			table, err := domain.LoadAliasTable(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("alias table: %w", err)
			}
			b.Aliases = table
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Inputs{}, err
	}
	if b.Aliases == nil {
		b.Aliases = domain.DefaultAliasTable()
	}

	l.logger.Debug("sources loaded",
		"satisfaction_rows", len(b.Satisfaction),
		"income_rows", len(b.Income),
		"features", len(b.Features),
		"aliases", b.Aliases.Len(),
	)
	return b, nil
}

func (l *Loader) fetchRows(ctx context.Context, src string, valueColumns []string) ([]domain.RawRow, error) {
	data, err := l.getter.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	return DecodeRows(bytes.NewReader(data), valueColumns)
}
