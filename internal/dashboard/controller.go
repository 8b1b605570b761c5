package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
	"github.com/couchcryptid/eurolife-dashboard/internal/observability"
)

var (
	// ErrNotLoaded is returned before the first dataset has been installed.
	ErrNotLoaded = errors.New("dataset not loaded")
	// ErrUnknownYear is returned when a year has no observations.
	ErrUnknownYear = errors.New("year not in dataset")
	// ErrUnknownCountry is returned when a country has no observations.
	ErrUnknownCountry = errors.New("country not in dataset")
)

// Loader fetches and decodes the raw dashboard inputs.
type Loader interface {
	Load(ctx context.Context) (domain.Inputs, error)
}

// Publisher exports an installed dataset downstream.
type Publisher interface {
	Publish(ctx context.Context, ds *Dataset) error
}

// Options configures a Controller.
type Options struct {
	Build        BuildOptions
	SelectionCap int
	Publisher    Publisher // optional
}

// Controller owns the installed dataset and mediates every session change.
type Controller struct {
	loader    Loader
	sessions  SessionStore
	publisher Publisher
	build     BuildOptions
	selCap    int
	logger    *slog.Logger
	metrics   *observability.Metrics

	current  atomic.Pointer[Dataset]
	reloadMu sync.Mutex
}

// NewController creates a Controller. No dataset is installed until Reload
// succeeds.
func NewController(loader Loader, sessions SessionStore, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	if opts.SelectionCap <= 0 {
		opts.SelectionCap = domain.DefaultCountrySelectionCap
	}
	return &Controller{
		loader:    loader,
		sessions:  sessions,
		publisher: opts.Publisher,
		build:     opts.Build,
		selCap:    opts.SelectionCap,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a dataset has been installed.
func (c *Controller) CheckReadiness(_ context.Context) error {
	if c.current.Load() == nil {
		return ErrNotLoaded
	}
	return nil
}

// Dataset returns the installed dataset.
func (c *Controller) Dataset() (*Dataset, error) {
	ds := c.current.Load()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	return ds, nil
}

// Reload fetches all sources, rebuilds the dataset and installs it. On any
// load failure the previously installed dataset stays in place.
func (c *Controller) Reload(ctx context.Context) (*Dataset, error) {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	start := time.Now()
	in, err := c.loader.Load(ctx)
	if err != nil {
		c.metrics.DatasetLoads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load sources: %w", err)
	}

	ds := BuildDataset(in, c.build)
	c.current.Store(ds)

	c.metrics.DatasetLoads.WithLabelValues("success").Inc()
	c.metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	c.metrics.DatasetReady.Set(1)
	c.metrics.Observations.Set(float64(ds.Combined.Len()))
	c.recordDropped(ds)

	c.logger.Info("dataset installed",
		"version", ds.Version,
		"observations", ds.Combined.Len(),
		"years", ds.Years,
		"features", len(ds.Features),
		"duration", time.Since(start),
	)
	if ds.Combined.Len() == 0 {
		c.logger.Warn("dataset has no joined observations", "report", ds.Combined.Report)
	}

	if c.publisher != nil {
		if err := c.publisher.Publish(ctx, ds); err != nil {
			c.metrics.PublishErrors.Inc()
			c.logger.Error("dataset export failed", "version", ds.Version, "error", err)
		} else {
			c.metrics.MessagesPublished.Add(float64(ds.Combined.Len()))
		}
	}
	return ds, nil
}

func (c *Controller) recordDropped(ds *Dataset) {
	r := ds.Combined.Report
	cl := ds.Cleaning
	for reason, n := range map[string]int{
		"empty_country":          cl.Satisfaction.EmptyCountry + cl.Income.EmptyCountry + r.EmptyCountry,
		"outside_years":          cl.Satisfaction.OutsideYears + cl.Income.OutsideYears,
		"out_of_range":           cl.Satisfaction.OutOfRange + cl.Income.OutOfRange,
		"invalid_year":           r.InvalidYear,
		"duplicate_key":          r.DuplicateKeys,
		"unmatched_satisfaction": r.UnmatchedSatisfaction,
		"unmatched_income":       r.UnmatchedIncome,
	} {
		if n > 0 {
			c.metrics.DroppedRows.WithLabelValues(reason).Add(float64(n))
		}
	}
}

// CreateSession starts a session on the installed dataset's default year
// with nothing selected.
func (c *Controller) CreateSession(ctx context.Context) (Session, error) {
	ds, err := c.Dataset()
	if err != nil {
		return Session{}, err
	}
	s := Session{
		ID:             uuid.NewString(),
		DatasetVersion: ds.Version,
		Year:           ds.DefaultYear,
		Selected:       []string{},
		UpdatedAt:      domain.Now(),
	}
	if err := c.sessions.Create(ctx, s); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	c.metrics.Sessions.Inc()
	return s, nil
}

// Session returns a session together with the dataset it is bound to.
// Sessions created against an older dataset are reset first.
func (c *Controller) Session(ctx context.Context, id string) (Session, *Dataset, error) {
	ds, err := c.Dataset()
	if err != nil {
		return Session{}, nil, err
	}
	s, err := c.sessions.Get(ctx, id)
	if err != nil {
		return Session{}, nil, err
	}
	if s.DatasetVersion == ds.Version {
		return s, ds, nil
	}
	return c.update(ctx, id, func(*Dataset, *Session) error { return nil })
}

// SetYear switches the session to year, which must exist in the dataset.
func (c *Controller) SetYear(ctx context.Context, id string, year int) (Session, error) {
	s, _, err := c.update(ctx, id, func(ds *Dataset, s *Session) error {
		if !ds.HasYear(year) {
			return fmt.Errorf("%w: %d", ErrUnknownYear, year)
		}
		s.Year = year
		return nil
	})
	return s, err
}

// ToggleCountry flips the selection state of country. Toggling in beyond the
// cap leaves the selection unchanged and reports domain.ToggleRejected.
func (c *Controller) ToggleCountry(ctx context.Context, id, country string) (Session, domain.ToggleResult, error) {
	country = domain.NormalizeCountry(country)
	var result domain.ToggleResult
	s, _, err := c.update(ctx, id, func(ds *Dataset, s *Session) error {
		sel := domain.NewSelection(c.selCap, s.Selected...)
		if !sel.Has(country) && !ds.HasCountry(country) {
			return fmt.Errorf("%w: %q", ErrUnknownCountry, country)
		}
		result = sel.Toggle(country)
		s.Selected = sel.IDs()
		return nil
	})
	if err != nil {
		return Session{}, "", err
	}
	c.metrics.SelectionToggles.WithLabelValues(string(result)).Inc()
	if result == domain.ToggleRejected {
		c.logger.Debug("selection cap reached", "session", id, "country", country, "cap", c.selCap)
	}
	return s, result, nil
}

// RemoveCountry deselects country. Removing an unselected country is a no-op.
func (c *Controller) RemoveCountry(ctx context.Context, id, country string) (Session, error) {
	country = domain.NormalizeCountry(country)
	s, _, err := c.update(ctx, id, func(_ *Dataset, s *Session) error {
		sel := domain.NewSelection(c.selCap, s.Selected...)
		sel.Remove(country)
		s.Selected = sel.IDs()
		return nil
	})
	return s, err
}

// ClearSelection deselects every country.
func (c *Controller) ClearSelection(ctx context.Context, id string) (Session, error) {
	s, _, err := c.update(ctx, id, func(_ *Dataset, s *Session) error {
		s.Selected = []string{}
		return nil
	})
	return s, err
}

// Resolve maps a boundary code onto the identifier used in year's slice.
func (c *Controller) Resolve(code string, year int) (string, domain.MatchKind, error) {
	ds, err := c.Dataset()
	if err != nil {
		return "", domain.MatchNone, err
	}
	id, kind := ds.Resolve(code, year)
	c.metrics.Resolutions.WithLabelValues(string(kind)).Inc()
	return id, kind, nil
}

// update rebinds stale sessions to the installed dataset, then applies fn.
func (c *Controller) update(ctx context.Context, id string, fn func(*Dataset, *Session) error) (Session, *Dataset, error) {
	ds, err := c.Dataset()
	if err != nil {
		return Session{}, nil, err
	}
	s, err := c.sessions.Update(ctx, id, func(s *Session) error {
		if s.DatasetVersion != ds.Version {
			c.logger.Debug("session reset after reload", "session", s.ID, "from", s.DatasetVersion, "to", ds.Version)
			s.DatasetVersion = ds.Version
			s.Year = ds.DefaultYear
			s.Selected = []string{}
		}
		if err := fn(ds, s); err != nil {
			return err
		}
		if s.Selected == nil {
			s.Selected = []string{}
		}
		s.UpdatedAt = domain.Now()
		return nil
	})
	if err != nil {
		return Session{}, nil, err
	}
	return s, ds, nil
}
