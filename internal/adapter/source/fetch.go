package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/eurolife-dashboard/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// maxSourceBytes bounds a single source document.
const maxSourceBytes = 64 << 20

// errRetryable marks HTTP failures worth another attempt.
var errRetryable = errors.New("retryable")

// Fetcher reads a source document from the filesystem or over HTTP.
type Fetcher struct {
	httpClient     *http.Client
	logger         *slog.Logger
	metrics        *observability.Metrics
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewFetcher creates a Fetcher whose HTTP requests time out after timeout.
func NewFetcher(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:         logger,
		metrics:        metrics,
		maxAttempts:    3,
		initialBackoff: 200 * time.Millisecond,
		maxBackoff:     2 * time.Second,
	}
}

// IsRemote reports whether src is an http(s) URL rather than a file path.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Fetch returns the full contents of src.
func (f *Fetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	scheme := "file"
	if IsRemote(src) {
		scheme = "http"
	}

	start := time.Now()
	var (
		data []byte
		err  error
	)
	if scheme == "http" {
		data, err = f.fetchHTTP(ctx, src)
	} else {
		data, err = readFile(src)
	}
	f.metrics.FetchDuration.WithLabelValues(scheme).Observe(time.Since(start).Seconds())

	if err != nil {
		f.metrics.FetchRequests.WithLabelValues(scheme, "error").Inc()
		return nil, err
	}
	f.metrics.FetchRequests.WithLabelValues(scheme, "success").Inc()
	return data, nil
}

func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", path, err)
	}
	if len(data) > maxSourceBytes {
		return nil, fmt.Errorf("source %s exceeds %d bytes", path, maxSourceBytes)
	}
	return data, nil
}

// fetchHTTP retries transport errors and 5xx responses with exponential backoff.
func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	backoff := f.initialBackoff
	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		data, err := f.doRequest(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !errors.Is(err, errRetryable) || attempt == f.maxAttempts {
			break
		}

		f.logger.Warn("source fetch failed, retrying", "url", url, "attempt", attempt, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return nil, fmt.Errorf("fetch %s: %w", url, ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, f.maxBackoff)
	}
	return nil, fmt.Errorf("fetch %s: %w", url, lastErr)
}

func (f *Fetcher) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errRetryable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("status %d: %s", resp.StatusCode, body)
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %w", errRetryable, err)
		}
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(data) > maxSourceBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", maxSourceBytes)
	}
	return data, nil
}
