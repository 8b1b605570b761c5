package source

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/eurolife-dashboard/internal/observability"
)

const (
	contentTypeCSV    = "text/csv"
	headerContentType = "Content-Type"
	satisfactionCSV   = "country,year,life_satisfaction\nAT,2022,7.9\nBE,2022,7.5\n"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFetcher() *Fetcher {
	return &Fetcher{
		httpClient:     &http.Client{Timeout: 5 * time.Second},
		logger:         testLogger(),
		metrics:        observability.NewMetricsForTesting(),
		maxAttempts:    3,
		initialBackoff: time.Millisecond,
		maxBackoff:     5 * time.Millisecond,
	}
}

func TestFetcher_HTTPSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sat.csv", r.URL.Path)
		w.Header().Set(headerContentType, contentTypeCSV)
		_, _ = io.WriteString(w, satisfactionCSV)
	}))
	defer srv.Close()

	f := testFetcher()
	data, err := f.Fetch(context.Background(), srv.URL+"/sat.csv")
	require.NoError(t, err)

	assert.Equal(t, satisfactionCSV, string(data))
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.FetchRequests.WithLabelValues("http", "success")), 0)
}

func TestFetcher_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "no such table")
	}))
	defer srv.Close()

	f := testFetcher()
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "no such table")
	assert.Equal(t, int32(1), calls.Load())
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.FetchRequests.WithLabelValues("http", "error")), 0)
}

func TestFetcher_ServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, satisfactionCSV)
	}))
	defer srv.Close()

	data, err := testFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, satisfactionCSV, string(data))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetcher_ServerErrorExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testFetcher().Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "status 502")
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetcher_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, satisfactionCSV)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testFetcher().Fetch(ctx, srv.URL)
	require.Error(t, err)
}

func TestFetcher_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sat.csv")
	require.NoError(t, os.WriteFile(path, []byte(satisfactionCSV), 0o600))

	f := testFetcher()
	data, err := f.Fetch(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, satisfactionCSV, string(data))
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.FetchRequests.WithLabelValues("file", "success")), 0)
}

func TestFetcher_MissingFile(t *testing.T) {
	_, err := testFetcher().Fetch(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://ec.europa.eu/eurostat/data.csv"))
	assert.True(t, IsRemote("http://localhost:8000/a.csv"))
	assert.False(t, IsRemote("data/a.csv"))
	assert.False(t, IsRemote("/srv/http/a.csv"))
}
