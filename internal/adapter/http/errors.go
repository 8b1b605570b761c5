package http

import (
	"errors"
	"log/slog"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/eurolife-dashboard/internal/adapter/chart"
	"github.com/couchcryptid/eurolife-dashboard/internal/dashboard"
	"github.com/couchcryptid/eurolife-dashboard/internal/explorer"
)

// errBadRequest marks malformed parameters and bodies.
var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, dashboard.ErrSessionNotFound),
		errors.Is(err, explorer.ErrTableNotFound),
		errors.Is(err, chart.ErrEmptyView):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, dashboard.ErrUnknownYear),
		errors.Is(err, dashboard.ErrUnknownCountry),
		errors.Is(err, explorer.ErrUnknownDimension),
		errors.Is(err, explorer.ErrUnknownRow),
		errors.Is(err, explorer.ErrNoDimensions):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	sharedobs.WriteJSON(w, status, v)
}

// writeError maps err onto a status code. Internal errors are logged and
// their detail withheld from the client.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
