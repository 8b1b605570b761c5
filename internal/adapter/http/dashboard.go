package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/couchcryptid/eurolife-dashboard/internal/adapter/chart"
	"github.com/couchcryptid/eurolife-dashboard/internal/dashboard"
	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
)

type reloadResponse struct {
	Version      string                   `json:"version"`
	LoadedAt     string                   `json:"loaded_at"`
	Observations int                      `json:"observations"`
	Years        []int                    `json:"years"`
	DefaultYear  int                      `json:"default_year"`
	Features     int                      `json:"features"`
	Join         domain.JoinReport        `json:"join"`
	Cleaning     dashboard.CleaningReport `json:"cleaning"`
}

type sessionResponse struct {
	Session dashboard.Session   `json:"session"`
	Years   dashboard.YearsView `json:"years"`
}

type toggleResponse struct {
	Session dashboard.Session   `json:"session"`
	Result  domain.ToggleResult `json:"result"`
}

type resolveResponse struct {
	Code       string           `json:"code"`
	Year       int              `json:"year"`
	Identifier string           `json:"identifier,omitempty"`
	Match      domain.MatchKind `json:"match"`
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	ds, err := h.ctrl.Reload(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "reload failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{
		Version:      ds.Version,
		LoadedAt:     ds.LoadedAt.UTC().Format(time.RFC3339),
		Observations: ds.Combined.Len(),
		Years:        nonNil(ds.Years),
		DefaultYear:  ds.DefaultYear,
		Features:     len(ds.Features),
		Join:         ds.Combined.Report,
		Cleaning:     ds.Cleaning,
	})
}

func (h *Handler) handleYears(w http.ResponseWriter, r *http.Request) {
	ds, err := h.ctrl.Dataset()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard.BuildYears(ds, dashboard.Session{Year: ds.DefaultYear}))
}

func (h *Handler) handleObservations(w http.ResponseWriter, r *http.Request) {
	ds, err := h.ctrl.Dataset()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if r.URL.Query().Get("year") == "" {
		writeJSON(w, http.StatusOK, nonNil(ds.Combined.Observations))
		return
	}
	year, err := yearParam(r, ds)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !ds.HasYear(year) {
		writeError(w, r, h.logger, fmt.Errorf("%w: %d", dashboard.ErrUnknownYear, year))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(ds.Observations(year)))
}

func (h *Handler) handleCountry(w http.ResponseWriter, r *http.Request) {
	ds, err := h.ctrl.Dataset()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	year, err := yearParam(r, ds)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	country := chi.URLParam(r, "country")
	o, ok := ds.Lookup(country, year)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("no data for %s in %d", domain.NormalizeCountry(country), year),
		})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ds, err := h.ctrl.Dataset()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	year, err := yearParam(r, ds)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	code := chi.URLParam(r, "code")
	id, kind, err := h.ctrl.Resolve(code, year)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{Code: code, Year: year, Identifier: id, Match: kind})
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.ctrl.CreateSession(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	ds, err := h.ctrl.Dataset()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Session: s, Years: dashboard.BuildYears(ds, s)})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s, ds, err := h.ctrl.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: s, Years: dashboard.BuildYears(ds, s)})
}

func (h *Handler) handleSetYear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Year int `json:"year"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	s, err := h.ctrl.SetYear(r.Context(), chi.URLParam(r, "id"), req.Year)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) handleToggleCountry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Country string `json:"country"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.Country == "" {
		writeError(w, r, h.logger, fmt.Errorf("%w: country is required", errBadRequest))
		return
	}
	s, res, err := h.ctrl.ToggleCountry(r.Context(), chi.URLParam(r, "id"), req.Country)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Session: s, Result: res})
}

func (h *Handler) handleRemoveCountry(w http.ResponseWriter, r *http.Request) {
	s, err := h.ctrl.RemoveCountry(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "country"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s, err := h.ctrl.ClearSelection(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) handleScatter(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ds *dashboard.Dataset, s dashboard.Session) {
		writeJSON(w, http.StatusOK, dashboard.BuildScatter(ds, s))
	})
}

func (h *Handler) handleRadar(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ds *dashboard.Dataset, s dashboard.Session) {
		writeJSON(w, http.StatusOK, dashboard.BuildRadar(ds, s))
	})
}

func (h *Handler) handleMap(w http.ResponseWriter, r *http.Request) {
	withGeometry, _ := strconv.ParseBool(r.URL.Query().Get("geometry"))
	h.withSession(w, r, func(ds *dashboard.Dataset, s dashboard.Session) {
		writeJSON(w, http.StatusOK, dashboard.BuildMap(ds, s, withGeometry))
	})
}

func (h *Handler) handleTrends(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ds *dashboard.Dataset, s dashboard.Session) {
		writeJSON(w, http.StatusOK, dashboard.BuildTrends(ds, s))
	})
}

func (h *Handler) handleScatterPNG(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ds *dashboard.Dataset, s dashboard.Session) {
		var buf bytes.Buffer
		if err := chart.RenderScatter(&buf, dashboard.BuildScatter(ds, s)); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writePNG(w, buf.Bytes())
	})
}

func (h *Handler) handleTrendsPNG(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ds *dashboard.Dataset, s dashboard.Session) {
		var buf bytes.Buffer
		if err := chart.RenderTrends(&buf, dashboard.BuildTrends(ds, s)); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writePNG(w, buf.Bytes())
	})
}

func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, fn func(*dashboard.Dataset, dashboard.Session)) {
	s, ds, err := h.ctrl.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	fn(ds, s)
}

// yearParam reads ?year=, defaulting to the dataset default year.
func yearParam(r *http.Request, ds *dashboard.Dataset) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return ds.DefaultYear, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: year %q is not an integer", errBadRequest, raw)
	}
	return year, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // client went away
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
