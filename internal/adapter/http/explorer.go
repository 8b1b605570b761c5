package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
	"github.com/couchcryptid/eurolife-dashboard/internal/explorer"
)

type uploadResponse struct {
	Table *explorer.Table `json:"table"`
	View  explorer.View   `json:"view"`
}

type rowToggleResponse struct {
	Result   domain.ToggleResult `json:"result"`
	Selected []int               `json:"selected"`
}

// handleUploadTable accepts a CSV either as a multipart "file" field or as
// the raw request body.
func (h *Handler) handleUploadTable(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	name, body, err := uploadedCSV(r)
	if err != nil {
		h.metrics.ExplorerUploads.WithLabelValues("error").Inc()
		writeError(w, r, h.logger, err)
		return
	}
	defer body.Close()

	t, err := explorer.ParseTable(name, body)
	if err != nil {
		h.metrics.ExplorerUploads.WithLabelValues("error").Inc()
		if !errors.Is(err, explorer.ErrNoDimensions) {
			err = fmt.Errorf("%w: %v", errBadRequest, err)
		}
		writeError(w, r, h.logger, err)
		return
	}
	h.tables.Put(t)
	h.metrics.ExplorerUploads.WithLabelValues("success").Inc()
	h.logger.InfoContext(r.Context(), "explorer table uploaded",
		"table", t.ID, "name", t.Name, "rows", len(t.Rows), "dimensions", len(t.Dimensions))

	v, err := explorer.BuildView(t, nil, explorer.Channels{})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{Table: t, View: v})
}

func (h *Handler) handleTableView(w http.ResponseWriter, r *http.Request) {
	t, selected, err := h.tables.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	q := r.URL.Query()
	v, err := explorer.BuildView(t, selected, explorer.Channels{
		X:    q.Get("x"),
		Y:    q.Get("y"),
		Size: q.Get("size"),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) handleToggleRow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Row *int `json:"row"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.Row == nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: row is required", errBadRequest))
		return
	}
	res, selected, err := h.tables.ToggleRow(chi.URLParam(r, "id"), *req.Row)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rowToggleResponse{Result: res, Selected: selected})
}

func (h *Handler) handleClearRows(w http.ResponseWriter, r *http.Request) {
	if err := h.tables.ClearSelection(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rowToggleResponse{Result: "", Selected: []int{}})
}

func uploadedCSV(r *http.Request) (string, io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("%w: multipart upload needs a \"file\" field: %v", errBadRequest, err)
		}
		return hdr.Filename, f, nil
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload.csv"
	}
	return name, r.Body, nil
}
