package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"social-analytics/models"
	"social-analytics/services"
	"social-analytics/storage"
	"social-analytics/utils"
)

// Handler serves the import and dashboard endpoints over one stored dataset.
type Handler struct {
	logger        *utils.Logger
	store         *storage.DatasetStore
	importer      *services.Importer
	engine        *services.Engine
	defaultWindow models.TimeWindow
	maxUpload     int64

	// mu serializes load-merge-save so concurrent imports cannot drop each other.
	mu sync.Mutex
}

// Options tunes request handling.
type Options struct {
	DefaultWindow  models.TimeWindow
	MaxUploadBytes int64
}

// NewHandler creates a Handler.
func NewHandler(logger *utils.Logger, store *storage.DatasetStore, importer *services.Importer, engine *services.Engine, opts Options) *Handler {
	if opts.DefaultWindow == "" {
		opts.DefaultWindow = models.Window30Days
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		logger:        logger,
		store:         store,
		importer:      importer,
		engine:        engine,
		defaultWindow: opts.DefaultWindow,
		maxUpload:     opts.MaxUploadBytes,
	}
}

// Healthz is a liveness probe.
// GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Import merges a batch of exports sent as JSON.
// POST /v1/imports
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	h.runImport(r.Context(), w, req.Files)
}

// Upload merges a batch of exports sent as multipart "files" parts.
// POST /v1/imports/upload
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	files := make([]models.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "cannot read "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "cannot read "+fh.Filename)
			return
		}
		files = append(files, models.UploadFile{Name: fh.Filename, Content: string(data)})
	}
	h.runImport(r.Context(), w, files)
}

func (h *Handler) runImport(ctx context.Context, w http.ResponseWriter, files []models.UploadFile) {
	h.mu.Lock()
	defer h.mu.Unlock()

	res, err := h.importer.Import(h.loadDataset(ctx), files)
	resp := newImportResponse(res)
	if err != nil {
		if errors.Is(err, services.ErrNothingImported) {
			resp.Error = services.ErrNothingImported.Error()
		} else {
			resp.Error = "batch aborted: one or more files failed"
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	if err := h.store.Save(ctx, res.Dataset); err != nil {
		h.logger.Error("[api] Saving batch %s failed: %v", res.BatchID, err)
		writeError(w, http.StatusInternalServerError, "failed to save dataset")
		return
	}

	resp.Files = res.Dataset.Files
	resp.Summary = &res.Dataset.Summary
	writeJSON(w, http.StatusOK, resp)
}

// Posts replaces the dataset with one built from already-fetched API posts.
// POST /v1/posts
func (h *Handler) Posts(w http.ResponseWriter, r *http.Request) {
	var req PostsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ds := h.importer.BuildFromAPIPosts(req.Posts, req.Profile, req.Days)
	if err := h.store.Save(r.Context(), ds); err != nil {
		h.logger.Error("[api] Saving API dataset failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save dataset")
		return
	}

	writeJSON(w, http.StatusOK, &ImportResponse{
		BatchID: ds.BatchID,
		Imported: []services.FileSummary{{
			Name: ds.Files[0],
			Type: models.RecordContentAnalytics,
			Rows: len(ds.Content.Posts),
		}},
		Failed:  []FileFailure{},
		Files:   ds.Files,
		Summary: &ds.Summary,
	})
}

// Dashboard returns the dataset projected onto ?window= (7d, 30d, 90d, all).
// GET /v1/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	window := h.defaultWindow
	if raw := r.URL.Query().Get("window"); raw != "" {
		parsed, err := services.ParseTimeWindow(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		window = parsed
	}

	view, err := h.engine.View(h.loadDataset(r.Context()), window)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Dataset returns the stored dataset.
// GET /v1/dataset
func (h *Handler) Dataset(w http.ResponseWriter, r *http.Request) {
	ds := h.loadDataset(r.Context())
	if ds.Empty() {
		writeError(w, http.StatusNotFound, "no dataset imported")
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// ClearDataset removes the stored dataset.
// DELETE /v1/dataset
func (h *Handler) ClearDataset(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.Remove(r.Context()); err != nil {
		h.logger.Error("[api] Clearing dataset failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to clear dataset")
		return
	}
	h.logger.Info("[api] Dataset cleared")
	w.WriteHeader(http.StatusNoContent)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// loadDataset returns the stored dataset. An unreadable blob is logged and
// treated as no data.
func (h *Handler) loadDataset(ctx context.Context) *models.MergedDataset {
	ds, err := h.store.Load(ctx, nil)
	if err != nil {
		h.logger.Warn("[api] Stored dataset unreadable, starting empty: %v", err)
	}
	return ds
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
