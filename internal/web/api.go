package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/easycodehow/spark/internal/memos"
	"github.com/easycodehow/spark/internal/ui"
)

var validate = validator.New()

// MemoInput is the body of POST and PUT /api/memos.
type MemoInput struct {
	Content     string `json:"content" validate:"required,max=100000"`
	IsImportant bool   `json:"isImportant"`
}

// --- REST API Handlers ---

// ListMemos handles GET /api/memos
func (h *Handler) ListMemos(w http.ResponseWriter, r *http.Request) {
	important, _ := strconv.ParseBool(r.URL.Query().Get("important"))
	list := ui.Filtered(h.store.All(), r.URL.Query().Get("q"), important)
	h.jsonResponse(w, list, http.StatusOK)
}

// CreateMemo handles POST /api/memos
func (h *Handler) CreateMemo(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	m, err := h.store.Create(r.Context(), input.Content, input.IsImportant)
	if errors.Is(err, memos.ErrEmptyContent) {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.log.Error("failed to create memo", zap.Error(err))
		h.jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, m, http.StatusCreated)
}

// GetMemo handles GET /api/memos/{id}
func (h *Handler) GetMemo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		h.jsonError(w, "invalid memo ID", http.StatusBadRequest)
		return
	}

	m, found := h.store.Get(id)
	if !found {
		h.jsonError(w, "memo not found", http.StatusNotFound)
		return
	}

	h.jsonResponse(w, m, http.StatusOK)
}

// UpdateMemo handles PUT /api/memos/{id}
func (h *Handler) UpdateMemo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		h.jsonError(w, "invalid memo ID", http.StatusBadRequest)
		return
	}
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	m, err := h.store.Update(r.Context(), id, input.Content, input.IsImportant)
	if errors.Is(err, memos.ErrEmptyContent) {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.log.Error("failed to update memo", zap.Int64("id", id), zap.Error(err))
		h.jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if m == nil {
		h.jsonError(w, "memo not found", http.StatusNotFound)
		return
	}

	h.jsonResponse(w, m, http.StatusOK)
}

// DeleteMemoAPI handles DELETE /api/memos/{id}
func (h *Handler) DeleteMemoAPI(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		h.jsonError(w, "invalid memo ID", http.StatusBadRequest)
		return
	}

	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.log.Error("failed to delete memo", zap.Int64("id", id), zap.Error(err))
		h.jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !deleted {
		h.jsonError(w, "memo not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportMemos handles POST /api/memos/import
func (h *Handler) ImportMemos(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		h.jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	list, err := memos.ParseSnapshot(body)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	n, err := h.store.ImportMerge(r.Context(), list)
	if err != nil {
		h.log.Error("failed to import memos", zap.Error(err))
		h.jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, map[string]int{"imported": n}, http.StatusOK)
}

// ExportMemos handles GET /api/memos/export
func (h *Handler) ExportMemos(w http.ResponseWriter, r *http.Request) {
	data, err := memos.MarshalExport(h.store.All())
	if err != nil {
		h.log.Error("failed to export memos", zap.Error(err))
		h.jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.download(w, ui.Download{
		Filename:    memos.ExportFilename(h.now()),
		ContentType: "application/json",
		Data:        data,
	})
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, map[string]any{"status": "ok", "memos": h.store.Len()}, http.StatusOK)
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (MemoInput, bool) {
	var input MemoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return input, false
	}
	if err := validate.Struct(input); err != nil {
		h.jsonError(w, "content is required", http.StatusBadRequest)
		return input, false
	}
	return input, true
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Debug("failed to write response", zap.Error(err))
	}
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	h.jsonResponse(w, map[string]string{"error": message}, status)
}
