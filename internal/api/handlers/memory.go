package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/api/middleware"
	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type MemoryHandler struct {
	svc    *service.MemoryService
	logger *zap.Logger
}

func NewMemoryHandler(svc *service.MemoryService, logger *zap.Logger) *MemoryHandler {
	return &MemoryHandler{svc: svc, logger: logger}
}

type createMemoryRequest struct {
	Text     string         `json:"text"`
	Source   string         `json:"source,omitempty"`
	Trust    *float64       `json:"trust,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (h *MemoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMemoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.Store(r.Context(), service.StoreRequest{
		ThreadID: chi.URLParam(r, "threadID"),
		Text:     req.Text,
		Source:   domain.MemorySource(strings.ToLower(req.Source)),
		Trust:    req.Trust,
		Metadata: req.Metadata,
	})
	if err != nil {
		h.fail(w, r, err, "failed to store memory")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *MemoryHandler) Check(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Check(r.Context(), chi.URLParam(r, "threadID"), r.URL.Query().Get("query"))
	if err != nil {
		h.fail(w, r, err, "failed to check memories")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MemoryHandler) ClearThread(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearThread(r.Context(), chi.URLParam(r, "threadID"))
	if err != nil {
		h.fail(w, r, err, "failed to clear thread")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

type verifyDraftRequest struct {
	Draft string `json:"draft"`
	Mode  string `json:"mode,omitempty"`
}

func (h *MemoryHandler) VerifyDraft(w http.ResponseWriter, r *http.Request) {
	var req verifyDraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	mode, ok := parseMode(req.Mode)
	if !ok {
		writeError(w, http.StatusBadRequest, service.ErrInvalidMode.Error())
		return
	}

	result, err := h.svc.VerifyDraft(r.Context(), chi.URLParam(r, "threadID"), req.Draft, mode)
	if err != nil {
		h.fail(w, r, err, "failed to verify draft")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *MemoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, "failed to get memory")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MemoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err, "failed to delete memory")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateTrustRequest struct {
	Trust *float64 `json:"trust"`
}

func (h *MemoryHandler) UpdateTrust(w http.ResponseWriter, r *http.Request) {
	var req updateTrustRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Trust == nil {
		writeError(w, http.StatusBadRequest, "trust is required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.UpdateTrust(r.Context(), id, *req.Trust); err != nil {
		h.fail(w, r, err, "failed to update trust")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "trust": *req.Trust})
}

func (h *MemoryHandler) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrTextEmpty),
		errors.Is(err, service.ErrThreadIDMissing),
		errors.Is(err, service.ErrInvalidTrust),
		errors.Is(err, service.ErrInvalidMode),
		errors.Is(err, service.ErrInvalidSource):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrMemoryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error(msg,
			zap.String("client", middleware.ClientFromContext(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, msg)
	}
}
