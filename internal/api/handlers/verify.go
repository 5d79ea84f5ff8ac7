package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/service"
)

const maxBatchItems = 100

type VerifyHandler struct {
	verifier    *service.Verifier
	concurrency int
}

func NewVerifyHandler(v *service.Verifier, concurrency int) *VerifyHandler {
	return &VerifyHandler{verifier: v, concurrency: concurrency}
}

type memoryInput struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Trust     *float64       `json:"trust,omitempty"`
	Timestamp *int64         `json:"timestamp,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type verifyRequest struct {
	Text     string        `json:"text"`
	Memories []memoryInput `json:"memories"`
	Mode     string        `json:"mode,omitempty"`
}

type verifyResponse struct {
	*domain.VerificationReport
	LatencyMS float64 `json:"latency_ms"`
}

// toMemories fills missing ids with m0, m1, ... and missing trust with 1.0.
func toMemories(in []memoryInput) ([]domain.Memory, string) {
	out := make([]domain.Memory, len(in))
	for i, m := range in {
		trust := 1.0
		if m.Trust != nil {
			trust = *m.Trust
		}
		if trust < 0 || trust > 1 {
			return nil, "memory trust must be between 0 and 1"
		}
		id := m.ID
		if id == "" {
			id = "m" + strconv.Itoa(i)
		}
		out[i] = domain.Memory{ID: id, Text: m.Text, Trust: trust, Timestamp: m.Timestamp, Metadata: m.Metadata}
	}
	return out, ""
}

func parseMode(s string) (domain.Mode, bool) {
	if s == "" {
		return domain.ModeStrict, true
	}
	s = strings.ToLower(s)
	return domain.Mode(s), domain.ValidMode(s)
}

func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	mode, ok := parseMode(req.Mode)
	if !ok {
		writeError(w, http.StatusBadRequest, service.ErrInvalidMode.Error())
		return
	}
	memories, msg := toMemories(req.Memories)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	start := time.Now()
	report := h.verifier.Verify(r.Context(), req.Text, memories, mode)
	writeJSON(w, http.StatusOK, verifyResponse{
		VerificationReport: report,
		LatencyMS:          float64(time.Since(start).Microseconds()) / 1000,
	})
}

type batchRequest struct {
	Items []struct {
		Text     string        `json:"text"`
		Memories []memoryInput `json:"memories"`
	} `json:"items"`
	Mode string `json:"mode,omitempty"`
}

type batchResponse struct {
	Results   []*domain.VerificationReport `json:"results"`
	Passed    int                          `json:"passed"`
	Failed    int                          `json:"failed"`
	LatencyMS float64                      `json:"latency_ms"`
}

func (h *VerifyHandler) VerifyBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items must not be empty")
		return
	}
	if len(req.Items) > maxBatchItems {
		writeError(w, http.StatusBadRequest, "too many items")
		return
	}
	mode, ok := parseMode(req.Mode)
	if !ok {
		writeError(w, http.StatusBadRequest, service.ErrInvalidMode.Error())
		return
	}

	items := make([]service.BatchItem, len(req.Items))
	for i, it := range req.Items {
		memories, msg := toMemories(it.Memories)
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		items[i] = service.BatchItem{Text: it.Text, Memories: memories}
	}

	start := time.Now()
	reports, err := h.verifier.VerifyBatch(r.Context(), items, mode, h.concurrency)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "batch verification cancelled")
		return
	}

	resp := batchResponse{Results: reports}
	for _, rep := range reports {
		if rep.Passed {
			resp.Passed++
		} else {
			resp.Failed++
		}
	}
	resp.LatencyMS = float64(time.Since(start).Microseconds()) / 1000
	writeJSON(w, http.StatusOK, resp)
}

type extractRequest struct {
	Text string `json:"text"`
}

func (h *VerifyHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, service.ErrTextEmpty.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.verifier.Explain(req.Text))
}
