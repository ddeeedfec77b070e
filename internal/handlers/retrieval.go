package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"oncolife-rag-gateway/internal/retrieval"
	"oncolife-rag-gateway/pkg/logging"

	"go.uber.org/zap"
)

// RetrievalRequest is the body of POST /v1/retrieval. Omitted limits
// default to the standard per-corpus cap; an explicit 0 disables that
// corpus for this request.
type RetrievalRequest struct {
	Symptoms   []string       `json:"symptoms"`
	TTLSeconds int            `json:"ttl_seconds,omitempty"`
	Limits     *LimitsPayload `json:"limits,omitempty"`
}

type LimitsPayload struct {
	CTCAE     *int `json:"ctcae,omitempty"`
	Questions *int `json:"questions,omitempty"`
	TriageKB  *int `json:"triage_kb,omitempty"`
}

func (p *LimitsPayload) toLimits() retrieval.Limits {
	limits := retrieval.DefaultLimits()
	if p == nil {
		return limits
	}
	if p.CTCAE != nil {
		limits.CTCAE = *p.CTCAE
	}
	if p.Questions != nil {
		limits.Questions = *p.Questions
	}
	if p.TriageKB != nil {
		limits.TriageKB = *p.TriageKB
	}
	return limits
}

// RetrievalHandler serves the knowledge-retrieval endpoint.
type RetrievalHandler struct {
	Retriever retrieval.Retriever
}

func NewRetrievalHandler(r retrieval.Retriever) *RetrievalHandler {
	return &RetrievalHandler{Retriever: r}
}

// Retrieve handles POST /v1/retrieval.
func (h *RetrievalHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	var req RetrievalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid request", zap.Error(err))
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	bundle, err := h.Retriever.CachedRetrieve(ctx, req.Symptoms, req.TTLSeconds, req.Limits.toLimits())
	if err != nil {
		logger.Error("retrieval_failed",
			zap.Strings("symptoms", req.Symptoms),
			zap.Duration("total_latency_ms", time.Since(start)),
			zap.Error(err),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"retrieval_unavailable"}`))
		return
	}

	logger.Info("retrieval_served",
		zap.Strings("symptoms", req.Symptoms),
		zap.Int("ctcae", len(bundle.CTCAE)),
		zap.Int("questions", len(bundle.Questions)),
		zap.Int("triage_kb", len(bundle.TriageKB)),
		zap.Duration("total_latency_ms", time.Since(start)),
	)

	writeJSON(w, bundle)
}

// writeJSON is a small helper to send JSON responses consistently.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
