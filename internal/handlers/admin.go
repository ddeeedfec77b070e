package handlers

import (
	"context"
	"net/http"

	"oncolife-rag-gateway/pkg/logging"

	"go.uber.org/zap"
)

// CacheFlusher clears the retrieval cache namespace.
type CacheFlusher interface {
	FlushCache(ctx context.Context) (int, error)
}

// AdminHandler serves operational endpoints.
type AdminHandler struct {
	Flusher CacheFlusher
}

func NewAdminHandler(f CacheFlusher) *AdminHandler {
	return &AdminHandler{Flusher: f}
}

type flushResponse struct {
	Deleted int `json:"deleted"`
}

// FlushCache handles POST /v1/admin/cache/flush. Run after new documents
// are ingested so stale bundles don't mask them for a full TTL.
func (h *AdminHandler) FlushCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	deleted, err := h.Flusher.FlushCache(ctx)
	if err != nil {
		logger.Error("cache_flush_failed", zap.Int("deleted", deleted), zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"cache_flush_failed"}`))
		return
	}

	logger.Info("cache_flushed", zap.Int("deleted", deleted))
	writeJSON(w, flushResponse{Deleted: deleted})
}
