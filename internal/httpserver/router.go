package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"oncolife-rag-gateway/internal/handlers"
	"oncolife-rag-gateway/internal/metrics"
	"oncolife-rag-gateway/internal/middleware"
)

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, retrievalHandler *handlers.RetrievalHandler, adminHandler *handlers.AdminHandler) {

	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())               // panic recovery
	r.Use(middleware.Timeout(30 * time.Second)) // request timeout
	r.Use(middleware.MaxBodySize(64 * 1024))    // 64 KB max body

	// routes
	r.Route("/v1", func(r chi.Router) {
		r.Post("/retrieval", retrievalHandler.Retrieve)
		r.Post("/admin/cache/flush", adminHandler.FlushCache)
	})

	// health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}
