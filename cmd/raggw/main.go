package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"oncolife-rag-gateway/internal/cache"
	"oncolife-rag-gateway/internal/embedding"
	"oncolife-rag-gateway/internal/handlers"
	"oncolife-rag-gateway/internal/httpserver"
	"oncolife-rag-gateway/internal/metrics"
	"oncolife-rag-gateway/internal/retrieval"
	"oncolife-rag-gateway/internal/vectorindex"
	"oncolife-rag-gateway/pkg/logging"
)

type Config struct {
	Port         string
	CacheBackend string // "none", "memory" or "redis"
	RedisAddr    string
	RedisPass    string
	CacheTTL     time.Duration

	OpenAIBaseURL  string
	OpenAIAPIKey   string
	EmbeddingModel string

	PineconeAPIKey    string
	PineconeIndexHost string

	OracleTimeout time.Duration
}

func LoadConfig() Config {
	return Config{
		Port:         getenv("PORT", "8080"),
		CacheBackend: getenv("CACHE_BACKEND", "none"),
		RedisAddr:    getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass:    os.Getenv("REDIS_PASSWORD"),
		CacheTTL:     getenvDuration("CACHE_TTL_SECONDS", time.Hour),

		OpenAIBaseURL:  getenv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel: getenv("EMBEDDING_MODEL", "text-embedding-3-small"),

		PineconeAPIKey:    os.Getenv("PINECONE_API_KEY"),
		PineconeIndexHost: os.Getenv("PINECONE_INDEX_HOST"),

		OracleTimeout: getenvDuration("ORACLE_TIMEOUT_SECONDS", 15*time.Second),
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("gateway exited with error: %v", err)
	}
}

func run() error {
	// ----- Logger -----
	logger := logging.DefaultLogger()
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	// ----- Config -----
	cfg := LoadConfig()

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.String("embedding_model", cfg.EmbeddingModel),
		zap.String("pinecone_index_host", cfg.PineconeIndexHost),
	)

	// ----- Redis client (only if needed) -----
	// A failed ping downgrades to no caching; retrieval must keep working.
	var redisClient *redis.Client
	if cfg.CacheBackend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
		})

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis connection failed, caching disabled",
				zap.String("addr", cfg.RedisAddr),
				zap.Error(err),
			)
			cfg.CacheBackend = "none"
			redisClient = nil
		} else {
			logger.Info("redis connection established",
				zap.String("addr", cfg.RedisAddr),
			)
		}
	}

	// ----- Bundle cache (two key tiers, one backend) -----
	var bundleCache cache.BundleCache = cache.NewBundleCache(cache.Config{
		Backend: cfg.CacheBackend,
		TTL:     cfg.CacheTTL,
	}, redisClient)
	if closer, ok := bundleCache.(interface{ Close() error }); ok {
		defer func() { _ = closer.Close() }()
	}
	bundleCache = cache.NewLoggingBundleCache(bundleCache)

	// ----- Embedding client -----
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	embedder, err := embedding.NewClient(embedding.Config{
		BaseURL:         cfg.OpenAIBaseURL,
		APIKey:          cfg.OpenAIAPIKey,
		Model:           cfg.EmbeddingModel,
		UpstreamTimeout: cfg.OracleTimeout,
	}, logger)
	if err != nil {
		return err
	}
	defer embedder.Close()

	// ----- Vector index -----
	index, err := vectorindex.NewPineconeIndex(vectorindex.Config{
		APIKey:    cfg.PineconeAPIKey,
		IndexHost: cfg.PineconeIndexHost,
		Timeout:   cfg.OracleTimeout,
	}, logger)
	if err != nil {
		return err
	}

	// ----- Retrieval service -----
	svc := retrieval.NewService(embedder, index, bundleCache, retrieval.Config{
		DefaultTTL: cfg.CacheTTL,
	}, logger)
	defer svc.Close()

	// ----- Handlers -----
	retrievalHandler := handlers.NewRetrievalHandler(svc)
	adminHandler := handlers.NewAdminHandler(svc)

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, retrievalHandler, adminHandler)

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting gateway",
		zap.String("addr", srv.Addr),
		zap.String("cache_backend", cfg.CacheBackend),
	)

	// Start server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}

// getenv returns the value of the environment variable key or def if not set.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvDuration reads an integer number of seconds from the environment.
func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}
