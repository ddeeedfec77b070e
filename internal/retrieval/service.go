package retrieval

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"oncolife-rag-gateway/internal/cache"
	"oncolife-rag-gateway/internal/embedding"
	"oncolife-rag-gateway/internal/vectorindex"
)

type Config struct {
	// DefaultTTL applies when a request does not carry its own TTL.
	DefaultTTL time.Duration
	// RefreshWorkers is the number of background refresh goroutines
	// (default: 2).
	RefreshWorkers int
	// RefreshQueueSize bounds pending refresh jobs; when full, new jobs are
	// dropped and counted, never blocking a request (default: 64).
	RefreshQueueSize int
	// RefreshTimeout bounds one background full-set retrieval (default: 60s).
	RefreshTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.DefaultTTL <= 0 {
		c.DefaultTTL = time.Hour
	}
	if c.RefreshWorkers <= 0 {
		c.RefreshWorkers = 2
	}
	if c.RefreshQueueSize <= 0 {
		c.RefreshQueueSize = 64
	}
	if c.RefreshTimeout <= 0 {
		c.RefreshTimeout = 60 * time.Second
	}
	return c
}

// Service ties the embedder, the vector index and the bundle cache together
// behind CachedRetrieve. It owns the background refresh workers; Close
// drains them.
type Service struct {
	embedder embedding.Embedder
	index    vectorindex.Searcher
	cache    cache.BundleCache
	cfg      Config
	logger   *zap.Logger

	refreshJobs chan refreshJob
	workerWG    sync.WaitGroup
	closeOnce   sync.Once
}

// NewService wires the collaborators and starts the refresh workers. The
// cache may be the no-op backend; retrieval then skips both tiers and the
// background refresh entirely.
func NewService(embedder embedding.Embedder, index vectorindex.Searcher, bundleCache cache.BundleCache, cfg Config, logger *zap.Logger) *Service {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		embedder:    embedder,
		index:       index,
		cache:       bundleCache,
		cfg:         cfg,
		logger:      logger.Named("retrieval"),
		refreshJobs: make(chan refreshJob, cfg.RefreshQueueSize),
	}

	s.workerWG.Add(cfg.RefreshWorkers)
	for i := 0; i < cfg.RefreshWorkers; i++ {
		go s.refreshWorker()
	}

	return s
}

// Close stops accepting refresh jobs and waits for in-flight ones.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		close(s.refreshJobs)
	})
	s.workerWG.Wait()
	return nil
}

func (s *Service) ttlOrDefault(ttlSeconds int) time.Duration {
	if ttlSeconds <= 0 {
		return s.cfg.DefaultTTL
	}
	return time.Duration(ttlSeconds) * time.Second
}
