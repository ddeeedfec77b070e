package retrieval

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"oncolife-rag-gateway/internal/cache"
	"oncolife-rag-gateway/pkg/logging"
)

// CachedRetrieve is the public retrieval operation.
//
// Policy (stale-then-refresh): serve a combined-cache hit immediately; on a
// miss, answer fast with the union of per-symptom results, cache that
// approximation, and schedule a background full-set refresh that overwrites
// it with the exact answer. Only if the union itself fails does the caller
// wait for exact retrieval; only if that also fails does an error surface.
func (s *Service) CachedRetrieve(ctx context.Context, symptoms []string, ttlSeconds int, limits Limits) (Bundle, error) {
	logger := logging.L(ctx)

	set := Normalize(symptoms)
	if len(set) == 0 {
		return emptyBundle(), nil
	}

	ttl := s.ttlOrDefault(ttlSeconds)

	if !cache.Enabled(s.cache) {
		logger.Info("retrieve", zap.Strings("symptoms", set), zap.String("cache", "disabled"))
		return s.retrieveForSymptoms(ctx, set, limits)
	}

	logger.Info("retrieve", zap.Strings("symptoms", set))

	combinedKey := cache.CombinedKey(set)

	// 1) Combined-set tier: the expected steady-state fast path.
	raw, hit, err := s.cache.Get(ctx, combinedKey)
	if err != nil {
		logger.Warn("combined_cache_get_error", zap.Error(err))
	}
	if hit {
		var bundle Bundle
		if err := json.Unmarshal(raw, &bundle); err != nil {
			logger.Warn("combined_cache_decode_error", zap.Error(err))
		} else {
			return bundle, nil
		}
	}

	// 2) Miss: assemble the approximate union, serve it, heal in background.
	union, err := s.unionFromPerSymptoms(ctx, set, ttl, limits)
	if err == nil {
		s.storeCombined(ctx, combinedKey, union, ttl)
		s.scheduleRefresh(set, combinedKey, ttl, limits)
		return union, nil
	}
	logger.Error("union_assembly_failed", zap.Strings("symptoms", set), zap.Error(err))

	// 3) Last resort: synchronous exact retrieval.
	bundle, err := s.retrieveForSymptoms(ctx, set, limits)
	if err != nil {
		return Bundle{}, err
	}
	s.storeCombined(ctx, combinedKey, bundle, ttl)
	return bundle, nil
}

// storeCombined writes a combined entry best-effort; failures are logged
// and the already-computed bundle is still served.
func (s *Service) storeCombined(ctx context.Context, key string, bundle Bundle, ttl time.Duration) {
	logger := logging.L(ctx)

	encoded, err := json.Marshal(bundle)
	if err != nil {
		logger.Warn("combined_cache_encode_error", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, encoded, ttl); err != nil {
		logger.Warn("combined_cache_set_error", zap.Error(err))
	}
}

// FlushCache removes every cached bundle from both tiers. Exposed for the
// admin endpoint used after corpus reingestion.
func (s *Service) FlushCache(ctx context.Context) (int, error) {
	return s.cache.Flush(ctx)
}
