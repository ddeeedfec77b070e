package retrieval

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"oncolife-rag-gateway/internal/metrics"
)

type refreshJob struct {
	symptoms    []string
	combinedKey string
	ttl         time.Duration
	limits      Limits
}

// scheduleRefresh queues a full-set refresh for a combined key. The enqueue
// never blocks: a full queue drops the job, which only delays convergence
// until the next miss. Callers are never aware of, nor waited on by, this
// work.
func (s *Service) scheduleRefresh(symptoms []string, combinedKey string, ttl time.Duration, limits Limits) {
	select {
	case s.refreshJobs <- refreshJob{symptoms: symptoms, combinedKey: combinedKey, ttl: ttl, limits: limits}:
	default:
		metrics.RefreshesTotal.WithLabelValues("dropped").Inc()
		s.logger.Warn("refresh_queue_full", zap.String("key", combinedKey))
	}
}

func (s *Service) refreshWorker() {
	defer s.workerWG.Done()
	for job := range s.refreshJobs {
		s.runRefresh(job)
	}
}

// runRefresh recomputes the exact joint answer and overwrites the combined
// entry. It runs on a detached context with its own timeout, outliving the
// request that scheduled it. Concurrent refreshes for the same key may
// race; entries are pure functions of the symptom set, so last write wins.
// Errors and panics are logged and counted, never propagated.
func (s *Service) runRefresh(job refreshJob) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.RefreshesTotal.WithLabelValues("error").Inc()
			s.logger.Error("refresh_panic",
				zap.String("key", job.combinedKey),
				zap.Any("panic", rec),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RefreshTimeout)
	defer cancel()

	start := time.Now()
	bundle, err := s.retrieveForSymptoms(ctx, job.symptoms, job.limits)
	if err != nil {
		metrics.RefreshesTotal.WithLabelValues("error").Inc()
		s.logger.Error("refresh_retrieve_failed",
			zap.String("key", job.combinedKey),
			zap.Strings("symptoms", job.symptoms),
			zap.Error(err),
		)
		return
	}

	encoded, err := json.Marshal(bundle)
	if err != nil {
		metrics.RefreshesTotal.WithLabelValues("error").Inc()
		s.logger.Error("refresh_encode_failed", zap.String("key", job.combinedKey), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, job.combinedKey, encoded, job.ttl); err != nil {
		metrics.RefreshesTotal.WithLabelValues("error").Inc()
		s.logger.Error("refresh_store_failed", zap.String("key", job.combinedKey), zap.Error(err))
		return
	}

	metrics.RefreshesTotal.WithLabelValues("ok").Inc()
	s.logger.Debug("refresh_complete",
		zap.String("key", job.combinedKey),
		zap.Strings("symptoms", job.symptoms),
		zap.Duration("duration", time.Since(start)),
	)
}
