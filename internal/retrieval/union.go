package retrieval

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"oncolife-rag-gateway/internal/cache"
	"oncolife-rag-gateway/pkg/logging"
)

// cachedRetrieveForSymptom serves one symptom's bundle from the per-symptom
// tier, populating it on a miss. The cache is an optimization only: a
// failed get counts as a miss, a failed set is logged and the computed
// result is still returned.
func (s *Service) cachedRetrieveForSymptom(ctx context.Context, symptom string, ttl time.Duration, limits Limits) (Bundle, error) {
	logger := logging.L(ctx)

	if !cache.Enabled(s.cache) {
		return s.retrieveForSymptom(ctx, symptom, limits)
	}

	key := cache.PerSymptomKey(symptom)

	raw, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("per_symptom_cache_get_error", zap.String("symptom", symptom), zap.Error(err))
	}
	if hit {
		var bundle Bundle
		if err := json.Unmarshal(raw, &bundle); err != nil {
			// Corrupt or incompatible entry: treat as a miss.
			logger.Warn("per_symptom_cache_decode_error", zap.String("symptom", symptom), zap.Error(err))
		} else {
			return bundle, nil
		}
	}

	bundle, err := s.retrieveForSymptom(ctx, symptom, limits)
	if err != nil {
		return Bundle{}, err
	}

	if encoded, err := json.Marshal(bundle); err != nil {
		logger.Warn("per_symptom_cache_encode_error", zap.String("symptom", symptom), zap.Error(err))
	} else if err := s.cache.Set(ctx, key, encoded, ttl); err != nil {
		logger.Warn("per_symptom_cache_set_error", zap.String("symptom", symptom), zap.Error(err))
	}

	return bundle, nil
}

// unionFromPerSymptoms builds the approximate combined answer: every
// symptom's bundle is fetched concurrently through the per-symptom tier,
// then the per-corpus lists are concatenated in set order, deduplicated and
// capped. Any symptom failing fails the union; the entry point falls back
// to exact retrieval.
func (s *Service) unionFromPerSymptoms(ctx context.Context, symptoms []string, ttl time.Duration, limits Limits) (Bundle, error) {
	logger := logging.L(ctx)

	perSymptom := make([]Bundle, len(symptoms))
	g, gctx := errgroup.WithContext(ctx)
	for i, sym := range symptoms {
		g.Go(func() error {
			bundle, err := s.cachedRetrieveForSymptom(gctx, sym, ttl, limits)
			if err != nil {
				return err
			}
			perSymptom[i] = bundle
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Bundle{}, err
	}

	accum := Bundle{}
	for _, b := range perSymptom {
		accum.CTCAE = append(accum.CTCAE, b.CTCAE...)
		accum.Questions = append(accum.Questions, b.Questions...)
		accum.TriageKB = append(accum.TriageKB, b.TriageKB...)
	}

	union := Bundle{
		CTCAE:     dedupeAndLimit(accum.CTCAE, limits.CTCAE, CorpusCTCAE),
		Questions: dedupeAndLimit(accum.Questions, limits.Questions, CorpusQuestions),
		TriageKB:  dedupeAndLimit(accum.TriageKB, limits.TriageKB, CorpusTriageKB),
	}

	logger.Debug("union assembled",
		zap.Strings("symptoms", symptoms),
		zap.Int("ctcae_in", len(accum.CTCAE)), zap.Int("ctcae_out", len(union.CTCAE)),
		zap.Int("questions_in", len(accum.Questions)), zap.Int("questions_out", len(union.Questions)),
		zap.Int("triage_kb_in", len(accum.TriageKB)), zap.Int("triage_kb_out", len(union.TriageKB)),
	)

	return union, nil
}

func scoreOf(r Record) float64 {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}

type dedupKey struct {
	text    string
	version string
}

// dedupeAndLimit sorts records by descending score (nil score ranks as 0),
// drops duplicates by the corpus's identity key, and caps the list. For
// questions the key is the question id, falling back to the snippet text
// when the id is absent; for ctcae and triage_kb it is (text, version).
func dedupeAndLimit(records []Record, limit int, corpus Corpus) []Record {
	if limit <= 0 {
		return []Record{}
	}

	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return scoreOf(sorted[i]) > scoreOf(sorted[j])
	})

	seen := make(map[dedupKey]struct{}, len(sorted))
	out := make([]Record, 0, limit)
	for _, rec := range sorted {
		var key dedupKey
		if corpus == CorpusQuestions {
			key = dedupKey{text: rec.QuestionID}
			if key.text == "" {
				key = dedupKey{text: rec.Text}
			}
		} else {
			key = dedupKey{text: rec.Text, version: rec.Version}
		}

		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
		if len(out) >= limit {
			break
		}
	}

	return out
}
