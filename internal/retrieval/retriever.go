package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"oncolife-rag-gateway/internal/vectorindex"
	"oncolife-rag-gateway/pkg/logging"
)

// retrieveForSymptom queries all active corpora for one symptom. The
// symptom is embedded once; corpora with limit 0 are skipped without any
// oracle interaction. No caching, no retrying: errors propagate.
func (s *Service) retrieveForSymptom(ctx context.Context, symptom string, limits Limits) (Bundle, error) {
	sym := strings.ToLower(strings.TrimSpace(symptom))
	if sym == "" {
		return emptyBundle(), nil
	}
	return s.queryCorpora(ctx, sym, []string{sym}, limits)
}

// retrieveForSymptoms is the exact joint retrieval: the whole normalized
// set is embedded as one query text, so the vector reflects cross-symptom
// context instead of an independent per-symptom signal.
func (s *Service) retrieveForSymptoms(ctx context.Context, symptoms []string, limits Limits) (Bundle, error) {
	if len(symptoms) == 0 {
		return emptyBundle(), nil
	}
	return s.queryCorpora(ctx, strings.Join(symptoms, ", "), symptoms, limits)
}

func (s *Service) queryCorpora(ctx context.Context, queryText string, filterSymptoms []string, limits Limits) (Bundle, error) {
	logger := logging.L(ctx)

	vec, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return Bundle{}, fmt.Errorf("embed %q: %w", queryText, err)
	}

	bundle := emptyBundle()
	for _, corpus := range corpora {
		limit := limits.forCorpus(corpus)
		if limit <= 0 {
			continue
		}

		matches, err := s.index.Search(ctx, vectorindex.Query{
			Vector:   vec,
			TopK:     limit,
			Corpus:   indexTypeTag(corpus),
			Symptoms: filterSymptoms,
		})
		if err != nil {
			return Bundle{}, err
		}

		logger.Debug("corpus query",
			zap.String("corpus", string(corpus)),
			zap.Strings("filter_symptoms", filterSymptoms),
			zap.Int("matches", len(matches)),
		)

		*bundle.listFor(corpus) = recordsFromMatches(corpus, matches)
	}

	return bundle, nil
}

// recordsFromMatches keeps only the metadata fields that corpus carries.
func recordsFromMatches(corpus Corpus, matches []vectorindex.Match) []Record {
	records := make([]Record, 0, len(matches))
	for _, m := range matches {
		rec := Record{
			Text:     m.Text,
			Symptoms: m.Symptoms,
			Score:    m.Score,
		}
		switch corpus {
		case CorpusQuestions:
			rec.Phase = m.Phase
			rec.QuestionID = m.QuestionID
		default:
			rec.Version = m.Version
		}
		records = append(records, rec)
	}
	return records
}
