package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"oncolife-rag-gateway/internal/metrics"
)

type Config struct {
	APIKey string
	// IndexHost is the data-plane host of the index (from DescribeIndex or
	// the console), e.g. "oncolife-rag-xxxx.svc.us-east-1.pinecone.io".
	IndexHost string
	// Timeout bounds each query (default: 15s).
	Timeout time.Duration
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("APIKey is required")
	}
	if c.IndexHost == "" {
		return errors.New("IndexHost is required")
	}
	return nil
}

// PineconeIndex implements Searcher against a Pinecone index connection.
type PineconeIndex struct {
	conn    *pinecone.IndexConnection
	timeout time.Duration
	logger  *zap.Logger
}

// NewPineconeIndex dials the index's data plane once; the connection is
// shared by all requests afterwards.
func NewPineconeIndex(cfg Config, logger *zap.Logger) (*PineconeIndex, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create pinecone client: %w", err)
	}

	conn, err := client.Index(pinecone.NewIndexConnParams{Host: cfg.IndexHost})
	if err != nil {
		return nil, fmt.Errorf("connect to index %q: %w", cfg.IndexHost, err)
	}

	return &PineconeIndex{
		conn:    conn,
		timeout: cfg.Timeout,
		logger:  logger.Named("vectorindex"),
	}, nil
}

// Search issues one filtered query and shapes the scored matches.
func (p *PineconeIndex) Search(ctx context.Context, q Query) ([]Match, error) {
	filter, err := buildFilter(q.Corpus, q.Symptoms)
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	metrics.VectorQueriesTotal.WithLabelValues(q.Corpus).Inc()
	start := time.Now()

	res, err := p.conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          q.Vector,
		TopK:            uint32(q.TopK),
		MetadataFilter:  filter,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("vector query (%s): %w", q.Corpus, err)
	}

	matches := make([]Match, 0, len(res.Matches))
	for _, sv := range res.Matches {
		if sv == nil || sv.Vector == nil {
			continue
		}
		matches = append(matches, extractMatch(sv))
	}

	p.logger.Debug("vector query",
		zap.String("corpus", q.Corpus),
		zap.Int("top_k", q.TopK),
		zap.Strings("filter_symptoms", q.Symptoms),
		zap.Int("matches", len(matches)),
		zap.Duration("duration", time.Since(start)),
	)

	return matches, nil
}

// buildFilter produces {$and: [{type: {$eq: corpus}}, {symptoms: {$in: [...]}}]}.
func buildFilter(corpus string, symptoms []string) (*pinecone.MetadataFilter, error) {
	in := make([]interface{}, len(symptoms))
	for i, s := range symptoms {
		in[i] = s
	}
	return structpb.NewStruct(map[string]interface{}{
		"$and": []interface{}{
			map[string]interface{}{"type": map[string]interface{}{"$eq": corpus}},
			map[string]interface{}{"symptoms": map[string]interface{}{"$in": in}},
		},
	})
}

func extractMatch(sv *pinecone.ScoredVector) Match {
	score := float64(sv.Score)
	m := Match{Score: &score}

	if sv.Vector.Metadata == nil {
		return m
	}
	md := sv.Vector.Metadata.GetFields()

	if f, ok := md["text"]; ok {
		m.Text = f.GetStringValue()
	}
	if f, ok := md["version"]; ok {
		m.Version = f.GetStringValue()
	}
	if f, ok := md["phase"]; ok {
		m.Phase = f.GetStringValue()
	}
	if f, ok := md["id"]; ok {
		m.QuestionID = f.GetStringValue()
	}
	if f, ok := md["symptoms"]; ok {
		for _, v := range f.GetListValue().GetValues() {
			if s := v.GetStringValue(); s != "" {
				m.Symptoms = append(m.Symptoms, s)
			}
		}
	}

	return m
}
