// Package vectorindex adapts the external vector search service to the
// narrow query shape retrieval needs: an exact-match corpus filter plus a
// symptom set-membership filter.
package vectorindex

import "context"

// Query is one vector search against a single corpus.
type Query struct {
	Vector []float32
	TopK   int
	// Corpus is the metadata type tag to match exactly.
	Corpus string
	// Symptoms restricts matches to records tagged with at least one of
	// these labels.
	Symptoms []string
}

// Match is one scored result with the metadata fields the corpora carry.
// Score is a pointer because cached entries round-trip through JSON where
// the score may be absent.
type Match struct {
	Score      *float64
	Text       string
	Symptoms   []string
	Version    string
	Phase      string
	QuestionID string
}

// Searcher is implemented by the Pinecone adapter and by test stubs.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Match, error)
}
