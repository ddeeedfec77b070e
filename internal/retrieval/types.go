// Package retrieval implements symptom-keyed knowledge retrieval with a
// two-tier cache: per-symptom entries reused across symptom-set
// combinations, and combined entries for whole sets. Combined misses are
// answered fast from a union of per-symptom results, then healed in the
// background by an exact full-set query.
package retrieval

import "context"

// Corpus is one of the three independent knowledge collections.
type Corpus string

const (
	CorpusCTCAE     Corpus = "ctcae"
	CorpusQuestions Corpus = "questions"
	CorpusTriageKB  Corpus = "triage_kb"
)

// indexTypeTag maps a corpus to the metadata type tag stored in the vector
// index. Question records are tagged "question" (singular) there.
func indexTypeTag(c Corpus) string {
	if c == CorpusQuestions {
		return "question"
	}
	return string(c)
}

// Record is one candidate snippet. Which metadata fields are populated
// depends on the corpus: ctcae and triage_kb carry a version, questions
// carry a phase and a question id. Score is a pointer because cached
// entries may have been stored without one; a nil score ranks as 0.
type Record struct {
	Text       string   `json:"text"`
	Symptoms   []string `json:"symptoms"`
	Version    string   `json:"version,omitempty"`
	Phase      string   `json:"phase,omitempty"`
	QuestionID string   `json:"qid,omitempty"`
	Score      *float64 `json:"score"`
}

// Bundle groups the per-corpus result lists returned to callers and
// serialized into both cache tiers.
type Bundle struct {
	CTCAE     []Record `json:"ctcae"`
	Questions []Record `json:"questions"`
	TriageKB  []Record `json:"triage_kb"`
}

func emptyBundle() Bundle {
	return Bundle{
		CTCAE:     []Record{},
		Questions: []Record{},
		TriageKB:  []Record{},
	}
}

// DefaultLimit is the per-corpus result count when a caller does not set one.
const DefaultLimit = 8

// Limits caps the result count per corpus. A limit of 0 disables that
// corpus entirely: no embedding use, no vector query, empty list.
type Limits struct {
	CTCAE     int
	Questions int
	TriageKB  int
}

// DefaultLimits returns the original per-corpus caps.
func DefaultLimits() Limits {
	return Limits{CTCAE: DefaultLimit, Questions: DefaultLimit, TriageKB: DefaultLimit}
}

func (l Limits) forCorpus(c Corpus) int {
	switch c {
	case CorpusCTCAE:
		return l.CTCAE
	case CorpusQuestions:
		return l.Questions
	case CorpusTriageKB:
		return l.TriageKB
	default:
		return 0
	}
}

// corpora is the fixed iteration order for all per-corpus work.
var corpora = []Corpus{CorpusCTCAE, CorpusQuestions, CorpusTriageKB}

func (b *Bundle) listFor(c Corpus) *[]Record {
	switch c {
	case CorpusCTCAE:
		return &b.CTCAE
	case CorpusQuestions:
		return &b.Questions
	default:
		return &b.TriageKB
	}
}

// Retriever is the caller-facing operation: everything else in the service
// consumes retrieval through this.
type Retriever interface {
	CachedRetrieve(ctx context.Context, symptoms []string, ttlSeconds int, limits Limits) (Bundle, error)
}
