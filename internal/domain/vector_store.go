package domain

import "context"

// ScoreConvention tells how a vector store reports similarity.
type ScoreConvention int

const (
	// ScoreCosine is raw cosine similarity in [-1, 1].
	ScoreCosine ScoreConvention = iota
	// ScoreShifted is cosine similarity + 1.0, in [0, 2]. OpenSearch
	// script_score queries report this because scores must be non-negative.
	ScoreShifted
)

func (c ScoreConvention) String() string {
	switch c {
	case ScoreShifted:
		return "shifted"
	default:
		return "cosine"
	}
}

// VectorCandidate is a word returned from a similarity search with the score
// the store reported.
type VectorCandidate struct {
	Form  string
	Score float64
}

// VectorStore performs k-nearest-neighbour lookups over pre-indexed words.
type VectorStore interface {
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]VectorCandidate, error)
	ScoreConvention() ScoreConvention
}

// NormalizeScore converts a raw store score into cosine similarity.
func NormalizeScore(raw float64, convention ScoreConvention) float64 {
	if convention == ScoreShifted {
		return raw - 1.0
	}
	return raw
}

// WordVector is an indexed word and its embedding.
type WordVector struct {
	Form      string
	Embedding []float32
}

// WordIndexWriter stores word embeddings for later similarity search.
type WordIndexWriter interface {
	UpsertWords(ctx context.Context, collection string, words []WordVector) error
}

// TransactionManager runs fn inside a single storage transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
