package discovery

import (
	"context"
	"time"
)

// RetrievalOptions tunes the vector lookup.
type RetrievalOptions struct {
	Collection          string
	CandidateLimit      int
	SimilarityThreshold float64
	EmbedTimeout        time.Duration
	SearchTimeout       time.Duration
}

// minCandidateLimit keeps enough candidates to survive threshold and
// duplicate filtering.
const minCandidateLimit = 10

// limit asks for at least twice the target so large requests are not capped
// by the fixed floor.
func (o RetrievalOptions) limit(targetCount int) int {
	return max(minCandidateLimit, o.CandidateLimit, 2*targetCount)
}

// WebOptions tunes the web-augmented stage.
type WebOptions struct {
	MinResults        int
	SearchTimeout     time.Duration
	CompletionTimeout time.Duration
	Temperature       float64
	MaxTokens         int
}

// GenerativeOptions tunes the generative stage.
type GenerativeOptions struct {
	CompletionTimeout time.Duration
	Temperature       float64
	MaxTokens         int
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
