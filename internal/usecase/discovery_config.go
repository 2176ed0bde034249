package usecase

import (
	"fmt"
	"time"

	"word-orchestrator/internal/usecase/discovery"
)

// DiscoveryConfig holds the tunables of the word discovery pipeline.
type DiscoveryConfig struct {
	// Collection is the vector store index or table holding word embeddings.
	Collection string
	// CandidateLimit is how many neighbours to request. Values below 10 are raised to 10.
	CandidateLimit int
	// SimilarityThreshold is compared against raw cosine similarity; a
	// candidate must score strictly above it.
	SimilarityThreshold float64

	EmbedTimeout        time.Duration
	VectorSearchTimeout time.Duration
	WebSearchTimeout    time.Duration
	CompletionTimeout   time.Duration

	// MinWebResults is the floor on web results requested per search.
	MinWebResults  int
	WebTemperature float64
	WebMaxTokens   int

	GenerateTemperature float64
	GenerateMaxTokens   int

	// LanguageInstruction is appended to every completion prompt.
	LanguageInstruction string
}

// DefaultDiscoveryConfig returns production defaults.
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		Collection:          "words",
		CandidateLimit:      10,
		SimilarityThreshold: 0.8,
		EmbedTimeout:        5 * time.Second,
		VectorSearchTimeout: 5 * time.Second,
		WebSearchTimeout:    10 * time.Second,
		CompletionTimeout:   15 * time.Second,
		MinWebResults:       5,
		WebTemperature:      0.0,
		WebMaxTokens:        128,
		GenerateTemperature: 0.1,
		GenerateMaxTokens:   128,
		LanguageInstruction: "Answer in Korean.",
	}
}

// Validate checks if the discovery configuration is valid.
func (c DiscoveryConfig) Validate() error {
	if c.Collection == "" {
		return fmt.Errorf("discovery collection must not be empty")
	}
	if c.SimilarityThreshold < -1.0 || c.SimilarityThreshold > 1.0 {
		return fmt.Errorf("similarity threshold must be in [-1.0, 1.0], got %f", c.SimilarityThreshold)
	}
	if c.CandidateLimit < 0 {
		return fmt.Errorf("candidate limit must not be negative, got %d", c.CandidateLimit)
	}
	for name, d := range map[string]time.Duration{
		"embed":         c.EmbedTimeout,
		"vector search": c.VectorSearchTimeout,
		"web search":    c.WebSearchTimeout,
		"completion":    c.CompletionTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s timeout must be positive, got %v", name, d)
		}
	}
	if c.WebTemperature < 0 || c.GenerateTemperature < 0 {
		return fmt.Errorf("temperatures must not be negative")
	}
	return nil
}

func (c DiscoveryConfig) retrievalOptions() discovery.RetrievalOptions {
	return discovery.RetrievalOptions{
		Collection:          c.Collection,
		CandidateLimit:      c.CandidateLimit,
		SimilarityThreshold: c.SimilarityThreshold,
		EmbedTimeout:        c.EmbedTimeout,
		SearchTimeout:       c.VectorSearchTimeout,
	}
}

func (c DiscoveryConfig) webOptions() discovery.WebOptions {
	return discovery.WebOptions{
		MinResults:        c.MinWebResults,
		SearchTimeout:     c.WebSearchTimeout,
		CompletionTimeout: c.CompletionTimeout,
		Temperature:       c.WebTemperature,
		MaxTokens:         c.WebMaxTokens,
	}
}

func (c DiscoveryConfig) generativeOptions() discovery.GenerativeOptions {
	return discovery.GenerativeOptions{
		CompletionTimeout: c.CompletionTimeout,
		Temperature:       c.GenerateTemperature,
		MaxTokens:         c.GenerateMaxTokens,
	}
}

func (c DiscoveryConfig) promptBuilder() *discovery.PromptBuilder {
	if c.LanguageInstruction == "" {
		return discovery.NewPromptBuilder()
	}
	return discovery.NewPromptBuilder(c.LanguageInstruction)
}
