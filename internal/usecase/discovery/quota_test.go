package discovery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"word-orchestrator/internal/usecase/discovery"
)

func TestSplitQuota(t *testing.T) {
	tests := []struct {
		shortfall int
		wantWeb   int
		wantLLM   int
	}{
		{0, 0, 0},
		{1, 0, 1},
		{2, 1, 1},
		{3, 1, 2},
		{4, 2, 2},
		{5, 2, 3},
		{-1, 0, 0},
	}

	for _, tt := range tests {
		web, llm := discovery.SplitQuota(tt.shortfall)
		assert.Equal(t, tt.wantWeb, web, "missing_web for shortfall %d", tt.shortfall)
		assert.Equal(t, tt.wantLLM, llm, "missing_llm for shortfall %d", tt.shortfall)
		if tt.shortfall > 0 {
			assert.Equal(t, tt.shortfall, web+llm)
		}
	}
}

func TestShortfall(t *testing.T) {
	assert.Equal(t, 2, discovery.Shortfall(5, 3))
	assert.Equal(t, 0, discovery.Shortfall(5, 5))
	assert.Equal(t, 0, discovery.Shortfall(3, 7))
}
