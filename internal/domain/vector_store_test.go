package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name       string
		raw        float64
		convention ScoreConvention
		want       float64
	}{
		{name: "shifted subtracts one", raw: 1.85, convention: ScoreShifted, want: 0.85},
		{name: "shifted lower bound", raw: 0, convention: ScoreShifted, want: -1},
		{name: "cosine passes through", raw: 0.42, convention: ScoreCosine, want: 0.42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NormalizeScore(tt.raw, tt.convention), 1e-9)
		})
	}
}

func TestScoreConvention_String(t *testing.T) {
	assert.Equal(t, "shifted", ScoreShifted.String())
	assert.Equal(t, "cosine", ScoreCosine.String())
}
