package discovery

// MaxTargetCount is the largest number of words a single run may ask for.
const MaxTargetCount = 20

// DefaultTargetCount is used when the caller leaves the count unset.
const DefaultTargetCount = 5

// PipelineState carries data between pipeline stages. A state belongs to one
// run and is passed by value; each stage returns an updated copy.
type PipelineState struct {
	// Input
	RunID       string
	Query       string
	TargetCount int

	// Retrieval outputs
	Retrieved  []string
	MissingWeb int
	MissingLLM int

	// Augmentation outputs
	WebWords       []string
	GeneratedWords []string

	// Err is set only when the retrieval foundation failed.
	Err string
}

// NewPipelineState returns the initial state for a run.
func NewPipelineState(runID, query string, targetCount int) PipelineState {
	return PipelineState{
		RunID:          runID,
		Query:          query,
		TargetCount:    targetCount,
		Retrieved:      []string{},
		WebWords:       []string{},
		GeneratedWords: []string{},
	}
}

// Failed reports whether the foundation stage failed.
func (s PipelineState) Failed() bool {
	return s.Err != ""
}

// SourceCounts records how many words each stage contributed before merging.
type SourceCounts struct {
	Retrieval int `json:"retrieval"`
	Web       int `json:"web"`
	LLM       int `json:"llm"`
}

// MergeResult is the final answer of a run.
type MergeResult struct {
	FinalWords   []string
	SourceCounts SourceCounts
}
