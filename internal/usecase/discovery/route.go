package discovery

// Stage identifies a step in the discovery state machine.
type Stage int

const (
	// StageStart is the entry point before any work is done.
	StageStart Stage = iota
	// StageRetrieval embeds the query and reads neighbours from the vector store.
	StageRetrieval
	// StageWebAugmented extracts words from web search snippets.
	StageWebAugmented
	// StageGenerative asks the completion model for the remaining words.
	StageGenerative
	// StageMerge combines the stage outputs into the final list.
	StageMerge
	// StageDone is terminal.
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageRetrieval:
		return "retrieval"
	case StageWebAugmented:
		return "web_augmented"
	case StageGenerative:
		return "generative"
	case StageMerge:
		return "merge"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Next returns the stage that follows current for the given state. It is a
// pure function of its arguments; quotas are read, never recomputed.
func Next(current Stage, state PipelineState) Stage {
	switch current {
	case StageStart:
		return StageRetrieval
	case StageRetrieval:
		if state.Failed() {
			return StageMerge
		}
		if state.MissingWeb == 0 && state.MissingLLM == 0 {
			return StageMerge
		}
		if state.MissingWeb > 0 {
			return StageWebAugmented
		}
		return StageGenerative
	case StageWebAugmented:
		if state.MissingLLM > 0 {
			return StageGenerative
		}
		return StageMerge
	case StageGenerative:
		return StageMerge
	default:
		return StageDone
	}
}
