package discovery

// Merge combines the stage outputs into the final word list: retrieved words
// first, then web words, then generated words. Duplicates across stages are
// dropped case-insensitively with the first occurrence kept, the query is
// excluded and the list is cut at TargetCount. Merge never pads a short
// result. SourceCounts report what each stage produced before merging.
func Merge(state PipelineState) MergeResult {
	c := newWordCollector(state.Query, state.TargetCount)
	for _, list := range [][]string{state.Retrieved, state.WebWords, state.GeneratedWords} {
		for _, w := range list {
			c.add(w)
		}
	}
	return MergeResult{
		FinalWords: c.words,
		SourceCounts: SourceCounts{
			Retrieval: len(state.Retrieved),
			Web:       len(state.WebWords),
			LLM:       len(state.GeneratedWords),
		},
	}
}
