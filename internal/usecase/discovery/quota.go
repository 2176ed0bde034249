package discovery

// Shortfall is how many words are still missing after retrieval.
func Shortfall(targetCount, found int) int {
	if found >= targetCount {
		return 0
	}
	return targetCount - found
}

// SplitQuota divides a shortfall between the web and generative stages. When
// the shortfall is odd the extra word goes to the generative stage.
func SplitQuota(shortfall int) (missingWeb, missingLLM int) {
	if shortfall <= 0 {
		return 0, 0
	}
	missingWeb = shortfall / 2
	missingLLM = shortfall - missingWeb
	return missingWeb, missingLLM
}
