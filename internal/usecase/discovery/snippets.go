package discovery

import (
	"regexp"
	"strings"

	"word-orchestrator/internal/domain"
)

// rawSnippetPattern extracts snippet bodies from search providers that return
// one text blob of "snippet: ..., title: ..., link: ..." records.
var rawSnippetPattern = regexp.MustCompile(`snippet: (.*?)(?:, title:|, link:|$)`)

const rawFallbackLines = 5

// NormalizeSnippets flattens heterogeneous web search results into plain text
// snippets, keeping at most limit of them. Structured results contribute
// their snippet, or their title when the snippet is empty. Raw results are
// parsed with rawSnippetPattern and fall back to their first non-empty lines.
func NormalizeSnippets(results []domain.WebResult, limit int) []string {
	snippets := []string{}
	push := func(s string) bool {
		s = strings.TrimSpace(s)
		if s == "" {
			return true
		}
		snippets = append(snippets, s)
		return limit <= 0 || len(snippets) < limit
	}

	for _, r := range results {
		switch {
		case strings.TrimSpace(r.Snippet) != "":
			if !push(r.Snippet) {
				return snippets
			}
		case strings.TrimSpace(r.Raw) != "":
			for _, s := range parseRawSnippets(r.Raw) {
				if !push(s) {
					return snippets
				}
			}
		case strings.TrimSpace(r.Title) != "":
			if !push(r.Title) {
				return snippets
			}
		}
	}
	return snippets
}

func parseRawSnippets(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		for _, m := range rawSnippetPattern.FindAllStringSubmatch(line, -1) {
			if s := strings.TrimSpace(m[1]); s != "" {
				out = append(out, s)
			}
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
			if len(out) == rawFallbackLines {
				break
			}
		}
	}
	return out
}
