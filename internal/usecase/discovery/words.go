package discovery

import (
	"strings"
	"unicode"
)

// wordKey folds a word for case-insensitive comparison.
func wordKey(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// wordCollector accumulates unique words in discovery order. Keys that are
// pre-seeded (the query and excluded words) are never collected.
type wordCollector struct {
	seen  map[string]struct{}
	words []string
	limit int
}

func newWordCollector(query string, limit int, exclude ...[]string) *wordCollector {
	c := &wordCollector{
		seen:  make(map[string]struct{}),
		words: []string{},
		limit: limit,
	}
	if key := wordKey(query); key != "" {
		c.seen[key] = struct{}{}
	}
	for _, list := range exclude {
		for _, w := range list {
			if key := wordKey(w); key != "" {
				c.seen[key] = struct{}{}
			}
		}
	}
	return c
}

func (c *wordCollector) full() bool {
	return len(c.words) >= c.limit
}

// add appends word if it is non-blank, unseen and there is room left.
func (c *wordCollector) add(word string) bool {
	if c.full() {
		return false
	}
	word = strings.TrimSpace(word)
	key := wordKey(word)
	if key == "" {
		return false
	}
	if _, dup := c.seen[key]; dup {
		return false
	}
	c.seen[key] = struct{}{}
	c.words = append(c.words, word)
	return true
}

func isWordSeparator(r rune) bool {
	switch r {
	case ',', '，', '、', '\n', '\r':
		return true
	}
	return false
}

// trimToken removes whitespace, list markers and quoting models tend to wrap
// words in.
func trimToken(token string) string {
	return strings.TrimFunc(token, func(r rune) bool {
		if unicode.IsSpace(r) {
			return true
		}
		switch r {
		case '"', '\'', '`', '“', '”', '‘', '’', '.', '。', '*', '-', '•', '[', ']':
			return true
		}
		return false
	})
}

// ParseWordList turns a free-text completion answer into at most limit
// unique words. Tokens are split on commas (ASCII, full-width and the
// ideographic comma) and line breaks. Blank tokens, the query and anything
// in exclude are dropped, case-insensitively. Malformed text yields an empty
// slice, never an error.
func ParseWordList(text, query string, exclude []string, limit int) []string {
	if limit <= 0 {
		return []string{}
	}
	c := newWordCollector(query, limit, exclude)
	for _, token := range strings.FieldsFunc(text, isWordSeparator) {
		c.add(trimToken(token))
		if c.full() {
			break
		}
	}
	return c.words
}
