package discovery

import (
	"fmt"
	"strings"

	"word-orchestrator/internal/domain"
)

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return xmlEscaper.Replace(s)
}

// PromptBuilder renders the prompts used by the web and generative stages.
type PromptBuilder struct {
	additionalInstructions []string
}

// NewPromptBuilder creates a prompt builder with optional extra instructions
// appended to every system prompt, e.g. "Answer in Korean.".
func NewPromptBuilder(additionalInstructions ...string) *PromptBuilder {
	return &PromptBuilder{additionalInstructions: additionalInstructions}
}

// WebSearchQuery phrases the search so that result pages list synonyms and
// related terms rather than definitions of the query itself.
func (b *PromptBuilder) WebSearchQuery(query string, wanted int) string {
	return fmt.Sprintf("'%s'와 관련된 다양한 동의어, 유의어, 연관 검색어 또는 주제어 %d개", query, wanted)
}

func (b *PromptBuilder) system(rules []string) string {
	var sb strings.Builder
	sb.WriteString("<instructions>\n")
	for _, r := range rules {
		sb.WriteString("  ")
		sb.WriteString(r)
		sb.WriteString("\n")
	}
	for _, extra := range b.additionalInstructions {
		sb.WriteString("  ")
		sb.WriteString(extra)
		sb.WriteString("\n")
	}
	sb.WriteString("</instructions>")
	return sb.String()
}

// WebExtraction asks the model to pick exactly count related words out of
// the search snippets.
func (b *PromptBuilder) WebExtraction(query string, snippets []string, count int) domain.CompletionRequest {
	sys := b.system([]string{
		"You extract vocabulary from web search results.",
		fmt.Sprintf("1. Find exactly %d unique key words that are semantically similar or related to the <query>.", count),
		"2. Use only the information inside <context>.",
		"3. Respond with the words on a single line, separated by commas.",
		"4. Do not add explanations, numbering, sentences or line breaks.",
		"5. Never include the query word itself.",
	})

	var user strings.Builder
	user.WriteString("<context>\n")
	for _, s := range snippets {
		user.WriteString(escape(s))
		user.WriteString("\n")
	}
	user.WriteString("</context>\n")
	user.WriteString("<query>")
	user.WriteString(escape(query))
	user.WriteString("</query>")

	return domain.CompletionRequest{SystemPrompt: sys, UserPrompt: user.String()}
}

// Generation asks the model for exactly count new related words. Words that
// were already found are listed only so the model can avoid repeating them.
func (b *PromptBuilder) Generation(query string, known []string, count int) domain.CompletionRequest {
	sys := b.system([]string{
		"You suggest vocabulary related to a word.",
		fmt.Sprintf("1. Generate exactly %d new unique words that are semantically similar or related to the <query>.", count),
		"2. Do not repeat the query or any word listed in <known_words>.",
		"3. Respond with the words on a single line, separated by commas, and nothing else.",
	})

	var user strings.Builder
	user.WriteString("<known_words>")
	if len(known) > 0 {
		escaped := make([]string, len(known))
		for i, w := range known {
			escaped[i] = escape(w)
		}
		user.WriteString(strings.Join(escaped, ", "))
	}
	user.WriteString("</known_words>\n")
	user.WriteString("<query>")
	user.WriteString(escape(query))
	user.WriteString("</query>")

	return domain.CompletionRequest{SystemPrompt: sys, UserPrompt: user.String()}
}
