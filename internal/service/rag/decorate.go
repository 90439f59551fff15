package rag

import (
	"fmt"
	"strings"
)

// questionIcon picks a header icon by question topic.
func questionIcon(question string) string {
	q := strings.ToLower(question)
	switch {
	case containsAny(q, "function", "method", "def"):
		return "🔧"
	case containsAny(q, "class", "object", "inheritance"):
		return "📦"
	case containsAny(q, "file", "structure", "architecture"):
		return "📁"
	case containsAny(q, "api", "endpoint", "service"):
		return "🌐"
	case containsAny(q, "error", "bug", "issue", "problem"):
		return "🐛"
	case containsAny(q, "dependency", "import", "require"):
		return "🔗"
	default:
		return "💡"
	}
}

// Decorate wraps a raw LLM answer with a topic icon header and, when
// retrieval found anything, a query-info footer with the confidence
// score.
func Decorate(text, question string, resultsFound int, confidence float64) string {
	out := fmt.Sprintf("%s **Analysis Results**\n\n%s", questionIcon(question), text)

	if resultsFound > 0 {
		emoji := "🔴"
		switch {
		case confidence > 0.8:
			emoji = "🟢"
		case confidence > 0.6:
			emoji = "🟡"
		}
		out += fmt.Sprintf(
			"\n\n---\n📊 **Query Info**: Found %d relevant code elements %s (Confidence: %.0f%%)",
			resultsFound, emoji, confidence*100,
		)
	}
	return out
}
