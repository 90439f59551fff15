package rag

import (
	"hash/fnv"
	"regexp"
	"strings"
)

// stopwords are filtered out of questions before keyword retrieval.
// Generic programming words like "code" and "function" are included
// because they match nearly every stored feature.
var stopwords = map[string]struct{}{
	"what": {}, "how": {}, "where": {}, "when": {}, "why": {}, "who": {},
	"is": {}, "are": {}, "was": {}, "were": {},
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"can": {}, "could": {}, "should": {}, "would": {}, "will": {},
	"do": {}, "does": {}, "did": {}, "have": {}, "has": {}, "had": {},
	"me": {}, "about": {}, "tell": {}, "show": {}, "find": {}, "get": {},
	"give": {}, "make": {}, "code": {}, "function": {}, "class": {},
}

var wordRe = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]*`)

// maxSearchTerms caps how many keywords are sent to the feature store.
const maxSearchTerms = 5

// ExtractSearchTerms pulls meaningful keywords out of a question:
// identifier-like words, lowercased, minus stopwords and anything
// shorter than three characters.
func ExtractSearchTerms(question string) []string {
	words := wordRe.FindAllString(strings.ToLower(question), -1)

	var terms []string
	for _, w := range words {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		terms = append(terms, w)
		if len(terms) == maxSearchTerms {
			break
		}
	}
	return terms
}

var casualRes = []*regexp.Regexp{
	regexp.MustCompile(`\b(hi|hello|hey|greetings)\b`),
	regexp.MustCompile(`\b(how are you|what's up|sup)\b`),
	regexp.MustCompile(`\b(good morning|good afternoon|good evening)\b`),
	regexp.MustCompile(`\b(thanks|thank you|thx)\b`),
	regexp.MustCompile(`\b(bye|goodbye|see you)\b`),
}

// IsCasual reports whether a question is a greeting or small talk
// rather than a question about the code. Only short messages qualify;
// "hi, how does the parser work?" is a real question.
func IsCasual(question string) bool {
	q := strings.ToLower(strings.TrimSpace(question))
	if len(q) > 15 {
		return false
	}
	for _, re := range casualRes {
		if re.MatchString(q) {
			return true
		}
	}
	return false
}

var greetingReplies = []string{
	"Hello! 👋 I'm here to help you explore and understand the %s repository.",
	"Hi there! 😊 Ready to dive into the %s codebase?",
	"Hey! 🚀 Let's explore what's in the %s repository together!",
}

var thanksReplies = []string{
	"You're welcome! Feel free to ask me anything about the repository.",
	"Happy to help! What would you like to know about the code?",
	"No problem! I'm here whenever you need to understand the codebase.",
}

var goodbyeReplies = []string{
	"Goodbye! Come back anytime you need help with the repository.",
	"See you later! Happy coding! 👋",
	"Take care! I'll be here when you need code insights.",
}

// CasualReply answers a greeting without touching retrieval or the
// LLM. The pick is a stable hash of the question so the same greeting
// gets the same reply.
func CasualReply(question, repoName string) string {
	q := strings.ToLower(strings.TrimSpace(question))
	pick := func(replies []string) string {
		h := fnv.New32a()
		h.Write([]byte(question))
		return replies[int(h.Sum32())%len(replies)]
	}

	switch {
	case containsAny(q, "hi", "hello", "hey", "morning", "afternoon", "evening"):
		return strings.ReplaceAll(pick(greetingReplies), "%s", repoName)
	case containsAny(q, "thanks", "thank", "thx"):
		return pick(thanksReplies)
	case containsAny(q, "bye", "goodbye", "see you"):
		return pick(goodbyeReplies)
	default:
		return "I'm doing great! 😊 I'm here to help you understand the " + repoName + " repository. What would you like to explore?"
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
