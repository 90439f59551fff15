package markdown

import (
	"log/slog"
	"strings"
)

// Format parses a raw message into an ordered sequence of render
// nodes. It never fails: empty input yields an empty sequence and any
// panic while parsing degrades to a single paragraph carrying the raw
// text verbatim, so one malformed message can never take down the
// rendering of its siblings.
func Format(raw string) NodeList {
	nodes, _ := format(raw)
	return nodes
}

func format(raw string) (nodes NodeList, recovered bool) {
	defer func() {
		if r := recover(); r != nil {
			recovered = true
			nodes = NodeList{Paragraph{
				Fragments: []Fragment{{Kind: FragmentText, Text: raw}},
			}}
		}
	}()

	if strings.TrimSpace(raw) == "" {
		return NodeList{}, false
	}

	nodes = NodeList{}
	for _, block := range splitBlocks(raw) {
		nodes = append(nodes, parseBlock(block)...)
	}
	return nodes, false
}

// Formatter wraps Format with a logger so degraded renders are
// visible in server logs. The zero value is not usable; construct
// with NewFormatter.
type Formatter struct {
	logger *slog.Logger
}

// NewFormatter creates a Formatter that logs degraded renders.
func NewFormatter(logger *slog.Logger) *Formatter {
	return &Formatter{logger: logger}
}

// Format parses a raw message, logging when the degraded fallback was
// taken.
func (f *Formatter) Format(raw string) NodeList {
	nodes, recovered := format(raw)
	if recovered {
		f.logger.Error("message formatting degraded to raw paragraph",
			"length", len(raw),
		)
	}
	return nodes
}
