// Package markdown parses the constrained markdown-like format
// produced by the assistant into typed render nodes. Parsing is pure
// and allocation-only: no I/O, no shared state, safe for concurrent
// use across messages.
package markdown

import (
	"encoding/json"
	"strings"
)

// NodeKind discriminates top-level block nodes.
type NodeKind string

const (
	KindParagraph    NodeKind = "paragraph"
	KindCodeBlock    NodeKind = "code_block"
	KindQuote        NodeKind = "quote"
	KindCallout      NodeKind = "callout"
	KindBulletList   NodeKind = "bullet_list"
	KindNumberedList NodeKind = "numbered_list"
	KindTable        NodeKind = "table"
	KindHeading      NodeKind = "heading"
	KindRule         NodeKind = "rule"
)

// Node is one top-level block of a formatted message.
type Node interface {
	Kind() NodeKind
}

// NodeList is an ordered sequence of blocks. It marshals each node as
// a flat JSON object carrying a "kind" discriminator so the frontend
// can dispatch on it.
type NodeList []Node

func (l NodeList) MarshalJSON() ([]byte, error) {
	out := make([]map[string]any, 0, len(l))
	for _, n := range l {
		raw, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		m := map[string]any{}
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		m["kind"] = n.Kind()
		out = append(out, m)
	}
	return json.Marshal(out)
}

// Paragraph is the fallback block: plain prose run through the inline
// formatter.
type Paragraph struct {
	Fragments []Fragment `json:"fragments"`
}

func (Paragraph) Kind() NodeKind { return KindParagraph }

// Heading is a hash-prefixed heading, level 1-6.
type Heading struct {
	Level     int        `json:"level"`
	Fragments []Fragment `json:"fragments"`
}

func (Heading) Kind() NodeKind { return KindHeading }

// Rule is a horizontal rule.
type Rule struct{}

func (Rule) Kind() NodeKind { return KindRule }

// CodeBlock is a block containing one or more fenced code regions,
// possibly interleaved with plain text between fences. Segments
// preserve the original relative order.
type CodeBlock struct {
	Segments []CodeSegment `json:"segments"`
}

func (CodeBlock) Kind() NodeKind { return KindCodeBlock }

// CodeSegment is one contiguous region inside a code-fence block:
// either verbatim code (never inline-formatted) or prose between
// fences.
type CodeSegment struct {
	Code      bool       `json:"code"`
	Language  string     `json:"language,omitempty"`
	Content   string     `json:"content,omitempty"`
	Fragments []Fragment `json:"fragments,omitempty"`
}

// LineCount returns the number of lines in a code segment's content.
func (s CodeSegment) LineCount() int {
	if s.Content == "" {
		return 0
	}
	return strings.Count(s.Content, "\n") + 1
}

// Quote is a block-quote, optionally with a trailing attribution
// split off after an em-dash style separator.
type Quote struct {
	Body        []Fragment `json:"body"`
	Attribution []Fragment `json:"attribution,omitempty"`
}

func (Quote) Kind() NodeKind { return KindQuote }

// Callout is a highlighted note keyed by a leading symbol and bold
// title, classified into a semantic category.
type Callout struct {
	Symbol   string          `json:"symbol"`
	Category CalloutCategory `json:"category"`
	Title    []Fragment      `json:"title"`
	Body     []Fragment      `json:"body,omitempty"`
}

func (Callout) Kind() NodeKind { return KindCallout }

// ListItem is one item of a bullet or numbered list. Depth is visual
// nesting only.
type ListItem struct {
	Depth     int        `json:"depth"`
	Fragments []Fragment `json:"fragments"`
}

// BulletList is an unordered list.
type BulletList struct {
	Items []ListItem `json:"items"`
}

func (BulletList) Kind() NodeKind { return KindBulletList }

// NumberedList is an ordered list. The rendered index is the item's
// position, not the literal number in the source.
type NumberedList struct {
	Items []ListItem `json:"items"`
}

func (NumberedList) Kind() NodeKind { return KindNumberedList }

// Cell is one table cell's inline-formatted content.
type Cell []Fragment

// Table is a pipe-delimited table. Column misalignment across rows is
// preserved as-is.
type Table struct {
	Headers []Cell   `json:"headers"`
	Rows    [][]Cell `json:"rows"`
}

func (Table) Kind() NodeKind { return KindTable }
