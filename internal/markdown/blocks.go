package markdown

import (
	"regexp"
	"strings"
)

var (
	blankLineRe  = regexp.MustCompile(`\n[ \t]*\n`)
	calloutRe    = regexp.MustCompile(`(?s)^(\S+)\s+\*\*([^*\n]+)\*\*[ \t]*(.*)$`)
	bulletItemRe = regexp.MustCompile(`^([ \t]*)[•*\-]\s+(.*)$`)
	numItemRe    = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)
	headingRe    = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	ruleRe       = regexp.MustCompile(`^-{3,}$`)
	tableSepRe   = regexp.MustCompile(`-{3,}`)
	fenceLangRe  = regexp.MustCompile(`^[A-Za-z0-9_+\-#.]+$`)
	quoteAttrRe  = regexp.MustCompile(`(?s)^(.*\S)\s*(?:—|–|--)\s*([^\n]+?)\s*$`)
)

// splitBlocks splits a raw message into top-level block candidates on
// one-or-more blank lines, preserving order. Indentation inside a
// block is kept so list nesting survives.
func splitBlocks(raw string) []string {
	parts := blankLineRe.Split(raw, -1)
	blocks := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "\n")
		if strings.TrimSpace(p) == "" {
			continue
		}
		blocks = append(blocks, p)
	}
	return blocks
}

// parseBlock classifies one block candidate by fixed priority order
// and returns its node(s). Classification is total: anything that
// fails a higher-priority pattern degrades to the next one, ending at
// the paragraph fallback.
func parseBlock(block string) []Node {
	if strings.Contains(block, "```") {
		if nodes, ok := parseFenceBlock(block); ok {
			return nodes
		}
		// Unterminated fence: degrade to paragraph.
	}

	if node, ok := parseQuote(block); ok {
		return []Node{node}
	}
	if node, ok := parseCallout(block); ok {
		return []Node{node}
	}
	if node, ok := parseBulletList(block); ok {
		return []Node{node}
	}
	if node, ok := parseNumberedList(block); ok {
		return []Node{node}
	}
	if node, ok := parseTable(block); ok {
		return []Node{node}
	}
	if nodes, ok := parseHeading(block); ok {
		return nodes
	}
	if ruleRe.MatchString(strings.TrimSpace(block)) {
		return []Node{Rule{}}
	}

	return []Node{Paragraph{Fragments: FormatInline(block)}}
}

// parseFenceBlock splits a block on triple-backtick markers into
// alternating prose and code segments. A block with an odd number of
// markers has an unterminated fence and reports !ok so the caller can
// degrade it to a paragraph.
func parseFenceBlock(block string) ([]Node, bool) {
	parts := strings.Split(block, "```")
	if len(parts)%2 == 0 {
		return nil, false
	}

	var segments []CodeSegment
	for i, part := range parts {
		if i%2 == 0 {
			text := strings.TrimSpace(part)
			if text == "" {
				continue
			}
			segments = append(segments, CodeSegment{
				Code:      false,
				Fragments: FormatInline(text),
			})
			continue
		}

		lang, content := splitFenceHeader(part)
		segments = append(segments, CodeSegment{
			Code:     true,
			Language: lang,
			Content:  content,
		})
	}

	if len(segments) == 0 {
		return []Node{}, true
	}
	return []Node{CodeBlock{Segments: segments}}, true
}

// splitFenceHeader separates the optional language identifier (first
// word after the opening fence) from the code content.
func splitFenceHeader(region string) (lang, content string) {
	first, rest, found := strings.Cut(region, "\n")
	if !found {
		// Single-line fence region with no language tag.
		return "", strings.TrimSpace(region)
	}

	token := strings.TrimSpace(first)
	if fields := strings.Fields(token); len(fields) > 0 {
		token = fields[0]
	}
	if token != "" && fenceLangRe.MatchString(token) {
		return token, strings.Trim(rest, "\n")
	}

	// First line is code, not a language tag.
	return "", strings.Trim(region, "\n")
}

// parseQuote matches blocks where every non-empty line starts with
// '>'. An em-dash style trailer splits off as attribution.
func parseQuote(block string) (Node, bool) {
	lines := strings.Split(block, "\n")
	matched := false
	stripped := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			stripped = append(stripped, "")
			continue
		}
		if !strings.HasPrefix(trimmed, ">") {
			return nil, false
		}
		matched = true
		stripped = append(stripped, strings.TrimPrefix(strings.TrimPrefix(trimmed, ">"), " "))
	}
	if !matched {
		return nil, false
	}

	body := strings.TrimSpace(strings.Join(stripped, "\n"))
	if m := quoteAttrRe.FindStringSubmatch(body); m != nil {
		return Quote{
			Body:        FormatInline(m[1]),
			Attribution: FormatInline(m[2]),
		}, true
	}
	return Quote{Body: FormatInline(body)}, true
}

// parseCallout matches `<symbol> **<title>** <rest>` where the symbol
// is any non-whitespace run (typically an emoji). A symbol containing
// an asterisk is plain emphasis, not a callout.
func parseCallout(block string) (Node, bool) {
	m := calloutRe.FindStringSubmatch(block)
	if m == nil {
		return nil, false
	}
	symbol, title, rest := m[1], m[2], strings.TrimSpace(m[3])
	if strings.Contains(symbol, "*") || strings.HasPrefix(symbol, ">") || strings.HasPrefix(symbol, "#") {
		return nil, false
	}

	callout := Callout{
		Symbol:   symbol,
		Category: DetectCalloutCategory(symbol, title),
		Title:    FormatInline(title),
	}
	if rest != "" {
		callout.Body = FormatInline(rest)
	}
	return callout, true
}

// parseBulletList matches blocks with at least one `- item` style
// line. Non-matching lines inside the block are dropped. Indentation
// level is floor(leading-whitespace / 2), visual nesting only.
func parseBulletList(block string) (Node, bool) {
	var items []ListItem
	for _, line := range strings.Split(block, "\n") {
		m := bulletItemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		items = append(items, ListItem{
			Depth:     len(m[1]) / 2,
			Fragments: FormatInline(m[2]),
		})
	}
	if len(items) == 0 {
		return nil, false
	}
	return BulletList{Items: items}, true
}

// parseNumberedList matches blocks with at least one `N. item` line.
// The rendered index is the item's position in the list; the literal
// source numbers are not trusted.
func parseNumberedList(block string) (Node, bool) {
	var items []ListItem
	for _, line := range strings.Split(block, "\n") {
		m := numItemRe.FindStringSubmatch(strings.TrimLeft(line, " \t"))
		if m == nil {
			continue
		}
		items = append(items, ListItem{Fragments: FormatInline(m[2])})
	}
	if len(items) == 0 {
		return nil, false
	}
	return NumberedList{Items: items}, true
}

// parseTable matches blocks with pipes, a hyphen separator row, and
// at least three lines. The second line is discarded as the
// header/body separator.
func parseTable(block string) (Node, bool) {
	if !strings.Contains(block, "|") || !tableSepRe.MatchString(block) {
		return nil, false
	}
	lines := strings.Split(block, "\n")
	if len(lines) < 3 {
		return nil, false
	}

	headers := splitTableRow(lines[0])
	if len(headers) == 0 {
		return nil, false
	}

	var rows [][]Cell
	for _, line := range lines[2:] {
		row := splitTableRow(line)
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}

	return Table{Headers: headers, Rows: rows}, true
}

// splitTableRow splits on pipes, trims cells, and drops empties (the
// leading/trailing pipes of a well-formed row).
func splitTableRow(line string) []Cell {
	var cells []Cell
	for _, raw := range strings.Split(line, "|") {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		cells = append(cells, Cell(FormatInline(text)))
	}
	return cells
}

// parseHeading matches a block whose first line is a hash heading.
// Any remaining lines become a trailing paragraph node.
func parseHeading(block string) ([]Node, bool) {
	first, rest, _ := strings.Cut(block, "\n")
	m := headingRe.FindStringSubmatch(strings.TrimSpace(first))
	if m == nil {
		return nil, false
	}

	nodes := []Node{Heading{
		Level:     len(m[1]),
		Fragments: FormatInline(m[2]),
	}}
	if trailing := strings.TrimSpace(rest); trailing != "" {
		nodes = append(nodes, Paragraph{Fragments: FormatInline(trailing)})
	}
	return nodes, true
}
