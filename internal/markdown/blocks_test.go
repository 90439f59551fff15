package markdown

import (
	"testing"
)

func TestFormat_CodeFence(t *testing.T) {
	nodes := Format("```js\nconst x = 1;\n```")

	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	block, ok := nodes[0].(CodeBlock)
	if !ok {
		t.Fatalf("expected CodeBlock, got %T", nodes[0])
	}
	if len(block.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(block.Segments))
	}
	seg := block.Segments[0]
	if !seg.Code || seg.Language != "js" || seg.Content != "const x = 1;" {
		t.Errorf("unexpected segment: %+v", seg)
	}
}

func TestFormat_CodeFenceWithoutLanguage(t *testing.T) {
	nodes := Format("```\nplain\n```")

	block := nodes[0].(CodeBlock)
	if block.Segments[0].Language != "" {
		t.Errorf("expected empty language, got %q", block.Segments[0].Language)
	}
	if block.Segments[0].Content != "plain" {
		t.Errorf("expected content %q, got %q", "plain", block.Segments[0].Content)
	}
}

func TestFormat_InterleavedFences(t *testing.T) {
	raw := "intro\n```go\nx := 1\n```\nbetween\n```py\ny = 2\n```"
	nodes := Format(raw)

	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	block := nodes[0].(CodeBlock)
	if len(block.Segments) != 4 {
		t.Fatalf("expected 4 segments, got %d: %+v", len(block.Segments), block.Segments)
	}

	wantCode := []bool{false, true, false, true}
	for i, seg := range block.Segments {
		if seg.Code != wantCode[i] {
			t.Errorf("segment %d: code=%v, want %v", i, seg.Code, wantCode[i])
		}
	}
	if block.Segments[1].Language != "go" || block.Segments[3].Language != "py" {
		t.Errorf("languages wrong: %+v", block.Segments)
	}
}

func TestFormat_UnterminatedFenceDegradesToParagraph(t *testing.T) {
	nodes := Format("```js\nnever closed")

	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	para, ok := nodes[0].(Paragraph)
	if !ok {
		t.Fatalf("expected Paragraph fallback, got %T", nodes[0])
	}
	if len(para.Fragments) == 0 {
		t.Fatal("paragraph fallback dropped the content")
	}
}

func TestFormat_Quote(t *testing.T) {
	nodes := Format("> line one\n> line two")

	quote, ok := nodes[0].(Quote)
	if !ok {
		t.Fatalf("expected Quote, got %T", nodes[0])
	}
	if len(quote.Attribution) != 0 {
		t.Errorf("unexpected attribution: %+v", quote.Attribution)
	}
	if quote.Body[0].Text != "line one\nline two" {
		t.Errorf("unexpected body: %+v", quote.Body)
	}
}

func TestFormat_QuoteWithAttribution(t *testing.T) {
	nodes := Format("> Premature optimization is the root of all evil — Donald Knuth")

	quote := nodes[0].(Quote)
	if quote.Body[0].Text != "Premature optimization is the root of all evil" {
		t.Errorf("unexpected body: %+v", quote.Body)
	}
	if len(quote.Attribution) == 0 || quote.Attribution[0].Text != "Donald Knuth" {
		t.Errorf("unexpected attribution: %+v", quote.Attribution)
	}
}

func TestFormat_CalloutCategories(t *testing.T) {
	tests := []struct {
		raw      string
		category CalloutCategory
	}{
		{"⚠️ **Warning** check your config", CalloutWarning},
		{"🚨 **Error** the build failed", CalloutError},
		{"✅ **Success** all tests passed", CalloutSuccess},
		{"💡 **Tip** cache the result", CalloutTip},
		{"⚡ **Performance** avoid the copy", CalloutPerformance},
		{"🔷 **Details** nothing special", CalloutInfo},
	}

	for _, tt := range tests {
		nodes := Format(tt.raw)
		callout, ok := nodes[0].(Callout)
		if !ok {
			t.Fatalf("%q: expected Callout, got %T", tt.raw, nodes[0])
		}
		if callout.Category != tt.category {
			t.Errorf("%q: category %s, want %s", tt.raw, callout.Category, tt.category)
		}
		if len(callout.Body) == 0 {
			t.Errorf("%q: callout body missing", tt.raw)
		}
	}
}

func TestFormat_BoldStartIsNotCallout(t *testing.T) {
	nodes := Format("**Analysis Results** look fine")

	if _, ok := nodes[0].(Callout); ok {
		t.Fatal("leading bold text misclassified as callout")
	}
	if _, ok := nodes[0].(Paragraph); !ok {
		t.Fatalf("expected Paragraph, got %T", nodes[0])
	}
}

func TestFormat_BulletList(t *testing.T) {
	nodes := Format("- a\n- b")

	list, ok := nodes[0].(BulletList)
	if !ok {
		t.Fatalf("expected BulletList, got %T", nodes[0])
	}
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(list.Items))
	}
	if list.Items[0].Fragments[0].Text != "a" || list.Items[1].Fragments[0].Text != "b" {
		t.Errorf("unexpected items: %+v", list.Items)
	}
}

func TestFormat_BulletListNesting(t *testing.T) {
	nodes := Format("- top\n  - nested\n    - deeper")

	list := nodes[0].(BulletList)
	depths := []int{0, 1, 2}
	for i, item := range list.Items {
		if item.Depth != depths[i] {
			t.Errorf("item %d: depth %d, want %d", i, item.Depth, depths[i])
		}
	}
}

func TestFormat_BulletListDropsNonMatchingLines(t *testing.T) {
	nodes := Format("- a\nstray text\n- b")

	list := nodes[0].(BulletList)
	if len(list.Items) != 2 {
		t.Errorf("expected stray line to be dropped, got %d items", len(list.Items))
	}
}

func TestFormat_NumberedListUsesPosition(t *testing.T) {
	// Source numbering is not required to be sequential; the index is
	// positional.
	nodes := Format("3. first\n9. second")

	list, ok := nodes[0].(NumberedList)
	if !ok {
		t.Fatalf("expected NumberedList, got %T", nodes[0])
	}
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(list.Items))
	}
	if list.Items[0].Fragments[0].Text != "first" || list.Items[1].Fragments[0].Text != "second" {
		t.Errorf("unexpected items: %+v", list.Items)
	}
}

func TestFormat_Table(t *testing.T) {
	nodes := Format("| H1 | H2 |\n|---|---|\n| a | b |")

	table, ok := nodes[0].(Table)
	if !ok {
		t.Fatalf("expected Table, got %T", nodes[0])
	}
	if len(table.Headers) != 2 {
		t.Fatalf("expected 2 headers, got %d", len(table.Headers))
	}
	if table.Headers[0][0].Text != "H1" || table.Headers[1][0].Text != "H2" {
		t.Errorf("unexpected headers: %+v", table.Headers)
	}
	if len(table.Rows) != 1 || len(table.Rows[0]) != 2 {
		t.Fatalf("unexpected rows: %+v", table.Rows)
	}
	if table.Rows[0][0][0].Text != "a" || table.Rows[0][1][0].Text != "b" {
		t.Errorf("unexpected row cells: %+v", table.Rows[0])
	}
}

func TestFormat_MisalignedTableRowsKept(t *testing.T) {
	nodes := Format("| H1 | H2 |\n|---|---|\n| a | b | c |")

	table := nodes[0].(Table)
	if len(table.Rows[0]) != 3 {
		t.Errorf("misaligned row should keep its 3 cells, got %d", len(table.Rows[0]))
	}
}

func TestFormat_TwoLineTableDegrades(t *testing.T) {
	nodes := Format("| a | b |\n|---|---|")

	if _, ok := nodes[0].(Table); ok {
		t.Fatal("two-line table should not classify as table")
	}
}

func TestFormat_Heading(t *testing.T) {
	nodes := Format("### Deep Dive")

	heading, ok := nodes[0].(Heading)
	if !ok {
		t.Fatalf("expected Heading, got %T", nodes[0])
	}
	if heading.Level != 3 {
		t.Errorf("level %d, want 3", heading.Level)
	}
	if heading.Fragments[0].Text != "Deep Dive" {
		t.Errorf("unexpected heading text: %+v", heading.Fragments)
	}
}

func TestFormat_HeadingWithTrailingLines(t *testing.T) {
	nodes := Format("# Title\nfollow-up prose")

	if len(nodes) != 2 {
		t.Fatalf("expected heading + paragraph, got %d nodes", len(nodes))
	}
	if _, ok := nodes[0].(Heading); !ok {
		t.Errorf("first node should be Heading, got %T", nodes[0])
	}
	if _, ok := nodes[1].(Paragraph); !ok {
		t.Errorf("second node should be Paragraph, got %T", nodes[1])
	}
}

func TestFormat_SevenHashesIsParagraph(t *testing.T) {
	nodes := Format("####### too deep")

	if _, ok := nodes[0].(Heading); ok {
		t.Fatal("seven hashes must not classify as heading")
	}
}

func TestFormat_HorizontalRule(t *testing.T) {
	for _, raw := range []string{"---", "-----"} {
		nodes := Format(raw)
		if _, ok := nodes[0].(Rule); !ok {
			t.Errorf("%q: expected Rule, got %T", raw, nodes[0])
		}
	}
}

func TestFormat_BlockOrderPreserved(t *testing.T) {
	raw := "# Title\n\nparagraph text\n\n- item\n\n---"
	nodes := Format(raw)

	wantKinds := []NodeKind{KindHeading, KindParagraph, KindBulletList, KindRule}
	if len(nodes) != len(wantKinds) {
		t.Fatalf("expected %d nodes, got %d", len(wantKinds), len(nodes))
	}
	for i, n := range nodes {
		if n.Kind() != wantKinds[i] {
			t.Errorf("node %d: kind %s, want %s", i, n.Kind(), wantKinds[i])
		}
	}
}
