package markdown

import (
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestFormat_EmptyAndWhitespaceInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\n\n", " \t \n \t "} {
		if nodes := Format(raw); len(nodes) != 0 {
			t.Errorf("Format(%q) = %+v, want empty", raw, nodes)
		}
	}
}

func TestFormat_NeverPanics(t *testing.T) {
	inputs := []string{
		"```",
		"``````",
		"```js",
		strings.Repeat("*", 500),
		strings.Repeat("```\n", 100),
		"| | | |\n|---|\n|",
		"> \n> \n> —",
		"\x00\x01\x02 binary junk \xff",
		"[]()",
		"[`](`)",
		strings.Repeat("- \n", 1000),
		"######",
		"🚨 ****",
	}

	for _, raw := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Format(%q) panicked: %v", raw, r)
				}
			}()
			Format(raw)
		}()
	}
}

func TestFormat_PlainProseRoundTrips(t *testing.T) {
	raw := "Just a plain sentence with nothing special in it."
	nodes := Format(raw)

	para, ok := nodes[0].(Paragraph)
	if !ok {
		t.Fatalf("expected Paragraph, got %T", nodes[0])
	}
	var b strings.Builder
	for _, f := range para.Fragments {
		b.WriteString(f.Text)
	}
	if b.String() != raw {
		t.Errorf("reconstructed %q, want %q", b.String(), raw)
	}
}

func TestFormat_MixedMessage(t *testing.T) {
	raw := "## Summary\n\n" +
		"The `main` function calls **three** helpers.\n\n" +
		"```go\nfunc main() {}\n```\n\n" +
		"💡 **Tip** read the docs at https://go.dev"
	nodes := Format(raw)

	if len(nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(nodes))
	}
	if h := nodes[0].(Heading); h.Level != 2 {
		t.Errorf("heading level %d, want 2", h.Level)
	}
	para := nodes[1].(Paragraph)
	kinds := map[FragmentKind]bool{}
	for _, f := range para.Fragments {
		kinds[f.Kind] = true
	}
	if !kinds[FragmentCode] || !kinds[FragmentBold] {
		t.Errorf("paragraph missing inline kinds: %+v", para.Fragments)
	}
	if _, ok := nodes[2].(CodeBlock); !ok {
		t.Errorf("expected CodeBlock, got %T", nodes[2])
	}
	callout, ok := nodes[3].(Callout)
	if !ok {
		t.Fatalf("expected Callout, got %T", nodes[3])
	}
	if callout.Category != CalloutTip {
		t.Errorf("category %s, want tip", callout.Category)
	}
}

func TestNodeList_MarshalJSON(t *testing.T) {
	nodes := Format("# Hi\n\nplain text")

	raw, err := json.Marshal(nodes)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(out))
	}
	if out[0]["kind"] != "heading" {
		t.Errorf("first kind = %v, want heading", out[0]["kind"])
	}
	if out[0]["level"] != float64(1) {
		t.Errorf("heading level = %v, want 1", out[0]["level"])
	}
	if out[1]["kind"] != "paragraph" {
		t.Errorf("second kind = %v, want paragraph", out[1]["kind"])
	}
}

func TestFormatter_MatchesPackageFunction(t *testing.T) {
	f := NewFormatter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	raw := "- one\n- two"

	got, err := json.Marshal(f.Format(raw))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want, err := json.Marshal(Format(raw))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("Formatter.Format diverged from Format:\n%s\n%s", got, want)
	}
}
