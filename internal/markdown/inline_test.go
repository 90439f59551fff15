package markdown

import (
	"strings"
	"testing"
)

func TestFormatInline_BoldAndItalic(t *testing.T) {
	frags := FormatInline("**bold** and *italic*")

	want := []Fragment{
		{Kind: FragmentBold, Text: "bold"},
		{Kind: FragmentText, Text: " and "},
		{Kind: FragmentItalic, Text: "italic"},
	}
	assertFragments(t, frags, want)
}

func TestFormatInline_LoneAsteriskStaysLiteral(t *testing.T) {
	frags := FormatInline("a lone * marker")

	if len(frags) != 1 {
		t.Fatalf("expected 1 fragment, got %d: %+v", len(frags), frags)
	}
	if frags[0].Kind != FragmentText || frags[0].Text != "a lone * marker" {
		t.Errorf("lone asterisk was not preserved literally: %+v", frags[0])
	}
}

func TestFormatInline_CodeSpanProtectsURL(t *testing.T) {
	frags := FormatInline("run `curl https://api.example.com` locally")

	if len(frags) != 3 {
		t.Fatalf("expected 3 fragments, got %d: %+v", len(frags), frags)
	}
	if frags[1].Kind != FragmentCode {
		t.Fatalf("expected code fragment, got %s", frags[1].Kind)
	}
	if frags[1].Text != "curl https://api.example.com" {
		t.Errorf("code span content wrong: %q", frags[1].Text)
	}
	// The URL inside the code span must not have been re-matched.
	for _, f := range frags {
		if f.Kind == FragmentLink || f.Kind == FragmentRepoLink {
			t.Errorf("URL inside code span was wrapped as a link: %+v", f)
		}
	}
}

func TestFormatInline_CodeSpanBeatsLinkSyntax(t *testing.T) {
	// Code spans have the highest priority, so a code span inside
	// link text consumes its characters before the link pass runs and
	// the surrounding link syntax stays literal.
	frags := FormatInline("[see `x`](docs)")

	var sawCode bool
	for _, f := range frags {
		if f.Kind == FragmentCode && f.Text == "x" {
			sawCode = true
		}
		if f.Kind == FragmentLink {
			t.Errorf("link pass fired across an earlier code span: %+v", f)
		}
	}
	if !sawCode {
		t.Error("expected code fragment for `x`")
	}
}

func TestFormatInline_HrefNormalization(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"https://example.com/a", "https://example.com/a"},
		{"http://example.com", "http://example.com"},
		{"www.example.com", "https://www.example.com"},
		{"/docs/setup", "/docs/setup"},
		{"example.com", "https://example.com"},
		{"ftp://host/file", "ftp://host/file"},
	}

	for _, tt := range tests {
		if got := NormalizeHref(tt.href); got != tt.want {
			t.Errorf("NormalizeHref(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestFormatInline_MarkdownLink(t *testing.T) {
	frags := FormatInline("[click](example.com)")

	if len(frags) != 1 {
		t.Fatalf("expected 1 fragment, got %d: %+v", len(frags), frags)
	}
	if frags[0].Kind != FragmentLink {
		t.Fatalf("expected link fragment, got %s", frags[0].Kind)
	}
	if frags[0].Text != "click" || frags[0].Href != "https://example.com" {
		t.Errorf("unexpected link fragment: %+v", frags[0])
	}
}

func TestFormatInline_BareURLWithTrailingPunctuation(t *testing.T) {
	frags := FormatInline("see https://go.dev/doc. Then continue")

	if frags[1].Kind != FragmentLink {
		t.Fatalf("expected link fragment, got %+v", frags[1])
	}
	if frags[1].Text != "https://go.dev/doc" {
		t.Errorf("trailing punctuation swallowed into URL: %q", frags[1].Text)
	}
	if !strings.HasPrefix(frags[2].Text, ".") {
		t.Errorf("trailing punctuation dropped from output: %q", frags[2].Text)
	}
}

func TestFormatInline_GitHubRepoLink(t *testing.T) {
	tests := []struct {
		name  string
		input string
		text  string
		href  string
	}{
		{"with scheme", "at https://github.com/golang/go today", "https://github.com/golang/go", "https://github.com/golang/go"},
		{"bare", "at github.com/golang/go today", "github.com/golang/go", "https://github.com/golang/go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frags := FormatInline(tt.input)

			var repo *Fragment
			for i := range frags {
				if frags[i].Kind == FragmentRepoLink {
					if repo != nil {
						t.Fatalf("repo URL wrapped more than once: %+v", frags)
					}
					repo = &frags[i]
				}
			}
			if repo == nil {
				t.Fatalf("no repo link fragment in %+v", frags)
			}
			if repo.Text != tt.text || repo.Href != tt.href {
				t.Errorf("got %+v, want text %q href %q", *repo, tt.text, tt.href)
			}
		})
	}
}

func TestFormatInline_Email(t *testing.T) {
	frags := FormatInline("mail ops@example.com for access")

	if frags[1].Kind != FragmentLink || frags[1].Href != "mailto:ops@example.com" {
		t.Errorf("expected mailto link, got %+v", frags[1])
	}
}

func TestFormatInline_StrikeAndHighlight(t *testing.T) {
	frags := FormatInline("~~old~~ and ==new==")

	want := []Fragment{
		{Kind: FragmentStrike, Text: "old"},
		{Kind: FragmentText, Text: " and "},
		{Kind: FragmentHighlight, Text: "new"},
	}
	assertFragments(t, frags, want)
}

func TestFormatInline_NoGapsNoOverlaps(t *testing.T) {
	// Concatenating fragment texts must reconstruct the input minus
	// only the recognized markers.
	input := "Use `x` with **care** at https://go.dev now"
	frags := FormatInline(input)

	var b strings.Builder
	for _, f := range frags {
		b.WriteString(f.Text)
	}
	want := "Use x with care at https://go.dev now"
	if b.String() != want {
		t.Errorf("reconstructed %q, want %q", b.String(), want)
	}
}

func TestFormatInline_EmptyInput(t *testing.T) {
	if frags := FormatInline(""); len(frags) != 0 {
		t.Errorf("expected no fragments for empty input, got %+v", frags)
	}
}

func assertFragments(t *testing.T, got, want []Fragment) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d fragments, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].Kind != want[i].Kind || got[i].Text != want[i].Text || got[i].Href != want[i].Href {
			t.Errorf("fragment %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}
