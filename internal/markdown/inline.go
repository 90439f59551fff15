package markdown

import (
	"regexp"
	"strings"
)

// FragmentKind discriminates inline fragments within a block.
type FragmentKind string

const (
	FragmentText      FragmentKind = "text"
	FragmentCode      FragmentKind = "code"
	FragmentLink      FragmentKind = "link"
	FragmentRepoLink  FragmentKind = "repo_link"
	FragmentBold      FragmentKind = "bold"
	FragmentItalic    FragmentKind = "italic"
	FragmentStrike    FragmentKind = "strike"
	FragmentHighlight FragmentKind = "highlight"
)

// Fragment is an inline, typed piece of formatted text. The
// concatenation of all fragment texts covers the block's input with
// no gaps and no overlaps.
type Fragment struct {
	Kind FragmentKind `json:"kind"`
	Text string       `json:"text"`
	Href string       `json:"href,omitempty"`
}

// Inline substitution patterns, in priority order. Each pass only
// rescans text fragments left by earlier passes, so a span matched
// once is never re-matched.
var (
	codeSpanRe  = regexp.MustCompile("`([^`\n]+)`")
	mdLinkRe    = regexp.MustCompile(`\[([^\]\n]+)\]\(([^)\s]+)\)`)
	bareURLRe   = regexp.MustCompile(`(?:https?://|www\.)[^\s<>()]*[^\s<>().,;:!?]`)
	emailRe     = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	boldRe      = regexp.MustCompile(`\*\*([^*\n]+?)\*\*`)
	italicRe    = regexp.MustCompile(`\*([^*\n]+?)\*`)
	strikeRe    = regexp.MustCompile(`~~([^~\n]+?)~~`)
	highlightRe = regexp.MustCompile(`==([^=\n]+?)==`)

	// A GitHub repository URL gets distinct styling over the generic
	// link kinds. Classified at emit time so a URL consumed by the
	// link or bare-URL pass is never wrapped twice; a scheme-less
	// github.com/<owner>/<repo> gets its own pass below.
	githubRepoRe = regexp.MustCompile(`^https?://(www\.)?github\.com/[\w.\-]+/[\w.\-]+`)
	githubBareRe = regexp.MustCompile(`github\.com/[\w.\-]+/[\w.\-]+(?:/[^\s<>()]*)?`)
)

// FormatInline converts a plain-text string (no block markers) into
// an ordered fragment sequence. Unmatched markers, like a lone '*',
// stay in the output as literal text.
func FormatInline(text string) []Fragment {
	if text == "" {
		return nil
	}

	frags := []Fragment{{Kind: FragmentText, Text: text}}

	frags = applyPass(frags, codeSpanRe, func(m []string) Fragment {
		return Fragment{Kind: FragmentCode, Text: m[1]}
	})
	frags = applyPass(frags, mdLinkRe, func(m []string) Fragment {
		return linkFragment(m[1], NormalizeHref(m[2]))
	})
	frags = applyPass(frags, bareURLRe, func(m []string) Fragment {
		return linkFragment(m[0], NormalizeHref(m[0]))
	})
	frags = applyPass(frags, githubBareRe, func(m []string) Fragment {
		return Fragment{Kind: FragmentRepoLink, Text: m[0], Href: "https://" + m[0]}
	})
	frags = applyPass(frags, emailRe, func(m []string) Fragment {
		return Fragment{Kind: FragmentLink, Text: m[0], Href: "mailto:" + m[0]}
	})
	frags = applyPass(frags, boldRe, func(m []string) Fragment {
		return Fragment{Kind: FragmentBold, Text: m[1]}
	})
	frags = applyPass(frags, italicRe, func(m []string) Fragment {
		return Fragment{Kind: FragmentItalic, Text: m[1]}
	})
	frags = applyPass(frags, strikeRe, func(m []string) Fragment {
		return Fragment{Kind: FragmentStrike, Text: m[1]}
	})
	frags = applyPass(frags, highlightRe, func(m []string) Fragment {
		return Fragment{Kind: FragmentHighlight, Text: m[1]}
	})

	return frags
}

// applyPass scans every remaining text fragment for non-overlapping
// matches left to right, emitting a typed fragment per match and
// plain text fragments for the spans between matches. Fragments
// already typed by earlier passes are carried through untouched.
func applyPass(frags []Fragment, re *regexp.Regexp, emit func([]string) Fragment) []Fragment {
	out := make([]Fragment, 0, len(frags))
	for _, f := range frags {
		if f.Kind != FragmentText {
			out = append(out, f)
			continue
		}

		text := f.Text
		matches := re.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			out = append(out, f)
			continue
		}

		last := 0
		for _, m := range matches {
			// Zero-length matches are skipped; the scanner always
			// advances so a degenerate pattern cannot loop.
			if m[1] == m[0] {
				continue
			}
			if m[0] > last {
				out = append(out, Fragment{Kind: FragmentText, Text: text[last:m[0]]})
			}
			out = append(out, emit(submatches(text, m)))
			last = m[1]
		}
		if last < len(text) {
			out = append(out, Fragment{Kind: FragmentText, Text: text[last:]})
		}
	}
	return out
}

func submatches(text string, idx []int) []string {
	groups := make([]string, 0, len(idx)/2)
	for i := 0; i < len(idx); i += 2 {
		if idx[i] < 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, text[idx[i]:idx[i+1]])
	}
	return groups
}

// linkFragment picks the repo-link kind for GitHub repository hrefs
// and the generic link kind otherwise.
func linkFragment(display, href string) Fragment {
	kind := FragmentLink
	if githubRepoRe.MatchString(href) {
		kind = FragmentRepoLink
	}
	return Fragment{Kind: kind, Text: display, Href: href}
}

// NormalizeHref normalizes link targets:
// absolute http(s) URLs and root-relative paths pass through,
// www-prefixed hosts and schemeless targets get https:// prepended.
func NormalizeHref(href string) string {
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "www."):
		return "https://" + href
	case strings.HasPrefix(href, "/"):
		return href
	case strings.Contains(href, "://"):
		return href
	default:
		return "https://" + href
	}
}
