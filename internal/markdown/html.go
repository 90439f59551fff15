package markdown

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Renderer turns a node list into sanitized HTML. Render nodes carry
// plain structured data only; every byte of HTML leaves through the
// allow-list policy, so a hostile message cannot inject markup.
//
// Thread-safe for concurrent use.
type Renderer struct {
	policy *bluemonday.Policy

	// LineNumbers asks the frontend to number code block lines.
	LineNumbers bool
	// CollapseVisible is how many code lines stay visible when a
	// block collapses; CollapseTrigger is the total line count above
	// which collapsing kicks in.
	CollapseVisible int
	CollapseTrigger int
}

// NewRenderer creates a renderer with the default collapse thresholds
// (25 visible, triggered above 30 total lines).
func NewRenderer() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("mark")
	policy.AllowAttrs("class").OnElements("a", "div", "span", "pre", "code", "blockquote", "table", "mark", "ol", "ul")
	policy.AllowAttrs("target", "rel").OnElements("a")
	policy.AllowAttrs("data-language", "data-lines", "data-collapsed", "data-line-numbers").OnElements("pre")
	policy.AllowAttrs("style").OnElements("div")
	policy.AllowStyles("border-color").OnElements("div")

	return &Renderer{
		policy:          policy,
		CollapseVisible: 25,
		CollapseTrigger: 30,
	}
}

// Render produces sanitized HTML for the node list.
func (r *Renderer) Render(nodes NodeList) string {
	var b strings.Builder
	for _, n := range nodes {
		r.renderNode(&b, n)
	}
	return r.policy.Sanitize(b.String())
}

func (r *Renderer) renderNode(b *strings.Builder, n Node) {
	switch node := n.(type) {
	case Paragraph:
		r.renderParagraph(b, node)
	case Heading:
		r.renderHeading(b, node)
	case Rule:
		b.WriteString("<hr>")
	case CodeBlock:
		r.renderCodeBlock(b, node)
	case Quote:
		r.renderQuote(b, node)
	case Callout:
		r.renderCallout(b, node)
	case BulletList:
		r.renderList(b, "ul", node.Items)
	case NumberedList:
		r.renderList(b, "ol", node.Items)
	case Table:
		r.renderTable(b, node)
	}
}

func (r *Renderer) renderParagraph(b *strings.Builder, p Paragraph) {
	b.WriteString("<p>")
	r.renderFragments(b, p.Fragments)
	b.WriteString("</p>")
}

func (r *Renderer) renderHeading(b *strings.Builder, h Heading) {
	level := h.Level
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	fmt.Fprintf(b, "<h%d>", level)
	r.renderFragments(b, h.Fragments)
	fmt.Fprintf(b, "</h%d>", level)
}

func (r *Renderer) renderCodeBlock(b *strings.Builder, block CodeBlock) {
	b.WriteString(`<div class="code-block">`)
	for _, seg := range block.Segments {
		if !seg.Code {
			b.WriteString("<p>")
			r.renderFragments(b, seg.Fragments)
			b.WriteString("</p>")
			continue
		}

		lines := seg.LineCount()
		b.WriteString(`<pre data-lines="` + strconv.Itoa(lines) + `"`)
		if seg.Language != "" {
			b.WriteString(` data-language="` + html.EscapeString(seg.Language) + `"`)
		}
		if r.LineNumbers {
			b.WriteString(` data-line-numbers="true"`)
		}
		if lines > r.CollapseTrigger {
			// The frontend shows the first CollapseVisible lines and
			// a "show N more" control for the rest.
			b.WriteString(` data-collapsed="` + strconv.Itoa(lines-r.CollapseVisible) + `"`)
		}
		b.WriteString("><code")
		if seg.Language != "" {
			b.WriteString(` class="language-` + html.EscapeString(seg.Language) + `"`)
		}
		b.WriteString(">")
		b.WriteString(html.EscapeString(seg.Content))
		b.WriteString("</code></pre>")
	}
	b.WriteString("</div>")
}

func (r *Renderer) renderQuote(b *strings.Builder, q Quote) {
	b.WriteString("<blockquote>")
	r.renderFragments(b, q.Body)
	if len(q.Attribution) > 0 {
		b.WriteString(`<footer class="attribution">`)
		r.renderFragments(b, q.Attribution)
		b.WriteString("</footer>")
	}
	b.WriteString("</blockquote>")
}

func (r *Renderer) renderCallout(b *strings.Builder, c Callout) {
	style := c.Category.Style()
	fmt.Fprintf(b, `<div class="callout callout-%s" style="border-color: %s">`, c.Category, style.Color)
	b.WriteString(`<span class="callout-icon">` + html.EscapeString(style.Icon) + `</span>`)
	b.WriteString("<strong>")
	r.renderFragments(b, c.Title)
	b.WriteString("</strong>")
	if len(c.Body) > 0 {
		b.WriteString(`<div class="callout-body">`)
		r.renderFragments(b, c.Body)
		b.WriteString("</div>")
	}
	b.WriteString("</div>")
}

func (r *Renderer) renderList(b *strings.Builder, tag string, items []ListItem) {
	b.WriteString("<" + tag + ">")
	for _, item := range items {
		b.WriteString("<li>")
		r.renderFragments(b, item.Fragments)
		b.WriteString("</li>")
	}
	b.WriteString("</" + tag + ">")
}

func (r *Renderer) renderTable(b *strings.Builder, t Table) {
	b.WriteString("<table><thead><tr>")
	for _, cell := range t.Headers {
		b.WriteString("<th>")
		r.renderFragments(b, cell)
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range t.Rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>")
			r.renderFragments(b, cell)
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
}

func (r *Renderer) renderFragments(b *strings.Builder, frags []Fragment) {
	for _, f := range frags {
		switch f.Kind {
		case FragmentCode:
			b.WriteString("<code>" + html.EscapeString(f.Text) + "</code>")
		case FragmentLink, FragmentRepoLink:
			r.renderLink(b, f)
		case FragmentBold:
			b.WriteString("<strong>" + html.EscapeString(f.Text) + "</strong>")
		case FragmentItalic:
			b.WriteString("<em>" + html.EscapeString(f.Text) + "</em>")
		case FragmentStrike:
			b.WriteString("<del>" + html.EscapeString(f.Text) + "</del>")
		case FragmentHighlight:
			b.WriteString("<mark>" + html.EscapeString(f.Text) + "</mark>")
		default:
			b.WriteString(escapeText(f.Text))
		}
	}
}

// renderLink emits links; external targets open in a new browsing
// context with no-referrer/no-opener semantics.
func (r *Renderer) renderLink(b *strings.Builder, f Fragment) {
	b.WriteString(`<a href="` + html.EscapeString(f.Href) + `"`)
	if f.Kind == FragmentRepoLink {
		b.WriteString(` class="repo-link"`)
	}
	if isExternalHref(f.Href) {
		b.WriteString(` target="_blank" rel="noopener noreferrer"`)
	}
	b.WriteString(">" + html.EscapeString(f.Text) + "</a>")
}

func isExternalHref(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}

// escapeText escapes plain text and preserves single newlines as line
// breaks within a block.
func escapeText(text string) string {
	escaped := html.EscapeString(text)
	return strings.ReplaceAll(escaped, "\n", "<br>")
}
