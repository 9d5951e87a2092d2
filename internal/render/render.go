// Package render rewrites wikilinks into site-relative hyperlinks and turns
// markdown bodies into HTML.
//
// The renderer does not sanitize: raw HTML in the source passes through
// unescaped. Vault content is author-controlled, never user-submitted, so
// sanitization is an explicit non-goal rather than an oversight.
package render

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/starford/ansuz/internal/parser"
)

// Renderer converts post bodies to HTML. It is stateless after construction
// and safe for concurrent use.
type Renderer struct {
	section string
	md      goldmark.Markdown
}

// New creates a Renderer whose wikilink hrefs point under /<section>/.
func New(section string) *Renderer {
	section = strings.Trim(section, "/")
	return &Renderer{
		section: section,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(gmparser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Rewrite replaces every [[Target]] and [[Target|Alias]] occurrence with a
// hyperlink whose href slug comes from the shared slugifier, so a wikilink
// to "Target Text" always lands on the post whose title or filename
// slugifies identically. Links are rewritten whether or not the target
// exists; when exists is non-nil and reports false, the anchor is tagged
// with data-missing="true" so the front end can style broken links.
func (r *Renderer) Rewrite(body string, exists func(slug string) bool) string {
	links := parser.ExtractWikilinks(body)
	if len(links) == 0 {
		return body
	}
	var b strings.Builder
	b.Grow(len(body) + len(links)*32)
	prev := 0
	for _, l := range links {
		b.WriteString(body[prev:l.Offset])
		b.WriteString(r.anchor(l, exists))
		prev = l.Offset + l.Length
	}
	b.WriteString(body[prev:])
	return b.String()
}

// Render performs the full transform: wikilink rewrite followed by GFM
// rendering (headings, emphasis, lists, links, block quotes, tables).
func (r *Renderer) Render(body string, exists func(slug string) bool) (string, error) {
	rewritten := r.Rewrite(body, exists)
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(rewritten), &buf); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) anchor(l parser.Wikilink, exists func(slug string) bool) string {
	slug := l.Slug()
	href := "/" + r.section + "/" + slug
	text := stdhtml.EscapeString(l.Text())
	if exists != nil && !exists(slug) {
		return fmt.Sprintf(`<a href="%s" data-missing="true">%s</a>`, href, text)
	}
	return fmt.Sprintf(`<a href="%s">%s</a>`, href, text)
}
