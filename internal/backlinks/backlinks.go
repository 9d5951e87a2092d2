// Package backlinks resolves reverse references across a parsed corpus.
//
// The corpus is always an explicit input: the resolver never reaches for
// ambient state, which keeps the whole-collection dependency visible and
// testable. At portfolio scale (tens to low hundreds of posts) a brute-force
// pass per query is a deliberate simplification, not a defect.
package backlinks

import (
	"strings"
	"unicode/utf8"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
)

// contextWindow is the number of bytes of surrounding text captured on each
// side of a link occurrence for the preview snippet.
const contextWindow = 120

// Resolve scans every post's raw body (wikilink syntax is only visible
// before the rewrite pass) and returns the backlinks targeting targetSlug,
// in corpus order.
//
// Policy decisions, applied uniformly: at most one backlink per distinct
// (source, target) pair, using the first occurrence; self-references are
// excluded.
func Resolve(posts []*models.Post, targetSlug string) []models.Backlink {
	out := []models.Backlink{}
	for _, p := range posts {
		if p.Slug == targetSlug {
			continue
		}
		for _, link := range parser.ExtractWikilinks(p.RawBody) {
			if link.Slug() != targetSlug {
				continue
			}
			out = append(out, models.Backlink{
				SourceSlug:   p.Slug,
				TargetSlug:   targetSlug,
				SourceTitle:  p.Title,
				Context:      contextAround(p.RawBody, link.Offset, link.Offset+link.Length),
				TextFragment: link.Text(),
				FolderPath:   p.FolderPath,
				LineNumber:   link.Line,
				Excerpt:      p.Excerpt,
			})
			break // first occurrence only
		}
	}
	return out
}

// contextAround extracts a fixed-size window of body text surrounding the
// [start,end) occurrence, clamped to rune boundaries, with newlines
// flattened for display.
func contextAround(body string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(body) {
		hi = len(body)
	}
	for lo > 0 && !utf8.RuneStart(body[lo]) {
		lo--
	}
	for hi < len(body) && !utf8.RuneStart(body[hi]) {
		hi++
	}
	window := strings.Join(strings.Fields(body[lo:hi]), " ")
	return strings.TrimSpace(window)
}
