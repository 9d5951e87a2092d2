// Package parser turns raw vault files into Posts: frontmatter extraction,
// field fallback resolution, hashtag topics, and wikilink detection.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/slugify"
)

const (
	excerptLimit   = 160 // hard character cut, deliberately not word-safe
	wordsPerMinute = 200
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)
	hashtagRe  = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
)

// frontMatter is the typed envelope for the vault's front-block convention.
// Every field is optional; absent values are resolved by fallback chains in
// Build. "tags" is accepted as an alias for "topics" since both appear in
// synced Obsidian vaults.
type frontMatter struct {
	Title     string   `yaml:"title"`
	Date      string   `yaml:"date"`
	Topics    []string `yaml:"topics"`
	Tags      []string `yaml:"tags"`
	Published *bool    `yaml:"published"`
	Author    string   `yaml:"author"`
	Excerpt   string   `yaml:"excerpt"`
}

// Wikilink is one [[...]] occurrence in a post body, located precisely
// enough for backlink context extraction.
type Wikilink struct {
	Target string // raw target text, before slugification
	Alias  string // display alias after |, if any
	Offset int    // byte offset of the occurrence in the body
	Length int    // byte length of the full [[...]] token
	Line   int    // 1-based line number in the body
}

// Slug returns the canonical slug the link resolves to.
func (w Wikilink) Slug() string {
	return slugify.Make(w.Target)
}

// Text returns the visible link text (alias when present).
func (w Wikilink) Text() string {
	if w.Alias != "" {
		return w.Alias
	}
	return w.Target
}

// Build parses raw file bytes into a Post. The path is relative to the vault
// root; modTime feeds the date fallback. A malformed front-block returns an
// error so the caller can log and exclude the file without failing the
// corpus load.
func Build(path string, data []byte, modTime time.Time) (*models.Post, error) {
	var meta frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return nil, fmt.Errorf("parser: %s: %w", path, err)
	}
	rawBody := string(body)

	stem := slugify.Stem(path)
	title := resolve(
		func() string { return strings.TrimSpace(meta.Title) },
		func() string { return stem },
	)
	date := resolve(
		func() string { return strings.TrimSpace(meta.Date) },
		func() string { return modTime.UTC().Format("2006-01-02") },
	)
	excerpt := resolve(
		func() string { return strings.TrimSpace(meta.Excerpt) },
		func() string { return deriveExcerpt(rawBody) },
	)

	published := true
	if meta.Published != nil {
		published = *meta.Published
	}

	links := ExtractWikilinks(rawBody)
	targets := make([]string, 0, len(links))
	seen := make(map[string]struct{}, len(links))
	for _, l := range links {
		s := l.Slug()
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		targets = append(targets, s)
	}

	return &models.Post{
		Slug:        slugify.FromFilename(path),
		Path:        path,
		Title:       title,
		Date:        date,
		Topics:      mergeTopics(append(meta.Topics, meta.Tags...), rawBody),
		Published:   published,
		Author:      strings.TrimSpace(meta.Author),
		Excerpt:     excerpt,
		ReadingTime: readingTime(rawBody),
		FolderPath:  folderOf(path),
		Links:       targets,
		RawBody:     rawBody,
		UpdatedAt:   modTime,
	}, nil
}

// resolve returns the first non-empty value produced by the ordered
// resolvers. Each field's precedence is spelled out at the call site so it
// can be tested independently.
func resolve(resolvers ...func() string) string {
	for _, r := range resolvers {
		if v := r(); v != "" {
			return v
		}
	}
	return ""
}

// ExtractWikilinks returns every [[...]] occurrence in body, in order,
// including repeats. Alias syntax [[Target|Alias]] is split; empty targets
// are dropped.
func ExtractWikilinks(body string) []Wikilink {
	matches := wikilinkRe.FindAllStringSubmatchIndex(body, -1)
	var out []Wikilink
	line := 1
	scanned := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		inner := body[m[2]:m[3]]

		target, alias := inner, ""
		if i := strings.IndexByte(inner, '|'); i >= 0 {
			target, alias = inner[:i], strings.TrimSpace(inner[i+1:])
		}
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}

		line += strings.Count(body[scanned:start], "\n")
		scanned = start

		out = append(out, Wikilink{
			Target: target,
			Alias:  alias,
			Offset: start,
			Length: end - start,
			Line:   line,
		})
	}
	return out
}

// mergeTopics combines explicit frontmatter topics (display order preserved)
// with #hashtags extracted from the body, deduplicated case-insensitively.
func mergeTopics(explicit []string, body string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(topic string) {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			return
		}
		key := strings.ToLower(topic)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, topic)
	}
	for _, t := range explicit {
		add(t)
	}
	for _, m := range hashtagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// deriveExcerpt takes the first non-heading paragraph and applies the hard
// character cut.
func deriveExcerpt(body string) string {
	for _, block := range strings.Split(body, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || strings.HasPrefix(block, "#") {
			continue
		}
		text := strings.Join(strings.Fields(block), " ")
		runes := []rune(text)
		if len(runes) > excerptLimit {
			return string(runes[:excerptLimit])
		}
		return text
	}
	return ""
}

// readingTime is ceil(wordCount / wordsPerMinute) minutes.
func readingTime(body string) int {
	words := len(strings.Fields(body))
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

func folderOf(rel string) string {
	idx := strings.LastIndexByte(rel, '/')
	if idx < 0 {
		return ""
	}
	return rel[:idx]
}
