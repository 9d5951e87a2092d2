// Package slugify holds the single slug normalization used across the whole
// system. Filenames, post titles, and wikilink targets all resolve through
// Make, which is what keeps backlink matching consistent.
package slugify

import (
	"path"
	"strings"
	"unicode"

	slug "github.com/goliatone/go-slug"
)

// Make returns the canonical slug for a title, wikilink target, or filename
// stem: lowercased, punctuation removed, whitespace collapsed to hyphens.
func Make(value string) string {
	normalized, err := slug.Normalize(strings.TrimSpace(value))
	if err == nil && normalized != "" {
		return normalized
	}
	return fallback(value)
}

// FromFilename derives the slug for a vault file from its path relative to
// the vault root.
func FromFilename(rel string) string {
	stem := path.Base(rel)
	stem = strings.TrimSuffix(stem, path.Ext(stem))
	return Make(stem)
}

// Stem returns the filename without directory or extension, used as the
// title fallback for files with no frontmatter.
func Stem(rel string) string {
	stem := path.Base(rel)
	return strings.TrimSuffix(stem, path.Ext(stem))
}

// IsValid reports whether value already is a canonical slug.
func IsValid(value string) bool {
	return slug.IsValid(value)
}

// fallback covers inputs the normalizer rejects (e.g. punctuation-only
// strings): lowercase, drop punctuation, hyphenate whitespace runs.
func fallback(value string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingHyphen = true
		}
	}
	return b.String()
}
