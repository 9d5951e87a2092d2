package parser

import (
	"testing"
	"time"
)

var testModTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestBuild_FullFrontmatter(t *testing.T) {
	input := []byte("---\ntitle: \"On Light\"\ndate: \"2024-03-15\"\ntopics:\n  - painting\n  - process\npublished: true\nauthor: \"Jane\"\nexcerpt: \"A teaser.\"\n---\nBody text here.\n")
	p, err := Build("essays/on-light.md", input, testModTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Slug != "on-light" {
		t.Errorf("slug = %q, want %q", p.Slug, "on-light")
	}
	if p.Title != "On Light" {
		t.Errorf("title = %q, want %q", p.Title, "On Light")
	}
	if p.Date != "2024-03-15" {
		t.Errorf("date = %q, want %q", p.Date, "2024-03-15")
	}
	if len(p.Topics) != 2 || p.Topics[0] != "painting" || p.Topics[1] != "process" {
		t.Errorf("topics = %v, want [painting process]", p.Topics)
	}
	if !p.Published {
		t.Error("published = false, want true")
	}
	if p.Author != "Jane" {
		t.Errorf("author = %q, want %q", p.Author, "Jane")
	}
	if p.Excerpt != "A teaser." {
		t.Errorf("excerpt = %q, want %q", p.Excerpt, "A teaser.")
	}
	if p.FolderPath != "essays" {
		t.Errorf("folder = %q, want %q", p.FolderPath, "essays")
	}
}

func TestBuild_NoFrontmatterFallbacks(t *testing.T) {
	input := []byte("Just a body with no front block.\n")
	p, err := Build("My Note.md", input, testModTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title != "My Note" {
		t.Errorf("title fallback = %q, want filename stem %q", p.Title, "My Note")
	}
	if p.Date != "2024-06-01" {
		t.Errorf("date fallback = %q, want mod date %q", p.Date, "2024-06-01")
	}
	if !p.Published {
		t.Error("published should default to true")
	}
	if p.Excerpt != "Just a body with no front block." {
		t.Errorf("excerpt fallback = %q", p.Excerpt)
	}
}

func TestBuild_MalformedFrontmatter(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	if _, err := Build("bad.md", input, testModTime); err == nil {
		t.Fatal("expected error for malformed frontmatter, got nil")
	}
}

func TestBuild_PublishedFalse(t *testing.T) {
	input := []byte("---\npublished: false\n---\nDraft.\n")
	p, err := Build("draft.md", input, testModTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Published {
		t.Error("published = true, want false")
	}
}

func TestBuild_TagsAlias(t *testing.T) {
	input := []byte("---\ntags:\n  - sculpture\n---\nBody.\n")
	p, err := Build("tagged.md", input, testModTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Topics) != 1 || p.Topics[0] != "sculpture" {
		t.Errorf("topics = %v, want [sculpture]", p.Topics)
	}
}

func TestBuild_LinkTargetsDeduplicated(t *testing.T) {
	input := []byte("See [[A Post]] and [[a post|again]] and [[Other]].\n")
	p, err := Build("linker.md", input, testModTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Links) != 2 || p.Links[0] != "a-post" || p.Links[1] != "other" {
		t.Errorf("links = %v, want [a-post other]", p.Links)
	}
}

func TestExtractWikilinks_Basic(t *testing.T) {
	body := "See [[Note A]] and [[Note B|alias]].\nAlso [[Note A]] again."
	links := ExtractWikilinks(body)
	if len(links) != 3 {
		t.Fatalf("len(links) = %d, want 3", len(links))
	}
	if links[0].Target != "Note A" || links[1].Target != "Note B" {
		t.Errorf("targets = %q, %q", links[0].Target, links[1].Target)
	}
	if links[1].Alias != "alias" {
		t.Errorf("alias = %q, want %q", links[1].Alias, "alias")
	}
	if links[1].Text() != "alias" {
		t.Errorf("text = %q, want alias", links[1].Text())
	}
	if links[2].Line != 2 {
		t.Errorf("line = %d, want 2", links[2].Line)
	}
}

func TestExtractWikilinks_Offsets(t *testing.T) {
	body := "ab [[X]] cd"
	links := ExtractWikilinks(body)
	if len(links) != 1 {
		t.Fatalf("len(links) = %d, want 1", len(links))
	}
	if links[0].Offset != 3 || links[0].Length != 5 {
		t.Errorf("offset/length = %d/%d, want 3/5", links[0].Offset, links[0].Length)
	}
	if body[links[0].Offset:links[0].Offset+links[0].Length] != "[[X]]" {
		t.Errorf("span mismatch")
	}
}

func TestExtractWikilinks_EmptyTarget(t *testing.T) {
	links := ExtractWikilinks("see [[ ]] and [[|alias]]")
	if len(links) != 0 {
		t.Errorf("expected no links, got %v", links)
	}
}

func TestMergeTopics_HashtagsAndDedup(t *testing.T) {
	topics := mergeTopics([]string{"Alpha"}, "Some text #beta and #alpha again.")
	if len(topics) != 2 || topics[0] != "Alpha" || topics[1] != "beta" {
		t.Errorf("topics = %v, want [Alpha beta]", topics)
	}
}

func TestMergeTopics_HashtagOnly(t *testing.T) {
	topics := mergeTopics(nil, "A body about #drawing only.")
	if len(topics) != 1 || topics[0] != "drawing" {
		t.Errorf("topics = %v, want [drawing]", topics)
	}
}

func TestDeriveExcerpt_SkipsHeadings(t *testing.T) {
	body := "# A Heading\n\nFirst real paragraph.\n\nSecond paragraph."
	if got := deriveExcerpt(body); got != "First real paragraph." {
		t.Errorf("excerpt = %q", got)
	}
}

func TestDeriveExcerpt_HardCut(t *testing.T) {
	long := ""
	for i := 0; i < 40; i++ {
		long += "wordy "
	}
	got := deriveExcerpt(long)
	if len([]rune(got)) != excerptLimit {
		t.Errorf("len(excerpt) = %d, want %d", len([]rune(got)), excerptLimit)
	}
}

func TestReadingTime(t *testing.T) {
	if got := readingTime("one two three"); got != 1 {
		t.Errorf("readingTime = %d, want 1", got)
	}
	words := make([]byte, 0)
	for i := 0; i < 201; i++ {
		words = append(words, "w "...)
	}
	if got := readingTime(string(words)); got != 2 {
		t.Errorf("readingTime(201 words) = %d, want 2", got)
	}
}
