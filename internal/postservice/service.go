// Package postservice exposes the read-only query operations over the
// writing vault: list, lookup, topic/folder filters, backlinks, and the
// folder structure.
//
// Every request is served from an immutable corpus snapshot built from the
// vault. Snapshots are cached behind a vault content fingerprint and
// invalidated wholesale on mismatch; concurrent requests that race a
// rebuild simply build their own snapshot, which is redundant but safe.
package postservice

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/backlinks"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/vault"
)

// TopicCount is one topic with the number of posts carrying it.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// Service coordinates the vault, parser, renderer, and search index.
type Service struct {
	store              vault.Provider
	db                 index.PostIndex
	renderer           *render.Renderer
	logger             *slog.Logger
	includeUnpublished bool

	mu          sync.RWMutex
	cached      *corpus
	fingerprint string
}

// corpus is one immutable snapshot of the parsed vault.
type corpus struct {
	posts   []*models.Post // discovery order
	bySlug  map[string]*models.Post
	folders map[string][]string
}

// New creates a post service. includeUnpublished is the development-mode
// switch: when false (production), unpublished posts are invisible to every
// query.
func New(store vault.Provider, db index.PostIndex, renderer *render.Renderer, logger *slog.Logger, includeUnpublished bool) *Service {
	return &Service{
		store:              store,
		db:                 db,
		renderer:           renderer,
		logger:             logger,
		includeUnpublished: includeUnpublished,
	}
}

// Invalidate drops the cached corpus. The watcher calls this on any vault
// change; the next request rebuilds.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.fingerprint = ""
	s.mu.Unlock()
}

// ListPosts returns visible posts sorted by date descending.
func (s *Service) ListPosts(_ context.Context) ([]*models.Post, error) {
	c, err := s.corpus()
	if err != nil {
		return nil, err
	}
	out := s.visible(c.posts)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

// GetPost returns a single post by slug with its body rendered to HTML.
func (s *Service) GetPost(_ context.Context, slug string) (*models.Post, error) {
	c, err := s.corpus()
	if err != nil {
		return nil, err
	}
	p, ok := c.bySlug[slug]
	if !ok || !s.isVisible(p) {
		return nil, apperr.ErrNotFound
	}

	// A link target only counts as resolved when the reader can actually
	// reach it: drafts are "missing" in production.
	exists := func(target string) bool {
		linked, ok := c.bySlug[target]
		return ok && s.isVisible(linked)
	}
	content, err := s.renderer.Render(p.RawBody, exists)
	if err != nil {
		return nil, err
	}

	// Snapshots are shared; render into a copy.
	detail := *p
	detail.Content = content
	detail.Backlinks = backlinks.Resolve(s.visible(c.posts), slug)
	return &detail, nil
}

// PostsByTopic returns visible posts carrying the topic, matched
// case-insensitively and exactly, sorted by date descending.
func (s *Service) PostsByTopic(ctx context.Context, topic string) ([]*models.Post, error) {
	all, err := s.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(strings.TrimSpace(topic))
	out := []*models.Post{}
	for _, p := range all {
		for _, t := range p.Topics {
			if strings.ToLower(t) == want {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

// PostsByFolder returns visible posts whose folder path equals the given
// path or sits below it (hierarchical prefix match), sorted by date
// descending. An empty folder matches everything.
func (s *Service) PostsByFolder(ctx context.Context, folder string) ([]*models.Post, error) {
	all, err := s.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	folder = strings.Trim(folder, "/")
	out := []*models.Post{}
	for _, p := range all {
		if folderMatches(p.FolderPath, folder) {
			out = append(out, p)
		}
	}
	return out, nil
}

// BacklinksFor returns the posts referencing the given slug. The target must
// exist; a target nobody links to yields an empty list, not an error.
func (s *Service) BacklinksFor(_ context.Context, slug string) ([]models.Backlink, error) {
	c, err := s.corpus()
	if err != nil {
		return nil, err
	}
	target, ok := c.bySlug[slug]
	if !ok || !s.isVisible(target) {
		return nil, apperr.ErrNotFound
	}
	return backlinks.Resolve(s.visible(c.posts), slug), nil
}

// FolderStructure returns folder path → file identifiers for every visible
// post, including the vault root under "".
func (s *Service) FolderStructure(_ context.Context) (map[string][]string, error) {
	c, err := s.corpus()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(c.folders))
	for folder, paths := range c.folders {
		out[folder] = append([]string(nil), paths...)
	}
	return out, nil
}

// Topics returns every visible topic with its post count, sorted by count
// descending then name.
func (s *Service) Topics(_ context.Context) ([]TopicCount, error) {
	c, err := s.corpus()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]*TopicCount)
	var order []string
	for _, p := range s.visible(c.posts) {
		for _, t := range p.Topics {
			key := strings.ToLower(t)
			if tc, ok := counts[key]; ok {
				tc.Count++
				continue
			}
			counts[key] = &TopicCount{Topic: t, Count: 1}
			order = append(order, key)
		}
	}
	out := make([]TopicCount, 0, len(order))
	for _, key := range order {
		out = append(out, *counts[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	return out, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit, s.includeUnpublished)
}

// Graph returns the writing graph from the index.
func (s *Service) Graph(_ context.Context) ([]index.GraphNode, []index.GraphEdge, error) {
	return s.db.Graph(s.includeUnpublished)
}

// corpus returns the current snapshot, rebuilding when the vault content
// fingerprint no longer matches the cached one.
func (s *Service) corpus() (*corpus, error) {
	metas, err := s.store.List("")
	if err != nil {
		return nil, err
	}
	fp := fingerprintOf(metas)

	s.mu.RLock()
	if s.cached != nil && s.fingerprint == fp {
		c := s.cached
		s.mu.RUnlock()
		return c, nil
	}
	s.mu.RUnlock()

	c := s.build(metas)

	s.mu.Lock()
	s.cached = c
	s.fingerprint = fp
	s.mu.Unlock()
	return c, nil
}

// build parses every vault file into the snapshot. Files that fail to parse
// are logged and excluded; the rest of the corpus still resolves.
func (s *Service) build(metas []models.FileInfo) *corpus {
	c := &corpus{
		bySlug:  make(map[string]*models.Post, len(metas)),
		folders: make(map[string][]string),
	}
	for _, m := range metas {
		data, err := s.store.Read(m.Path)
		if err != nil {
			s.logger.Warn("corpus: read failed, excluding file",
				slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		post, err := parser.Build(m.Path, data, m.ModTime)
		if err != nil {
			s.logger.Warn("corpus: parse failed, excluding file",
				slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		c.posts = append(c.posts, post)
		c.bySlug[post.Slug] = post
		if s.isVisible(post) {
			c.folders[post.FolderPath] = append(c.folders[post.FolderPath], post.Path)
		}
	}
	return c
}

func (s *Service) isVisible(p *models.Post) bool {
	return p.Published || s.includeUnpublished
}

func (s *Service) visible(posts []*models.Post) []*models.Post {
	out := []*models.Post{}
	for _, p := range posts {
		if s.isVisible(p) {
			out = append(out, p)
		}
	}
	return out
}

func folderMatches(folderPath, filter string) bool {
	if filter == "" {
		return true
	}
	return folderPath == filter || strings.HasPrefix(folderPath, filter+"/")
}

func fingerprintOf(metas []models.FileInfo) string {
	items := make([]string, 0, len(metas))
	for _, m := range metas {
		items = append(items, m.Path+":"+m.Checksum)
	}
	sort.Strings(items)
	return checksum.List(items)
}
