package index

// PostIndex defines the search-index operations the rest of the system
// depends on. Consumers take this interface rather than *DB so tests can
// substitute fakes.
type PostIndex interface {
	UpsertPost(row PostRow, body string, links []string) error
	DeleteByPath(path string) error
	AllChecksums() (map[string]string, error)
	Search(query string, limit int, includeUnpublished bool) ([]SearchResult, error)
	Graph(includeUnpublished bool) ([]GraphNode, []GraphEdge, error)
	Close() error
}

// Verify *DB satisfies PostIndex at compile time.
var _ PostIndex = (*DB)(nil)
