package index

import (
	"encoding/json"
	"fmt"
	"time"
)

// PostRow represents a row in the posts table.
type PostRow struct {
	Slug      string
	Path      string
	Title     string
	Checksum  string
	Topics    []string
	Folder    string
	Published bool
	Date      string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// GraphNode is one post in the writing graph.
type GraphNode struct {
	Slug  string `json:"slug"`
	Title string `json:"title,omitempty"`
}

// GraphEdge is a resolved wikilink between two existing posts.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// UpsertPost inserts or replaces a post, its FTS entry, and its outgoing
// links within a transaction. links are the already-slugified targets.
func (db *DB) UpsertPost(row PostRow, body string, links []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	topicsJSON, _ := json.Marshal(row.Topics)

	_, err = tx.Exec(`
		INSERT INTO posts (slug, path, title, checksum, topics, folder, published, date, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			path       = excluded.path,
			title      = excluded.title,
			checksum   = excluded.checksum,
			topics     = excluded.topics,
			folder     = excluded.folder,
			published  = excluded.published,
			date       = excluded.date,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, row.Slug, row.Path, row.Title, row.Checksum, string(topicsJSON), row.Folder,
		row.Published, row.Date, body, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert post: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, row.Slug, row.Title, body, row.Topics); err != nil {
		return err
	}

	// Replace outgoing links: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, row.Slug)
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, target := range links {
			if _, err := stmt.Exec(row.Slug, target); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteByPath removes the post indexed from the given vault file, along
// with its FTS entry and outgoing links. Unknown paths are a no-op.
func (db *DB) DeleteByPath(path string) error {
	var slug string
	err := db.conn.QueryRow(`SELECT slug FROM posts WHERE path = ?`, path).Scan(&slug)
	if err != nil {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, slug)
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, slug)
	_, _ = tx.Exec(`DELETE FROM posts WHERE slug = ?`, slug)

	return tx.Commit()
}

// AllChecksums returns path → checksum for every indexed post.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Graph returns every post as a node and every resolved wikilink (both
// endpoints exist) as an edge. Unpublished posts and their edges are
// excluded unless includeUnpublished is set.
func (db *DB) Graph(includeUnpublished bool) ([]GraphNode, []GraphEdge, error) {
	nodeRows, err := db.conn.Query(`
		SELECT slug, title FROM posts WHERE published = 1 OR ? ORDER BY slug
	`, includeUnpublished)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph nodes: %w", err)
	}
	defer nodeRows.Close()

	var nodes []GraphNode
	for nodeRows.Next() {
		var n GraphNode
		if err := nodeRows.Scan(&n.Slug, &n.Title); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}
	if err := nodeRows.Err(); err != nil {
		return nil, nil, err
	}

	edgeRows, err := db.conn.Query(`
		SELECT l.source, l.target
		FROM links l
		JOIN posts ps ON ps.slug = l.source
		JOIN posts pt ON pt.slug = l.target
		WHERE (ps.published = 1 OR ?) AND (pt.published = 1 OR ?)
		ORDER BY l.source, l.target
	`, includeUnpublished, includeUnpublished)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph edges: %w", err)
	}
	defer edgeRows.Close()

	var edges []GraphEdge
	for edgeRows.Next() {
		var e GraphEdge
		if err := edgeRows.Scan(&e.Source, &e.Target); err != nil {
			return nil, nil, err
		}
		edges = append(edges, e)
	}
	return nodes, edges, edgeRows.Err()
}
