//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS posts_fts USING fts5(
			slug UNINDEXED,
			title,
			body,
			topics,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, slug, title, body string, topics []string) error {
	_, _ = tx.Exec(`DELETE FROM posts_fts WHERE slug = ?`, slug)
	_, err := tx.Exec(`INSERT INTO posts_fts (slug, title, body, topics) VALUES (?, ?, ?, ?)`,
		slug, title, body, strings.Join(topics, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, slug string) {
	_, _ = tx.Exec(`DELETE FROM posts_fts WHERE slug = ?`, slug)
}

// Search performs an FTS5 full-text search and returns matches with snippets.
func (db *DB) Search(query string, limit int, includeUnpublished bool) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT f.slug,
		       p.title,
		       snippet(posts_fts, 2, '<b>', '</b>', '...', 64)
		FROM posts_fts f
		JOIN posts p ON p.slug = f.slug
		WHERE posts_fts MATCH ? AND (p.published = 1 OR ?)
		ORDER BY rank
		LIMIT ?
	`, query, includeUnpublished, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Slug, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
