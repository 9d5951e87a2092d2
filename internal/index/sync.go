package index

import (
	"log/slog"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/vault"
)

// Sync walks the vault and brings the search index up to date:
//   - new/changed files are parsed and upserted
//   - files that no longer parse are dropped (malformed front-block)
//   - files removed from disk are deleted from the index
//
// Individual file failures are logged and skipped; the sync itself only
// fails when the vault cannot be listed at all.
func Sync(db *DB, store vault.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		post, err := parser.Build(m.Path, data, m.ModTime)
		if err != nil {
			logger.Warn("sync: parse failed, excluding file", slog.String("path", m.Path), slog.String("error", err.Error()))
			_ = db.DeleteByPath(m.Path)
			continue
		}
		if err := db.UpsertPost(rowFromPost(post, m.Checksum), post.RawBody, post.Links); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path), slog.String("slug", post.Slug))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteByPath(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

func rowFromPost(p *models.Post, cs string) PostRow {
	return PostRow{
		Slug:      p.Slug,
		Path:      p.Path,
		Title:     p.Title,
		Checksum:  cs,
		Topics:    p.Topics,
		Folder:    p.FolderPath,
		Published: p.Published,
		Date:      p.Date,
		UpdatedAt: p.UpdatedAt,
	}
}
