package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/slugify"
	"github.com/starford/ansuz/internal/vault"
)

// EventCallback is called after a watcher-driven index change. kind is one
// of "created", "updated", "deleted", or "synced" (full reconcile, empty
// slug).
type EventCallback func(kind string, slug string)

// reconcileDelay debounces full reconciliation after rename bursts.
const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the vault root and keeps the search
// index in step with the files until ctx is cancelled. cb (if non-nil) fires
// after each successful index mutation; the caller uses it to invalidate
// the corpus cache and fan out change events.
//
// A missing vault root disables watching entirely: the vault is a valid
// empty state until content is synced in, and the watcher simply is not
// needed before then.
func Watch(ctx context.Context, db *DB, store vault.Provider, logger *slog.Logger, cb EventCallback) error {
	root := store.Root()
	if !store.Exists() {
		logger.Info("watcher: vault root missing, watcher disabled", slog.String("root", root))
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	// Debounce timer for full reconciliation after renames.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			if err := Sync(db, store, logger); err != nil {
				logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
				continue
			}
			if cb != nil {
				cb("synced", "")
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories join the watch list; any .md files already
			// inside are picked up by a reconcile pass.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					scheduleReconcile()
					continue
				}
			}

			if !strings.HasSuffix(absPath, ".md") {
				continue
			}

			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			slug := slugify.FromFilename(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 {
					kind = "created"
				}
				mod := time.Now()
				if info, statErr := os.Stat(absPath); statErr == nil {
					mod = info.ModTime()
				}
				if err := reindexFile(db, store, rel, mod); err != nil {
					logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
				if cb != nil {
					cb(kind, slug)
				}

			case ev.Op&fsnotify.Remove != 0:
				if err := db.DeleteByPath(rel); err != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("path", rel))
				if cb != nil {
					cb("deleted", slug)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only; the new path
				// arrives as a separate Create if it stays under the root.
				// Drop the old entry now and reconcile shortly after.
				if err := db.DeleteByPath(rel); err == nil {
					logger.Debug("watcher: rename old deleted", slog.String("path", rel))
					if cb != nil {
						cb("deleted", slug)
					}
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reindexFile reads, parses, and upserts a single vault file. A file that
// stops parsing is removed from the index rather than left stale.
func reindexFile(db *DB, store vault.Provider, rel string, mod time.Time) error {
	data, err := store.Read(rel)
	if err != nil {
		return err
	}
	post, err := parser.Build(rel, data, mod)
	if err != nil {
		_ = db.DeleteByPath(rel)
		return err
	}
	return db.UpsertPost(rowFromPost(post, checksum.Sum(data)), post.RawBody, post.Links)
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
