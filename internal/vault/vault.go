// Package vault defines the read-only scanner over the markdown vault.
package vault

import "github.com/starford/ansuz/internal/models"

// Provider is the interface for vault file access. The vault is populated
// externally (a synced content repository); nothing in this system writes
// to it, so the surface is read-only by construction.
type Provider interface {
	// List walks dir (relative to the vault root) and returns metadata for
	// every .md file in discovery order. A missing root yields an empty
	// list, not an error: an empty vault is a valid "no content yet" state.
	List(dir string) ([]models.FileInfo, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Root returns the absolute vault root path.
	Root() string
	// Exists reports whether the vault root currently exists on disk.
	Exists() bool
}
