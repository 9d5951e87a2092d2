// Package models defines the domain types for Ansuz.
package models

import "time"

// Post is the resolved representation of one markdown file in the vault.
// RawBody is the authoritative source; Content is derived on demand by the
// renderer and is empty until a detail view asks for it.
type Post struct {
	Slug        string    `json:"slug"`
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Date        string    `json:"date"`
	Topics      []string  `json:"topics"`
	Published   bool      `json:"published"`
	Author      string    `json:"author,omitempty"`
	Excerpt     string    `json:"excerpt,omitempty"`
	ReadingTime int       `json:"reading_time"`
	FolderPath  string    `json:"folder_path"`
	Links       []string  `json:"links,omitempty"`
	RawBody     string    `json:"-"`
	Content     string    `json:"content,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Backlinks is populated on detail views only.
	Backlinks []Backlink `json:"backlinks,omitempty"`
}

// Backlink is a directed edge "source references target", captured with enough
// surrounding detail to preview and jump to the occurrence.
type Backlink struct {
	SourceSlug   string `json:"source_slug"`
	TargetSlug   string `json:"target_slug"`
	SourceTitle  string `json:"source_title"`
	Context      string `json:"context"`
	TextFragment string `json:"text_fragment,omitempty"`
	FolderPath   string `json:"folder_path"`
	LineNumber   int    `json:"line_number"`
	Excerpt      string `json:"excerpt,omitempty"`
}

// FileInfo is the lightweight scanner output for one vault file.
type FileInfo struct {
	Path     string    `json:"path"`
	Folder   string    `json:"folder"`
	Checksum string    `json:"checksum"`
	ModTime  time.Time `json:"mod_time"`
}
