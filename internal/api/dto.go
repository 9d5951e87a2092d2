package api

import (
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/postservice"
)

// PostSummary is the list-view shape: everything but the rendered body.
type PostSummary struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Topics      []string `json:"topics"`
	Author      string   `json:"author,omitempty"`
	Excerpt     string   `json:"excerpt,omitempty"`
	ReadingTime int      `json:"reading_time"`
	FolderPath  string   `json:"folder_path"`
}

// PostDetail aliases the domain Post for single-post responses (rendered
// content included).
type PostDetail = models.Post

// Backlink aliases the domain Backlink.
type Backlink = models.Backlink

// TopicCount aliases the service topic aggregate.
type TopicCount = postservice.TopicCount

func summarize(posts []*models.Post) []PostSummary {
	out := make([]PostSummary, len(posts))
	for i, p := range posts {
		out[i] = PostSummary{
			Slug:        p.Slug,
			Title:       p.Title,
			Date:        p.Date,
			Topics:      p.Topics,
			Author:      p.Author,
			Excerpt:     p.Excerpt,
			ReadingTime: p.ReadingTime,
			FolderPath:  p.FolderPath,
		}
	}
	return out
}
