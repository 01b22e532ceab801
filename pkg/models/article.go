package models

import (
	"time"

	"github.com/google/uuid"
)

// Article is a published piece of writing shown under /articles.
type Article struct {
	ID            uuid.UUID `json:"id"`
	Slug          string    `json:"slug" validate:"required"`
	Title         string    `json:"title" validate:"required"`
	Excerpt       string    `json:"excerpt"`
	Content       string    `json:"content"` // Markdown
	FeaturedImage string    `json:"featured_image,omitempty"`
	Category      string    `json:"category"`
	Tags          []string  `json:"tags"`
	Author        string    `json:"author"`
	PublishedAt   time.Time `json:"published_at"`
	ReadTime      int       `json:"read_time" validate:"gte=0"`
	IsPublished   bool      `json:"is_published"`
}

func (a Article) Key() string { return a.ID.String() }

func (a Article) FacetValues(facet string) []string {
	if facet == "category" {
		return []string{a.Category}
	}
	return nil
}

func (a Article) SearchFields() []string {
	fields := make([]string, 0, len(a.Tags)+2)
	fields = append(fields, a.Title, a.Excerpt)
	return append(fields, a.Tags...)
}
