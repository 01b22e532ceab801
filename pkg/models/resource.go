package models

import (
	"time"

	"github.com/google/uuid"
)

// Resource types offered on the resources page.
const (
	ResourceTemplate = "Template"
	ResourceGuide    = "Guide"
	ResourceTool     = "Tool"
	ResourceWebinar  = "Webinar"
)

// Resource is a downloadable or linked asset. DownloadCount only ever grows.
type Resource struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title" validate:"required"`
	Description   string    `json:"description"`
	Type          string    `json:"type" validate:"omitempty,oneof=Template Guide Tool Webinar"`
	Topic         string    `json:"topic"`
	FileURL       string    `json:"file_url,omitempty"`
	ExternalURL   string    `json:"external_url,omitempty"`
	Thumbnail     string    `json:"thumbnail,omitempty"`
	DownloadCount int       `json:"download_count" validate:"gte=0"`
	IsPublished   bool      `json:"is_published"`
	CreatedAt     time.Time `json:"created_at"`
}

func (r Resource) Key() string { return r.ID.String() }

func (r Resource) FacetValues(facet string) []string {
	switch facet {
	case "type":
		return []string{r.Type}
	case "topic":
		return []string{r.Topic}
	}
	return nil
}

func (r Resource) SearchFields() []string {
	return []string{r.Title, r.Description}
}

// Target returns the link opened on access. The file reference wins over
// the external link when both are set.
func (r Resource) Target() string {
	if r.FileURL != "" {
		return r.FileURL
	}
	return r.ExternalURL
}
