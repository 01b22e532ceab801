package models

import "github.com/google/uuid"

// Project is a portfolio case study shown under /projects.
type Project struct {
	ID                uuid.UUID         `json:"id"`
	Slug              string            `json:"slug" validate:"required"`
	Title             string            `json:"title" validate:"required"`
	Description       string            `json:"description"`
	FeaturedImage     string            `json:"featured_image,omitempty"`
	Client            string            `json:"client,omitempty"`
	Domain            string            `json:"domain"`
	Tools             []string          `json:"tools"`
	Scope             string            `json:"scope"`
	Year              int               `json:"year"`
	Challenge         string            `json:"challenge,omitempty"`
	Solution          string            `json:"solution,omitempty"`
	Results           string            `json:"results,omitempty"`
	Testimonial       string            `json:"testimonial,omitempty"`
	TestimonialAuthor string            `json:"testimonial_author,omitempty"`
	Metrics           map[string]string `json:"metrics,omitempty"` // label -> display value
	ProjectURL        string            `json:"project_url,omitempty" validate:"omitempty,url"`
	IsPublished       bool              `json:"is_published"`
}

func (p Project) Key() string { return p.ID.String() }

// FacetValues exposes "domain" as a single value and "tool" as the
// project's whole tool list, so a tool facet matches by membership.
func (p Project) FacetValues(facet string) []string {
	switch facet {
	case "domain":
		return []string{p.Domain}
	case "tool":
		return p.Tools
	}
	return nil
}

func (p Project) SearchFields() []string {
	fields := make([]string, 0, len(p.Tools)+2)
	fields = append(fields, p.Title, p.Description)
	return append(fields, p.Tools...)
}
