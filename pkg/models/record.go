package models

import (
	"time"

	"github.com/google/uuid"
)

// Table names in the collection store.
const (
	TableArticles        = "articles"
	TableProjects        = "projects"
	TableResources       = "resources"
	TableContactMessages = "contact_messages"
)

// Record is what the listing filter needs from a row.
type Record interface {
	Key() string
	// FacetValues returns the values a record carries for a facet; the
	// record matches a selection when any of them equals it.
	FacetValues(facet string) []string
	SearchFields() []string
}

// ContactMessage is a submission from the contact form.
type ContactMessage struct {
	ID        uuid.UUID `json:"id" form:"-"`
	Name      string    `json:"name" form:"name" binding:"required"`
	Email     string    `json:"email" form:"email" binding:"required,email"`
	Message   string    `json:"message" form:"message" binding:"required"`
	CreatedAt time.Time `json:"created_at" form:"-"`
}
