package models

import (
	"time"

	"github.com/google/uuid"
)

// LinkRecord is a saved URL with its link-preview metadata. Links are not
// deduplicated; they share the media records' soft-delete lifecycle.
type LinkRecord struct {
	ID      uuid.UUID
	OwnerID int64

	URL         string
	Title       string
	Description string
	ImageURL    string
	SiteName    string

	CreatedAt time.Time
	DeletedAt *time.Time
}

// InTrash reports whether the link is soft-deleted.
func (l *LinkRecord) InTrash() bool { return l.DeletedAt != nil }
