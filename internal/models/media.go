package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is the raw media category assigned at ingestion time.
type Category string

const (
	CategoryPhoto     Category = "photo"
	CategoryVideo     Category = "video"
	CategoryDocument  Category = "document"
	CategoryAudio     Category = "audio"
	CategoryVoice     Category = "voice"
	CategoryVideoNote Category = "video_note"
	CategoryAnimation Category = "animation"
	CategorySticker   Category = "sticker"
)

// Categories lists every valid raw category.
var Categories = []Category{
	CategoryPhoto, CategoryVideo, CategoryDocument, CategoryAudio,
	CategoryVoice, CategoryVideoNote, CategoryAnimation, CategorySticker,
}

// Valid reports whether c is one of the known raw categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// MediaRecord is a reference to one ingested media item. The bytes stay with
// the messaging platform; FileID is the opaque handle used to fetch them back.
type MediaRecord struct {
	ID      uuid.UUID
	OwnerID int64

	// FileID is the platform content handle; Fingerprint is the
	// content-derived id used for per-owner deduplication.
	FileID      string
	Fingerprint string

	Category Category
	MIME     string
	Name     string
	Size     int64
	Duration int
	Width    int
	Height   int

	// ThumbnailID is the content handle of the preview image, if any.
	ThumbnailID string

	Caption       string
	ForwardName   string
	ForwardSource string

	CreatedAt time.Time
	// DeletedAt is the soft-delete tombstone; nil while the record is active.
	DeletedAt *time.Time
}

// InTrash reports whether the record is soft-deleted.
func (m *MediaRecord) InTrash() bool { return m.DeletedAt != nil }

// CategoryStat is one (display category, count) pair of an owner's
// non-deleted records, computed on demand.
type CategoryStat struct {
	Category Category
	Count    int64
}
