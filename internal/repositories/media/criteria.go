package media

import (
	"time"

	"github.com/teleshelf/teleshelf/internal/classify"
	"github.com/teleshelf/teleshelf/internal/dbx"
	"github.com/teleshelf/teleshelf/internal/models"
)

// Criteria is the typed filter consumed by listing and search queries. The
// zero value means: non-deleted records only, any category, any date, any
// size. Every field maps to exactly one parameterized clause.
type Criteria struct {
	// Category filters by display category (post-reclassification).
	Category models.Category

	// IncludeDeleted also returns soft-deleted rows. Exclusion is the
	// explicit default, not an implicit one buried in query construction.
	IncludeDeleted bool

	CreatedFrom *time.Time
	CreatedTo   *time.Time

	MinSize *int64
	MaxSize *int64

	// ForwardName and ForwardSource are case-insensitive substring filters
	// on the provenance fields.
	ForwardName   string
	ForwardSource string
}

func (c Criteria) apply(b *dbx.Builder) {
	if !c.IncludeDeleted {
		b.Where("m.deleted_at IS NULL")
	}
	if c.Category != "" {
		classify.ApplyFilter(b, "m", c.Category)
	}
	if c.CreatedFrom != nil {
		b.Wheref("m.created_at >= ?", *c.CreatedFrom)
	}
	if c.CreatedTo != nil {
		b.Wheref("m.created_at <= ?", *c.CreatedTo)
	}
	if c.MinSize != nil {
		b.Wheref("m.size >= ?", *c.MinSize)
	}
	if c.MaxSize != nil {
		b.Wheref("m.size <= ?", *c.MaxSize)
	}
	if c.ForwardName != "" {
		b.Wheref("m.forward_name ILIKE ?", dbx.LikePattern(c.ForwardName))
	}
	if c.ForwardSource != "" {
		b.Wheref("m.forward_source ILIKE ?", dbx.LikePattern(c.ForwardSource))
	}
}
