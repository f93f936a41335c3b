package links

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/teleshelf/teleshelf/internal/models"
)

// SearchRow is one prefix-search hit with per-field match locations.
type SearchRow struct {
	Record           *models.LinkRecord
	TitleMatch       bool
	DescriptionMatch bool
	URLMatch         bool
	SiteNameMatch    bool
}

type Repository interface {
	// Create inserts the link; links are not deduplicated.
	Create(ctx context.Context, rec *models.LinkRecord) error

	// GetByID returns soft-deleted rows too.
	GetByID(ctx context.Context, id uuid.UUID) (*models.LinkRecord, error)

	List(ctx context.Context, owner int64, c Criteria, limit, offset int) ([]*models.LinkRecord, int64, error)

	SearchPrefix(ctx context.Context, owner int64, tsquery string, c Criteria, limit int) ([]*SearchRow, error)
	SearchSubstring(ctx context.Context, owner int64, needle string, c Criteria, limit int) ([]*models.LinkRecord, error)

	SoftDelete(ctx context.Context, id uuid.UUID, owner int64, at time.Time) (bool, error)
	Restore(ctx context.Context, id uuid.UUID, owner int64) (bool, error)
	Delete(ctx context.Context, id uuid.UUID, owner int64) (bool, error)
	ListTrash(ctx context.Context, owner int64) ([]*models.LinkRecord, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
