package media

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/teleshelf/teleshelf/internal/classify"
	"github.com/teleshelf/teleshelf/internal/models"
)

// SearchRow is one prefix-search hit with per-field match locations: each
// flag reports whether the query matched inside that indexed field.
type SearchRow struct {
	Record             *models.MediaRecord
	CaptionMatch       bool
	NameMatch          bool
	ForwardNameMatch   bool
	ForwardSourceMatch bool
}

type Repository interface {
	// Create inserts the record; an existing (owner, fingerprint) pair yields
	// common.ErrDuplicate and leaves the store unchanged.
	Create(ctx context.Context, rec *models.MediaRecord) error

	// GetByID and GetByFingerprint return soft-deleted rows too; they are
	// used internally, list operations exclude trash by default.
	GetByID(ctx context.Context, id uuid.UUID) (*models.MediaRecord, error)
	GetByFingerprint(ctx context.Context, owner int64, fingerprint string) (*models.MediaRecord, error)

	List(ctx context.Context, owner int64, c Criteria, limit, offset int) ([]*models.MediaRecord, int64, error)
	ListByDate(ctx context.Context, owner int64) ([]*models.MediaRecord, error)
	RawStats(ctx context.Context, owner int64) ([]classify.RawStat, error)

	SearchPrefix(ctx context.Context, owner int64, tsquery string, c Criteria, limit int) ([]*SearchRow, error)
	SearchSubstring(ctx context.Context, owner int64, needle string, c Criteria, limit int) ([]*models.MediaRecord, error)

	SoftDelete(ctx context.Context, id uuid.UUID, owner int64, at time.Time) (bool, error)
	Restore(ctx context.Context, id uuid.UUID, owner int64) (bool, error)
	Delete(ctx context.Context, id uuid.UUID, owner int64) (bool, error)
	ListTrash(ctx context.Context, owner int64) ([]*models.MediaRecord, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
