// Package searchindex keeps the derived searchable-text index in step with
// the record stores. Every Index/Delete call is expected to run inside the
// same transaction as the record mutation it mirrors, so a failed index write
// fails the whole mutation.
package searchindex

import (
	"context"

	"github.com/google/uuid"
	"github.com/teleshelf/teleshelf/internal/models"
)

type Maintainer interface {
	// IndexMedia writes or refreshes the index row for rec.
	IndexMedia(ctx context.Context, rec *models.MediaRecord) error
	// DeleteMedia removes the index row; removing an absent row is a no-op.
	DeleteMedia(ctx context.Context, id uuid.UUID) error

	IndexLink(ctx context.Context, rec *models.LinkRecord) error
	DeleteLink(ctx context.Context, id uuid.UUID) error
}
