package searchindex

import (
	"context"

	"github.com/google/uuid"
	"github.com/teleshelf/teleshelf/internal/common"
	"github.com/teleshelf/teleshelf/internal/dbx"
	"github.com/teleshelf/teleshelf/internal/models"
)

// PostgresMaintainer implements the index over per-field tsvector columns.
// The 'simple' dictionary is deliberate: query tokens are literal prefixes,
// so stemming would let "cats" match what "cat:*" should not.
type PostgresMaintainer struct {
	db dbx.DBTX
}

// NewPostgresMaintainer constructs a maintainer bound to the given DBTX.
func NewPostgresMaintainer(db dbx.DBTX) *PostgresMaintainer {
	return &PostgresMaintainer{db: db}
}

func (m *PostgresMaintainer) IndexMedia(ctx context.Context, rec *models.MediaRecord) error {
	query := `
		INSERT INTO media_search_index
			(media_id, owner_id, caption_tsv, name_tsv, forward_name_tsv, forward_source_tsv, document_tsv)
		VALUES ($1, $2,
			to_tsvector('simple', $3),
			to_tsvector('simple', $4),
			to_tsvector('simple', $5),
			to_tsvector('simple', $6),
			to_tsvector('simple', concat_ws(' ', $3::text, $4::text, $5::text, $6::text)))
		ON CONFLICT (media_id)
		DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			caption_tsv = EXCLUDED.caption_tsv,
			name_tsv = EXCLUDED.name_tsv,
			forward_name_tsv = EXCLUDED.forward_name_tsv,
			forward_source_tsv = EXCLUDED.forward_source_tsv,
			document_tsv = EXCLUDED.document_tsv;
	`
	_, err := m.db.ExecContext(ctx, query,
		rec.ID, rec.OwnerID, rec.Caption, rec.Name, rec.ForwardName, rec.ForwardSource)
	if err != nil {
		return common.StorageError("index media error", err)
	}
	return nil
}

func (m *PostgresMaintainer) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM media_search_index WHERE media_id = $1`, id)
	if err != nil {
		return common.StorageError("deindex media error", err)
	}
	return nil
}

func (m *PostgresMaintainer) IndexLink(ctx context.Context, rec *models.LinkRecord) error {
	query := `
		INSERT INTO link_search_index
			(link_id, owner_id, title_tsv, description_tsv, url_tsv, site_name_tsv, document_tsv)
		VALUES ($1, $2,
			to_tsvector('simple', $3),
			to_tsvector('simple', $4),
			to_tsvector('simple', $5),
			to_tsvector('simple', $6),
			to_tsvector('simple', concat_ws(' ', $3::text, $4::text, $5::text, $6::text)))
		ON CONFLICT (link_id)
		DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			title_tsv = EXCLUDED.title_tsv,
			description_tsv = EXCLUDED.description_tsv,
			url_tsv = EXCLUDED.url_tsv,
			site_name_tsv = EXCLUDED.site_name_tsv,
			document_tsv = EXCLUDED.document_tsv;
	`
	_, err := m.db.ExecContext(ctx, query,
		rec.ID, rec.OwnerID, rec.Title, rec.Description, rec.URL, rec.SiteName)
	if err != nil {
		return common.StorageError("index link error", err)
	}
	return nil
}

func (m *PostgresMaintainer) DeleteLink(ctx context.Context, id uuid.UUID) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM link_search_index WHERE link_id = $1`, id)
	if err != nil {
		return common.StorageError("deindex link error", err)
	}
	return nil
}
