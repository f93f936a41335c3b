// Package links provides the PostgreSQL-backed record store for saved links.
package links

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teleshelf/teleshelf/internal/common"
	"github.com/teleshelf/teleshelf/internal/dbx"
	"github.com/teleshelf/teleshelf/internal/models"
)

const selectColumns = `l.id, l.owner_id, l.url,
		COALESCE(l.title,''), COALESCE(l.description,''),
		COALESCE(l.image_url,''), COALESCE(l.site_name,''),
		l.created_at, l.deleted_at`

// Criteria is the typed filter consumed by link listing and search queries.
// The zero value means non-deleted links only, any date.
type Criteria struct {
	IncludeDeleted bool
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
}

func (c Criteria) apply(b *dbx.Builder) {
	if !c.IncludeDeleted {
		b.Where("l.deleted_at IS NULL")
	}
	if c.CreatedFrom != nil {
		b.Wheref("l.created_at >= ?", *c.CreatedFrom)
	}
	if c.CreatedTo != nil {
		b.Wheref("l.created_at <= ?", *c.CreatedTo)
	}
}

// PostgresRepository implements link storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLink(s scanner, extra ...any) (*models.LinkRecord, error) {
	var rec models.LinkRecord
	var deletedAt sql.NullTime
	dest := []any{
		&rec.ID, &rec.OwnerID, &rec.URL,
		&rec.Title, &rec.Description,
		&rec.ImageURL, &rec.SiteName,
		&rec.CreatedAt, &deletedAt,
	}
	dest = append(dest, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		rec.DeletedAt = &t
	}
	return &rec, nil
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.LinkRecord) error {
	query := `
		INSERT INTO link_records (id, owner_id, url, title, description, image_url, site_name, created_at)
		VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''), NULLIF($6,''), NULLIF($7,''), $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.OwnerID, rec.URL, rec.Title, rec.Description, rec.ImageURL, rec.SiteName, rec.CreatedAt)
	if err != nil {
		return common.StorageError("db error", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LinkRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM link_records l WHERE l.id = $1`
	rec, err := scanLink(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.StorageError("db error", err)
	}
	return rec, nil
}

// List returns one page of the owner's links matching c, newest first, plus
// the total count of matches.
func (r *PostgresRepository) List(ctx context.Context, owner int64, c Criteria, limit, offset int) ([]*models.LinkRecord, int64, error) {
	var b dbx.Builder
	b.Wheref("l.owner_id = ?", owner)
	c.apply(&b)

	var total int64
	countQuery := `SELECT COUNT(*) FROM link_records l` + b.Clause()
	if err := r.db.QueryRowContext(ctx, countQuery, b.Args()...).Scan(&total); err != nil {
		return nil, 0, common.StorageError("count error", err)
	}

	query := `SELECT ` + selectColumns + ` FROM link_records l` + b.Clause() +
		` ORDER BY l.created_at DESC LIMIT ` + b.Bind(limit) + ` OFFSET ` + b.Bind(offset)

	recs, err := r.queryLinks(ctx, query, b.Args()...)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// SearchPrefix runs the standard-query strategy against the link index. As
// with media records, row selection uses the AND form and the per-field
// flags the OR form.
func (r *PostgresRepository) SearchPrefix(ctx context.Context, owner int64, tsquery string, c Criteria, limit int) ([]*SearchRow, error) {
	var b dbx.Builder
	q := b.Bind(tsquery)
	anyq := b.Bind(dbx.AnyToken(tsquery))
	b.Wheref("l.owner_id = ?", owner)
	c.apply(&b)
	b.Where(fmt.Sprintf("i.document_tsv @@ to_tsquery('simple', %s)", q))

	query := `SELECT ` + selectColumns + `,
			i.title_tsv @@ to_tsquery('simple', ` + anyq + `),
			i.description_tsv @@ to_tsquery('simple', ` + anyq + `),
			i.url_tsv @@ to_tsquery('simple', ` + anyq + `),
			i.site_name_tsv @@ to_tsquery('simple', ` + anyq + `)
		FROM link_records l
		JOIN link_search_index i ON i.link_id = l.id` + b.Clause() + `
		ORDER BY ts_rank(i.document_tsv, to_tsquery('simple', ` + q + `)) DESC, l.created_at DESC
		LIMIT ` + b.Bind(limit)

	rows, err := r.db.QueryContext(ctx, query, b.Args()...)
	if err != nil {
		return nil, common.StorageError("search error", err)
	}
	defer rows.Close()

	var result []*SearchRow
	for rows.Next() {
		var sr SearchRow
		rec, err := scanLink(rows, &sr.TitleMatch, &sr.DescriptionMatch, &sr.URLMatch, &sr.SiteNameMatch)
		if err != nil {
			return nil, err
		}
		sr.Record = rec
		result = append(result, &sr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SearchSubstring runs the short-query strategy across all link fields.
func (r *PostgresRepository) SearchSubstring(ctx context.Context, owner int64, needle string, c Criteria, limit int) ([]*models.LinkRecord, error) {
	var b dbx.Builder
	b.Wheref("l.owner_id = ?", owner)
	c.apply(&b)
	p := b.Bind(dbx.LikePattern(needle))
	b.Where(fmt.Sprintf("(l.url ILIKE %[1]s OR l.title ILIKE %[1]s OR l.description ILIKE %[1]s OR l.site_name ILIKE %[1]s)", p))

	query := `SELECT ` + selectColumns + ` FROM link_records l` + b.Clause() +
		` ORDER BY l.created_at DESC LIMIT ` + b.Bind(limit)

	return r.queryLinks(ctx, query, b.Args()...)
}

// SoftDelete stamps the tombstone; false when the link is missing, foreign
// or already trashed.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id uuid.UUID, owner int64, at time.Time) (bool, error) {
	query := `UPDATE link_records SET deleted_at = $3
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`
	return r.execOne(ctx, query, id, owner, at)
}

// Restore clears the tombstone; a no-op unless the link is in the trash.
func (r *PostgresRepository) Restore(ctx context.Context, id uuid.UUID, owner int64) (bool, error) {
	query := `UPDATE link_records SET deleted_at = NULL
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NOT NULL`
	return r.execOne(ctx, query, id, owner)
}

// Delete permanently removes the link regardless of its current state.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID, owner int64) (bool, error) {
	query := `DELETE FROM link_records WHERE id = $1 AND owner_id = $2`
	return r.execOne(ctx, query, id, owner)
}

// ListTrash returns the owner's soft-deleted links, most recently trashed first.
func (r *PostgresRepository) ListTrash(ctx context.Context, owner int64) ([]*models.LinkRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM link_records l
		WHERE l.owner_id = $1 AND l.deleted_at IS NOT NULL
		ORDER BY l.deleted_at DESC`
	return r.queryLinks(ctx, query, owner)
}

// PurgeOlderThan permanently removes every trashed link whose tombstone is
// strictly older than cutoff.
func (r *PostgresRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM link_records WHERE deleted_at IS NOT NULL AND deleted_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, common.StorageError("purge error", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, common.StorageError("db error", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) queryLinks(ctx context.Context, query string, args ...any) ([]*models.LinkRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.StorageError("db error", err)
	}
	defer rows.Close()

	var result []*models.LinkRecord
	for rows.Next() {
		rec, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
