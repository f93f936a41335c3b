// Package media provides the PostgreSQL-backed record store for archived
// media items: dedup-on-insert, criteria-driven listing, the trash lifecycle
// and the execution side of the search strategies.
package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teleshelf/teleshelf/internal/classify"
	"github.com/teleshelf/teleshelf/internal/common"
	"github.com/teleshelf/teleshelf/internal/dbx"
	"github.com/teleshelf/teleshelf/internal/models"
)

const selectColumns = `m.id, m.owner_id, m.file_id, m.fingerprint, m.category,
		COALESCE(m.mime,''), COALESCE(m.name,''), COALESCE(m.size,0),
		COALESCE(m.duration,0), COALESCE(m.width,0), COALESCE(m.height,0),
		COALESCE(m.thumbnail_id,''), COALESCE(m.caption,''),
		COALESCE(m.forward_name,''), COALESCE(m.forward_source,''),
		m.created_at, m.deleted_at`

// PostgresRepository implements media storage over a dbx.DBTX
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

func scanRecord(s scanner, extra ...any) (*models.MediaRecord, error) {
	var rec models.MediaRecord
	var deletedAt sql.NullTime
	dest := []any{
		&rec.ID, &rec.OwnerID, &rec.FileID, &rec.Fingerprint, &rec.Category,
		&rec.MIME, &rec.Name, &rec.Size,
		&rec.Duration, &rec.Width, &rec.Height,
		&rec.ThumbnailID, &rec.Caption,
		&rec.ForwardName, &rec.ForwardSource,
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

// Create inserts the record. A second ingestion of the same
// (owner, fingerprint) pair yields common.ErrDuplicate; the existing row is
// untouched.
func (r *PostgresRepository) Create(ctx context.Context, rec *models.MediaRecord) error {
	query := `
		INSERT INTO media_records
			(id, owner_id, file_id, fingerprint, category, mime, name, size,
			 duration, width, height, thumbnail_id, caption, forward_name, forward_source, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6,''), NULLIF($7,''), NULLIF($8,0),
			NULLIF($9,0), NULLIF($10,0), NULLIF($11,0), NULLIF($12,''), NULLIF($13,''),
			NULLIF($14,''), NULLIF($15,''), $16)
		ON CONFLICT (owner_id, fingerprint) DO NOTHING
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		rec.ID, rec.OwnerID, rec.FileID, rec.Fingerprint, rec.Category,
		rec.MIME, rec.Name, rec.Size,
		rec.Duration, rec.Width, rec.Height, rec.ThumbnailID, rec.Caption,
		rec.ForwardName, rec.ForwardSource, rec.CreatedAt,
	).Scan(&rec.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrDuplicate
	}
	if err != nil {
		return common.StorageError("db error", err)
	}
	return nil
}

// GetByID returns the record regardless of its soft-delete state.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM media_records m WHERE m.id = $1`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.StorageError("db error", err)
	}
	return rec, nil
}

// GetByFingerprint returns the owner's record with the given fingerprint,
// soft-deleted or not.
func (r *PostgresRepository) GetByFingerprint(ctx context.Context, owner int64, fingerprint string) (*models.MediaRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM media_records m WHERE m.owner_id = $1 AND m.fingerprint = $2`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, owner, fingerprint))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.StorageError("db error", err)
	}
	return rec, nil
}

// List returns one page of the owner's records matching c, newest first,
// plus the total count of matches.
func (r *PostgresRepository) List(ctx context.Context, owner int64, c Criteria, limit, offset int) ([]*models.MediaRecord, int64, error) {
	var b dbx.Builder
	b.Wheref("m.owner_id = ?", owner)
	c.apply(&b)

	var total int64
	countQuery := `SELECT COUNT(*) FROM media_records m` + b.Clause()
	if err := r.db.QueryRowContext(ctx, countQuery, b.Args()...).Scan(&total); err != nil {
		return nil, 0, common.StorageError("count error", err)
	}

	query := `SELECT ` + selectColumns + ` FROM media_records m` + b.Clause() +
		` ORDER BY m.created_at DESC LIMIT ` + b.Bind(limit) + ` OFFSET ` + b.Bind(offset)

	recs, err := r.queryRecords(ctx, query, b.Args()...)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// ListByDate returns all of the owner's non-deleted records, newest first,
// for client-side grouping by calendar date.
func (r *PostgresRepository) ListByDate(ctx context.Context, owner int64) ([]*models.MediaRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM media_records m
		WHERE m.owner_id = $1 AND m.deleted_at IS NULL
		ORDER BY m.created_at DESC`
	return r.queryRecords(ctx, query, owner)
}

// RawStats aggregates the owner's non-deleted records by raw category and
// MIME; callers fold the rows through the classifier.
func (r *PostgresRepository) RawStats(ctx context.Context, owner int64) ([]classify.RawStat, error) {
	query := `SELECT m.category, COALESCE(m.mime,''), COUNT(*)
		FROM media_records m
		WHERE m.owner_id = $1 AND m.deleted_at IS NULL
		GROUP BY m.category, COALESCE(m.mime,'')`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, common.StorageError("stats error", err)
	}
	defer rows.Close()

	var result []classify.RawStat
	for rows.Next() {
		var s classify.RawStat
		if err := rows.Scan(&s.Category, &s.MIME, &s.Count); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SearchPrefix runs the standard-query strategy: tsquery against the derived
// index, best rank first, with per-field match flags for snippet extraction.
// Row selection uses the AND form; the flags use the OR form, because a row
// can qualify with its tokens spread across fields and a field then counts
// as matched when it holds any of them.
func (r *PostgresRepository) SearchPrefix(ctx context.Context, owner int64, tsquery string, c Criteria, limit int) ([]*SearchRow, error) {
	var b dbx.Builder
	q := b.Bind(tsquery)
	anyq := b.Bind(dbx.AnyToken(tsquery))
	b.Wheref("m.owner_id = ?", owner)
	c.apply(&b)
	b.Where(fmt.Sprintf("i.document_tsv @@ to_tsquery('simple', %s)", q))

	query := `SELECT ` + selectColumns + `,
			i.caption_tsv @@ to_tsquery('simple', ` + anyq + `),
			i.name_tsv @@ to_tsquery('simple', ` + anyq + `),
			i.forward_name_tsv @@ to_tsquery('simple', ` + anyq + `),
			i.forward_source_tsv @@ to_tsquery('simple', ` + anyq + `)
		FROM media_records m
		JOIN media_search_index i ON i.media_id = m.id` + b.Clause() + `
		ORDER BY ts_rank(i.document_tsv, to_tsquery('simple', ` + q + `)) DESC, m.created_at DESC
		LIMIT ` + b.Bind(limit)

	rows, err := r.db.QueryContext(ctx, query, b.Args()...)
	if err != nil {
		return nil, common.StorageError("search error", err)
	}
	defer rows.Close()

	var result []*SearchRow
	for rows.Next() {
		var sr SearchRow
		rec, err := scanRecord(rows,
			&sr.CaptionMatch, &sr.NameMatch, &sr.ForwardNameMatch, &sr.ForwardSourceMatch)
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

// SearchSubstring runs the short-query strategy: a case-insensitive substring
// test ORed across all searchable fields, newest first. No relevance rank
// exists at this query length.
func (r *PostgresRepository) SearchSubstring(ctx context.Context, owner int64, needle string, c Criteria, limit int) ([]*models.MediaRecord, error) {
	var b dbx.Builder
	b.Wheref("m.owner_id = ?", owner)
	c.apply(&b)
	p := b.Bind(dbx.LikePattern(needle))
	b.Where(fmt.Sprintf("(m.caption ILIKE %[1]s OR m.name ILIKE %[1]s OR m.forward_name ILIKE %[1]s OR m.forward_source ILIKE %[1]s)", p))

	query := `SELECT ` + selectColumns + ` FROM media_records m` + b.Clause() +
		` ORDER BY m.created_at DESC LIMIT ` + b.Bind(limit)

	return r.queryRecords(ctx, query, b.Args()...)
}

// SoftDelete stamps the tombstone. Returns false when the record does not
// exist, belongs to another owner or is already in the trash; a stamped
// record is never re-stamped.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id uuid.UUID, owner int64, at time.Time) (bool, error) {
	query := `UPDATE media_records SET deleted_at = $3
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`
	return r.execOne(ctx, query, id, owner, at)
}

// Restore clears the tombstone; a no-op unless the record is in the trash
// and owned by the caller.
func (r *PostgresRepository) Restore(ctx context.Context, id uuid.UUID, owner int64) (bool, error) {
	query := `UPDATE media_records SET deleted_at = NULL
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NOT NULL`
	return r.execOne(ctx, query, id, owner)
}

// Delete permanently removes the record regardless of its current state.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID, owner int64) (bool, error) {
	query := `DELETE FROM media_records WHERE id = $1 AND owner_id = $2`
	return r.execOne(ctx, query, id, owner)
}

// ListTrash returns the owner's soft-deleted records, most recently
// trashed first.
func (r *PostgresRepository) ListTrash(ctx context.Context, owner int64) ([]*models.MediaRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM media_records m
		WHERE m.owner_id = $1 AND m.deleted_at IS NOT NULL
		ORDER BY m.deleted_at DESC`
	return r.queryRecords(ctx, query, owner)
}

// PurgeOlderThan permanently removes every trashed record whose tombstone is
// strictly older than cutoff and returns the number removed. Overlapping runs
// only ever remove strictly-older rows, so they converge.
func (r *PostgresRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM media_records WHERE deleted_at IS NOT NULL AND deleted_at < $1`
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

func (r *PostgresRepository) queryRecords(ctx context.Context, query string, args ...any) ([]*models.MediaRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.StorageError("db error", err)
	}
	defer rows.Close()

	var result []*models.MediaRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
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
