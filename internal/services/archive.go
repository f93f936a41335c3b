// Package services implements the archive's operations over the repositories:
// ingestion with deduplication, listing and statistics, the three-branch
// search strategy and the trash lifecycle.
package services

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
	"github.com/teleshelf/teleshelf/internal/logging"
	"github.com/teleshelf/teleshelf/internal/models"
	"github.com/teleshelf/teleshelf/internal/repositories/links"
	"github.com/teleshelf/teleshelf/internal/repositories/media"
	"github.com/teleshelf/teleshelf/internal/repositories/repomanager"
)

// DefaultListLimit bounds listing and search pages when the caller passes no
// explicit limit.
const DefaultListLimit = 50

// ArchiveService covers account upserts, record ingestion, listing and
// category statistics.
type ArchiveService struct {
	db       *sql.DB
	repos    repomanager.Manager
	stats    *StatsCache
	logger   logging.Logger
	limitCap int

	now func() time.Time
}

func NewArchiveService(db *sql.DB, repos repomanager.Manager, stats *StatsCache, logger logging.Logger, limitCap int) *ArchiveService {
	return &ArchiveService{
		db:       db,
		repos:    repos,
		stats:    stats,
		logger:   logger,
		limitCap: limitCap,
		now:      time.Now,
	}
}

// RegisterAccount creates the account on first contact and refreshes its
// attributes afterwards.
func (s *ArchiveService) RegisterAccount(ctx context.Context, acc *models.Account) error {
	if acc == nil || acc.ID == 0 {
		return fmt.Errorf("account id is required: %w", common.ErrInvalidArgument)
	}
	if err := s.repos.Accounts(s.db).Upsert(ctx, acc); err != nil {
		s.logger.Error(ctx, "account upsert failed", "owner", acc.ID, "error", err)
		return err
	}
	return nil
}

// IngestMedia stores a normalized media payload. A repeat of the same
// (owner, fingerprint) pair returns the already-stored record with
// created=false; nothing is written and no error is reported.
func (s *ArchiveService) IngestMedia(ctx context.Context, rec *models.MediaRecord) (stored *models.MediaRecord, created bool, err error) {
	if rec == nil || rec.OwnerID == 0 || rec.FileID == "" || rec.Fingerprint == "" {
		return nil, false, fmt.Errorf("owner, file id and fingerprint are required: %w", common.ErrInvalidArgument)
	}
	if !rec.Category.Valid() {
		return nil, false, fmt.Errorf("unknown category %q: %w", rec.Category, common.ErrInvalidArgument)
	}

	rec.ID = uuid.New()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	rec.DeletedAt = nil

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Media(tx).Create(ctx, rec); err != nil {
			return err
		}
		return s.repos.SearchIndex(tx).IndexMedia(ctx, rec)
	})
	if errors.Is(err, common.ErrDuplicate) {
		existing, gerr := s.repos.Media(s.db).GetByFingerprint(ctx, rec.OwnerID, rec.Fingerprint)
		if gerr != nil {
			return nil, false, gerr
		}
		return existing, false, nil
	}
	if err != nil {
		s.logger.Error(ctx, "media ingestion failed", "owner", rec.OwnerID, "error", err)
		return nil, false, err
	}

	s.stats.Invalidate(rec.OwnerID)
	return rec, true, nil
}

// IngestLink stores a normalized link payload. Links are not deduplicated.
func (s *ArchiveService) IngestLink(ctx context.Context, rec *models.LinkRecord) (*models.LinkRecord, error) {
	if rec == nil || rec.OwnerID == 0 || rec.URL == "" {
		return nil, fmt.Errorf("owner and url are required: %w", common.ErrInvalidArgument)
	}

	rec.ID = uuid.New()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	rec.DeletedAt = nil

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Links(tx).Create(ctx, rec); err != nil {
			return err
		}
		return s.repos.SearchIndex(tx).IndexLink(ctx, rec)
	})
	if err != nil {
		s.logger.Error(ctx, "link ingestion failed", "owner", rec.OwnerID, "error", err)
		return nil, err
	}
	return rec, nil
}

// ListMedia returns one page of the owner's records matching c plus the
// total count.
func (s *ArchiveService) ListMedia(ctx context.Context, owner int64, c media.Criteria, limit, offset int) ([]*models.MediaRecord, int64, error) {
	if offset < 0 {
		offset = 0
	}
	return s.repos.Media(s.db).List(ctx, owner, c, clampLimit(limit, s.limitCap), offset)
}

// ListMediaByDate returns all non-deleted records newest first, for
// client-side grouping by calendar date.
func (s *ArchiveService) ListMediaByDate(ctx context.Context, owner int64) ([]*models.MediaRecord, error) {
	return s.repos.Media(s.db).ListByDate(ctx, owner)
}

// ListLinks returns one page of the owner's links matching c plus the total
// count.
func (s *ArchiveService) ListLinks(ctx context.Context, owner int64, c links.Criteria, limit, offset int) ([]*models.LinkRecord, int64, error) {
	if offset < 0 {
		offset = 0
	}
	return s.repos.Links(s.db).List(ctx, owner, c, clampLimit(limit, s.limitCap), offset)
}

// Stats returns the owner's non-deleted record counts per display category,
// with generic documents folded into photo/video by MIME.
func (s *ArchiveService) Stats(ctx context.Context, owner int64) ([]models.CategoryStat, error) {
	if cached, ok := s.stats.Get(owner); ok {
		return cached, nil
	}

	raw, err := s.repos.Media(s.db).RawStats(ctx, owner)
	if err != nil {
		s.logger.Error(ctx, "stats query failed", "owner", owner, "error", err)
		return nil, err
	}

	folded := classify.FoldStats(raw)
	s.stats.Put(owner, folded)
	return folded, nil
}

func clampLimit(limit, ceiling int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}
