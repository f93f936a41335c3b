package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/teleshelf/teleshelf/internal/common"
	"github.com/teleshelf/teleshelf/internal/dbx"
	"github.com/teleshelf/teleshelf/internal/logging"
	"github.com/teleshelf/teleshelf/internal/models"
	"github.com/teleshelf/teleshelf/internal/repositories/repomanager"
)

// TrashService drives the per-record state machine
// Active → InTrash → Active/Destroyed and the scheduled purge.
type TrashService struct {
	db       *sql.DB
	repos    repomanager.Manager
	stats    *StatsCache
	logger   logging.Logger
	batchCap int

	now func() time.Time
}

func NewTrashService(db *sql.DB, repos repomanager.Manager, stats *StatsCache, logger logging.Logger, batchCap int) *TrashService {
	return &TrashService{
		db:       db,
		repos:    repos,
		stats:    stats,
		logger:   logger,
		batchCap: batchCap,
		now:      time.Now,
	}
}

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed record id %q: %w", id, common.ErrInvalidArgument)
	}
	return uid, nil
}

// SoftDeleteMedia stamps the tombstone. Returns false when the record does
// not exist, belongs to another account or is already in the trash; the
// caller cannot tell those cases apart.
func (s *TrashService) SoftDeleteMedia(ctx context.Context, owner int64, id string) (bool, error) {
	uid, err := parseID(id)
	if err != nil {
		return false, err
	}
	ok, err := s.repos.Media(s.db).SoftDelete(ctx, uid, owner, s.now().UTC())
	if err != nil {
		s.logger.Error(ctx, "media soft-delete failed", "owner", owner, "id", id, "error", err)
		return false, err
	}
	if ok {
		s.stats.Invalidate(owner)
	}
	return ok, nil
}

// SoftDeleteManyMedia applies SoftDeleteMedia per id and returns the count
// actually transitioned. The batch is not atomic: individual failures are
// logged and skipped, partial success is the documented contract.
func (s *TrashService) SoftDeleteManyMedia(ctx context.Context, owner int64, ids []string) (int, error) {
	if len(ids) > s.batchCap {
		return 0, fmt.Errorf("batch of %d exceeds cap of %d: %w", len(ids), s.batchCap, common.ErrInvalidArgument)
	}

	count := 0
	for _, id := range ids {
		ok, err := s.SoftDeleteMedia(ctx, owner, id)
		if err != nil {
			s.logger.Warn(ctx, "batch soft-delete item skipped", "owner", owner, "id", id, "error", err)
			continue
		}
		if ok {
			count++
		}
	}
	return count, nil
}

// RestoreMedia clears the tombstone; a no-op unless the record is currently
// in the trash and owned by the caller.
func (s *TrashService) RestoreMedia(ctx context.Context, owner int64, id string) (bool, error) {
	uid, err := parseID(id)
	if err != nil {
		return false, err
	}
	ok, err := s.repos.Media(s.db).Restore(ctx, uid, owner)
	if err != nil {
		s.logger.Error(ctx, "media restore failed", "owner", owner, "id", id, "error", err)
		return false, err
	}
	if ok {
		s.stats.Invalidate(owner)
	}
	return ok, nil
}

// HardDeleteMedia permanently removes the record and its index entry in one
// transaction, regardless of trash state.
func (s *TrashService) HardDeleteMedia(ctx context.Context, owner int64, id string) (bool, error) {
	uid, err := parseID(id)
	if err != nil {
		return false, err
	}

	var ok bool
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.SearchIndex(tx).DeleteMedia(ctx, uid); err != nil {
			return err
		}
		var err error
		ok, err = s.repos.Media(tx).Delete(ctx, uid, owner)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "media hard-delete failed", "owner", owner, "id", id, "error", err)
		return false, err
	}
	if ok {
		s.stats.Invalidate(owner)
	}
	return ok, nil
}

// ListTrashMedia returns the owner's trashed records, most recently
// trashed first.
func (s *TrashService) ListTrashMedia(ctx context.Context, owner int64) ([]*models.MediaRecord, error) {
	return s.repos.Media(s.db).ListTrash(ctx, owner)
}

// SoftDeleteLink stamps the link's tombstone; same no-op semantics as media.
func (s *TrashService) SoftDeleteLink(ctx context.Context, owner int64, id string) (bool, error) {
	uid, err := parseID(id)
	if err != nil {
		return false, err
	}
	ok, err := s.repos.Links(s.db).SoftDelete(ctx, uid, owner, s.now().UTC())
	if err != nil {
		s.logger.Error(ctx, "link soft-delete failed", "owner", owner, "id", id, "error", err)
		return false, err
	}
	return ok, nil
}

// RestoreLink clears the link's tombstone.
func (s *TrashService) RestoreLink(ctx context.Context, owner int64, id string) (bool, error) {
	uid, err := parseID(id)
	if err != nil {
		return false, err
	}
	ok, err := s.repos.Links(s.db).Restore(ctx, uid, owner)
	if err != nil {
		s.logger.Error(ctx, "link restore failed", "owner", owner, "id", id, "error", err)
		return false, err
	}
	return ok, nil
}

// HardDeleteLink permanently removes the link and its index entry.
func (s *TrashService) HardDeleteLink(ctx context.Context, owner int64, id string) (bool, error) {
	uid, err := parseID(id)
	if err != nil {
		return false, err
	}

	var ok bool
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.SearchIndex(tx).DeleteLink(ctx, uid); err != nil {
			return err
		}
		var err error
		ok, err = s.repos.Links(tx).Delete(ctx, uid, owner)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "link hard-delete failed", "owner", owner, "id", id, "error", err)
		return false, err
	}
	return ok, nil
}

// ListTrashLinks returns the owner's trashed links, most recently
// trashed first.
func (s *TrashService) ListTrashLinks(ctx context.Context, owner int64) ([]*models.LinkRecord, error) {
	return s.repos.Links(s.db).ListTrash(ctx, owner)
}

// PurgeOlderThan permanently removes every trashed record, media and link,
// whose tombstone is strictly older than cutoff. Safe to invoke repeatedly
// and concurrently with ordinary traffic: each run only removes
// strictly-older rows, so overlapping runs converge.
func (s *TrashService) PurgeOlderThan(ctx context.Context, cutoff time.Time) (models.PurgeResult, error) {
	var res models.PurgeResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repos.Media(s.db).PurgeOlderThan(gctx, cutoff)
		res.Media = n
		return err
	})
	g.Go(func() error {
		n, err := s.repos.Links(s.db).PurgeOlderThan(gctx, cutoff)
		res.Links = n
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error(ctx, "purge failed", "cutoff", cutoff, "error", err)
		return res, err
	}

	if res.Media > 0 || res.Links > 0 {
		// cross-owner removal, cheaper to drop every cached stat
		s.stats.Reset()
	}
	return res, nil
}
