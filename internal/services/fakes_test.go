package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/teleshelf/teleshelf/internal/classify"
	"github.com/teleshelf/teleshelf/internal/dbx"
	"github.com/teleshelf/teleshelf/internal/logging"
	"github.com/teleshelf/teleshelf/internal/models"
	"github.com/teleshelf/teleshelf/internal/repositories/accounts"
	"github.com/teleshelf/teleshelf/internal/repositories/links"
	"github.com/teleshelf/teleshelf/internal/repositories/media"
	"github.com/teleshelf/teleshelf/internal/repositories/repomanager"
	"github.com/teleshelf/teleshelf/internal/repositories/searchindex"
)

// -------- test helpers --------

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newQuietLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestStats(t *testing.T) *StatsCache {
	t.Helper()
	cache, err := NewStatsCache(16)
	require.NoError(t, err)
	return cache
}

// -------- test fakes --------

type fakeAccountsRepo struct {
	accounts.Repository
	upserted []*models.Account
	err      error
}

func (f *fakeAccountsRepo) Upsert(ctx context.Context, acc *models.Account) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, acc)
	return nil
}

type fakeMediaRepo struct {
	media.Repository

	createErr error
	created   []*models.MediaRecord

	byFingerprint *models.MediaRecord
	fpErr         error

	listRecs  []*models.MediaRecord
	listTotal int64
	listErr   error
	gotList   *listCall

	byDate []*models.MediaRecord

	rawStats      []classify.RawStat
	rawStatsCalls int
	rawStatsErr   error

	prefixRows []*media.SearchRow
	prefixErr  error
	gotPrefix  *prefixCall

	subRecs   []*models.MediaRecord
	subErr    error
	gotNeedle string

	softOK  map[uuid.UUID]bool
	softErr map[uuid.UUID]error

	restoreOK bool

	deleteOK  bool
	deleteErr error
	deleted   []uuid.UUID

	trash []*models.MediaRecord

	purged   int64
	purgeErr error
}

type listCall struct {
	owner         int64
	c             media.Criteria
	limit, offset int
}

type prefixCall struct {
	owner   int64
	tsquery string
	limit   int
}

func (f *fakeMediaRepo) Create(ctx context.Context, rec *models.MediaRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, rec)
	return nil
}

func (f *fakeMediaRepo) GetByFingerprint(ctx context.Context, owner int64, fp string) (*models.MediaRecord, error) {
	return f.byFingerprint, f.fpErr
}

func (f *fakeMediaRepo) List(ctx context.Context, owner int64, c media.Criteria, limit, offset int) ([]*models.MediaRecord, int64, error) {
	f.gotList = &listCall{owner: owner, c: c, limit: limit, offset: offset}
	return f.listRecs, f.listTotal, f.listErr
}

func (f *fakeMediaRepo) ListByDate(ctx context.Context, owner int64) ([]*models.MediaRecord, error) {
	return f.byDate, nil
}

func (f *fakeMediaRepo) RawStats(ctx context.Context, owner int64) ([]classify.RawStat, error) {
	f.rawStatsCalls++
	return f.rawStats, f.rawStatsErr
}

func (f *fakeMediaRepo) SearchPrefix(ctx context.Context, owner int64, tsquery string, c media.Criteria, limit int) ([]*media.SearchRow, error) {
	f.gotPrefix = &prefixCall{owner: owner, tsquery: tsquery, limit: limit}
	return f.prefixRows, f.prefixErr
}

func (f *fakeMediaRepo) SearchSubstring(ctx context.Context, owner int64, needle string, c media.Criteria, limit int) ([]*models.MediaRecord, error) {
	f.gotNeedle = needle
	return f.subRecs, f.subErr
}

func (f *fakeMediaRepo) SoftDelete(ctx context.Context, id uuid.UUID, owner int64, at time.Time) (bool, error) {
	if err := f.softErr[id]; err != nil {
		return false, err
	}
	return f.softOK[id], nil
}

func (f *fakeMediaRepo) Restore(ctx context.Context, id uuid.UUID, owner int64) (bool, error) {
	return f.restoreOK, nil
}

func (f *fakeMediaRepo) Delete(ctx context.Context, id uuid.UUID, owner int64) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return f.deleteOK, nil
}

func (f *fakeMediaRepo) ListTrash(ctx context.Context, owner int64) ([]*models.MediaRecord, error) {
	return f.trash, nil
}

func (f *fakeMediaRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.purged, f.purgeErr
}

type fakeLinksRepo struct {
	links.Repository

	createErr error
	created   []*models.LinkRecord

	listRecs []*models.LinkRecord

	prefixRows []*links.SearchRow
	gotPrefix  *prefixCall

	subRecs []*models.LinkRecord

	softOK    bool
	restoreOK bool
	deleteOK  bool
	deleted   []uuid.UUID

	trash []*models.LinkRecord

	purged   int64
	purgeErr error
}

func (f *fakeLinksRepo) Create(ctx context.Context, rec *models.LinkRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, rec)
	return nil
}

func (f *fakeLinksRepo) List(ctx context.Context, owner int64, c links.Criteria, limit, offset int) ([]*models.LinkRecord, int64, error) {
	return f.listRecs, int64(len(f.listRecs)), nil
}

func (f *fakeLinksRepo) SearchPrefix(ctx context.Context, owner int64, tsquery string, c links.Criteria, limit int) ([]*links.SearchRow, error) {
	f.gotPrefix = &prefixCall{owner: owner, tsquery: tsquery, limit: limit}
	return f.prefixRows, nil
}

func (f *fakeLinksRepo) SearchSubstring(ctx context.Context, owner int64, needle string, c links.Criteria, limit int) ([]*models.LinkRecord, error) {
	return f.subRecs, nil
}

func (f *fakeLinksRepo) SoftDelete(ctx context.Context, id uuid.UUID, owner int64, at time.Time) (bool, error) {
	return f.softOK, nil
}

func (f *fakeLinksRepo) Restore(ctx context.Context, id uuid.UUID, owner int64) (bool, error) {
	return f.restoreOK, nil
}

func (f *fakeLinksRepo) Delete(ctx context.Context, id uuid.UUID, owner int64) (bool, error) {
	f.deleted = append(f.deleted, id)
	return f.deleteOK, nil
}

func (f *fakeLinksRepo) ListTrash(ctx context.Context, owner int64) ([]*models.LinkRecord, error) {
	return f.trash, nil
}

func (f *fakeLinksRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.purged, f.purgeErr
}

type fakeIndex struct {
	searchindex.Maintainer

	indexedMedia []*models.MediaRecord
	mediaErr     error
	removedMedia []uuid.UUID

	indexedLinks []*models.LinkRecord
	linkErr      error
	removedLinks []uuid.UUID
}

func (f *fakeIndex) IndexMedia(ctx context.Context, rec *models.MediaRecord) error {
	if f.mediaErr != nil {
		return f.mediaErr
	}
	f.indexedMedia = append(f.indexedMedia, rec)
	return nil
}

func (f *fakeIndex) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	f.removedMedia = append(f.removedMedia, id)
	return nil
}

func (f *fakeIndex) IndexLink(ctx context.Context, rec *models.LinkRecord) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	f.indexedLinks = append(f.indexedLinks, rec)
	return nil
}

func (f *fakeIndex) DeleteLink(ctx context.Context, id uuid.UUID) error {
	f.removedLinks = append(f.removedLinks, id)
	return nil
}

type fakeManager struct {
	repomanager.Manager

	accounts *fakeAccountsRepo
	media    *fakeMediaRepo
	links    *fakeLinksRepo
	index    *fakeIndex
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		accounts: &fakeAccountsRepo{},
		media:    &fakeMediaRepo{softOK: map[uuid.UUID]bool{}, softErr: map[uuid.UUID]error{}},
		links:    &fakeLinksRepo{},
		index:    &fakeIndex{},
	}
}

func (f *fakeManager) Accounts(db dbx.DBTX) accounts.Repository { return f.accounts }

func (f *fakeManager) Media(db dbx.DBTX) media.Repository { return f.media }

func (f *fakeManager) Links(db dbx.DBTX) links.Repository { return f.links }

func (f *fakeManager) SearchIndex(db dbx.DBTX) searchindex.Maintainer { return f.index }
