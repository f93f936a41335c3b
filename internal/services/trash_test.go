package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teleshelf/teleshelf/internal/common"
	"github.com/teleshelf/teleshelf/internal/models"
)

func newTrashService(t *testing.T, repos *fakeManager) (*TrashService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	svc := NewTrashService(db, repos, newTestStats(t), newQuietLogger(), 100)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, mock
}

func TestSoftDeleteMedia(t *testing.T) {
	id := uuid.New()

	repos := newFakeManager()
	repos.media.softOK[id] = true
	svc, _ := newTrashService(t, repos)
	svc.stats.Put(7, []models.CategoryStat{{Category: models.CategoryPhoto, Count: 1}})

	ok, err := svc.SoftDeleteMedia(context.Background(), 7, id.String())
	require.NoError(t, err)
	assert.True(t, ok)

	_, cached := svc.stats.Get(7)
	assert.False(t, cached, "trashing a record must invalidate the owner's stats")
}

func TestSoftDeleteMedia_NoOpKeepsStats(t *testing.T) {
	id := uuid.New()

	repos := newFakeManager()
	svc, _ := newTrashService(t, repos)
	svc.stats.Put(7, []models.CategoryStat{{Category: models.CategoryPhoto, Count: 1}})

	ok, err := svc.SoftDeleteMedia(context.Background(), 7, id.String())
	require.NoError(t, err)
	assert.False(t, ok)

	_, cached := svc.stats.Get(7)
	assert.True(t, cached)
}

func TestSoftDeleteMedia_MalformedID(t *testing.T) {
	repos := newFakeManager()
	svc, _ := newTrashService(t, repos)

	_, err := svc.SoftDeleteMedia(context.Background(), 7, "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestSoftDeleteManyMedia_PartialSuccess(t *testing.T) {
	okID := uuid.New()
	failID := uuid.New()
	missingID := uuid.New()

	repos := newFakeManager()
	repos.media.softOK[okID] = true
	repos.media.softErr[failID] = errors.New("deadlock")
	svc, _ := newTrashService(t, repos)

	count, err := svc.SoftDeleteManyMedia(context.Background(), 7,
		[]string{okID.String(), failID.String(), missingID.String(), "garbage"})
	require.NoError(t, err)
	assert.Equal(t, 1, count, "only the transitioned record counts")
}

func TestSoftDeleteManyMedia_BatchCap(t *testing.T) {
	repos := newFakeManager()
	svc, _ := newTrashService(t, repos)

	ids := make([]string, 101)
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	_, err := svc.SoftDeleteManyMedia(context.Background(), 7, ids)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestRestoreMedia_NoOp(t *testing.T) {
	repos := newFakeManager()
	svc, _ := newTrashService(t, repos)
	svc.stats.Put(7, []models.CategoryStat{{Category: models.CategoryPhoto, Count: 1}})

	ok, err := svc.RestoreMedia(context.Background(), 7, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, ok)

	_, cached := svc.stats.Get(7)
	assert.True(t, cached)
}

func TestHardDeleteMedia_RemovesIndexEntryFirst(t *testing.T) {
	id := uuid.New()

	repos := newFakeManager()
	repos.media.deleteOK = true
	svc, mock := newTrashService(t, repos)

	mock.ExpectBegin()
	mock.ExpectCommit()

	ok, err := svc.HardDeleteMedia(context.Background(), 7, id.String())
	require.NoError(t, err)
	assert.True(t, ok)

	require.Equal(t, []uuid.UUID{id}, repos.index.removedMedia)
	require.Equal(t, []uuid.UUID{id}, repos.media.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHardDeleteMedia_RepositoryErrorRollsBack(t *testing.T) {
	repos := newFakeManager()
	repos.media.deleteErr = errors.New("db down")
	svc, mock := newTrashService(t, repos)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.HardDeleteMedia(context.Background(), 7, uuid.NewString())
	assert.ErrorContains(t, err, "db down")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHardDeleteLink(t *testing.T) {
	id := uuid.New()

	repos := newFakeManager()
	repos.links.deleteOK = true
	svc, mock := newTrashService(t, repos)

	mock.ExpectBegin()
	mock.ExpectCommit()

	ok, err := svc.HardDeleteLink(context.Background(), 7, id.String())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []uuid.UUID{id}, repos.index.removedLinks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTrashMedia(t *testing.T) {
	trashed := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	repos := newFakeManager()
	repos.media.trash = []*models.MediaRecord{{DeletedAt: &trashed}}
	svc, _ := newTrashService(t, repos)

	recs, err := svc.ListTrashMedia(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].InTrash())
}

func TestPurgeOlderThan(t *testing.T) {
	repos := newFakeManager()
	repos.media.purged = 3
	repos.links.purged = 2
	svc, _ := newTrashService(t, repos)
	svc.stats.Put(7, []models.CategoryStat{{Category: models.CategoryPhoto, Count: 1}})

	res, err := svc.PurgeOlderThan(context.Background(), time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, models.PurgeResult{Media: 3, Links: 2}, res)

	_, cached := svc.stats.Get(7)
	assert.False(t, cached, "purge drops every cached stat")
}

func TestPurgeOlderThan_NothingRemoved(t *testing.T) {
	repos := newFakeManager()
	svc, _ := newTrashService(t, repos)
	svc.stats.Put(7, []models.CategoryStat{{Category: models.CategoryPhoto, Count: 1}})

	res, err := svc.PurgeOlderThan(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.PurgeResult{}, res)

	_, cached := svc.stats.Get(7)
	assert.True(t, cached)
}

func TestPurgeOlderThan_Error(t *testing.T) {
	repos := newFakeManager()
	repos.media.purgeErr = errors.New("relation locked")
	svc, _ := newTrashService(t, repos)

	_, err := svc.PurgeOlderThan(context.Background(), time.Now())
	assert.ErrorContains(t, err, "relation locked")
}
