package links

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/teleshelf/teleshelf/internal/common"
	"github.com/teleshelf/teleshelf/internal/models"
)

var linkColumns = []string{
	"id", "owner_id", "url", "title", "description", "image_url", "site_name",
	"created_at", "deleted_at",
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func sampleLink() *models.LinkRecord {
	return &models.LinkRecord{
		ID:        uuid.New(),
		OwnerID:   1,
		URL:       "https://example.com/post",
		Title:     "A post",
		SiteName:  "Example",
		CreatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

func linkRow(rec *models.LinkRecord) *sqlmock.Rows {
	return sqlmock.NewRows(linkColumns).AddRow(
		rec.ID, rec.OwnerID, rec.URL, rec.Title, rec.Description,
		rec.ImageURL, rec.SiteName, rec.CreatedAt, nil,
	)
}

func TestCreate_InsertsLink(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rec := sampleLink()
	mock.ExpectExec(`INSERT\s+INTO\s+link_records`).
		WithArgs(rec.ID, rec.OwnerID, rec.URL, rec.Title, rec.Description, rec.ImageURL, rec.SiteName, rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+l\.id,.*FROM\s+link_records`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestList_ExcludesDeletedByDefault(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+COUNT\(\*\)\s+FROM\s+link_records\s+l\s+WHERE\s+l\.owner_id\s*=\s*\$1\s+AND\s+l\.deleted_at\s+IS\s+NULL`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`(?s)SELECT\s+l\.id,.*ORDER\s+BY\s+l\.created_at\s+DESC\s+LIMIT\s+\$2\s+OFFSET\s+\$3`).
		WithArgs(int64(1), 20, 0).
		WillReturnRows(linkRow(sampleLink()))

	recs, total, err := repo.List(context.Background(), 1, Criteria{}, 20, 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if total != 1 || len(recs) != 1 {
		t.Fatalf("unexpected page: total=%d len=%d", total, len(recs))
	}
}

func TestSearchPrefix_ScansMatchFlags(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rec := sampleLink()
	cols := append(append([]string{}, linkColumns...), "m_title", "m_desc", "m_url", "m_site")
	rows := sqlmock.NewRows(cols).AddRow(
		rec.ID, rec.OwnerID, rec.URL, rec.Title, rec.Description,
		rec.ImageURL, rec.SiteName, rec.CreatedAt, nil,
		false, false, true, false,
	)

	mock.ExpectQuery(`(?s)SELECT\s+l\.id,.*i\.title_tsv\s+@@\s+to_tsquery\('simple',\s*\$2\).*JOIN\s+link_search_index\s+i\s+ON\s+i\.link_id\s*=\s*l\.id.*ORDER\s+BY\s+ts_rank`).
		WithArgs("exampl:*", "exampl:*", int64(1), 50).
		WillReturnRows(rows)

	got, err := repo.SearchPrefix(context.Background(), 1, "exampl:*", Criteria{}, 50)
	if err != nil {
		t.Fatalf("SearchPrefix error: %v", err)
	}
	if len(got) != 1 || !got[0].URLMatch || got[0].TitleMatch {
		t.Fatalf("unexpected rows: %+v", got)
	}
}

func TestSoftDeleteRestoreDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	now := time.Now()

	mock.ExpectExec(`(?s)UPDATE\s+link_records\s+SET\s+deleted_at\s*=\s*\$3.*deleted_at\s+IS\s+NULL`).
		WithArgs(id, int64(1), now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.SoftDelete(context.Background(), id, 1, now)
	if err != nil || !ok {
		t.Fatalf("SoftDelete = %v, %v", ok, err)
	}

	mock.ExpectExec(`(?s)UPDATE\s+link_records\s+SET\s+deleted_at\s*=\s*NULL.*deleted_at\s+IS\s+NOT\s+NULL`).
		WithArgs(id, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err = repo.Restore(context.Background(), id, 1)
	if err != nil || !ok {
		t.Fatalf("Restore = %v, %v", ok, err)
	}

	mock.ExpectExec(`DELETE\s+FROM\s+link_records\s+WHERE\s+id\s*=\s*\$1\s+AND\s+owner_id\s*=\s*\$2`).
		WithArgs(id, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err = repo.Delete(context.Background(), id, 1)
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
}

func TestPurgeOlderThan(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cutoff := time.Now()
	mock.ExpectExec(`DELETE\s+FROM\s+link_records\s+WHERE\s+deleted_at\s+IS\s+NOT\s+NULL\s+AND\s+deleted_at\s*<\s*\$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.PurgeOlderThan(context.Background(), cutoff)
	if err != nil || n != 2 {
		t.Fatalf("PurgeOlderThan = %d, %v", n, err)
	}
}
