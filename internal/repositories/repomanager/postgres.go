package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/teleshelf/teleshelf/internal/dbx"
	"github.com/teleshelf/teleshelf/internal/migrations"
	"github.com/teleshelf/teleshelf/internal/repositories/accounts"
	"github.com/teleshelf/teleshelf/internal/repositories/links"
	"github.com/teleshelf/teleshelf/internal/repositories/media"
	"github.com/teleshelf/teleshelf/internal/repositories/searchindex"
)

type PostgresManager struct{}

func NewPostgresManager() *PostgresManager {
	return &PostgresManager{}
}

func (m *PostgresManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

func (m *PostgresManager) Media(db dbx.DBTX) media.Repository {
	return media.NewPostgresRepository(db)
}

func (m *PostgresManager) Links(db dbx.DBTX) links.Repository {
	return links.NewPostgresRepository(db)
}

func (m *PostgresManager) SearchIndex(db dbx.DBTX) searchindex.Maintainer {
	return searchindex.NewPostgresMaintainer(db)
}

func (m *PostgresManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}
