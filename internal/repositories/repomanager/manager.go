// Package repomanager hands out repositories bound to a shared DB handle or
// to a transaction, and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/teleshelf/teleshelf/internal/dbx"
	"github.com/teleshelf/teleshelf/internal/repositories/accounts"
	"github.com/teleshelf/teleshelf/internal/repositories/links"
	"github.com/teleshelf/teleshelf/internal/repositories/media"
	"github.com/teleshelf/teleshelf/internal/repositories/searchindex"
)

type Manager interface {
	Accounts(db dbx.DBTX) accounts.Repository
	Media(db dbx.DBTX) media.Repository
	Links(db dbx.DBTX) links.Repository
	SearchIndex(db dbx.DBTX) searchindex.Maintainer
	RunMigrations(ctx context.Context, db *sql.DB) error
}
