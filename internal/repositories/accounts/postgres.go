// Package accounts provides the PostgreSQL-backed repository for owner
// accounts.
package accounts

import (
	"context"
	"database/sql"
	"errors"

	"github.com/teleshelf/teleshelf/internal/common"
	"github.com/teleshelf/teleshelf/internal/dbx"
	"github.com/teleshelf/teleshelf/internal/models"
)

// PostgresRepository implements account storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts the account or, when the id already exists, updates its
// display attributes in place.
func (r *PostgresRepository) Upsert(ctx context.Context, acc *models.Account) error {
	query := `
		INSERT INTO accounts (id, username, first_name, last_name)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), NULLIF($4,''))
		ON CONFLICT (id)
		DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name;
	`
	_, err := r.db.ExecContext(ctx, query, acc.ID, acc.Username, acc.FirstName, acc.LastName)
	if err != nil {
		return common.StorageError("db error", err)
	}
	return nil
}

// GetByID returns the account or common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `
		SELECT id, COALESCE(username,''), COALESCE(first_name,''), COALESCE(last_name,''), created_at
		FROM accounts WHERE id = $1
	`
	var acc models.Account
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&acc.ID, &acc.Username, &acc.FirstName, &acc.LastName, &acc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.StorageError("db error", err)
	}
	return &acc, nil
}
