package accounts

import (
	"context"

	"github.com/teleshelf/teleshelf/internal/models"
)

type Repository interface {
	// Upsert creates the account on first contact and refreshes its display
	// attributes on every subsequent one.
	Upsert(ctx context.Context, acc *models.Account) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
}
