package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// Open opens a database handle and verifies it with a retried ping: the
// database container often comes up a few seconds after the service.
// The ping backs off exponentially starting at baseDelay, up to maxRetries.
func Open(ctx context.Context, driver, dsn string, maxRetries uint64, baseDelay time.Duration) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(baseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return db, nil
}
