package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager is implemented by SQL adapters that group several writes
// into one database transaction, as SaveReversal does.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	// Rollback is a no-op after Commit.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
