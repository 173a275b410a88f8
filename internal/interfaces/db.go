package interfaces

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts over a pgx pool and an open transaction so repository
// methods can run in either.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxManager runs a function inside one database transaction. The
// querier passed to fn must be used for every statement that has to be
// atomic with the rest; returning an error rolls everything back.
type TxManager interface {
	WithTx(ctx context.Context, fn func(q DBTX) error) error
}
