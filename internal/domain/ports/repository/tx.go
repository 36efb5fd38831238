package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying transaction handle via `tx`.
//
// Repository methods accept `tx Tx` so the same call works transactionally
// (tx is a pgx.Tx) or standalone (tx is nil, the pool is used). Use cases
// that must keep a read and a write atomic for one student wrap both in
// WithTx and take the per-row advisory lock first.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
