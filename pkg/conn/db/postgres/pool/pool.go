package pool

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// something sending SQL.
//
// This is a subset of methods which `*pgxpool.Pool` and `pgx.Tx` have in common.
type Queryer interface {
	// sending SQL Command which does not have any result rows.
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)

	// sending SQL Command which has result rows.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)

	// sending SQL Command which has just single result row.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// something begins SQL Transaction.
type Begin interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a transaction, or a savepoint when it is begun from another Tx.
type Tx interface {
	Queryer
	Begin

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Pool is a connection pool which the stores share.
//
// If you need to use `*pgxpool.Pool` as `Pool`, `Wrap` it.
type Pool interface {
	Queryer
	Begin

	Close()
}

// pgx.Tx.Begin returns pgx.Tx, so it is wrapped to satisfy Tx.
type pgxTx struct {
	pgx.Tx
}

func (tx pgxTx) Begin(ctx context.Context) (Tx, error) {
	nested, err := tx.Tx.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return pgxTx{nested}, nil
}

type pgxPool struct {
	*pgxpool.Pool
}

func (p pgxPool) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return pgxTx{tx}, nil
}

func Wrap(p *pgxpool.Pool) Pool {
	return pgxPool{p}
}

// Connect opens a new Pool for the database url.
//
// maxConns <= 0 means the default of pgxpool.
func Connect(ctx context.Context, url string, maxConns int32) (Pool, error) {
	conf, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("database url is malformed: %w", err)
	}
	if 0 < maxConns {
		conf.MaxConns = maxConns
	}
	p, err := pgxpool.ConnectConfig(ctx, conf)
	if err != nil {
		return nil, err
	}
	return Wrap(p), nil
}

// InTx runs f in a transaction begun from b.
//
// When f returns nil, the transaction is committed. Otherwise it is rolled back.
func InTx[T any](ctx context.Context, b Begin, f func(Tx) (T, error)) (T, error) {
	var zero T
	tx, err := b.Begin(ctx)
	if err != nil {
		return zero, err
	}
	defer tx.Rollback(ctx)

	ret, err := f(tx)
	if err != nil {
		return zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		return zero, err
	}
	return ret, nil
}

// ErrNoRows tells whether err is caused by empty result of QueryRow.
func ErrNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
