package xpgx

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool executes squirrel queries against a pgx pool.
type Pool interface {
	Execx(ctx context.Context, q squirrel.Sqlizer) (pgconn.CommandTag, error)
	QueryRowx(ctx context.Context, q squirrel.Sqlizer) pgx.Row
	Close()
}

type pool struct {
	inner *pgxpool.Pool
}

func Connect(ctx context.Context, dsn string) (Pool, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}

	return &pool{inner: p}, nil
}

func (p *pool) Execx(ctx context.Context, q squirrel.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("query.ToSql: %w", err)
	}
	return p.inner.Exec(ctx, sql, args...)
}

func (p *pool) QueryRowx(ctx context.Context, q squirrel.Sqlizer) pgx.Row {
	sql, args, err := q.ToSql()
	if err != nil {
		return errRow{err: fmt.Errorf("query.ToSql: %w", err)}
	}
	return p.inner.QueryRow(ctx, sql, args...)
}

func (p *pool) Close() {
	p.inner.Close()
}

type errRow struct {
	err error
}

func (r errRow) Scan(...interface{}) error {
	return r.err
}
