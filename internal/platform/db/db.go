// Package db wires the Postgres connection pool and the transaction/
// advisory-lock helpers the sweep repository builds on.
package db

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
)

// Open establishes the pool and verifies connectivity with a bounded ping.
// Failures here are almost always the connectivity-class errors callers care
// about (refused connections, auth, TLS), so they're wrapped with
// cockroachdb/errors for a cause chain a higher layer can classify on.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, crerr.Wrap(err, "open postgres connection")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, crerr.Wrap(err, "ping postgres")
	}

	return conn, nil
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on any error or panic.
func WithTx(ctx context.Context, conn *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin tx")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(tx)
	return err
}

// WithAdvisoryLock runs fn inside a transaction holding a transaction-level
// Postgres advisory lock for the given key (released at commit or rollback),
// serializing concurrent callers
// (e.g. two overlapping sweep cron triggers) without a dedicated lock table.
func WithAdvisoryLock(ctx context.Context, conn *sqlx.DB, key int64, fn func(tx *sqlx.Tx) error) error {
	return WithTx(ctx, conn, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, key); err != nil {
			return crerr.Wrap(err, "acquire advisory lock")
		}
		return fn(tx)
	})
}

// Queryer is satisfied by both *sqlx.DB and *sqlx.Tx, letting repository
// methods run against either a pooled connection or an open transaction.
type Queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}
