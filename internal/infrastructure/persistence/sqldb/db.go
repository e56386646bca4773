package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type DB struct {
	*sql.DB
	Dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *DB {
	return &DB{
		DB:      db,
		Dialect: dialect,
	}
}

// Migrate brings the schema up to date using the dialect's migrations.
func (db *DB) Migrate(ctx context.Context) error {
	return db.Dialect.Migrate(ctx, db.DB)
}

func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// rebind rewrites $n placeholders as :n for Oracle. Queries are written in
// Postgres style; "$1" is a prefix of "$10", and both map the same way.
func (db *DB) rebind(query string) string {
	if db.Dialect.Name() == "oracle" {
		return strings.ReplaceAll(query, "$", ":")
	}
	return query
}
