package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// ReplaceConfig describes a full table replacement.
type ReplaceConfig struct {
	Table   string   // target table, optionally schema-qualified
	Columns []string // every column is created as TEXT
}

// ReplaceTable swaps the contents of a TEXT-column table in one
// transaction:
//  1. CREATE TABLE IF NOT EXISTS with the given columns
//  2. TRUNCATE
//  3. COPY the rows
//
// Readers see either the old rows or the new ones.
func ReplaceTable(ctx context.Context, pool Pool, cfg ReplaceConfig, rows [][]any) (int64, error) {
	if len(cfg.Columns) == 0 {
		return 0, eris.New("db: replace: no columns specified")
	}
	if cfg.Table == "" {
		return 0, eris.New("db: replace: no table specified")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: replace: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	target := Identifier(cfg.Table).Sanitize()
	defs := make([]string, len(cfg.Columns))
	for i, c := range cfg.Columns {
		defs[i] = pgx.Identifier{c}.Sanitize() + " TEXT"
	}
	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", target, strings.Join(defs, ", "))
	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return 0, eris.Wrapf(err, "db: replace: create %s", cfg.Table)
	}
	if _, err := tx.Exec(ctx, "TRUNCATE "+target); err != nil {
		return 0, eris.Wrapf(err, "db: replace: truncate %s", cfg.Table)
	}

	var n int64
	if len(rows) > 0 {
		n, err = tx.CopyFrom(ctx, Identifier(cfg.Table), cfg.Columns, pgx.CopyFromRows(rows))
		if err != nil {
			return 0, eris.Wrapf(err, "db: replace: COPY INTO %s", cfg.Table)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: replace: commit tx")
	}
	return n, nil
}

// Identifier splits a possibly schema-qualified name.
func Identifier(table string) pgx.Identifier {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return pgx.Identifier{schema, name}
	}
	return pgx.Identifier{table}
}
