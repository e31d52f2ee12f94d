package source

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/retail-presence/internal/table"
)

// SQLiteSource loads every row of one SQLite table.
type SQLiteSource struct {
	name  string
	dsn   string
	table string
}

// NewSQLite creates a source reading tableName from the database at dsn.
func NewSQLite(name, dsn, tableName string) *SQLiteSource {
	return &SQLiteSource{name: name, dsn: dsn, table: tableName}
}

// Load implements Source.
func (s *SQLiteSource) Load(ctx context.Context) (*table.Table, error) {
	db, err := sql.Open("sqlite", s.dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	defer db.Close() //nolint:errcheck

	query := "SELECT * FROM " + quoteIdent(s.table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query %s", s.table)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: columns")
	}

	b := table.NewBuilder(s.name, cols)
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan")
		}
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = formatValue(v)
		}
		b.Add(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: rows")
	}
	return b.Table(), nil
}

func (s *SQLiteSource) String() string { return "sqlite:" + s.dsn + "#" + s.table }

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
