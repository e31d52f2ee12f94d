package source

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/retail-presence/internal/db"
	"github.com/sells-group/retail-presence/internal/table"
)

// PostgresSource loads every row of one Postgres table. The pool is opened
// on first Load and reused by later reloads.
type PostgresSource struct {
	name    string
	dsn     string
	table   string
	poolCfg *db.PoolConfig

	mu   sync.Mutex
	pool db.Pool
}

// NewPostgres creates a source reading tableName (optionally
// schema-qualified) from the database at dsn.
func NewPostgres(name, dsn, tableName string) *PostgresSource {
	return &PostgresSource{name: name, dsn: dsn, table: tableName}
}

func (s *PostgresSource) getPool(ctx context.Context) (db.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != nil {
		return s.pool, nil
	}
	pool, err := db.Open(ctx, s.dsn, s.poolCfg)
	if err != nil {
		return nil, err
	}
	s.pool = pool
	return pool, nil
}

// Load implements Source.
func (s *PostgresSource) Load(ctx context.Context) (*table.Table, error) {
	pool, err := s.getPool(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "source: postgres")
	}

	rows, err := pool.Query(ctx, "SELECT * FROM "+db.Identifier(s.table).Sanitize())
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query %s", s.table)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	b := table.NewBuilder(s.name, cols)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, eris.Wrap(err, "postgres: values")
		}
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = formatValue(v)
		}
		b.Add(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: rows")
	}
	return b.Table(), nil
}

// Close releases the pool.
func (s *PostgresSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return nil
}

func (s *PostgresSource) String() string { return "postgres:" + s.table }
