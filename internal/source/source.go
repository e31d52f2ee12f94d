// Package source loads survey tables from files, databases and remote URLs.
//
// A source URI is one of:
//
//	data/board.csv                      local CSV
//	data/posm.xlsx#Sheet1               local workbook, optional sheet name
//	sqlite://data/survey.db#board       SQLite table
//	postgres://user@host/db#survey.posm Postgres table
//	https://host/exports/board.csv      remote CSV or XLSX (also ftp://)
package source

import (
	"context"
	"database/sql/driver"
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/retail-presence/internal/fetcher"
	"github.com/sells-group/retail-presence/internal/table"
)

// Source produces a fresh table on every Load.
type Source interface {
	Load(ctx context.Context) (*table.Table, error)
	String() string
}

// Options carries shared collaborators for sources.
type Options struct {
	Fetcher *fetcher.Mux
	TempDir string
}

// Format is a file format for file-backed sources.
type Format string

// File formats.
const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// FormatOf infers a file format from a path extension.
func FormatOf(p string) (Format, error) {
	switch strings.ToLower(path.Ext(p)) {
	case ".csv", ".txt":
		return CSV, nil
	case ".xlsx":
		return XLSX, nil
	}
	return "", eris.Errorf("source: unsupported file type %q", p)
}

// Open resolves a URI to a Source. name labels the resulting table.
func Open(name, uri string, opts Options) (Source, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, eris.Errorf("source: empty uri for %s", name)
	}
	loc, frag, _ := strings.Cut(uri, "#")

	scheme, rest, hasScheme := strings.Cut(loc, "://")
	switch {
	case hasScheme && (scheme == "postgres" || scheme == "postgresql"):
		if frag == "" {
			return nil, eris.Errorf("source: postgres uri for %s needs a #table fragment", name)
		}
		return NewPostgres(name, loc, frag), nil
	case hasScheme && scheme == "sqlite":
		if frag == "" {
			return nil, eris.Errorf("source: sqlite uri for %s needs a #table fragment", name)
		}
		return NewSQLite(name, rest, frag), nil
	case fetcher.IsRemote(loc):
		if opts.Fetcher == nil {
			return nil, eris.Errorf("source: no fetcher configured for %s", uri)
		}
		return NewRemote(name, loc, frag, opts)
	case hasScheme:
		return nil, eris.Errorf("source: unsupported scheme %q", scheme)
	}
	return NewFile(name, filepath.Clean(loc), frag)
}

// NewFile opens a local CSV or XLSX file source. sheet applies to XLSX.
func NewFile(name, p, sheet string) (Source, error) {
	f, err := FormatOf(p)
	if err != nil {
		return nil, err
	}
	if f == XLSX {
		return &XLSXSource{name: name, path: p, sheet: sheet}, nil
	}
	return &CSVSource{name: name, path: p}, nil
}

// formatValue renders a database value as the raw cell text the table
// model parses. nil becomes the empty string, which reads as missing.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return table.FormatNumber(x)
	case float32:
		return table.FormatNumber(float64(x))
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return ""
		}
		return formatValue(dv)
	}
	return fmt.Sprint(v)
}
