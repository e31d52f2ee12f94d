package source

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/retail-presence/internal/table"
)

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
}

// StreamCSV reads CSV records and sends them to a channel, header first.
// Caller must consume the returned row channel. Errors are sent on the
// error channel. Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // survey exports are ragged

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// ReadCSV builds a table from CSV text. The first record is the header.
func ReadCSV(ctx context.Context, name string, r io.Reader, opts CSVOptions) (*table.Table, error) {
	rowCh, errCh := StreamCSV(ctx, r, opts)

	var b *table.Builder
	for rec := range rowCh {
		if b == nil {
			b = table.NewBuilder(name, rec)
			continue
		}
		b.Add(rec)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	if b == nil {
		return nil, eris.Errorf("csv: %s has no header row", name)
	}
	return b.Table(), nil
}

// CSVSource loads a local CSV file.
type CSVSource struct {
	name string
	path string
	opts CSVOptions
}

// Load implements Source.
func (s *CSVSource) Load(ctx context.Context) (*table.Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open csv %s", s.path)
	}
	defer f.Close() //nolint:errcheck

	t, err := ReadCSV(ctx, s.name, f, s.opts)
	if err != nil {
		return nil, eris.Wrapf(err, "source: load %s", s.path)
	}
	return t, nil
}

func (s *CSVSource) String() string { return "csv:" + s.path }
