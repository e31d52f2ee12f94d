package source

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/retail-presence/internal/table"
)

// XLSXSource loads one sheet of a local workbook. The first row is the
// header. An empty sheet name selects the first sheet.
type XLSXSource struct {
	name  string
	path  string
	sheet string
}

// Load implements Source.
func (s *XLSXSource) Load(ctx context.Context) (*table.Table, error) {
	return ReadXLSX(ctx, s.name, s.path, s.sheet)
}

func (s *XLSXSource) String() string {
	if s.sheet != "" {
		return "xlsx:" + s.path + "#" + s.sheet
	}
	return "xlsx:" + s.path
}

// ReadXLSX builds a table from a workbook sheet.
func ReadXLSX(ctx context.Context, name, path, sheetName string) (*table.Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open file %s", path)
	}

	sheet, err := getSheet(f, sheetName)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("xlsx: sheet %q has no header row", sheet.Name)
	}

	b := table.NewBuilder(name, rowToStrings(sheet.Rows[0]))
	for _, row := range sheet.Rows[1:] {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "xlsx: context cancelled")
		}
		b.Add(rowToStrings(row))
	}
	return b.Table(), nil
}

func getSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
