// Package export writes dashboard query results to an xlsx workbook.
package export

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/sells-group/retail-presence/internal/aggregate"
	"github.com/sells-group/retail-presence/internal/presence"
	"github.com/sells-group/retail-presence/internal/provider"
)

// Sheet names.
const (
	BoardsSheet  = "Boards"
	PosmSheet    = "POSM"
	MetricsSheet = "Metrics"
)

var geographyHeaders = []string{
	"PROFILE_NAME", "PROVINCE", "DISTRICT", "DS_DIVISION", "GN_DIVISION",
	"SALES_REGION", "SALES_DISTRICT", "SALES_AREA",
}

func geographyCells(g presence.Geography) []any {
	return []any{
		g.ProfileName, g.Province, g.District, g.DsDivision, g.GnDivision,
		g.SalesRegion, g.SalesDistrict, g.SalesArea,
	}
}

// Report is what a workbook holds. Either side may be nil.
type Report struct {
	Boards *presence.Boards
	Posm   *presence.PosmGeneral
}

// Workbook builds the workbook. The caller closes it.
func Workbook(r Report) (*excelize.File, error) {
	f := excelize.NewFile()
	first := f.GetSheetName(0)
	var metrics [][]any

	if r.Boards != nil {
		if err := writeBoards(f, r.Boards.Data); err != nil {
			_ = f.Close()
			return nil, err
		}
		metrics = append(metrics, metricRows("board", r.Boards.ProviderMetrics)...)
	}
	if r.Posm != nil {
		if err := writePosm(f, r.Posm.Data); err != nil {
			_ = f.Close()
			return nil, err
		}
		metrics = append(metrics, metricRows("posm", r.Posm.ProviderMetrics)...)
	}
	if err := writeSheet(f, MetricsSheet, []any{"context", "provider", "count", "percentage"}, metrics); err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := f.DeleteSheet(first); err != nil {
		_ = f.Close()
		return nil, eris.Wrap(err, "export: drop default sheet")
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write streams the workbook to w.
func Write(w io.Writer, r Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck
	if _, err := f.WriteTo(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}

// Save writes the workbook to path, creating parent directories.
func Save(path string, r Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "export: create output dir")
	}
	if err := f.SaveAs(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func writeBoards(f *excelize.File, recs []presence.BoardRecord) error {
	var countCols []string
	for _, p := range provider.All() {
		for _, bt := range provider.BoardTypes() {
			countCols = append(countCols, provider.BoardColumn(p, bt))
		}
	}

	header := []any{"id", "retailerId", "capturePhase"}
	for _, h := range geographyHeaders {
		header = append(header, h)
	}
	header = append(header, "provider", "boardType", "value")
	for _, c := range countCols {
		header = append(header, c)
	}
	header = append(header, "originalImage", "detectedImage")

	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		row := []any{rec.ID, rec.RetailerID, rec.CapturePhase}
		row = append(row, geographyCells(rec.Geography)...)
		row = append(row, rec.Provider, rec.BoardType, rec.Value)
		for _, c := range countCols {
			if v, ok := rec.Counts[c]; ok {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		row = append(row, rec.OriginalImage, rec.DetectedImage)
		rows = append(rows, row)
	}
	return writeSheet(f, BoardsSheet, header, rows)
}

func writePosm(f *excelize.File, recs []presence.PosmRecord) error {
	shareCols := provider.AreaColumns()

	header := []any{"id", "retailerId", "capturePhase"}
	for _, h := range geographyHeaders {
		header = append(header, h)
	}
	header = append(header, "provider", "visibilityPercentage")
	for _, c := range shareCols {
		header = append(header, c)
	}
	header = append(header, "originalImage", "detectedImage")

	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		row := []any{rec.ID, rec.RetailerID, rec.CapturePhase}
		row = append(row, geographyCells(rec.Geography)...)
		row = append(row, rec.Provider, rec.VisibilityPercentage)
		for _, c := range shareCols {
			if v, ok := rec.Shares[c]; ok {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		row = append(row, rec.OriginalImage, rec.DetectedImage)
		rows = append(rows, row)
	}
	return writeSheet(f, PosmSheet, header, rows)
}

func metricRows(ctx string, metrics []aggregate.ProviderMetric) [][]any {
	out := make([][]any, 0, len(metrics))
	for _, m := range metrics {
		row := []any{ctx, m.Provider, "", ""}
		if m.Count != nil {
			row[2] = *m.Count
		}
		if m.Percentage != nil {
			row[3] = *m.Percentage
		}
		out = append(out, row)
	}
	return out
}

func writeSheet(f *excelize.File, name string, header []any, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return eris.Wrapf(err, "export: create sheet %s", name)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return eris.Wrapf(err, "export: write %s header", name)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return eris.Wrap(err, "export: cell name")
		}
		if err := f.SetSheetRow(name, cell, &rows[i]); err != nil {
			return eris.Wrapf(err, "export: write %s row %d", name, i+1)
		}
	}
	return nil
}
