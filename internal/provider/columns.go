package provider

import "fmt"

// Columns built once from the registry. Every lookup goes through these
// tables; no other package assembles provider column names.
var (
	boardColumns    [numProviders][numBoardTypes]string
	detectedColumns [numProviders][numBoardTypes]string
	areaColumns     [numProviders]string
)

func init() {
	for p := range numProviders {
		areaColumns[p] = fmt.Sprintf("%s_AREA_PERCENTAGE", p.prefix())
		for bt := range numBoardTypes {
			boardColumns[p][bt] = fmt.Sprintf("%s_%s", p.prefix(), boardTypes[bt].suffix)
			detectedColumns[p][bt] = boardColumns[p][bt] + "_INF_S3_ARN"
		}
	}
}

// BoardColumn returns the count column for a provider and board type,
// e.g. DIALOG_NAME_BOARD.
func BoardColumn(p Provider, bt BoardType) string { return boardColumns[p][bt] }

// DetectedImageColumn returns the optional per-pair inference image column,
// e.g. DIALOG_NAME_BOARD_INF_S3_ARN.
func DetectedImageColumn(p Provider, bt BoardType) string { return detectedColumns[p][bt] }

// AreaColumn returns the posm share column for a provider, e.g.
// DIALOG_AREA_PERCENTAGE.
func AreaColumn(p Provider) string { return areaColumns[p] }

// AreaColumns returns every provider's share column in registry order.
func AreaColumns() []string {
	out := make([]string, numProviders)
	copy(out, areaColumns[:])
	return out
}

// ColumnSet is the subset of a table the coverage check needs.
type ColumnSet interface {
	HasColumn(col string) bool
}

// Coverage reports which provider columns a loaded dataset carries.
type Coverage struct {
	Present []string `json:"present" yaml:"present"`
	Missing []string `json:"missing" yaml:"missing"`
}

// Complete reports whether every expected column is present.
func (c Coverage) Complete() bool { return len(c.Missing) == 0 }

// BoardCoverage checks the board count columns against a dataset.
func BoardCoverage(cols ColumnSet) Coverage {
	var expected []string
	for p := range numProviders {
		expected = append(expected, boardColumns[p][:]...)
	}
	return coverage(cols, expected)
}

// PosmCoverage checks the posm share columns against a dataset.
func PosmCoverage(cols ColumnSet) Coverage {
	return coverage(cols, areaColumns[:])
}

func coverage(cols ColumnSet, expected []string) Coverage {
	var c Coverage
	for _, col := range expected {
		if cols.HasColumn(col) {
			c.Present = append(c.Present, col)
		} else {
			c.Missing = append(c.Missing, col)
		}
	}
	return c
}
