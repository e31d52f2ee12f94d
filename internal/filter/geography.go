package filter

import "github.com/sells-group/retail-presence/internal/table"

// Column names used for identity and geography.
const (
	RetailerIDColumn    = "PROFILE_ID"
	RetailerNameColumn  = "PROFILE_NAME"
	ImageRefColumn      = "IMAGE_REF_ID"
	ProvinceColumn      = "PROVINCE"
	SalesRegionColumn   = "SALES_REGION"
	DistrictColumn      = "DISTRICT"
	SalesDistrictColumn = "SALES_DISTRICT"
	DivisionColumn      = "DS_DIVISION"
	GNDivisionColumn    = "GN_DIVISION"
	SalesAreaColumn     = "SALES_AREA"
	LatitudeColumn      = "LATITUDE"
	LongitudeColumn     = "LONGITUDE"
)

// Level is a geography level with its primary and fallback source columns.
type Level struct {
	Name    string
	Columns []string
}

// Geography levels. The fallback applies when the dataset lacks the primary
// column; it is never chosen per row.
var (
	ProvinceLevel = Level{Name: "province", Columns: []string{ProvinceColumn, SalesRegionColumn}}
	DistrictLevel = Level{Name: "district", Columns: []string{DistrictColumn, SalesDistrictColumn}}
	DivisionLevel = Level{Name: "dsDivision", Columns: []string{DivisionColumn}}
)

// Column resolves the level's column for a dataset.
func (l Level) Column(t *table.Table) (string, bool) {
	return t.FirstColumn(l.Columns...)
}

// Value returns a row's value for the level.
func (l Level) Value(r table.Row) (string, bool) {
	col, ok := l.Column(r.Table())
	if !ok {
		return "", false
	}
	return r.String(col)
}
