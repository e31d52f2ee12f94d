package presence

import (
	"math"
	"strconv"

	"github.com/sells-group/retail-presence/internal/aggregate"
	"github.com/sells-group/retail-presence/internal/attribution"
	"github.com/sells-group/retail-presence/internal/filter"
	"github.com/sells-group/retail-presence/internal/phase"
	"github.com/sells-group/retail-presence/internal/provider"
	"github.com/sells-group/retail-presence/internal/table"
)

// Geography carries the raw identity and hierarchy fields of a row under
// their source column names.
type Geography struct {
	ProfileName   string `json:"PROFILE_NAME,omitempty"`
	Province      string `json:"PROVINCE,omitempty"`
	District      string `json:"DISTRICT,omitempty"`
	DsDivision    string `json:"DS_DIVISION,omitempty"`
	GnDivision    string `json:"GN_DIVISION,omitempty"`
	SalesRegion   string `json:"SALES_REGION,omitempty"`
	SalesDistrict string `json:"SALES_DISTRICT,omitempty"`
	SalesArea     string `json:"SALES_AREA,omitempty"`
}

func geographyOf(r table.Row) Geography {
	get := func(col string) string {
		v, _ := r.String(col)
		return v
	}
	return Geography{
		ProfileName:   get(filter.RetailerNameColumn),
		Province:      get(filter.ProvinceColumn),
		District:      get(filter.DistrictColumn),
		DsDivision:    get(filter.DivisionColumn),
		GnDivision:    get(filter.GNDivisionColumn),
		SalesRegion:   get(filter.SalesRegionColumn),
		SalesDistrict: get(filter.SalesDistrictColumn),
		SalesArea:     get(filter.SalesAreaColumn),
	}
}

// BoardRecord is one attributed board capture.
type BoardRecord struct {
	ID         string `json:"id"`
	RetailerID string `json:"retailerId,omitempty"`
	Geography
	CapturePhase string `json:"capturePhase,omitempty"`

	Provider  string `json:"provider"`
	BoardType string `json:"boardType"`
	Value     int    `json:"value"`
	// Counts holds every board count column the dataset carries.
	Counts map[string]int `json:"counts"`

	OriginalImage string `json:"originalBoardImageIdentifier,omitempty"`
	DetectedImage string `json:"detectedBoardImageIdentifier,omitempty"`
}

// PosmRecord is one attributed posm capture.
type PosmRecord struct {
	ID         string `json:"id"`
	RetailerID string `json:"retailerId,omitempty"`
	Geography
	CapturePhase string `json:"capturePhase,omitempty"`

	Provider             string  `json:"provider"`
	VisibilityPercentage float64 `json:"visibilityPercentage"`
	// Shares holds every area percentage column the dataset carries.
	Shares map[string]float64 `json:"shares"`

	OriginalImage string `json:"originalPosmImageIdentifier,omitempty"`
	DetectedImage string `json:"detectedPosmImageIdentifier,omitempty"`
}

// rowID is the capture's image reference, or its position in the source
// table when the dataset has none.
func rowID(r table.Row) string {
	if id, ok := r.String(filter.ImageRefColumn); ok {
		return id
	}
	return strconv.Itoa(r.Index())
}

func boardRecord(r table.Row, sel attribution.Selection) BoardRecord {
	res := attribution.Board(r, sel)
	original, detected := attribution.Images(r, res)
	rec := BoardRecord{
		ID:            rowID(r),
		Geography:     geographyOf(r),
		Provider:      res.Provider,
		BoardType:     res.BoardType,
		Value:         int(math.Round(res.Value)),
		Counts:        make(map[string]int),
		OriginalImage: original,
		DetectedImage: detected,
	}
	rec.RetailerID, _ = r.String(filter.RetailerIDColumn)
	if _, ok := phase.Of(r); ok {
		rec.CapturePhase = phase.Label(r)
	}
	for _, p := range provider.All() {
		for _, bt := range provider.BoardTypes() {
			col := provider.BoardColumn(p, bt)
			if r.Field(col).Known() {
				rec.Counts[col] = int(math.Round(r.Number(col)))
			}
		}
	}
	return rec
}

func posmRecord(r table.Row) PosmRecord {
	res := attribution.Posm(r)
	rec := PosmRecord{
		ID:                   rowID(r),
		Geography:            geographyOf(r),
		Provider:             res.Provider,
		VisibilityPercentage: aggregate.Round1(res.Value),
		Shares:               make(map[string]float64),
	}
	rec.RetailerID, _ = r.String(filter.RetailerIDColumn)
	rec.OriginalImage, _ = r.String(attribution.OriginalImageColumn)
	rec.DetectedImage, _ = r.String(attribution.DetectedImageColumn)
	if _, ok := phase.Of(r); ok {
		rec.CapturePhase = phase.Label(r)
	}
	for _, col := range provider.AreaColumns() {
		if r.Field(col).Known() {
			rec.Shares[col] = aggregate.Round1(r.Number(col))
		}
	}
	return rec
}
