// Package retailer extracts outlet identities with coordinates from survey
// rows.
package retailer

import (
	"github.com/sells-group/retail-presence/internal/attribution"
	"github.com/sells-group/retail-presence/internal/filter"
	"github.com/sells-group/retail-presence/internal/table"
)

// UnnamedLabel is reported when a retailer row has no name.
const UnnamedLabel = "N/A"

// Retailer is a located outlet.
type Retailer struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	ImageIdentifier string  `json:"imageIdentifier,omitempty"`
	Province        string  `json:"province,omitempty"`
	District        string  `json:"district,omitempty"`
}

// FromRow builds a Retailer. ok is false when the row lacks an id or
// parseable coordinates.
func FromRow(r table.Row) (Retailer, bool) {
	id, ok := r.String(filter.RetailerIDColumn)
	if !ok {
		return Retailer{}, false
	}
	lat, okLat := r.Float(filter.LatitudeColumn)
	lon, okLon := r.Float(filter.LongitudeColumn)
	if !okLat || !okLon {
		return Retailer{}, false
	}

	out := Retailer{ID: id, Name: UnnamedLabel, Latitude: lat, Longitude: lon}
	if name, ok := r.String(filter.RetailerNameColumn); ok {
		out.Name = name
	}
	out.ImageIdentifier, _ = r.String(attribution.OriginalImageColumn)
	out.Province, _ = filter.ProvinceLevel.Value(r)
	out.District, _ = filter.DistrictLevel.Value(r)
	return out, true
}

// List returns one Retailer per id, taken from the first row of that id
// with usable coordinates, in table order.
func List(t *table.Table) []Retailer {
	out := []Retailer{}
	seen := make(map[string]struct{})
	t.Each(func(r table.Row) bool {
		ret, ok := FromRow(r)
		if !ok {
			return true
		}
		if _, dup := seen[ret.ID]; dup {
			return true
		}
		seen[ret.ID] = struct{}{}
		out = append(out, ret)
		return true
	})
	return out
}

// Index is a lookup of retailers by id.
type Index map[string]Retailer

// NewIndex indexes the retailers of t as List would return them.
func NewIndex(t *table.Table) Index {
	list := List(t)
	idx := make(Index, len(list))
	for _, r := range list {
		idx[r.ID] = r
	}
	return idx
}
