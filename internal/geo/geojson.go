package geo

import (
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Feature property names.
const (
	NameProperty  = "name"
	ValueProperty = "value"
)

// FeatureCollection merges per-district values into the boundaries. Values
// are keyed by district key (see table.Key); a district without a value
// carries a null value property.
func FeatureCollection(b *Boundaries, values map[string]float64) (*geojson.FeatureCollection, error) {
	if b.Len() == 0 {
		return nil, ErrNoBoundaries
	}
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(b.Districts))}
	for _, d := range b.Districts {
		props := map[string]any{NameProperty: d.Name, ValueProperty: nil}
		if v, ok := values[d.Key]; ok {
			props[ValueProperty] = v
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         d.Key,
			Geometry:   d.Geometry,
			Properties: props,
		})
	}
	return fc, nil
}
