// Package options derives dropdown option lists from survey tables.
package options

import (
	"sort"

	"github.com/sells-group/retail-presence/internal/filter"
	"github.com/sells-group/retail-presence/internal/table"
)

// Option is one dropdown entry. Value is the key form of Label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Derive lists the distinct values of col in t, sorted by label. Missing
// and whitespace-only values are dropped. Labels keep the source casing.
func Derive(t *table.Table, col string) []Option {
	out := []Option{}
	if !t.HasColumn(col) {
		return out
	}
	seen := make(map[string]struct{})
	t.Each(func(r table.Row) bool {
		label, ok := r.String(col)
		if !ok || label == "" {
			return true
		}
		if _, dup := seen[label]; dup {
			return true
		}
		seen[label] = struct{}{}
		out = append(out, Option{Value: table.Key(label), Label: label})
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// ForLevel derives the options of one geography level. Only the criteria
// of coarser levels apply: provinces ignore every geography criterion,
// districts honor the province, divisions honor province and district.
// Retailer and posm range criteria never apply to option lists.
func ForLevel(t *table.Table, spec filter.Spec, ctx filter.Context, level filter.Level) []Option {
	narrowed := spec.With(func(s *filter.Spec) {
		s.RetailerID = ""
		s.Visibility = nil
		s.Dominance = filter.AnyDominance
		switch level.Name {
		case filter.ProvinceLevel.Name:
			s.Province, s.District, s.Division = "", "", ""
		case filter.DistrictLevel.Name:
			s.District, s.Division = "", ""
		default:
			s.Division = ""
		}
	})
	rows := filter.Apply(t, narrowed, ctx)
	col, ok := level.Column(rows)
	if !ok {
		return []Option{}
	}
	return Derive(rows, col)
}

// Provinces derives province options.
func Provinces(t *table.Table, spec filter.Spec, ctx filter.Context) []Option {
	return ForLevel(t, spec, ctx, filter.ProvinceLevel)
}

// Districts derives district options within the selected province.
func Districts(t *table.Table, spec filter.Spec, ctx filter.Context) []Option {
	return ForLevel(t, spec, ctx, filter.DistrictLevel)
}

// Divisions derives DS division options within the selected province and
// district.
func Divisions(t *table.Table, spec filter.Spec, ctx filter.Context) []Option {
	return ForLevel(t, spec, ctx, filter.DivisionLevel)
}
