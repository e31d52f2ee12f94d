package api

import (
	"net/http"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/retail-presence/internal/filter"
)

var errBadRequest = eris.New("api: bad request")

// first returns the first non-empty query value among names.
func first(r *http.Request, names ...string) string {
	q := r.URL.Query()
	for _, n := range names {
		if v := strings.TrimSpace(q.Get(n)); v != "" {
			return v
		}
	}
	return ""
}

// parseSpec reads the dashboard filter parameters. "all" or empty means a
// criterion is not set.
func parseSpec(r *http.Request) (filter.Spec, error) {
	spec := filter.Spec{
		Provider:   first(r, "provider"),
		BoardType:  first(r, "boardType"),
		Province:   first(r, "province", "salesRegion"),
		District:   first(r, "district", "salesDistrict"),
		Division:   first(r, "dsDivision"),
		RetailerID: first(r, "retailerId"),
	}

	if v := first(r, "visibilityRange"); v != "" {
		rng, err := filter.ParseRange(v)
		if err != nil {
			return filter.Spec{}, err
		}
		spec.Visibility = &rng
	}

	dom, err := filter.ParseDominance(first(r, "posmStatus"))
	if err != nil {
		return filter.Spec{}, err
	}
	spec.Dominance = dom
	return spec, nil
}

func parseContext(r *http.Request) (filter.Context, error) {
	return filter.ParseContext(first(r, "context"))
}

func required(r *http.Request, name string) (string, error) {
	v := first(r, name)
	if v == "" {
		return "", eris.Wrapf(errBadRequest, "query parameter %s is required", name)
	}
	return v, nil
}
