package attribution

import (
	"github.com/sells-group/retail-presence/internal/provider"
	"github.com/sells-group/retail-presence/internal/table"
)

// Image identifier columns.
const (
	OriginalImageColumn = "S3_ARN"
	DetectedImageColumn = "INF_S3_ARN"
)

// Selection is the provider and board type fixed by the request, if any.
type Selection struct {
	Provider     provider.Provider
	HasProvider  bool
	BoardType    provider.BoardType
	HasBoardType bool
}

// Result is the narrow display record for one row.
type Result struct {
	Provider  string  `json:"provider"`
	BoardType string  `json:"boardType,omitempty"`
	Value     float64 `json:"value"`

	pair    Candidate
	hasPair bool
}

// Pair returns the attributed provider and board type when both are known.
func (r Result) Pair() (provider.Provider, provider.BoardType, bool) {
	return r.pair.Provider, r.pair.BoardType, r.hasPair
}

// Board attributes a board row.
//
// With a fixed provider, that provider is reported; the board type is the
// fixed one or else the first type, in scan order, with a positive count.
// Without a fixed provider, the (provider, type) pair with the strictly
// highest count wins, ties going to the first pair in registry order.
func Board(r table.Row, sel Selection) Result {
	var types []provider.BoardType
	if sel.HasBoardType {
		types = []provider.BoardType{sel.BoardType}
	}

	if sel.HasProvider {
		res := Result{Provider: sel.Provider.Name(), BoardType: provider.NoBoardType}
		if sel.HasBoardType {
			col := provider.BoardColumn(sel.Provider, sel.BoardType)
			res.BoardType = sel.BoardType.Value()
			res.Value = r.Number(col)
			res.pair, res.hasPair = Candidate{Provider: sel.Provider, BoardType: sel.BoardType, Column: col}, true
			return res
		}
		for _, c := range BoardCandidates([]provider.Provider{sel.Provider}, nil) {
			if v := r.Number(c.Column); v > 0 {
				res.BoardType = c.BoardType.Value()
				res.Value = v
				res.pair, res.hasPair = c, true
				break
			}
		}
		return res
	}

	best := Positive(r, BoardCandidates(nil, types))
	if !best.Found {
		return Result{Provider: provider.Unknown, BoardType: provider.NoBoardType}
	}
	return Result{
		Provider:  best.Candidate.Provider.Name(),
		BoardType: best.Candidate.BoardType.Value(),
		Value:     best.Value,
		pair:      best.Candidate,
		hasPair:   true,
	}
}

// Posm attributes a posm row to its main provider: the one with the single
// highest share. Filter selections do not influence the result.
func Posm(r table.Row) Result {
	best := Positive(r, AreaCandidates())
	if !best.Found {
		return Result{Provider: provider.Unknown}
	}
	return Result{
		Provider: best.Candidate.Provider.Name(),
		Value:    best.Value,
		pair:     best.Candidate,
	}
}

// Images returns the original and detected image identifiers for an
// attributed board row. A per-pair inference column wins over the row-level
// one when it holds a value.
func Images(r table.Row, res Result) (original, detected string) {
	original, _ = r.String(OriginalImageColumn)
	if p, bt, ok := res.Pair(); ok {
		if v, ok := r.String(provider.DetectedImageColumn(p, bt)); ok {
			return original, v
		}
	}
	detected, _ = r.String(DetectedImageColumn)
	return original, detected
}
