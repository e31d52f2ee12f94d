package provider

import "strings"

// BoardType classifies a physical board.
type BoardType int

// Board types in the fixed scan order used by attribution.
const (
	Dealer BoardType = iota
	Tin
	Vertical
	numBoardTypes
)

// NoBoardType is reported when a row carries no board of the attributed provider.
const NoBoardType = "N/A"

type boardTypeInfo struct {
	value  string
	label  string
	suffix string
}

var boardTypes = [numBoardTypes]boardTypeInfo{
	Dealer:   {value: "dealer", label: "Dealer Board", suffix: "NAME_BOARD"},
	Tin:      {value: "tin", label: "Tin Plate", suffix: "TIN_BOARD"},
	Vertical: {value: "vertical", label: "Vertical Board", suffix: "SIDE_BOARD"},
}

// BoardTypes returns every board type in scan order.
func BoardTypes() []BoardType {
	out := make([]BoardType, numBoardTypes)
	for i := range out {
		out[i] = BoardType(i)
	}
	return out
}

// LookupBoardType resolves a board type filter value. Case-insensitive.
func LookupBoardType(value string) (BoardType, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	for i, bt := range boardTypes {
		if bt.value == v {
			return BoardType(i), true
		}
	}
	return 0, false
}

// Value returns the filter value form, e.g. "dealer".
func (b BoardType) Value() string { return boardTypes[b].value }

// Label returns the display label, e.g. "Dealer Board".
func (b BoardType) Label() string { return boardTypes[b].label }

func (b BoardType) String() string { return b.Value() }
