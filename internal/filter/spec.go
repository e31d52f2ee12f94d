// Package filter narrows a survey table by geography, provider presence,
// board type, retailer, visibility range and dominance.
package filter

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/retail-presence/internal/attribution"
	"github.com/sells-group/retail-presence/internal/provider"
	"github.com/sells-group/retail-presence/internal/table"
)

// Context selects which dataset semantics apply.
type Context string

// Dataset contexts.
const (
	Board Context = "board"
	Posm  Context = "posm"
)

// ErrUnknownContext is returned for a context other than board or posm.
var ErrUnknownContext = eris.New("filter: unknown context")

// ParseContext resolves a context query value. Empty means board.
func ParseContext(s string) (Context, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Board):
		return Board, nil
	case string(Posm):
		return Posm, nil
	}
	return "", eris.Wrapf(ErrUnknownContext, "context %q", s)
}

// Dominance restricts posm rows by whether the selected provider holds the
// highest share in the row.
type Dominance int

// Dominance states.
const (
	AnyDominance Dominance = iota
	Dominant
	NotDominant
)

// ErrUnknownStatus is returned for a dominance status that is not recognized.
var ErrUnknownStatus = eris.New("filter: unknown dominance status")

// ErrInvalidRange is returned for a malformed visibility range.
var ErrInvalidRange = eris.New("filter: invalid visibility range")

// ParseDominance resolves a posm status value. "increase" and "decrease" are
// the values the dashboard sends.
func ParseDominance(s string) (Dominance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", provider.AllValue, "stable":
		return AnyDominance, nil
	case "increase", "dominant":
		return Dominant, nil
	case "decrease", "not_dominant":
		return NotDominant, nil
	}
	return AnyDominance, eris.Wrapf(ErrUnknownStatus, "status %q", s)
}

// Range is an inclusive [Min, Max] share interval.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies in the range.
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// ParseRange parses "min,max".
func ParseRange(s string) (Range, error) {
	lo, hi, ok := strings.Cut(s, ",")
	if !ok {
		return Range{}, eris.Wrapf(ErrInvalidRange, "range %q", s)
	}
	minV, okMin := table.ParseNumber(lo)
	maxV, okMax := table.ParseNumber(hi)
	if !okMin || !okMax || minV > maxV {
		return Range{}, eris.Wrapf(ErrInvalidRange, "range %q", s)
	}
	return Range{Min: minV, Max: maxV}, nil
}

// Spec is the immutable set of optional criteria for one request. Empty
// strings and "all" mean "not set". Geography values are compared in key
// form (see table.Key).
type Spec struct {
	Provider   string
	BoardType  string
	Province   string
	District   string
	Division   string
	RetailerID string
	Visibility *Range
	Dominance  Dominance
}

// IsSet reports whether a raw filter value constrains anything.
func IsSet(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, provider.AllValue)
}

// Choice is the resolution state of a provider or board type criterion.
type Choice int

// Choice states.
const (
	Any Choice = iota
	Fixed
	Unresolvable
)

// ProviderChoice resolves the provider criterion.
func (s Spec) ProviderChoice() (provider.Provider, Choice) {
	if !IsSet(s.Provider) {
		return 0, Any
	}
	p, ok := provider.Lookup(s.Provider)
	if !ok {
		return 0, Unresolvable
	}
	return p, Fixed
}

// BoardTypeChoice resolves the board type criterion.
func (s Spec) BoardTypeChoice() (provider.BoardType, Choice) {
	if !IsSet(s.BoardType) {
		return 0, Any
	}
	bt, ok := provider.LookupBoardType(s.BoardType)
	if !ok {
		return 0, Unresolvable
	}
	return bt, Fixed
}

// Selection converts the resolved provider and board type into the form
// attribution expects. Unresolvable criteria count as unset; Apply has
// already emptied the table in that case.
func (s Spec) Selection() attribution.Selection {
	var sel attribution.Selection
	if p, c := s.ProviderChoice(); c == Fixed {
		sel.Provider, sel.HasProvider = p, true
	}
	if bt, c := s.BoardTypeChoice(); c == Fixed {
		sel.BoardType, sel.HasBoardType = bt, true
	}
	return sel
}

// With returns a copy of s with fn applied, leaving s untouched.
func (s Spec) With(fn func(*Spec)) Spec {
	out := s
	if s.Visibility != nil {
		v := *s.Visibility
		out.Visibility = &v
	}
	fn(&out)
	return out
}
