// Package provider defines the fixed registry of measured brands and board
// types, and the static column lookup tables keyed by them.
package provider

import (
	"strings"
)

// Provider identifies a registered brand. The zero value is the first
// registry entry; use Lookup to parse user input.
type Provider int

// Registered providers in registry order. Order matters: attribution and
// dominance break ties by it.
const (
	Dialog Provider = iota
	Mobitel
	Airtel
	Hutch
	numProviders
)

// AllValue is the pseudo-provider value meaning "no provider filter".
const AllValue = "all"

// Unknown is reported when no provider can be attributed to a row.
const Unknown = "Unknown"

type info struct {
	value string
	name  string
}

var registry = [numProviders]info{
	Dialog:  {value: "dialog", name: "Dialog"},
	Mobitel: {value: "mobitel", name: "Mobitel"},
	Airtel:  {value: "airtel", name: "Airtel"},
	Hutch:   {value: "hutch", name: "Hutch"},
}

// All returns the registered providers in registry order.
func All() []Provider {
	out := make([]Provider, numProviders)
	for i := range out {
		out[i] = Provider(i)
	}
	return out
}

// Lookup resolves a provider filter value ("dialog") or display name
// ("Dialog"). It is case-insensitive and does not accept AllValue.
func Lookup(value string) (Provider, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	for i, p := range registry {
		if p.value == v {
			return Provider(i), true
		}
	}
	return 0, false
}

// Value returns the filter value form, e.g. "dialog".
func (p Provider) Value() string { return registry[p].value }

// Name returns the display name, e.g. "Dialog".
func (p Provider) Name() string { return registry[p].name }

func (p Provider) String() string { return p.Name() }

// prefix is the column name prefix, e.g. "DIALOG".
func (p Provider) prefix() string { return strings.ToUpper(registry[p].name) }
