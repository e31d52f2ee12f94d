package table

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Key normalizes a display value into its filter key form: lower-cased with
// spaces replaced by underscores ("Western Province" -> "western_province").
func Key(s string) string {
	// A Caser holds state, so each call gets its own.
	return strings.ReplaceAll(cases.Lower(language.Und).String(s), " ", "_")
}
