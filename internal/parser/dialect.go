package parser

import "strings"

// Dialect identifies the source-system format of a submission.
type Dialect string

const (
	DialectBGES    Dialect = "BGES"
	DialectWMS     Dialect = "WMS"
	DialectIndibiz Dialect = "INDIBIZ"
	DialectGeneric Dialect = "GENERIC"
)

type marker struct {
	dialect  Dialect
	keywords []string
}

// priority is checked top to bottom; the first dialect with any keyword
// present wins. The order BGES, WMS, INDIBIZ is policy and changing it
// reclassifies mixed pastes.
var priority = []marker{
	{DialectBGES, []string{"NCX", "BGES ORDER"}},
	{DialectWMS, []string{"WIFI.ID", "WMS ORDER", "MANAGED SERVICE"}},
	{DialectIndibiz, []string{"INDIBIZ"}},
}

// Classify selects the dialect of an uppercased submission. Text with no
// dialect keyword is Generic.
func Classify(upper string) Dialect {
	for _, m := range priority {
		for _, kw := range m.keywords {
			if strings.Contains(upper, kw) {
				return m.dialect
			}
		}
	}
	return DialectGeneric
}
