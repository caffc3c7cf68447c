package filter

import (
	"log/slog"
)

// Generator turns filter objects into OGC Filter XML and CQL. The zero
// value is ready to use and discards its log output.
//
// Fields that cannot produce a condition (missing value, unknown type,
// unsupported operator) are left out of the output; each one is logged at
// debug level.
type Generator struct {
	Logger *slog.Logger
}

var discard = slog.New(slog.DiscardHandler)

func (g Generator) log() *slog.Logger {
	if g.Logger == nil {
		return discard
	}
	return g.Logger
}

func (g Generator) dropField(reason string, f Field) {
	g.log().Debug("filter: field dropped",
		"reason", reason,
		"attribute", f.Attribute,
		"operator", f.Operator,
		"type", f.Type,
	)
}

// CheckOperatorValidity reports whether a field with this value and
// operator can produce a condition. isNull needs no value; every other
// operator needs a value that is neither missing nor null. The empty
// string is a valid value.
//
// isNull fields with a missing value still render as PropertyIsNull and
// isNull(attr)=true, which is what the query builder form sends for them.
func CheckOperatorValidity(value Value, operator string) bool {
	if operator == "isNull" {
		return true
	}
	return !value.IsNil()
}

// findSubGroups returns the groups whose parent is root.
func findSubGroups(root Group, groups []Group) []Group {
	var subs []Group
	for _, g := range groups {
		if g.GroupID != "" && g.GroupID == root.ID {
			subs = append(subs, g)
		}
	}
	return subs
}
