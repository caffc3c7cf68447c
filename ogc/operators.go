package ogc

import (
	"fmt"
	"strings"
)

// OperatorFunc wraps content in the operator's tag under namespace prefix
// ns. Multiple content fragments are concatenated first.
type OperatorFunc func(ns string, content ...string) string

// UnsupportedOperatorError is returned when an operator key is not part of
// the requested table.
type UnsupportedOperatorError struct {
	Table    string
	Operator string
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("ogc: unsupported %s operator %q", e.Table, e.Operator)
}

func multiop(tag string) OperatorFunc {
	return multiopAttrs(tag, "")
}

func multiopAttrs(tag, attrs string) OperatorFunc {
	return func(ns string, content ...string) string {
		return "<" + ns + ":" + tag + attrs + ">" + strings.Join(content, "") + "</" + ns + ":" + tag + ">"
	}
}

const likeAttrs = ` wildCard="*" singleChar="." escapeChar="!"`

// ComparisonOperators maps comparison symbols to their Filter Encoding tags.
var ComparisonOperators = map[string]OperatorFunc{
	"=":      multiop("PropertyIsEqualTo"),
	"<>":     multiop("PropertyIsNotEqualTo"),
	"<":      multiop("PropertyIsLessThan"),
	"<=":     multiop("PropertyIsLessThanOrEqualTo"),
	">":      multiop("PropertyIsGreaterThan"),
	">=":     multiop("PropertyIsGreaterThanOrEqualTo"),
	"like":   multiopAttrs("PropertyIsLike", ` matchCase="true"`+likeAttrs),
	"ilike":  multiopAttrs("PropertyIsLike", ` matchCase="false"`+likeAttrs),
	"isNull": multiop("PropertyIsNull"),
	"><":     multiop("PropertyIsBetween"),
}

// LogicalOperators maps group logic names to their tags. NOR is Not
// wrapping Or and AND NOT is Not wrapping And.
var LogicalOperators = map[string]OperatorFunc{
	"AND": multiop("And"),
	"OR":  multiop("Or"),
	"NOT": multiop("Not"),
	"NOR": func(ns string, content ...string) string {
		return multiop("Not")(ns, multiop("Or")(ns, content...))
	},
	"AND NOT": func(ns string, content ...string) string {
		return multiop("Not")(ns, multiop("And")(ns, content...))
	},
}

// SpatialOperators maps spatial operation names to their tags.
var SpatialOperators = map[string]OperatorFunc{
	"INTERSECTS": multiop("Intersects"),
	"BBOX":       multiop("BBOX"),
	"CONTAINS":   multiop("Contains"),
	"DWITHIN":    multiop("DWithin"),
	"WITHIN":     multiop("Within"),
}

// Comparison looks up a comparison operator.
func Comparison(op string) (OperatorFunc, error) {
	return lookup("comparison", ComparisonOperators, op)
}

// Logical looks up a logical operator.
func Logical(op string) (OperatorFunc, error) {
	return lookup("logical", LogicalOperators, op)
}

// Spatial looks up a spatial operator.
func Spatial(op string) (OperatorFunc, error) {
	return lookup("spatial", SpatialOperators, op)
}

func lookup(table string, ops map[string]OperatorFunc, op string) (OperatorFunc, error) {
	f, ok := ops[op]
	if !ok {
		return nil, &UnsupportedOperatorError{Table: table, Operator: op}
	}
	return f, nil
}
