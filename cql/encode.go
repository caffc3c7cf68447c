package cql

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hugr-lab/ogcfilter/geometry"
)

// Encode renders a tree back to CQL text. Parsing the result yields a tree
// equal to n.
func Encode(n Node) (string, error) {
	return Visit[string](n, textEncoder{})
}

type textEncoder struct{}

var bareIdentifier = regexp.MustCompile(`^[_a-zA-Z][\w:]*$`)

// keywords may not be written as bare property names.
var keywords = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "INCLUDE": true, "BETWEEN": true,
	"LIKE": true, "ILIKE": true, "IS": true, "TRUE": true, "FALSE": true,
	"BBOX": true, "INTERSECTS": true, "DWITHIN": true, "WITHIN": true, "CONTAINS": true,
	"POINT": true, "LINESTRING": true, "POLYGON": true, "MULTIPOINT": true,
	"MULTILINESTRING": true, "MULTIPOLYGON": true, "GEOMETRYCOLLECTION": true,
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteProperty(name string) string {
	if bareIdentifier.MatchString(name) && !keywords[strings.ToUpper(name)] {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (textEncoder) VisitLiteral(n *Literal) (string, error) {
	switch v := n.Value.(type) {
	case string:
		return quoteString(v), nil
	case float64:
		return geometry.FormatNumber(v), nil
	case int:
		return strconv.Itoa(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", &UnsupportedNodeError{Type: TypeLiteral}
}

func (textEncoder) VisitProperty(n *Property) (string, error) {
	return quoteProperty(n.Name), nil
}

func (e textEncoder) VisitComparison(n *Comparison) (string, error) {
	if len(n.Args) != n.Op.Arity() {
		return "", &UnsupportedNodeError{Type: string(n.Op)}
	}
	args, err := e.list(n.Args)
	if err != nil {
		return "", err
	}
	switch n.Op {
	case OpIsNull:
		return args[0] + " IS NULL", nil
	case OpBetween:
		return args[0] + " BETWEEN " + args[1] + " AND " + args[2], nil
	case OpLike, OpILike:
		return args[0] + " " + strings.ToUpper(string(n.Op)) + " " + args[1], nil
	}
	return args[0] + " " + string(n.Op) + " " + args[1], nil
}

func (e textEncoder) VisitLogical(n *Logical) (string, error) {
	if n.Op == TypeNot {
		if len(n.Filters) != 1 {
			return "", &UnsupportedNodeError{Type: TypeNot}
		}
		s, err := Visit[string](n.Filters[0], e)
		if err != nil {
			return "", err
		}
		return "NOT (" + s + ")", nil
	}

	keyword := strings.ToUpper(n.Op)
	var sb strings.Builder
	for i, f := range n.Filters {
		s, err := Visit[string](f, e)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteString(" " + keyword + " ")
		}
		if needsParens(n.Op, f, i > 0) {
			s = "(" + s + ")"
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

// needsParens reports whether child must be grouped to keep its place in
// a left-nested chain of op.
func needsParens(op string, child Node, right bool) bool {
	l, ok := child.(*Logical)
	if !ok || l.Op == TypeNot {
		return false
	}
	if op == TypeAnd {
		return l.Op == TypeOr || right
	}
	return right && l.Op == TypeOr
}

func (e textEncoder) VisitSpatial(n *Spatial) (string, error) {
	args, err := e.list(n.Args)
	if err != nil {
		return "", err
	}
	return string(n.Op) + "(" + strings.Join(args, ", ") + ")", nil
}

func (e textEncoder) VisitBBox(n *BBox) (string, error) {
	prop, err := Visit[string](n.Property, e)
	if err != nil {
		return "", err
	}
	parts := []string{prop}
	for _, b := range n.Bounds {
		parts = append(parts, geometry.FormatNumber(b))
	}
	if n.CRS != "" {
		parts = append(parts, quoteString(n.CRS))
	}
	return "BBOX(" + strings.Join(parts, ", ") + ")", nil
}

func (e textEncoder) VisitDWithin(n *DWithin) (string, error) {
	args, err := e.list([]Node{n.Property, n.Geometry})
	if err != nil {
		return "", err
	}
	args = append(args, geometry.FormatNumber(n.Distance))
	if n.Units != "" {
		args = append(args, quoteProperty(n.Units))
	}
	return "DWITHIN(" + strings.Join(args, ", ") + ")", nil
}

func (e textEncoder) VisitFunc(n *Func) (string, error) {
	args, err := e.list(n.Args)
	if err != nil {
		return "", err
	}
	return n.Name + "(" + strings.Join(args, ", ") + ")", nil
}

func (textEncoder) VisitGeometry(n *Geometry) (string, error) {
	s := geometry.ToWKT(n.Geom)
	if s == "" {
		return "", &UnsupportedNodeError{Type: n.Type()}
	}
	return s, nil
}

func (textEncoder) VisitInclude(*Include) (string, error) {
	return "INCLUDE", nil
}

func (textEncoder) VisitUnknown(n *Unknown) (string, error) {
	return "", &UnsupportedNodeError{Type: n.Kind}
}

func (e textEncoder) list(nodes []Node) ([]string, error) {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		s, err := Visit[string](n, e)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
