package ogc

import (
	"fmt"
	"strings"

	"github.com/hugr-lab/ogcfilter/cql"
)

// UnsupportedTypeError is returned by Render for nodes it has no handler
// for. Clauses are never dropped silently.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("ogc: unsupported filter type %q", e.Type)
}

var comparisonNames = map[cql.ComparisonOp]string{
	cql.OpEqual:          "equal",
	cql.OpNotEqual:       "notEqual",
	cql.OpLess:           "less",
	cql.OpLessOrEqual:    "lessOrEqual",
	cql.OpGreater:        "greater",
	cql.OpGreaterOrEqual: "greaterOrEqual",
	cql.OpLike:           "like",
	cql.OpILike:          "ilike",
	cql.OpIsNull:         "isNull",
	cql.OpBetween:        "between",
}

// Render converts a filter tree into Filter Encoding XML with b. The
// result is not wrapped in a Filter element. An include node renders as
// the empty string.
func Render(b *Builder, n cql.Node) (string, error) {
	return cql.Visit[string](n, renderer{b: b})
}

// CQLToOGC parses text and renders it with a builder configured by opts.
func CQLToOGC(text string, opts BuilderOptions) (string, error) {
	n, err := cql.Parse(text)
	if err != nil {
		return "", err
	}
	return Render(NewBuilder(opts), n)
}

type renderer struct {
	b *Builder
}

func (r renderer) VisitLiteral(n *cql.Literal) (string, error) {
	return r.b.Literal(n.Value), nil
}

func (r renderer) VisitProperty(n *cql.Property) (string, error) {
	return r.b.ValueReference(n.Name), nil
}

func (r renderer) VisitComparison(n *cql.Comparison) (string, error) {
	name, ok := comparisonNames[n.Op]
	if !ok {
		return "", &UnsupportedTypeError{Type: string(n.Op)}
	}
	args, err := r.list(n.Args)
	if err != nil {
		return "", err
	}
	return r.b.Operations().Call(name, args...)
}

func (r renderer) VisitLogical(n *cql.Logical) (string, error) {
	filters, err := r.list(n.Filters)
	if err != nil {
		return "", err
	}
	switch n.Op {
	case cql.TypeAnd:
		return r.b.And(filters...), nil
	case cql.TypeOr:
		return r.b.Or(filters...), nil
	case cql.TypeNot:
		return r.b.Not(filters...), nil
	}
	return "", &UnsupportedTypeError{Type: n.Op}
}

func (r renderer) VisitSpatial(n *cql.Spatial) (string, error) {
	args, err := r.list(n.Args)
	if err != nil {
		return "", err
	}
	return r.b.Operations().Call(strings.ToLower(string(n.Op)), args...)
}

func (r renderer) VisitBBox(n *cql.BBox) (string, error) {
	prop, err := cql.Visit[string](n.Property, r)
	if err != nil {
		return "", err
	}
	return r.b.BBox(prop, r.b.Envelope(n.Bounds, n.CRS)), nil
}

func (r renderer) VisitDWithin(n *cql.DWithin) (string, error) {
	args, err := r.list([]cql.Node{n.Property, n.Geometry})
	if err != nil {
		return "", err
	}
	return r.b.DWithin(args[0], args[1], n.Distance, n.Units), nil
}

func (r renderer) VisitFunc(n *cql.Func) (string, error) {
	args, err := r.list(n.Args)
	if err != nil {
		return "", err
	}
	return r.b.Operations().Call("func", append([]string{n.Name}, args...)...)
}

func (r renderer) VisitGeometry(n *cql.Geometry) (string, error) {
	s := r.b.Geometry(n.Geom, "")
	if s == "" {
		return "", &UnsupportedTypeError{Type: n.Type()}
	}
	return s, nil
}

func (renderer) VisitInclude(*cql.Include) (string, error) {
	return "", nil
}

// VisitUnknown resolves the node by name against the builder operations.
func (r renderer) VisitUnknown(n *cql.Unknown) (string, error) {
	if _, ok := r.b.Operations()[n.Kind]; !ok {
		return "", &UnsupportedTypeError{Type: n.Kind}
	}
	args, err := r.list(n.Args)
	if err != nil {
		return "", err
	}
	if n.Name != "" {
		args = append([]string{n.Name}, args...)
	}
	return r.b.Operations().Call(n.Kind, args...)
}

func (r renderer) list(nodes []cql.Node) ([]string, error) {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		s, err := cql.Visit[string](n, r)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
