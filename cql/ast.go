package cql

import (
	"fmt"
	"reflect"

	"github.com/paulmach/orb"
)

// Node type names. They double as the "type" discriminator of the JSON
// form of the tree.
const (
	TypeLiteral  = "literal"
	TypeProperty = "property"
	TypeFunc     = "func"
	TypeInclude  = "include"
	TypeAnd      = "and"
	TypeOr       = "or"
	TypeNot      = "not"
)

// ComparisonOp is the operator of a Comparison node.
type ComparisonOp string

const (
	OpEqual          ComparisonOp = "="
	OpNotEqual       ComparisonOp = "<>"
	OpLess           ComparisonOp = "<"
	OpLessOrEqual    ComparisonOp = "<="
	OpGreater        ComparisonOp = ">"
	OpGreaterOrEqual ComparisonOp = ">="
	OpLike           ComparisonOp = "like"
	OpILike          ComparisonOp = "ilike"
	OpIsNull         ComparisonOp = "isNull"
	OpBetween        ComparisonOp = "><"
)

// comparisonOps maps the lexeme of a COMPARISON token to its operator.
var comparisonOps = map[string]ComparisonOp{
	"=":     OpEqual,
	"<>":    OpNotEqual,
	"<":     OpLess,
	"<=":    OpLessOrEqual,
	">":     OpGreater,
	">=":    OpGreaterOrEqual,
	"LIKE":  OpLike,
	"ILIKE": OpILike,
}

// Arity returns the number of arguments the operator takes.
func (op ComparisonOp) Arity() int {
	switch op {
	case OpIsNull:
		return 1
	case OpBetween:
		return 3
	default:
		return 2
	}
}

func (op ComparisonOp) valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessOrEqual, OpGreater, OpGreaterOrEqual,
		OpLike, OpILike, OpIsNull, OpBetween:
		return true
	}
	return false
}

// SpatialOp is the operator of a spatial node.
type SpatialOp string

const (
	OpIntersects SpatialOp = "INTERSECTS"
	OpWithin     SpatialOp = "WITHIN"
	OpContains   SpatialOp = "CONTAINS"
	OpBBox       SpatialOp = "BBOX"
	OpDWithin    SpatialOp = "DWITHIN"
)

// Node is an element of a parsed filter tree.
type Node interface {
	// Type is the node discriminator: one of the Type* constants, a
	// comparison or spatial operator, or a GeoJSON geometry type.
	Type() string
	isNode()
}

// Literal is a string, float64 or bool constant.
type Literal struct {
	Value any
}

// Property references a feature attribute by name.
type Property struct {
	Name string
}

// Comparison applies a binary, unary (isNull) or ternary (between)
// operator. For between the arguments are value, lower bound, upper bound.
type Comparison struct {
	Op   ComparisonOp
	Args []Node
}

// Logical combines filters. And and Or are binary and left-nested; Not has
// exactly one filter.
type Logical struct {
	Op      string
	Filters []Node
}

// Spatial is a binary spatial predicate (INTERSECTS, WITHIN, CONTAINS).
type Spatial struct {
	Op   SpatialOp
	Args []Node
}

// BBox tests a property against the extent [minx, miny, maxx, maxy].
type BBox struct {
	Property Node
	Bounds   [4]float64
	CRS      string
}

// DWithin tests whether a property lies within Distance of a geometry.
type DWithin struct {
	Property Node
	Geometry Node
	Distance float64
	Units    string
}

// Func is a named function call.
type Func struct {
	Name string
	Args []Node
}

// Geometry is a geometry literal.
type Geometry struct {
	Geom orb.Geometry
}

// Include matches every feature.
type Include struct{}

// Unknown carries a decoded JSON node whose type is not part of the
// grammar. Renderers may still resolve it by name.
type Unknown struct {
	Kind string
	Name string
	Args []Node
}

func (*Literal) Type() string { return TypeLiteral }
func (*Property) Type() string { return TypeProperty }
func (n *Comparison) Type() string { return string(n.Op) }
func (n *Logical) Type() string { return n.Op }
func (n *Spatial) Type() string { return string(n.Op) }
func (*BBox) Type() string { return string(OpBBox) }
func (*DWithin) Type() string { return string(OpDWithin) }
func (*Func) Type() string { return TypeFunc }
func (*Include) Type() string { return TypeInclude }
func (n *Unknown) Type() string { return n.Kind }

func (n *Geometry) Type() string {
	if n.Geom == nil {
		return ""
	}
	return n.Geom.GeoJSONType()
}

func (*Literal) isNode() {}
func (*Property) isNode() {}
func (*Comparison) isNode() {}
func (*Logical) isNode() {}
func (*Spatial) isNode() {}
func (*BBox) isNode() {}
func (*DWithin) isNode() {}
func (*Func) isNode() {}
func (*Geometry) isNode() {}
func (*Include) isNode() {}
func (*Unknown) isNode() {}

// And builds a left-nested conjunction of filters.
func And(filters ...Node) Node {
	return fold(TypeAnd, filters)
}

// Or builds a left-nested disjunction of filters.
func Or(filters ...Node) Node {
	return fold(TypeOr, filters)
}

// Not negates filter.
func Not(filter Node) Node {
	return &Logical{Op: TypeNot, Filters: []Node{filter}}
}

func fold(op string, filters []Node) Node {
	if len(filters) == 0 {
		return nil
	}
	acc := filters[0]
	for _, f := range filters[1:] {
		acc = &Logical{Op: op, Filters: []Node{acc, f}}
	}
	return acc
}

// Visitor is implemented by the backends that turn a tree into text.
type Visitor[T any] interface {
	VisitLiteral(*Literal) (T, error)
	VisitProperty(*Property) (T, error)
	VisitComparison(*Comparison) (T, error)
	VisitLogical(*Logical) (T, error)
	VisitSpatial(*Spatial) (T, error)
	VisitBBox(*BBox) (T, error)
	VisitDWithin(*DWithin) (T, error)
	VisitFunc(*Func) (T, error)
	VisitGeometry(*Geometry) (T, error)
	VisitInclude(*Include) (T, error)
	VisitUnknown(*Unknown) (T, error)
}

// Visit dispatches n to the matching method of v. Nil nodes, typed or
// not, are an error.
func Visit[T any](n Node, v Visitor[T]) (T, error) {
	var zero T
	if n == nil {
		return zero, fmt.Errorf("cql: nil node")
	}
	if rv := reflect.ValueOf(n); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return zero, fmt.Errorf("cql: nil %T node", n)
	}

	switch n := n.(type) {
	case *Literal:
		return v.VisitLiteral(n)
	case *Property:
		return v.VisitProperty(n)
	case *Comparison:
		return v.VisitComparison(n)
	case *Logical:
		return v.VisitLogical(n)
	case *Spatial:
		return v.VisitSpatial(n)
	case *BBox:
		return v.VisitBBox(n)
	case *DWithin:
		return v.VisitDWithin(n)
	case *Func:
		return v.VisitFunc(n)
	case *Geometry:
		return v.VisitGeometry(n)
	case *Include:
		return v.VisitInclude(n)
	case *Unknown:
		return v.VisitUnknown(n)
	}
	return zero, &UnsupportedNodeError{Type: n.Type()}
}

// Properties returns the distinct property names referenced by n in order
// of first appearance.
func Properties(n Node) []string {
	var names []string
	seen := map[string]bool{}
	var walk func(Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Property:
			if !seen[n.Name] {
				seen[n.Name] = true
				names = append(names, n.Name)
			}
		case *Comparison:
			for _, a := range n.Args {
				walk(a)
			}
		case *Logical:
			for _, f := range n.Filters {
				walk(f)
			}
		case *Spatial:
			for _, a := range n.Args {
				walk(a)
			}
		case *BBox:
			walk(n.Property)
		case *DWithin:
			walk(n.Property)
			walk(n.Geometry)
		case *Func:
			for _, a := range n.Args {
				walk(a)
			}
		case *Unknown:
			for _, a := range n.Args {
				walk(a)
			}
		}
	}
	walk(n)
	return names
}
