package sqlfilter

import (
	"fmt"
	"strings"

	"github.com/hugr-lab/ogcfilter/cql"
	"github.com/hugr-lab/ogcfilter/geometry"
)

// UnsupportedError is returned by EncodeStrict when part of the filter
// has no SQL form.
type UnsupportedError struct {
	Type string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("sqlfilter: %s cannot be encoded", e.Type)
}

// DuckDBEncoder encodes filter trees to DuckDB SQL syntax.
// Spatial predicates use the functions of the DuckDB spatial extension.
type DuckDBEncoder struct {
	opts *EncoderOptions
}

// NewDuckDBEncoder creates a new DuckDB SQL encoder.
// If opts is nil, default options are used.
func NewDuckDBEncoder(opts *EncoderOptions) *DuckDBEncoder {
	if opts == nil {
		opts = &EncoderOptions{}
	}
	return &DuckDBEncoder{opts: opts}
}

// Encode converts a filter to a WHERE clause body, without the "WHERE"
// keyword.
//
// Parts that cannot be expressed are left out so the result selects a
// superset of the matching rows:
//   - for AND, unsupported children are skipped and the others kept;
//   - for OR, one unsupported child drops the whole OR;
//   - NOT is kept only when its operand encodes completely.
//
// Returns empty string if nothing can be encoded.
func (e *DuckDBEncoder) Encode(n cql.Node) string {
	c, _ := e.encode(n)
	return c.sql
}

// EncodeStrict is like Encode but fails instead of leaving anything out.
func (e *DuckDBEncoder) EncodeStrict(n cql.Node) (string, error) {
	c, dropped := e.encode(n)
	if dropped != "" {
		return "", &UnsupportedError{Type: dropped}
	}
	return c.sql, nil
}

// EncodeFilters encodes several filters and joins them with AND.
// Returns empty string if no filters can be encoded.
func (e *DuckDBEncoder) EncodeFilters(filters ...cql.Node) string {
	var parts []string
	for _, f := range filters {
		if encoded := e.Encode(f); encoded != "" {
			parts = append(parts, encoded)
		}
	}

	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, ") AND (") + ")"
}

func (e *DuckDBEncoder) encode(n cql.Node) (clause, string) {
	v := &encoder{opts: e.opts}
	c, err := cql.Visit[clause](n, v)
	if err != nil {
		v.drop(n)
		return clause{}, v.dropped
	}
	return c, v.dropped
}

// clause is an encoded fragment. A fragment is exact when nothing was left
// out of it.
type clause struct {
	sql   string
	exact bool
}

func exact(sql string) clause { return clause{sql: sql, exact: true} }

func (c clause) complete() bool { return c.sql != "" && c.exact }

type encoder struct {
	opts    *EncoderOptions
	dropped string
}

func (v *encoder) drop(n cql.Node) clause {
	if v.dropped == "" {
		if n == nil {
			v.dropped = "empty filter"
		} else {
			v.dropped = n.Type()
		}
	}
	return clause{}
}

// args encodes nodes that must all encode completely.
func (v *encoder) args(nodes []cql.Node) ([]string, bool) {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		c, err := cql.Visit[clause](n, v)
		if err != nil || !c.complete() {
			return nil, false
		}
		out[i] = c.sql
	}
	return out, true
}

func (v *encoder) VisitLiteral(n *cql.Literal) (clause, error) {
	switch val := n.Value.(type) {
	case nil:
		return exact("NULL"), nil
	case string:
		return exact(quoteLiteral(val)), nil
	case float64:
		return exact(geometry.FormatNumber(val)), nil
	case bool:
		if val {
			return exact("TRUE"), nil
		}
		return exact("FALSE"), nil
	default:
		return exact(quoteLiteral(fmt.Sprint(val))), nil
	}
}

func (v *encoder) VisitProperty(n *cql.Property) (clause, error) {
	name := n.Name

	// Expression mapping takes precedence
	if expr, ok := v.opts.ColumnExpressions[name]; ok {
		return exact(expr), nil
	}
	if mapped, ok := v.opts.ColumnMapping[name]; ok {
		name = mapped
	}
	return exact(quoteIdentifier(name)), nil
}

func (v *encoder) VisitComparison(n *cql.Comparison) (clause, error) {
	args, ok := v.args(n.Args)
	if !ok || len(args) != n.Op.Arity() {
		return v.drop(n), nil
	}

	switch n.Op {
	case cql.OpEqual, cql.OpNotEqual, cql.OpLess, cql.OpLessOrEqual, cql.OpGreater, cql.OpGreaterOrEqual:
		return exact(args[0] + " " + string(n.Op) + " " + args[1]), nil
	case cql.OpLike, cql.OpILike:
		op := " LIKE "
		if n.Op == cql.OpILike {
			op = " ILIKE "
		}
		return exact(args[0] + op + args[1] + likeEscape(n.Args[1])), nil
	case cql.OpIsNull:
		return exact(args[0] + " IS NULL"), nil
	case cql.OpBetween:
		return exact(args[0] + " BETWEEN " + args[1] + " AND " + args[2]), nil
	}
	return v.drop(n), nil
}

// likeEscape declares the backslash escape used by CQL patterns.
// DuckDB LIKE has no escape character unless one is given.
func likeEscape(pattern cql.Node) string {
	if lit, ok := pattern.(*cql.Literal); ok {
		if s, ok := lit.Value.(string); ok && strings.Contains(s, `\`) {
			return ` ESCAPE '\'`
		}
	}
	return ""
}

func (v *encoder) VisitLogical(n *cql.Logical) (clause, error) {
	switch n.Op {
	case cql.TypeNot:
		if len(n.Filters) != 1 {
			return v.drop(n), nil
		}
		c, err := cql.Visit[clause](n.Filters[0], v)
		if err != nil || !c.complete() {
			return v.drop(n), nil
		}
		return exact("NOT (" + c.sql + ")"), nil
	case cql.TypeAnd, cql.TypeOr:
	default:
		return v.drop(n), nil
	}

	result := clause{exact: true}
	var parts []string
	for _, child := range n.Filters {
		c, err := cql.Visit[clause](child, v)
		if err != nil {
			c = v.drop(child)
		}
		if c.sql == "" {
			// A dropped OR branch would narrow the selection
			if n.Op == cql.TypeOr {
				return clause{}, nil
			}
			result.exact = false
			continue
		}
		result.exact = result.exact && c.exact
		parts = append(parts, c.sql)
	}

	switch len(parts) {
	case 0:
		return clause{}, nil
	case 1:
		result.sql = parts[0]
	default:
		result.sql = "(" + strings.Join(parts, " "+strings.ToUpper(n.Op)+" ") + ")"
	}
	return result, nil
}

var spatialFunctions = map[cql.SpatialOp]string{
	cql.OpIntersects: "ST_Intersects",
	cql.OpWithin:     "ST_Within",
	cql.OpContains:   "ST_Contains",
	cql.OpBBox:       "ST_Intersects",
	cql.OpDWithin:    "ST_DWithin",
}

func (v *encoder) VisitSpatial(n *cql.Spatial) (clause, error) {
	fn, ok := spatialFunctions[n.Op]
	if !ok {
		return v.drop(n), nil
	}
	args, ok := v.args(n.Args)
	if !ok {
		return v.drop(n), nil
	}
	return exact(fn + "(" + strings.Join(args, ", ") + ")"), nil
}

func (v *encoder) VisitBBox(n *cql.BBox) (clause, error) {
	args, ok := v.args([]cql.Node{n.Property})
	if !ok {
		return v.drop(n), nil
	}
	envelope := fmt.Sprintf("ST_MakeEnvelope(%s, %s, %s, %s)",
		geometry.FormatNumber(n.Bounds[0]), geometry.FormatNumber(n.Bounds[1]),
		geometry.FormatNumber(n.Bounds[2]), geometry.FormatNumber(n.Bounds[3]))
	return exact("ST_Intersects(" + args[0] + ", " + envelope + ")"), nil
}

// VisitDWithin ignores the units; distances are in the units of the
// geometry column's reference system.
func (v *encoder) VisitDWithin(n *cql.DWithin) (clause, error) {
	args, ok := v.args([]cql.Node{n.Property, n.Geometry})
	if !ok {
		return v.drop(n), nil
	}
	return exact("ST_DWithin(" + args[0] + ", " + args[1] + ", " + geometry.FormatNumber(n.Distance) + ")"), nil
}

func (v *encoder) VisitFunc(n *cql.Func) (clause, error) {
	args, ok := v.args(n.Args)
	if !ok {
		return v.drop(n), nil
	}
	fn, found := v.opts.Functions[n.Name]
	if !found {
		fn, found = defaultFunctions[n.Name]
	}
	if !found {
		// Default: treat as regular function
		return exact(n.Name + "(" + strings.Join(args, ", ") + ")"), nil
	}
	sql, ok := fn(args)
	if !ok {
		return v.drop(n), nil
	}
	return exact(sql), nil
}

func (v *encoder) VisitGeometry(n *cql.Geometry) (clause, error) {
	wkt := geometry.ToWKT(n.Geom)
	if wkt == "" {
		return v.drop(n), nil
	}
	return exact("ST_GeomFromText(" + quoteLiteral(wkt) + ")"), nil
}

func (v *encoder) VisitInclude(*cql.Include) (clause, error) {
	return exact("TRUE"), nil
}

func (v *encoder) VisitUnknown(n *cql.Unknown) (clause, error) {
	return v.drop(n), nil
}

func unary(name string) FunctionEncoder {
	return func(args []string) (string, bool) {
		if len(args) != 1 {
			return "", false
		}
		return name + "(" + args[0] + ")", true
	}
}

func unsupported([]string) (string, bool) { return "", false }

// defaultFunctions translates the function names emitted by the grouped
// filter generators and common GeoServer filter functions.
var defaultFunctions = map[string]FunctionEncoder{
	"strToLowerCase": unary("lower"),
	"strToUpperCase": unary("upper"),
	"strLength":      unary("length"),
	"isNull": func(args []string) (string, bool) {
		if len(args) != 1 {
			return "", false
		}
		return "(" + args[0] + " IS NULL)", true
	},
	"InArray": func(args []string) (string, bool) {
		if len(args) != 2 {
			return "", false
		}
		return "list_contains(" + args[1] + ", " + args[0] + ")", true
	},
	// Cross-layer lookups need the remote service.
	"collectGeometries": unsupported,
	"queryCollection":   unsupported,
}
