package ogc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/hugr-lab/ogcfilter/geometry"
)

// BuilderOptions configures a Builder.
type BuilderOptions struct {
	// FilterNS is the namespace prefix of filter tags. Default "ogc".
	FilterNS string
	// GMLVersion of embedded geometries. Default derived from WFSVersion.
	GMLVersion string
	// WFSVersion selects PropertyName (1.x) or ValueReference (2.x).
	// Default "1.1.0".
	WFSVersion string
}

// Builder produces OGC Filter Encoding fragments for one namespace and
// version. It holds no state beyond its configuration and is safe for
// concurrent use.
type Builder struct {
	ns       string
	gml      string
	wfs      string
	propTag  string
	ops      Operations
	literals *strings.Replacer
}

// NewBuilder creates a Builder. Zero option fields take their defaults.
func NewBuilder(opts BuilderOptions) *Builder {
	if opts.FilterNS == "" {
		opts.FilterNS = "ogc"
	}
	if opts.WFSVersion == "" {
		opts.WFSVersion = WFS110
	}
	if opts.GMLVersion == "" {
		opts.GMLVersion = WFSToGMLVersion(opts.WFSVersion)
	}

	b := &Builder{
		ns:       opts.FilterNS,
		gml:      opts.GMLVersion,
		wfs:      opts.WFSVersion,
		propTag:  "PropertyName",
		literals: strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;"),
	}
	if strings.HasPrefix(opts.WFSVersion, "2.") {
		b.propTag = "ValueReference"
	}
	b.ops = b.operations()
	return b
}

// NS returns the filter namespace prefix.
func (b *Builder) NS() string { return b.ns }

// GMLVersion returns the GML version used for geometries.
func (b *Builder) GMLVersion() string { return b.gml }

// WFSVersion returns the configured WFS version.
func (b *Builder) WFSVersion() string { return b.wfs }

func (b *Builder) tag(name, content string) string {
	return "<" + b.ns + ":" + name + ">" + content + "</" + b.ns + ":" + name + ">"
}

// Filter wraps content in the root Filter element.
func (b *Builder) Filter(content ...string) string {
	return b.tag("Filter", strings.Join(content, ""))
}

// FidFilter selects a single feature by id.
func (b *Builder) FidFilter(fid string) string {
	if b.ns == "fes" {
		return b.Filter(`<fes:ResourceId rid="` + fid + `"/>`)
	}
	return b.Filter("<" + b.ns + `:FeatureId fid="` + fid + `"/>`)
}

// And joins filters with And.
func (b *Builder) And(filters ...string) string {
	return LogicalOperators["AND"](b.ns, filters...)
}

// Or joins filters with Or.
func (b *Builder) Or(filters ...string) string {
	return LogicalOperators["OR"](b.ns, filters...)
}

// Not negates the concatenation of filters.
func (b *Builder) Not(filters ...string) string {
	return LogicalOperators["NOT"](b.ns, filters...)
}

// Nor is Not wrapping Or.
func (b *Builder) Nor(filters ...string) string {
	return LogicalOperators["NOR"](b.ns, filters...)
}

// Literal renders a Literal element. Strings have XML markup escaped;
// numbers use the shortest round-trip form.
func (b *Builder) Literal(value any) string {
	var text string
	switch v := value.(type) {
	case nil:
		text = ""
	case string:
		text = b.literals.Replace(v)
	case float64:
		text = geometry.FormatNumber(v)
	case float32:
		text = geometry.FormatNumber(float64(v))
	case int:
		text = strconv.Itoa(v)
	case int64:
		text = strconv.FormatInt(v, 10)
	case bool:
		text = strconv.FormatBool(v)
	default:
		text = b.literals.Replace(fmt.Sprint(v))
	}
	return b.tag("Literal", text)
}

// ValueReference names a property: PropertyName for WFS 1.x and
// ValueReference for WFS 2.x.
func (b *Builder) ValueReference(name string) string {
	return b.tag(b.propTag, name)
}

// Geometry renders g as GML at the configured version.
func (b *Builder) Geometry(g orb.Geometry, srsName string) string {
	return geometry.ToGML(b.gml, g, srsName)
}

// Envelope renders a gml:Envelope for [minx, miny, maxx, maxy].
func (b *Builder) Envelope(extent [4]float64, srsName string) string {
	return geometry.Envelope(srsName, extent[:])
}

// Func renders a Function element with rendered arguments.
func (b *Builder) Func(name string, args ...string) string {
	return "<" + b.ns + `:Function name="` + name + `">` + strings.Join(args, "") + "</" + b.ns + ":Function>"
}

func (b *Builder) comparison(op string, args ...string) string {
	return ComparisonOperators[op](b.ns, args...)
}

func (b *Builder) Equal(left, right string) string { return b.comparison("=", left, right) }
func (b *Builder) NotEqual(left, right string) string { return b.comparison("<>", left, right) }
func (b *Builder) Less(left, right string) string { return b.comparison("<", left, right) }
func (b *Builder) LessOrEqual(left, right string) string { return b.comparison("<=", left, right) }
func (b *Builder) Greater(left, right string) string { return b.comparison(">", left, right) }
func (b *Builder) GreaterOrEqual(left, right string) string { return b.comparison(">=", left, right) }
func (b *Builder) Like(left, right string) string { return b.comparison("like", left, right) }
func (b *Builder) ILike(left, right string) string { return b.comparison("ilike", left, right) }
func (b *Builder) IsNull(property string) string { return b.comparison("isNull", property) }

// Between wraps lower and upper in LowerBoundary and UpperBoundary.
func (b *Builder) Between(property, lower, upper string) string {
	return b.comparison("><", property, b.tag("LowerBoundary", lower), b.tag("UpperBoundary", upper))
}

func (b *Builder) spatial(op string, args ...string) string {
	return SpatialOperators[op](b.ns, args...)
}

func (b *Builder) Intersects(property, geom string) string { return b.spatial("INTERSECTS", property, geom) }
func (b *Builder) Within(property, geom string) string { return b.spatial("WITHIN", property, geom) }
func (b *Builder) Contains(property, geom string) string { return b.spatial("CONTAINS", property, geom) }
func (b *Builder) BBox(property, envelope string) string { return b.spatial("BBOX", property, envelope) }

// DWithin renders a distance predicate. Units default to "m".
func (b *Builder) DWithin(property, geom string, distance float64, units string) string {
	if units == "" {
		units = "m"
	}
	dist := "<" + b.ns + `:Distance units="` + units + `">` + geometry.FormatNumber(distance) + "</" + b.ns + ":Distance>"
	return b.spatial("DWITHIN", property, geom, dist)
}

// Operation renders an operator from already rendered arguments.
type Operation func(args ...string) (string, error)

// Operations is the name-keyed dispatch table of a Builder.
type Operations map[string]Operation

// Operations returns the dispatch table bound to b.
func (b *Builder) Operations() Operations {
	return b.ops
}

// Call invokes the named operation.
func (ops Operations) Call(name string, args ...string) (string, error) {
	op, ok := ops[name]
	if !ok {
		return "", &UnsupportedOperatorError{Table: "builder", Operator: name}
	}
	return op(args...)
}

// ArityError reports a builder operation called with the wrong number of
// arguments.
type ArityError struct {
	Operation string
	Want      int
	Got       int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("ogc: %s takes %d arguments, got %d", e.Operation, e.Want, e.Got)
}

func binary(name string, f func(a, b string) string) Operation {
	return func(args ...string) (string, error) {
		if len(args) != 2 {
			return "", &ArityError{Operation: name, Want: 2, Got: len(args)}
		}
		return f(args[0], args[1]), nil
	}
}

func (b *Builder) operations() Operations {
	return Operations{
		"equal":          binary("equal", b.Equal),
		"notEqual":       binary("notEqual", b.NotEqual),
		"less":           binary("less", b.Less),
		"lessOrEqual":    binary("lessOrEqual", b.LessOrEqual),
		"greater":        binary("greater", b.Greater),
		"greaterOrEqual": binary("greaterOrEqual", b.GreaterOrEqual),
		"like":           binary("like", b.Like),
		"ilike":          binary("ilike", b.ILike),
		"intersects":     binary("intersects", b.Intersects),
		"within":         binary("within", b.Within),
		"contains":       binary("contains", b.Contains),
		"bbox":           binary("bbox", b.BBox),
		"isNull": func(args ...string) (string, error) {
			if len(args) != 1 {
				return "", &ArityError{Operation: "isNull", Want: 1, Got: len(args)}
			}
			return b.IsNull(args[0]), nil
		},
		"between": func(args ...string) (string, error) {
			if len(args) != 3 {
				return "", &ArityError{Operation: "between", Want: 3, Got: len(args)}
			}
			return b.Between(args[0], args[1], args[2]), nil
		},
		// dwithin expects the distance element already rendered.
		"dwithin": func(args ...string) (string, error) {
			if len(args) != 3 {
				return "", &ArityError{Operation: "dwithin", Want: 3, Got: len(args)}
			}
			return b.spatial("DWITHIN", args...), nil
		},
		"func": func(args ...string) (string, error) {
			if len(args) == 0 {
				return "", &ArityError{Operation: "func", Want: 1, Got: 0}
			}
			return b.Func(args[0], args[1:]...), nil
		},
	}
}

// XML marks a value passed to PropertyFilter methods as an already
// rendered fragment rather than a literal.
type XML string

// PropertyFilter builds predicates on a single property.
type PropertyFilter struct {
	b    *Builder
	name string
}

// Property starts a chain of predicates on name.
func (b *Builder) Property(name string) *PropertyFilter {
	return &PropertyFilter{b: b, name: name}
}

func (p *PropertyFilter) ref() string { return p.b.ValueReference(p.name) }

func (p *PropertyFilter) value(v any) string {
	if x, ok := v.(XML); ok {
		return string(x)
	}
	return p.b.Literal(v)
}

func (p *PropertyFilter) EqualTo(v any) string { return p.b.Equal(p.ref(), p.value(v)) }
func (p *PropertyFilter) NotEqualTo(v any) string { return p.b.NotEqual(p.ref(), p.value(v)) }
func (p *PropertyFilter) LessThan(v any) string { return p.b.Less(p.ref(), p.value(v)) }
func (p *PropertyFilter) GreaterThan(v any) string { return p.b.Greater(p.ref(), p.value(v)) }
func (p *PropertyFilter) Like(v any) string { return p.b.Like(p.ref(), p.value(v)) }
func (p *PropertyFilter) ILike(v any) string { return p.b.ILike(p.ref(), p.value(v)) }
func (p *PropertyFilter) IsNull() string { return p.b.IsNull(p.ref()) }

func (p *PropertyFilter) LessThanOrEqualTo(v any) string {
	return p.b.LessOrEqual(p.ref(), p.value(v))
}

func (p *PropertyFilter) GreaterThanOrEqualTo(v any) string {
	return p.b.GreaterOrEqual(p.ref(), p.value(v))
}

// Between tests lower <= property <= upper.
func (p *PropertyFilter) Between(lower, upper any) string {
	return p.b.Between(p.ref(), p.value(lower), p.value(upper))
}

func (p *PropertyFilter) Intersects(g orb.Geometry, srsName string) string {
	return p.b.Intersects(p.ref(), p.b.Geometry(g, srsName))
}

func (p *PropertyFilter) Within(g orb.Geometry, srsName string) string {
	return p.b.Within(p.ref(), p.b.Geometry(g, srsName))
}

func (p *PropertyFilter) Contains(g orb.Geometry, srsName string) string {
	return p.b.Contains(p.ref(), p.b.Geometry(g, srsName))
}

func (p *PropertyFilter) BBox(extent [4]float64, srsName string) string {
	return p.b.BBox(p.ref(), p.b.Envelope(extent, srsName))
}

func (p *PropertyFilter) DWithin(g orb.Geometry, srsName string, distance float64, units string) string {
	return p.b.DWithin(p.ref(), p.b.Geometry(g, srsName), distance, units)
}
