package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hugr-lab/ogcfilter/cql"
	"github.com/hugr-lab/ogcfilter/ogc"
)

// now is the clock of ComposeAttributeFilters.
var now = time.Now

// ComposeAttributeFilters merges filters into one grouped filter. A new
// root group with the given logic (default AND) holds the root group of
// every input; the group IDs of input idx are suffixed with "_idx" so
// they cannot collide. Spatial fields are flattened into one array joined
// with spatialFieldOperator (default AND), and filters arrays are
// concatenated.
func ComposeAttributeFilters(filters []*Filter, logic, spatialFieldOperator string) *Filter {
	if logic == "" {
		logic = "AND"
	}
	if spatialFieldOperator == "" {
		spatialFieldOperator = "AND"
	}
	root := Group{
		ID:    ID(strconv.FormatInt(now().UnixMilli(), 10)),
		Index: 0,
		Logic: logic,
	}

	out := &Filter{
		GroupFields:          []Group{root},
		FilterFields:         []Field{},
		SpatialField:         Many(),
		SpatialFieldOperator: spatialFieldOperator,
	}
	for idx, f := range filters {
		if f == nil {
			continue
		}
		suffix := "_" + strconv.Itoa(idx)
		if len(f.FilterFields) > 0 {
			for _, g := range f.GroupFields {
				parent := root.ID
				if g.Index != 0 {
					parent = g.GroupID + ID(suffix)
				}
				out.GroupFields = append(out.GroupFields, Group{
					ID:      g.ID + ID(suffix),
					GroupID: parent,
					Index:   1 + g.Index,
					Logic:   g.Logic,
				})
			}
		}
		for _, field := range f.FilterFields {
			field.GroupID += ID(suffix)
			out.FilterFields = append(out.FilterFields, field)
		}
		out.SpatialField.Fields = append(out.SpatialField.Fields, f.SpatialField.Fields...)
		out.Filters = append(out.Filters, f.Filters...)
	}
	return out
}

// IsFilterEmpty reports whether f carries no condition: no field with a
// value (zero counts, isNull needs none), no spatial geometry, no
// complete cross-layer filter and no filters array entry.
func IsFilterEmpty(f *Filter) bool {
	if f == nil {
		return true
	}
	for _, field := range f.FilterFields {
		if field.Value.Truthy() || field.Operator == "isNull" {
			return false
		}
		if n, ok := field.Value.Raw().(float64); ok && n == 0 {
			return false
		}
	}
	for _, sf := range f.SpatialField.Fields {
		if sf.Geometry != nil {
			return false
		}
	}
	if c := f.CrossLayerFilter; c != nil && c.Attribute != "" && c.Operation != "" {
		return false
	}
	return len(f.Filters) == 0
}

// IsCrossLayerFilterValid reports whether c names an operation and the
// layer and geometry to collect.
func IsCrossLayerFilterValid(c *CrossLayerFilter) bool {
	qc := c.queryCollection()
	return c != nil && c.Operation != "" && qc != nil && qc.TypeName != "" && qc.GeometryName != ""
}

// IsFilterValid reports whether f has anything to render: attribute or
// simple fields, a spatial field with geometry and operation, a
// cross-layer query collection with type and geometry names, or filters
// array entries.
func IsFilterValid(f *Filter) bool {
	if f == nil {
		return false
	}
	if len(f.FilterFields) > 0 || len(f.SimpleFilterFields) > 0 || len(f.Filters) > 0 {
		return true
	}
	for _, sf := range f.SpatialField.Fields {
		if sf.Geometry != nil && sf.Operation != "" {
			return true
		}
	}
	qc := f.CrossLayerFilter.queryCollection()
	return qc != nil && qc.TypeName != "" && qc.GeometryName != ""
}

// SetupCrossLayerFilterDefaults returns a copy of c ready to render: only
// valid filter fields are kept and a missing group tree becomes a single
// OR root group. It returns nil when c has no query collection.
func SetupCrossLayerFilterDefaults(c *CrossLayerFilter) *CrossLayerFilter {
	qc := c.queryCollection()
	if qc == nil {
		return nil
	}
	q := *qc
	q.FilterFields = []Field{}
	for _, field := range qc.FilterFields {
		if CheckOperatorValidity(field.Value, field.Operator) {
			q.FilterFields = append(q.FilterFields, field)
		}
	}
	if q.GroupFields == nil {
		q.GroupFields = []Group{{ID: "1", Index: 0, Logic: "OR"}}
	}
	out := *c
	cg := *c.CollectGeometries
	cg.QueryCollection = &q
	out.CollectGeometries = &cg
	return &out
}

// MergeOptions configures MergeFiltersToOGC.
type MergeOptions struct {
	// NSPlaceholder is the filter namespace prefix. Default "ogc".
	NSPlaceholder string
	// OGCVersion is the WFS version of the result. Default 2.0.
	OGCVersion string
	// AddXmlnsToRoot writes XmlnsToAdd into the root Filter tag.
	AddXmlnsToRoot bool
	XmlnsToAdd     []string
}

// MergeFiltersToOGC combines CQL text and filter objects into a single
// Filter element whose conditions are ANDed. Entries are strings,
// *Filter or Filter values; nil entries, invalid and disabled filters are
// skipped.
func (g Generator) MergeFiltersToOGC(opts MergeOptions, entries ...any) (string, error) {
	ns := opts.NSPlaceholder
	if ns == "" {
		ns = "ogc"
	}
	version := opts.OGCVersion
	if version == "" {
		version = ogc.WFS20
	}
	fb := ogc.NewBuilder(ogc.BuilderOptions{
		FilterNS:   ns,
		WFSVersion: version,
		GMLVersion: ogc.WFSToGMLVersion(version),
	})

	var parts []string
	for i, e := range entries {
		var f *Filter
		switch x := e.(type) {
		case nil:
			continue
		case string:
			if x == "" {
				continue
			}
			n, err := cql.Parse(x)
			if err != nil {
				return "", fmt.Errorf("filter: merge entry %d: %w", i, err)
			}
			s, err := ogc.Render(fb, n)
			if err != nil {
				return "", fmt.Errorf("filter: merge entry %d: %w", i, err)
			}
			parts = append(parts, s)
			continue
		case *Filter:
			f = x
		case Filter:
			f = &x
		default:
			return "", fmt.Errorf("filter: merge entry %d: unsupported type %T", i, e)
		}
		if !IsFilterValid(f) || f.Disabled {
			g.log().Debug("filter: merge entry skipped", "index", i)
			continue
		}
		fp, err := g.ToOGCFilterParts(f, version, ns)
		if err != nil {
			return "", fmt.Errorf("filter: merge entry %d: %w", i, err)
		}
		parts = append(parts, fp...)
	}

	out := fb.Filter(fb.And(parts...))
	if opts.AddXmlnsToRoot {
		end := strings.Index(out, ">")
		var xmlns string
		if len(opts.XmlnsToAdd) > 0 {
			xmlns = " " + strings.Join(opts.XmlnsToAdd, " ")
		}
		out = out[:end] + xmlns + out[end:]
	}
	return out, nil
}
