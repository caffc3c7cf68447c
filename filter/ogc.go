package filter

import (
	"fmt"
	"strings"

	"github.com/hugr-lab/ogcfilter/geometry"
	"github.com/hugr-lab/ogcfilter/ogc"
)

var literalEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// propertyTag names an attribute: ValueReference under fes, PropertyName
// otherwise.
func propertyTag(ns, name string) string {
	tag := "PropertyName"
	if ns == "fes" {
		tag = "ValueReference"
	}
	return "<" + ns + ":" + tag + ">" + name + "</" + ns + ":" + tag + ">"
}

func literal(ns, text string) string {
	return "<" + ns + ":Literal>" + literalEscaper.Replace(text) + "</" + ns + ":Literal>"
}

// compare renders a comparison, or "" for operators outside the table.
func compare(ns, op string, content ...string) string {
	f, ok := ogc.ComparisonOperators[op]
	if !ok {
		return ""
	}
	return f(ns, content...)
}

func between(ns, attribute, lower, upper string) string {
	return compare(ns, "><", propertyTag(ns, attribute),
		"<"+ns+":LowerBoundary>"+literal(ns, lower)+"</"+ns+":LowerBoundary>",
		"<"+ns+":UpperBoundary>"+literal(ns, upper)+"</"+ns+":UpperBoundary>")
}

// WrapIfNoWildcards reports whether value has no unescaped wildcard.
// '*' and '.' are wildcards unless preceded by '!'.
func WrapIfNoWildcards(value string) bool {
	for i := 0; i < len(value); i++ {
		if (value[i] == '*' || value[i] == '.') && (i == 0 || value[i-1] != '!') {
			return false
		}
	}
	return true
}

// OGCStringField renders a string condition. like and ilike values
// without wildcards match anywhere in the attribute; other operators
// compare the value as is.
func OGCStringField(attribute, operator string, value Value, ns string) string {
	if !CheckOperatorValidity(value, operator) {
		return ""
	}
	prop := propertyTag(ns, attribute)
	if operator == "isNull" {
		return compare(ns, operator, prop)
	}
	text := value.String()
	if (operator == "like" || operator == "ilike") && WrapIfNoWildcards(text) {
		text = "*" + text + "*"
	}
	return compare(ns, operator, prop, literal(ns, text))
}

// OGCBooleanField renders attribute = value. Operators other than "=" and
// empty values produce nothing.
func OGCBooleanField(attribute, operator string, value Value, ns string) string {
	if !CheckOperatorValidity(value, operator) || operator != "=" || value.IsEmptyString() {
		return ""
	}
	return compare(ns, operator, propertyTag(ns, attribute), literal(ns, value.String()))
}

// OGCArrayField renders the "contains" test on an array attribute with the
// InArray function.
func OGCArrayField(attribute, operator string, value Value, ns string) string {
	if !CheckOperatorValidity(value, operator) || operator != "contains" || value.IsEmptyString() {
		return ""
	}
	return "<" + ns + ":PropertyIsEqualTo>\n" +
		"                <" + ns + ":Function name=\"InArray\">\n" +
		"                    " + literal(ns, value.String()) + "\n" +
		"                    <" + ns + ":PropertyName>" + attribute + "</" + ns + ":PropertyName>\n" +
		"                </" + ns + ":Function>\n" +
		"                <" + ns + ":Literal>true</" + ns + ":Literal>\n" +
		"            </" + ns + ":PropertyIsEqualTo>"
}

// OGCNumberField renders a numeric condition. For "><" the value is a
// {lowBound, upBound} object; a missing bound turns the range into a
// single comparison.
func OGCNumberField(attribute, operator string, value Value, ns string) string {
	low, up := value.Get("lowBound"), value.Get("upBound")
	if operator == "><" {
		if value.IsNil() {
			return ""
		}
		prop := propertyTag(ns, attribute)
		switch {
		case !low.IsNil() && up.IsNil():
			return compare(ns, ">=", prop, literal(ns, low.String()))
		case low.IsNil() && !up.IsNil():
			return compare(ns, "<=", prop, literal(ns, up.String()))
		case !low.IsNil() && !up.IsNil():
			return between(ns, attribute, low.String(), up.String())
		}
		return ""
	}
	val := value
	if !value.IsNil() && !low.IsNil() {
		val = low
	}
	if val.IsNil() {
		return ""
	}
	return compare(ns, operator, propertyTag(ns, attribute), literal(ns, val.String()))
}

// OGCDateField renders a date condition on a {startDate, endDate} value.
// Dates are ISO 8601 strings and are written verbatim.
func OGCDateField(attribute, operator string, value Value, ns string) string {
	start, end := value.Get("startDate"), value.Get("endDate")
	if operator == "><" {
		if !start.Truthy() || !end.Truthy() {
			return ""
		}
		return between(ns, attribute, start.String(), end.String())
	}
	if !start.Truthy() {
		return ""
	}
	return compare(ns, operator, propertyTag(ns, attribute), literal(ns, start.String()))
}

// OGCListField renders a comparison against one selected option.
func OGCListField(attribute, operator string, value Value, ns string) string {
	if value.IsNil() {
		return ""
	}
	return compare(ns, operator, propertyTag(ns, attribute), literal(ns, value.String()))
}

// ProcessOGCSimpleFilterField renders a field of the simplified search
// form. A list field becomes an Or of its selected options, where a null
// option tests for null.
func ProcessOGCSimpleFilterField(field SimpleField, ns string) string {
	switch field.Type {
	case "date":
		return OGCDateField(field.Attribute, field.Operator, field.Values, ns)
	case "array":
		return OGCArrayField(field.Attribute, field.Operator, field.Values, ns)
	case "number":
		return OGCNumberField(field.Attribute, field.Operator, field.Values, ns)
	case "string":
		return OGCStringField(field.Attribute, field.Operator, field.Values, ns)
	case "boolean":
		return OGCBooleanField(field.Attribute, field.Operator, field.Values, ns)
	case "list":
		values, _ := field.Values.Elems()
		if len(values) == 0 {
			return ""
		}
		var sb strings.Builder
		for _, v := range values {
			op := "="
			if v.IsNil() || v.String() == "null" {
				op = "isNull"
			}
			sb.WriteString(OGCStringField(field.Attribute, op, v, ns))
		}
		return ogc.LogicalOperators["OR"](ns, sb.String())
	}
	return ""
}

// ProcessOGCFilterFields renders the valid fields of group, or of the whole
// filter when group is nil, and concatenates them.
func (g Generator) ProcessOGCFilterFields(group *Group, f *Filter, ns string) string {
	var sb strings.Builder
	for _, field := range f.FilterFields {
		if group != nil && field.GroupID != group.ID {
			continue
		}
		if !CheckOperatorValidity(field.Value, field.Operator) {
			g.dropField("no value", field)
			continue
		}

		var out string
		switch field.Type {
		case "date", "date-time", "time":
			out = OGCDateField(field.Attribute, field.Operator, field.Value, ns)
		case "number":
			out = OGCNumberField(field.Attribute, field.Operator, field.Value, ns)
		case "string":
			out = OGCStringField(field.Attribute, field.Operator, field.Value, ns)
		case "boolean":
			out = OGCBooleanField(field.Attribute, field.Operator, field.Value, ns)
		case "list":
			out = OGCListField(field.Attribute, field.Operator, field.Value, ns)
		case "array":
			out = OGCArrayField(field.Attribute, field.Operator, field.Value, ns)
		}
		if field.Operator == "isNull" {
			out = OGCStringField(field.Attribute, "isNull", ValueOf("isNull"), ns)
		}
		if out == "" {
			g.dropField("no condition for type and operator", field)
			continue
		}
		sb.WriteString(out)
	}
	return sb.String()
}

// ProcessOGCFilterGroup renders root with its fields and sub-groups,
// wrapped in the group's logical operator. An empty group renders as "".
func (g Generator) ProcessOGCFilterGroup(root Group, f *Filter, ns string) (string, error) {
	return g.ogcGroup(root, f, ns, map[ID]bool{})
}

func (g Generator) ogcGroup(root Group, f *Filter, ns string, seen map[ID]bool) (string, error) {
	if seen[root.ID] {
		return "", fmt.Errorf("filter: group %q is its own ancestor", root.ID)
	}
	seen[root.ID] = true
	defer delete(seen, root.ID)

	content := g.ProcessOGCFilterFields(&root, f, ns)
	for _, sub := range findSubGroups(root, f.GroupFields) {
		s, err := g.ogcGroup(sub, f, ns, seen)
		if err != nil {
			return "", err
		}
		content += s
	}
	if content == "" {
		return "", nil
	}
	op, err := ogc.Logical(root.Logic)
	if err != nil {
		return "", fmt.Errorf("filter: group %q: %w", root.ID, err)
	}
	return op(ns, content), nil
}

// geometryGML renders a spatial field geometry for a WFS version. Points
// with coordinates that do not decode are printed verbatim.
func (g Generator) geometryGML(version string, geom *Geometry) string {
	gmlVersion := ogc.WFSToGMLVersion(version)
	o, err := geom.Orb()
	if err != nil {
		if geom != nil && geom.Type == "Point" {
			return geometry.PointGML(gmlVersion, geom.RawCoordinates(), geom.Projection)
		}
		g.log().Debug("filter: geometry skipped", "error", err)
		return ""
	}
	return geometry.ToGML(gmlVersion, o, geom.Projection)
}

func distanceTag(ns string, distance float64) string {
	return "<" + ns + `:Distance units="m">` + geometry.FormatNumber(distance) + "</" + ns + ":Distance>"
}

// ProcessOGCSpatialFilter renders one spatial field. A field with
// collectGeometries is rendered as a cross-layer filter instead of using
// its geometry.
func (g Generator) ProcessOGCSpatialFilter(version string, field SpatialField, ns string) (string, error) {
	if field.CollectGeometries != nil {
		return ProcessOGCCrossLayerFilter(CrossLayerFilter{
			Operation:         field.Operation,
			Attribute:         field.Attribute,
			CollectGeometries: field.CollectGeometries,
		}, "")
	}
	op, err := ogc.Spatial(field.Operation)
	if err != nil {
		return "", fmt.Errorf("filter: spatial field %q: %w", field.Attribute, err)
	}

	content := propertyTag(ns, field.Attribute)
	switch field.Operation {
	case "INTERSECTS", "DWITHIN", "WITHIN", "CONTAINS":
		content += g.geometryGML(version, field.Geometry)
		if field.Operation == "DWITHIN" {
			var d float64
			if field.Geometry != nil {
				d = field.Geometry.Distance
			}
			content += distanceTag(ns, d)
		}
	case "BBOX":
		if field.Geometry != nil && len(field.Geometry.Extent.Boxes) > 0 {
			content += geometry.Envelope(field.Geometry.Projection, field.Geometry.Extent.Boxes[0])
		}
	}
	return op(ns, content), nil
}

// CrossLayerCQLFilter returns the CQL applied to the collected layer: its
// own cqlFilter, else the CQL of its filter fields, else INCLUDE.
func CrossLayerCQLFilter(c *CrossLayerFilter) string {
	qc := c.queryCollection()
	if qc == nil {
		return "INCLUDE"
	}
	if qc.CQLFilter != "" {
		return qc.CQLFilter
	}
	if len(qc.FilterFields) > 0 && len(qc.GroupFields) > 0 {
		if s, ok := ToCQLFilter(&Filter{FilterFields: qc.FilterFields, GroupFields: qc.GroupFields}); ok {
			return s
		}
	}
	return "INCLUDE"
}

// ProcessOGCCrossLayerFilter renders a spatial test against the geometries
// of another layer, collected server side with
// collectGeometries(queryCollection(...)). ns defaults to "ogc"; the
// function elements are always written with the ogc prefix.
func ProcessOGCCrossLayerFilter(c CrossLayerFilter, ns string) (string, error) {
	if ns == "" {
		ns = "ogc"
	}
	op, err := ogc.Spatial(c.Operation)
	if err != nil {
		return "", fmt.Errorf("filter: cross layer filter: %w", err)
	}

	content := propertyTag(ns, c.Attribute)
	if c.CollectGeometries != nil {
		qc := c.queryCollection()
		if qc == nil {
			qc = &QueryCollection{}
		}
		content += `<ogc:Function name="collectGeometries">` +
			`<ogc:Function name="queryCollection">` +
			"<ogc:Literal>" + qc.TypeName + "</ogc:Literal>" +
			"<ogc:Literal>" + qc.GeometryName + "</ogc:Literal>" +
			"<ogc:Literal><![CDATA[" + CrossLayerCQLFilter(&c) + "]]></ogc:Literal>" +
			"</ogc:Function>" +
			"</ogc:Function>"
	}
	if c.Operation == "DWITHIN" {
		content += distanceTag(ns, c.Distance)
	}
	return op(ns, content), nil
}

// ToOGCFilterParts renders the independent parts of f, in order: attribute
// fields (or simple fields), spatial fields, the cross-layer filter,
// options.cqlFilter and the filters array. The caller combines them.
func (g Generator) ToOGCFilterParts(f *Filter, version, ns string) ([]string, error) {
	var parts []string
	if f == nil {
		return parts, nil
	}

	switch {
	case len(f.FilterFields) > 0:
		var attrs string
		if len(f.GroupFields) > 0 {
			s, err := g.ProcessOGCFilterGroup(f.GroupFields[0], f, ns)
			if err != nil {
				return nil, err
			}
			attrs = s
		} else {
			attrs = g.ProcessOGCFilterFields(nil, f, ns)
		}
		if attrs != "" {
			parts = append(parts, attrs)
		}
	case len(f.SimpleFilterFields) > 0:
		var sb strings.Builder
		for _, sf := range f.SimpleFilterFields {
			sb.WriteString(ProcessOGCSimpleFilterField(sf, ns))
		}
		parts = append(parts, ogc.LogicalOperators["AND"](ns, sb.String()))
	}

	spatial, err := g.ogcSpatialPart(f, version, ns)
	if err != nil {
		return nil, err
	}
	if spatial != "" {
		parts = append(parts, spatial)
	}

	if c := f.CrossLayerFilter; c != nil && c.Operation != "" {
		s, err := ProcessOGCCrossLayerFilter(*c, ns)
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}

	if f.Options != nil && f.Options.CQLFilter != "" {
		s, err := ogc.CQLToOGC(f.Options.CQLFilter, ogc.BuilderOptions{
			FilterNS:   ns,
			WFSVersion: version,
			GMLVersion: ogc.WFSToGMLVersion(version),
		})
		if err != nil {
			return nil, fmt.Errorf("filter: options.cqlFilter: %w", err)
		}
		if s != "" {
			parts = append(parts, s)
		}
	}

	extra, err := ConvertFiltersToOGC(f.Filters, version, ns)
	if err != nil {
		return nil, err
	}
	return append(parts, extra...), nil
}

// ogcSpatialPart renders the spatial fields. A BBOX field wins over all
// others; a BBOX whose extent lists several boxes becomes an Or of one
// BBOX per box.
func (g Generator) ogcSpatialPart(f *Filter, version, ns string) (string, error) {
	var bbox *SpatialField
	for i := range f.SpatialField.Fields {
		if f.SpatialField.Fields[i].Operation == "BBOX" {
			bbox = &f.SpatialField.Fields[i]
			break
		}
	}

	if bbox != nil {
		if bbox.Geometry == nil || len(bbox.Geometry.Extent.Boxes) == 0 {
			g.log().Debug("filter: BBOX without extent skipped", "attribute", bbox.Attribute)
			return "", nil
		}
		if !bbox.Geometry.Extent.Nested {
			return g.ProcessOGCSpatialFilter(version, *bbox, ns)
		}
		var sb strings.Builder
		for _, box := range bbox.Geometry.Extent.Boxes {
			field := *bbox
			geom := *bbox.Geometry
			geom.Extent = Extent{Boxes: [][]float64{box}}
			field.Geometry = &geom
			s, err := g.ProcessOGCSpatialFilter(version, field, ns)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		}
		return ogc.LogicalOperators["OR"](ns, sb.String()), nil
	}

	var rendered []string
	for _, field := range f.SpatialField.Fields {
		if field.Geometry == nil || field.Operation == "" {
			g.log().Debug("filter: spatial field skipped", "attribute", field.Attribute)
			continue
		}
		s, err := g.ProcessOGCSpatialFilter(version, field, ns)
		if err != nil {
			return "", err
		}
		rendered = append(rendered, s)
	}
	switch len(rendered) {
	case 0:
		return "", nil
	case 1:
		return rendered[0], nil
	}
	logic := f.SpatialFieldOperator
	if logic == "" {
		logic = "AND"
	}
	op, err := ogc.Logical(logic)
	if err != nil {
		return "", fmt.Errorf("filter: spatialFieldOperator: %w", err)
	}
	return op(ns, rendered...), nil
}

// ConvertFiltersToOGC renders the filters array. CQL entries are parsed
// and rendered with a builder for ns and version; logic entries wrap their
// rendered children, and are left out when they have none.
func ConvertFiltersToOGC(entries []Entry, version, ns string) ([]string, error) {
	var out []string
	for _, e := range entries {
		switch e.Format {
		case "cql":
			if strings.TrimSpace(e.Body) == "" {
				continue
			}
			s, err := ogc.CQLToOGC(e.Body, ogc.BuilderOptions{
				FilterNS:   ns,
				WFSVersion: version,
				GMLVersion: ogc.WFSToGMLVersion(version),
			})
			if err != nil {
				return nil, fmt.Errorf("filter: filters entry: %w", err)
			}
			if s != "" {
				out = append(out, s)
			}
		case "logic":
			inner, err := ConvertFiltersToOGC(e.Filters, version, ns)
			if err != nil {
				return nil, err
			}
			if len(inner) == 0 {
				continue
			}
			op, err := ogc.Logical(e.Logic)
			if err != nil {
				return nil, fmt.Errorf("filter: filters entry: %w", err)
			}
			out = append(out, op(ns, inner...))
		default:
			return nil, fmt.Errorf("filter: unsupported filters entry format %q", e.Format)
		}
	}
	return out, nil
}
