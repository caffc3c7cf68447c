package filter

import (
	"strings"

	"github.com/hugr-lab/ogcfilter/geometry"
)

// ProcessCQLWildcards turns a user search value into a quoted LIKE
// pattern. '*' and '.' become '%' and '_' unless escaped with '!', literal
// '%' and '_' are backslash escaped, quotes are doubled and ilike values
// are lowercased. A value without wildcards matches anywhere. Operators
// other than like and ilike get the quoted value as is.
func ProcessCQLWildcards(value, operator string) string {
	switch operator {
	case "like", "ilike":
	default:
		return "'" + EscapeCQLString(value) + "'"
	}
	if operator == "ilike" {
		value = strings.ToLower(value)
	}
	wrap := WrapIfNoWildcards(value)

	var sb strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch c {
		case '\'':
			sb.WriteString("''")
		case '%', '_':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '!':
			if i+1 < len(value) && (value[i+1] == '*' || value[i+1] == '.') {
				sb.WriteByte(value[i+1])
				i++
				continue
			}
			sb.WriteByte(c)
		case '*':
			sb.WriteByte('%')
		case '.':
			sb.WriteByte('_')
		default:
			sb.WriteByte(c)
		}
	}
	if wrap {
		return "'%" + sb.String() + "%'"
	}
	return "'" + sb.String() + "'"
}

// EscapeCQLString doubles single quotes for use inside a CQL string
// literal.
func EscapeCQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// CQLStringField renders a string condition. isNull always renders; other
// operators need a value.
func CQLStringField(attribute, operator string, value Value) string {
	if operator == "isNull" {
		return `isNull("` + attribute + `")=true`
	}
	if value.IsNil() {
		return ""
	}
	switch operator {
	case "=", "<>":
		return `"` + attribute + `"` + operator + ProcessCQLWildcards(value.String(), operator)
	case "ilike":
		return `strToLowerCase("` + attribute + `") LIKE ` + ProcessCQLWildcards(value.String(), operator)
	}
	return `"` + attribute + `" LIKE ` + ProcessCQLWildcards(value.String(), operator)
}

// CQLBooleanField renders attribute = value.
func CQLBooleanField(attribute, operator string, value Value) string {
	if value.IsNil() || value.IsEmptyString() || operator != "=" {
		return ""
	}
	return `"` + attribute + `"='` + EscapeCQLString(value.String()) + "'"
}

// CQLNumberField renders a numeric condition. For "><" the value is a
// {lowBound, upBound} object.
func CQLNumberField(attribute, operator string, value Value) string {
	low, up := value.Get("lowBound"), value.Get("upBound")
	if operator == "><" {
		switch {
		case value.IsNil():
			return ""
		case !low.IsNil() && !up.IsNil():
			return `("` + attribute + `">='` + low.String() + `' AND "` + attribute + `"<='` + up.String() + "')"
		case !low.IsNil():
			return `("` + attribute + `">='` + low.String() + "')"
		case !up.IsNil():
			return `("` + attribute + `"<='` + up.String() + "')"
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
	return `"` + attribute + `" ` + operator + " '" + EscapeCQLString(val.String()) + "'"
}

// CQLDateField renders a date condition on a {startDate, endDate} value.
func CQLDateField(attribute, operator string, value Value) string {
	start, end := value.Get("startDate"), value.Get("endDate")
	if operator == "><" {
		if !start.Truthy() || !end.Truthy() {
			return ""
		}
		return "(" + attribute + ">='" + start.String() + "' AND " + attribute + "<='" + end.String() + "')"
	}
	if !start.Truthy() {
		return ""
	}
	return attribute + operator + "'" + start.String() + "'"
}

// CQLArrayField renders the "contains" test with InArray.
func CQLArrayField(attribute, operator string, value Value) string {
	if value.IsNil() || operator != "contains" {
		return ""
	}
	return "InArray(" + value.String() + "," + attribute + ")=true"
}

// CQLListField renders a comparison against one selected option.
func CQLListField(attribute, operator string, value Value) string {
	return CQLStringField(attribute, operator, value)
}

// ProcessCQLSimpleFilterField renders a field of the simplified search
// form. A list field becomes an IN test over the selected options, or
// nothing when every option is selected; a selected null option adds an
// isNull test.
func ProcessCQLSimpleFilterField(field SimpleField) string {
	switch field.Type {
	case "date":
		return CQLDateField(field.Attribute, field.Operator, field.Values)
	case "number":
		return CQLNumberField(field.Attribute, field.Operator, field.Values)
	case "string":
		return CQLStringField(field.Attribute, field.Operator, field.Values)
	case "boolean":
		return CQLBooleanField(field.Attribute, field.Operator, field.Values)
	case "array":
		return CQLArrayField(field.Attribute, field.Operator, field.Values)
	case "list":
		values, _ := field.Values.Elems()
		if len(values) == len(field.OptionsValues) {
			return ""
		}
		var quoted []string
		addNull := false
		for _, v := range values {
			if v.IsNil() || v.String() == "null" {
				addNull = true
				continue
			}
			quoted = append(quoted, "'"+EscapeCQLString(v.String())+"'")
		}
		var s string
		if len(quoted) > 0 {
			s = field.Attribute + " IN(" + strings.Join(quoted, ",") + ")"
		}
		if addNull {
			if s != "" {
				s += " OR "
			}
			s += "isNull(" + field.Attribute + ")=true"
		}
		return s
	}
	return ""
}

// ProcessCQLFilterFields renders the fields of group joined with the
// group's logic. With negateAll every condition is wrapped in NOT.
func (g Generator) ProcessCQLFilterFields(group Group, negateAll bool, f *Filter) string {
	var out []string
	for _, field := range f.FilterFields {
		if field.GroupID != group.ID {
			continue
		}
		s := g.cqlField(field)
		if s == "" {
			continue
		}
		if negateAll {
			s = "NOT (" + s + ")"
		}
		out = append(out, s)
	}
	return strings.Join(out, " "+group.Logic+" ")
}

func (g Generator) cqlField(field Field) string {
	if !CheckOperatorValidity(field.Value, field.Operator) {
		g.dropField("no value", field)
		return ""
	}

	var s string
	switch field.Type {
	case "date", "date-time", "time":
		s = CQLDateField(field.Attribute, field.Operator, field.Value)
	case "number":
		s = CQLNumberField(field.Attribute, field.Operator, field.Value)
	case "string":
		s = CQLStringField(field.Attribute, field.Operator, field.Value)
	case "boolean":
		s = CQLBooleanField(field.Attribute, field.Operator, field.Value)
	case "list":
		s = CQLListField(field.Attribute, field.Operator, field.Value)
	case "array":
		s = CQLArrayField(field.Attribute, field.Operator, field.Value)
	}
	if field.Operator == "isNull" {
		s = CQLStringField(field.Attribute, "isNull", field.Value)
	}
	if s == "" {
		g.dropField("no condition for type and operator", field)
	}
	return s
}

// ProcessCQLFilterGroup renders root with its fields and sub-groups. NOR
// is written as AND over negated members. Sub-groups are parenthesized, and
// negated as a whole under NOR.
func (g Generator) ProcessCQLFilterGroup(root Group, f *Filter) string {
	return g.cqlGroup(root, f, map[ID]bool{})
}

func (g Generator) cqlGroup(root Group, f *Filter, seen map[ID]bool) string {
	if seen[root.ID] {
		g.log().Warn("filter: group cycle skipped", "group", string(root.ID))
		return ""
	}
	seen[root.ID] = true
	defer delete(seen, root.ID)

	negate := root.Logic == "NOR"
	logic := root.Logic
	if negate {
		logic = "AND"
	}
	group := root
	group.Logic = logic

	parts := []string{}
	if s := g.ProcessCQLFilterFields(group, negate, f); s != "" {
		parts = append(parts, s)
	}
	for _, sub := range findSubGroups(root, f.GroupFields) {
		s := g.cqlGroup(sub, f, seen)
		if s == "" {
			continue
		}
		if negate {
			parts = append(parts, "NOT ("+s+")")
		} else {
			parts = append(parts, "("+s+")")
		}
	}
	return strings.Join(parts, " "+logic+" ")
}

// CQLGeometryElement renders the geometry of a spatial field as it
// appears in a CQL spatial predicate. Points with coordinates that do not
// decode are printed verbatim.
func (g Generator) CQLGeometryElement(geom *Geometry) string {
	o, err := geom.Orb()
	if err != nil {
		if geom != nil && geom.Type == "Point" {
			return "Point(" + geometry.JoinCoordinates(geom.RawCoordinates(), " ") + ")"
		}
		g.log().Debug("filter: geometry skipped", "error", err)
		return ""
	}
	return geometry.ToCQL(o)
}

func cqlCollectGeometries(c *CrossLayerFilter) string {
	qc := c.queryCollection()
	if qc == nil {
		qc = &QueryCollection{}
	}
	return "collectGeometries(queryCollection('" + qc.TypeName + "', '" + qc.GeometryName + "','" +
		EscapeCQLString(CrossLayerCQLFilter(c)) + "'))"
}

// ProcessCQLSpatialFilter renders the spatial fields that have a geometry
// and an operation, joined with the spatial field operator. An EPSG style projection adds an SRID prefix to
// the geometry.
func (g Generator) ProcessCQLSpatialFilter(f *Filter) string {
	logic := f.SpatialFieldOperator
	if logic == "" {
		logic = "AND"
	}
	var out []string
	for _, field := range f.SpatialField.Fields {
		if field.Geometry == nil || field.Operation == "" {
			continue
		}
		var target string
		if c := (&CrossLayerFilter{CollectGeometries: field.CollectGeometries}); c.queryCollection() != nil {
			target = cqlCollectGeometries(c)
		} else {
			if code := strings.Split(field.Geometry.Projection, ":"); len(code) == 2 {
				target = "SRID=" + code[1] + ";"
			}
			target += g.CQLGeometryElement(field.Geometry)
		}
		out = append(out, field.Operation+`("`+field.Attribute+`",`+target+")")
	}
	return strings.Join(out, " "+logic+" ")
}

// ToCQLFilter renders f as CQL. The second result is false when f yields
// no condition at all.
func (g Generator) ToCQLFilter(f *Filter) (string, bool) {
	if f == nil {
		return "", false
	}
	var parts []string

	switch {
	case len(f.FilterFields) > 0:
		var s string
		if len(f.GroupFields) > 0 {
			s = g.ProcessCQLFilterGroup(f.GroupFields[0], f)
		} else {
			var fields []string
			for _, field := range f.FilterFields {
				if c := g.cqlField(field); c != "" {
					fields = append(fields, c)
				}
			}
			s = strings.Join(fields, " AND ")
		}
		if s != "" {
			parts = append(parts, s)
		}
	case len(f.SimpleFilterFields) > 0:
		var fields []string
		for _, sf := range f.SimpleFilterFields {
			if s := ProcessCQLSimpleFilterField(sf); s != "" {
				fields = append(fields, "("+s+")")
			}
		}
		if len(fields) > 0 {
			parts = append(parts, strings.Join(fields, " AND "))
		} else {
			parts = append(parts, "INCLUDE")
		}
	}

	if s := g.ProcessCQLSpatialFilter(f); s != "" {
		parts = append(parts, s)
	}

	if c := f.CrossLayerFilter; c != nil && c.Operation != "" && c.Attribute != "" && c.queryCollection() != nil {
		parts = append(parts, c.Operation+"("+c.Attribute+","+cqlCollectGeometries(c)+")")
	}

	parts = append(parts, ConvertFiltersToCQL(f.Filters)...)

	if len(parts) == 0 {
		return "", false
	}
	return "(" + strings.Join(parts, ") AND (") + ")", true
}

// ConvertFiltersToCQL renders the filters array. CQL entries pass through;
// logic entries join their children with the logic keyword.
func ConvertFiltersToCQL(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		switch e.Format {
		case "cql":
			if strings.TrimSpace(e.Body) != "" {
				out = append(out, e.Body)
			}
		case "logic":
			inner := ConvertFiltersToCQL(e.Filters)
			switch len(inner) {
			case 0:
			case 1:
				out = append(out, inner[0])
			default:
				out = append(out, "("+strings.Join(inner, ") "+e.Logic+" (")+")")
			}
		}
	}
	return out
}
