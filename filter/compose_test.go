package filter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixClock(t *testing.T, ms int64) {
	t.Helper()
	prev := now
	now = func() time.Time { return time.UnixMilli(ms) }
	t.Cleanup(func() { now = prev })
}

const composeInput = `{
	"groupFields":[{"id":1,"logic":"OR","index":0},{"id":2,"logic":"OR","groupId":1,"index":1}],
	"filters":[{"format":"cql","body":%q}],
	"filterFields":[
		{"rowId":1545411885028,"groupId":1,"attribute":"STATE_NAME","operator":"=","value":"Alabama","type":"string","exception":null},
		{"rowId":1545411894600,"groupId":2,"attribute":"STATE_NAME","operator":"=","value":"Arizona","type":"string","exception":null}]}`

func TestComposeAttributeFilters(t *testing.T) {
	fixClock(t, 1700000000000)
	a := mustParse(t, strings.Replace(composeInput, "%q", `"STATE_FIPS = '01'"`, 1))
	b := mustParse(t, strings.Replace(composeInput, "%q", `"STATE_NAME = 'Illinois'"`, 1))

	f := ComposeAttributeFilters([]*Filter{a, b}, "", "")
	require.NotNil(t, f)

	g := f.GroupFields
	require.Len(t, g, 5)
	assert.Equal(t, Group{ID: "1700000000000", Index: 0, Logic: "AND"}, g[0])
	assert.Equal(t, g[0].ID, g[1].GroupID)
	assert.Equal(t, g[1].ID, g[2].GroupID)
	assert.Equal(t, g[0].ID, g[3].GroupID)
	assert.Equal(t, g[3].ID, g[4].GroupID)
	assert.Equal(t, ID("1_0"), g[1].ID)
	assert.Equal(t, ID("2_1"), g[4].ID)
	assert.Equal(t, 2, g[2].Index)

	require.Len(t, f.FilterFields, 4)
	for i, field := range f.FilterFields {
		assert.Equal(t, g[i+1].ID, field.GroupID, i)
	}

	require.Len(t, f.Filters, 2)
	assert.Equal(t, "STATE_FIPS = '01'", f.Filters[0].Body)
	assert.Equal(t, "STATE_NAME = 'Illinois'", f.Filters[1].Body)
	assert.Equal(t, "AND", f.SpatialFieldOperator)

	// the inputs are left untouched
	assert.Equal(t, ID("1"), a.FilterFields[0].GroupID)

	s, ok := ToCQLFilter(f)
	require.True(t, ok)
	assert.Equal(t, `(("STATE_NAME"='Alabama' OR ("STATE_NAME"='Arizona')) AND ("STATE_NAME"='Alabama' OR ("STATE_NAME"='Arizona'))) AND (STATE_FIPS = '01') AND (STATE_NAME = 'Illinois')`, s)
}

func TestComposeAttributeFiltersSpatial(t *testing.T) {
	fixClock(t, 1)
	a := mustParse(t, `{"spatialField":{"attribute":"g","operation":"INTERSECTS","geometry":{"type":"Point","coordinates":[1,2]}}}`)
	b := mustParse(t, `{"spatialField":[{"attribute":"g","operation":"WITHIN","geometry":{"type":"Point","coordinates":[3,4]}}]}`)

	f := ComposeAttributeFilters([]*Filter{a, nil, b}, "OR", "OR")
	assert.Len(t, f.GroupFields, 1)
	assert.Equal(t, "OR", f.GroupFields[0].Logic)
	require.Len(t, f.SpatialField.Fields, 2)
	assert.Equal(t, "WITHIN", f.SpatialField.Fields[1].Operation)

	s, ok := ToCQLFilter(f)
	require.True(t, ok)
	assert.Equal(t, `(INTERSECTS("g",Point(1 2)) OR WITHIN("g",Point(3 4)))`, s)
}

func TestIsFilterEmpty(t *testing.T) {
	tests := []struct {
		doc  string
		want bool
	}{
		{`{"filterFields":[],"spatialField":{},"crossLayerFilter":{},"filters":[]}`, true},
		{`{"filterFields":[{"value":1}],"spatialField":{},"crossLayerFilter":{},"filters":[]}`, false},
		{`{"filterFields":[{"value":0}]}`, false},
		{`{"filterFields":[{"value":""}]}`, true},
		{`{"filterFields":[{"value":1}],"spatialField":{"geometry":{"type":"Point","coordinates":[1,2]}},"crossLayerFilter":{},"filters":[]}`, false},
		{`{"spatialField":[{"geometry":{"type":"Point","coordinates":[1,2]}}]}`, false},
		{`{"filterFields":[],"spatialField":{},"crossLayerFilter":{"attribute":"attr","operation":"op"},"filters":[]}`, false},
		{`{"crossLayerFilter":{"attribute":"attr"}}`, true},
		{`{"filterFields":[],"spatialField":{},"crossLayerFilter":{},"filters":[{"format":"logic","logic":"AND","filters":[]}]}`, false},
		{`{"filterFields":[{"operator":"isNull"}],"spatialField":{},"crossLayerFilter":{},"filters":[]}`, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsFilterEmpty(mustParse(t, tt.doc)), tt.doc)
	}
	assert.True(t, IsFilterEmpty(nil))
}

func TestCheckOperatorValidity(t *testing.T) {
	assert.True(t, CheckOperatorValidity(ValueOf("value"), "="))
	assert.True(t, CheckOperatorValidity(Value{}, "isNull"))
	assert.True(t, CheckOperatorValidity(Null, "isNull"))
	assert.True(t, CheckOperatorValidity(ValueOf(""), "="))

	assert.False(t, CheckOperatorValidity(Null, "="))
	assert.False(t, CheckOperatorValidity(Value{}, "="))
	assert.False(t, CheckOperatorValidity(Value{}, ""))
}

func TestIsFilterValid(t *testing.T) {
	tests := []struct {
		doc  string
		want bool
	}{
		{`{}`, false},
		{`{"filterFields":[{"attribute":"a"}]}`, true},
		{`{"simpleFilterFields":[{"attribute":"a"}]}`, true},
		{`{"filters":[{"format":"cql","body":"a = 1"}]}`, true},
		{`{"spatialField":{"operation":"INTERSECTS","geometry":null}}`, false},
		{`{"spatialField":{"operation":"INTERSECTS","geometry":{"type":"Point","coordinates":[1,2]}}}`, true},
		{`{"crossLayerFilter":{"collectGeometries":{"queryCollection":{"typeName":"t"}}}}`, false},
		{`{"crossLayerFilter":{"collectGeometries":{"queryCollection":{"typeName":"t","geometryName":"g"}}}}`, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsFilterValid(mustParse(t, tt.doc)), tt.doc)
	}
	assert.False(t, IsFilterValid(nil))
}

func TestIsCrossLayerFilterValid(t *testing.T) {
	qc := &QueryCollection{TypeName: "t", GeometryName: "g"}
	assert.True(t, IsCrossLayerFilterValid(&CrossLayerFilter{Operation: "INTERSECTS", CollectGeometries: &CollectGeometries{QueryCollection: qc}}))
	assert.False(t, IsCrossLayerFilterValid(&CrossLayerFilter{CollectGeometries: &CollectGeometries{QueryCollection: qc}}))
	assert.False(t, IsCrossLayerFilterValid(&CrossLayerFilter{Operation: "INTERSECTS"}))
	assert.False(t, IsCrossLayerFilterValid(nil))
}

func TestSetupCrossLayerFilterDefaults(t *testing.T) {
	c := &CrossLayerFilter{
		Operation: "INTERSECTS",
		Attribute: "the_geom",
		CollectGeometries: &CollectGeometries{QueryCollection: &QueryCollection{
			TypeName:     "regions",
			GeometryName: "geom",
			FilterFields: []Field{
				{GroupID: "1", Attribute: "a", Operator: "=", Type: "string", Value: ValueOf("x")},
				{GroupID: "1", Attribute: "b", Operator: "=", Type: "string"},
			},
		}},
	}
	out := SetupCrossLayerFilterDefaults(c)
	require.NotNil(t, out)
	qc := out.CollectGeometries.QueryCollection
	require.Len(t, qc.FilterFields, 1)
	assert.Equal(t, []Group{{ID: "1", Index: 0, Logic: "OR"}}, qc.GroupFields)
	assert.Len(t, c.CollectGeometries.QueryCollection.FilterFields, 2)
	assert.Nil(t, c.CollectGeometries.QueryCollection.GroupFields)

	assert.Equal(t, `("a"='x')`, CrossLayerCQLFilter(out))
	assert.Nil(t, SetupCrossLayerFilterDefaults(&CrossLayerFilter{}))
}

const mergeInput = `{"featureTypeName":"test","groupFields":[{"id":1,"logic":"OR","index":0}],"filterFields":[],
	"spatialField":{"method":"BBOX","operation":"INTERSECTS","attribute":"shape",
		"geometry":{"id":"some_id","type":"Polygon",
			"extent":[-189291.52323397118,6127042.8962688595,-189157.75843447214,6127162.329125555],
			"center":[-189224.64083422167,6127102.612697207],
			"coordinates":[[[-189291.52323397118,6127162.329125555],[-189291.52323397118,6127042.8962688595],[-189157.75843447214,6127042.8962688595],[-189157.75843447214,6127162.329125555],[-189291.52323397118,6127162.329125555]]],
			"style":{},"projection":"EPSG:3857"}},
	"pagination":{"startIndex":0,"maxFeatures":20},"filterType":"OGC","sortOptions":null,"crossLayerFilter":null,"hits":false}`

func TestMergeFiltersToOGC(t *testing.T) {
	f := mustParse(t, mergeInput)
	xmlns := []string{`xmlns:ogc="http://www.opengis.net/ogc"`, `xmlns:gml="http://www.opengis.net/gml"`}
	head := `<ogc:Filter xmlns:ogc="http://www.opengis.net/ogc" xmlns:gml="http://www.opengis.net/gml"><ogc:And><ogc:Intersects><ogc:PropertyName>shape</ogc:PropertyName>`
	tail := `</ogc:Intersects></ogc:And></ogc:Filter>`
	gml2 := `<gml:Polygon srsName="EPSG:3857"><gml:outerBoundaryIs><gml:LinearRing><gml:coordinates>-189291.52323397118,6127162.329125555 -189291.52323397118,6127042.8962688595 -189157.75843447214,6127042.8962688595 -189157.75843447214,6127162.329125555 -189291.52323397118,6127162.329125555</gml:coordinates></gml:LinearRing></gml:outerBoundaryIs></gml:Polygon>`
	gml3 := `<gml:Polygon srsName="EPSG:3857"><gml:exterior><gml:LinearRing><gml:posList>-189291.52323397118 6127162.329125555 -189291.52323397118 6127042.8962688595 -189157.75843447214 6127042.8962688595 -189157.75843447214 6127162.329125555 -189291.52323397118 6127162.329125555</gml:posList></gml:LinearRing></gml:exterior></gml:Polygon>`

	tests := []struct {
		version string
		geom    string
	}{
		{"1.0.0", gml2},
		{"1.1.0", gml3},
		{"2.0", gml3},
		{"2.0.0", gml3},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, err := MergeFiltersToOGC(MergeOptions{
				OGCVersion:     tt.version,
				AddXmlnsToRoot: true,
				XmlnsToAdd:     xmlns,
			}, nil, f)
			require.NoError(t, err)
			assert.Equal(t, head+tt.geom+tail, got)
		})
	}
}

func TestMergeFiltersToOGCEntries(t *testing.T) {
	disabled := mustParse(t, `{"disabled":true,"filters":[{"format":"cql","body":"x = 1"}]}`)
	value := *mustParse(t, `{"filters":[{"format":"cql","body":"b = 2"}]}`)

	got, err := MergeFiltersToOGC(MergeOptions{OGCVersion: "1.1.0"}, "a = 1", "", disabled, &Filter{}, value)
	require.NoError(t, err)
	assert.Equal(t, `<ogc:Filter><ogc:And>`+
		`<ogc:PropertyIsEqualTo><ogc:PropertyName>a</ogc:PropertyName><ogc:Literal>1</ogc:Literal></ogc:PropertyIsEqualTo>`+
		`<ogc:PropertyIsEqualTo><ogc:PropertyName>b</ogc:PropertyName><ogc:Literal>2</ogc:Literal></ogc:PropertyIsEqualTo>`+
		`</ogc:And></ogc:Filter>`, got)

	got, err = MergeFiltersToOGC(MergeOptions{NSPlaceholder: "fes"}, "a = 1")
	require.NoError(t, err)
	assert.Equal(t, `<fes:Filter><fes:And><fes:PropertyIsEqualTo><fes:ValueReference>a</fes:ValueReference><fes:Literal>1</fes:Literal></fes:PropertyIsEqualTo></fes:And></fes:Filter>`, got)

	_, err = MergeFiltersToOGC(MergeOptions{}, 42)
	require.Error(t, err)
	_, err = MergeFiltersToOGC(MergeOptions{}, "a = ")
	require.Error(t, err)
}

func TestGetFeatureBase(t *testing.T) {
	base := GetFeatureBase("2.0", nil, false, "application/json", &QueryOptions{ViewParams: "a:b"})
	assert.Contains(t, base, `viewParams="a:b"`)
	assert.NotContains(t, GetFeatureBase("2.0", nil, false, "application/json", &QueryOptions{CQLFilter: "a:b"}), `viewParams=`)

	assert.NotContains(t, GetFeatureBase("2.0", nil, false, "application/json", &QueryOptions{NoSchemaLocation: true}), `xsi:schemaLocation=`)
	assert.Contains(t, GetFeatureBase("2.0", nil, false, "application/json", &QueryOptions{}), `xsi:schemaLocation=`)
	assert.Contains(t, GetFeatureBase("2.0", nil, false, "", nil), `xsi:schemaLocation=`)

	start := 0
	page := &Pagination{StartIndex: &start, MaxFeatures: 10}
	assert.True(t, strings.HasPrefix(GetFeatureBase("1.0", page, true, "", nil),
		`<wfs:GetFeature startIndex="0" maxFeatures="10"  resultType="hits"service="WFS" version="1.0.0" outputFormat="GML2"`))
	assert.NotContains(t, GetFeatureBase("2.0", page, true, "", nil), "hits")
	assert.Contains(t, GetFeatureBase("2.0", nil, true, "", nil), ` resultType="hits"`)
	assert.True(t, strings.HasSuffix(GetFeatureBase("1.1.0", nil, false, "", &QueryOptions{NoSchemaLocation: true}),
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" >`))
}

func TestGetWFSFilterData(t *testing.T) {
	doc := `{"featureTypeName":"topp:states","filterType":"%s","ogcVersion":"1.1.0",
		"filterFields":[{"attribute":"NAME","groupId":1,"operator":"=","type":"string","value":"x"}],
		"groupFields":[{"id":1,"logic":"AND","index":0}]}`

	got, err := GetWFSFilterData(mustParse(t, strings.Replace(doc, "%s", "OGC", 1)), &QueryOptions{ViewParams: "k:v"})
	require.NoError(t, err)
	assert.Contains(t, got, `viewParams="k:v"`)
	assert.Contains(t, got, `<wfs:Query typeName="topp:states" srsName="EPSG:4326"><ogc:Filter><ogc:And>`)

	got, err = GetWFSFilterData(mustParse(t, strings.Replace(doc, "%s", "CQL", 1)), nil)
	require.NoError(t, err)
	assert.Equal(t, `("NAME"='x')`, got)

	got, err = GetWFSFilterData(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetSLD(t *testing.T) {
	f := mustParse(t, `{"filterFields":[{"attribute":"NAME","groupId":1,"operator":"=","type":"string","value":"x"}]}`)

	sld, err := GetSLD("topp:states", f, "1.1.0", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sld, `<StyledLayerDescriptor version="1.0.0"`))
	assert.Contains(t, sld, `<NamedLayer><Name>topp:states</Name><UserStyle><FeatureTypeStyle><Rule >`+
		`<ogc:Filter><ogc:PropertyIsEqualTo><ogc:PropertyName>NAME</ogc:PropertyName><ogc:Literal>x</ogc:Literal></ogc:PropertyIsEqualTo></ogc:Filter>`+
		`<PointSymbolizer>`)

	sld, err = GetSLD("topp:states", nil, "1.1.0", "")
	require.NoError(t, err)
	assert.Contains(t, sld, `<Rule ><PointSymbolizer>`)

	sld, err = GetSLD("topp:states", f, "", "ogc")
	require.NoError(t, err)
	assert.Contains(t, sld, `<Rule ><PointSymbolizer>`)
}

func TestGetOGCAllPropertyValue(t *testing.T) {
	req := GetOGCAllPropertyValue("topp:states", "STATE_NAME")
	assert.True(t, strings.HasPrefix(req, `<wfs:GetPropertyValue service="WFS" valueReference='STATE_NAME'`))
	assert.Contains(t, req, `<wfs:Query typeNames="topp:states"/>`)
	assert.True(t, strings.HasSuffix(req, `</wfs:GetPropertyValue>`))
}
