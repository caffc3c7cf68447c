package filter

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValues(t *testing.T) {
	f := mustParse(t, `{"filterFields":[
		{"attribute":"a","value":"x"},
		{"attribute":"b","value":null},
		{"attribute":"c"},
		{"attribute":"d","value":0},
		{"attribute":"e","value":{"lowBound":1,"upBound":2}},
		{"attribute":"f","value":[1,"two"]}]}`)
	require.Len(t, f.FilterFields, 6)
	v := func(i int) Value { return f.FilterFields[i].Value }

	assert.Equal(t, "x", v(0).String())
	assert.True(t, v(1).IsDefined())
	assert.True(t, v(1).IsNil())
	assert.False(t, v(2).IsDefined())
	assert.True(t, v(2).IsNil())
	assert.Equal(t, "undefined", v(2).String())
	assert.False(t, v(3).IsNil())
	assert.False(t, v(3).Truthy())
	assert.Equal(t, "0", v(3).String())
	assert.Equal(t, "1", v(4).Get("lowBound").String())
	assert.False(t, v(4).Get("missing").IsDefined())
	assert.Equal(t, "[object Object]", v(4).String())
	assert.Equal(t, "1,two", v(5).String())
	elems, ok := v(5).Elems()
	require.True(t, ok)
	assert.Len(t, elems, 2)
}

func TestValueOf(t *testing.T) {
	assert.Equal(t, 3.0, ValueOf(3).Raw())
	assert.Equal(t, 3.0, ValueOf(int64(3)).Raw())
	assert.Equal(t, "x", ValueOf(ValueOf("x")).Raw())
	assert.True(t, ValueOf(nil).IsNil())
	assert.True(t, ValueOf("").IsEmptyString())
	assert.Equal(t, "true", ValueOf(true).String())
	assert.Equal(t, "null", Null.String())
}

func TestValueMarshalOmitsUndefined(t *testing.T) {
	data, err := json.Marshal([]Field{
		{Attribute: "a", Operator: "isNull"},
		{Attribute: "b", Value: Null},
		{Attribute: "c", Value: ValueOf(2)},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"attribute":"a","operator":"isNull"},{"attribute":"b","value":null},{"attribute":"c","value":2}]`, string(data))
}

func TestGroupID(t *testing.T) {
	f := mustParse(t, `{"groupFields":[{"id":1,"index":0,"logic":"OR"},{"id":"2","groupId":1,"index":1,"logic":"AND"},{"id":1545410762560,"groupId":"1","index":1,"logic":"AND"}]}`)
	require.Len(t, f.GroupFields, 3)
	assert.Equal(t, ID("1"), f.GroupFields[0].ID)
	assert.Equal(t, ID("2"), f.GroupFields[1].ID)
	assert.Equal(t, f.GroupFields[1].GroupID, f.GroupFields[2].GroupID)
	assert.Equal(t, ID("1545410762560"), f.GroupFields[2].ID)

	data, err := json.Marshal(f.GroupFields[:2])
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"index":0,"logic":"OR"},{"id":2,"groupId":1,"index":1,"logic":"AND"}]`, string(data))

	data, err = json.Marshal(Group{ID: "1_0"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1_0","index":0,"logic":""}`, string(data))

	_, err = Parse([]byte(`{"groupFields":[{"id":true}]}`))
	require.Error(t, err)
}

func TestSpatialFieldsJSON(t *testing.T) {
	single := mustParse(t, `{"spatialField":{"attribute":"g","operation":"INTERSECTS"}}`)
	require.Len(t, single.SpatialField.Fields, 1)
	assert.True(t, single.SpatialField.Single)

	many := mustParse(t, `{"spatialField":[{"attribute":"a"},{"attribute":"b"}]}`)
	require.Len(t, many.SpatialField.Fields, 2)
	assert.False(t, many.SpatialField.Single)

	none := mustParse(t, `{"spatialField":null}`)
	assert.True(t, none.SpatialField.IsZero())

	data, err := json.Marshal(single)
	require.NoError(t, err)
	assert.JSONEq(t, `{"spatialField":{"attribute":"g","operation":"INTERSECTS"}}`, string(data))

	data, err = json.Marshal(many)
	require.NoError(t, err)
	assert.JSONEq(t, `{"spatialField":[{"attribute":"a"},{"attribute":"b"}]}`, string(data))

	data, err = json.Marshal(&Filter{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestExtentJSON(t *testing.T) {
	var e Extent
	require.NoError(t, json.Unmarshal([]byte(`[1,2,3,4]`), &e))
	assert.Equal(t, Extent{Boxes: [][]float64{{1, 2, 3, 4}}}, e)

	require.NoError(t, json.Unmarshal([]byte(`[[1,2,3,4],[5,6,7,8]]`), &e))
	assert.True(t, e.Nested)
	assert.Len(t, e.Boxes, 2)

	data, err := json.Marshal(Extent{Boxes: [][]float64{{1, 2, 3, 4}}})
	require.NoError(t, err)
	assert.Equal(t, `[1,2,3,4]`, string(data))

	require.Error(t, json.Unmarshal([]byte(`"box"`), &e))
}

func TestGeometryOrb(t *testing.T) {
	g := NewGeometry(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, "EPSG:4326")
	assert.Equal(t, "Polygon", g.Type)

	o, err := g.Orb()
	require.NoError(t, err)
	assert.Equal(t, orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, o)

	bad := &Geometry{Type: "Point", Coordinates: json.RawMessage(`[[1,1],[3,2]]`)}
	_, err = bad.Orb()
	require.Error(t, err)
	assert.Equal(t, []any{[]any{1.0, 1.0}, []any{3.0, 2.0}}, bad.RawCoordinates())

	_, err = (&Geometry{Type: "Point"}).Orb()
	require.Error(t, err)
	_, err = (*Geometry)(nil).Orb()
	require.Error(t, err)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte(`{"filterFields":`))
	require.Error(t, err)
	_, err = Parse([]byte(`{"spatialField":"x"}`))
	require.Error(t, err)
}
