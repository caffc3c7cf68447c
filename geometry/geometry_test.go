package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromWKT(t *testing.T) {
	tests := []struct {
		name string
		text string
		want orb.Geometry
	}{
		{"point", "POINT(1 2)", orb.Point{1, 2}},
		{"point lower case", "point (1.5 -2)", orb.Point{1.5, -2}},
		{"linestring", "LINESTRING(0 0, 1 1)", orb.LineString{{0, 0}, {1, 1}}},
		{"polygon", "POLYGON((1 2, 3 4, 5 6, 1 2))", orb.Polygon{{{1, 2}, {3, 4}, {5, 6}, {1, 2}}}},
		{"multipoint bare", "MULTIPOINT(1 2, 3 4)", orb.MultiPoint{{1, 2}, {3, 4}}},
		{"multipoint nested", "MULTIPOINT((1 2), (3 4))", orb.MultiPoint{{1, 2}, {3, 4}}},
		{"multilinestring", "MULTILINESTRING((0 0, 1 1), (2 2, 3 3))", orb.MultiLineString{{{0, 0}, {1, 1}}, {{2, 2}, {3, 3}}}},
		{"multipolygon", "MULTIPOLYGON(((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5, 6 6, 5 5)))", orb.MultiPolygon{
			{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
			{{{5, 5}, {6, 5}, {6, 6}, {5, 5}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromWKT(tt.text))
		})
	}
}

func TestFromWKTMalformed(t *testing.T) {
	for _, text := range []string{"", "POINT", "POINT(1 2", "CIRCLE(1 2)", "POLYGON((a b))"} {
		assert.Nil(t, FromWKT(text), text)

		_, err := ParseWKT(text)
		var wktErr *WKTError
		assert.ErrorAs(t, err, &wktErr, text)
	}
}

func TestMatchWKT(t *testing.T) {
	lit, ok := MatchWKT("MULTIPOLYGON(((0 0, 1 0, 1 1, 0 0)))) AND x = 1")
	require.True(t, ok)
	assert.Equal(t, "MULTIPOLYGON(((0 0, 1 0, 1 1, 0 0)))", lit)

	_, ok = MatchWKT("POINTS = 1")
	assert.False(t, ok)
}

func TestToGMLPoint(t *testing.T) {
	p := orb.Point{1, 1}
	assert.Equal(t,
		`<gml:Point srsDimension="2" srsName="EPSG:4326"><gml:pos>1 1</gml:pos></gml:Point>`,
		ToGML(GML311, p, "EPSG:4326"))
	assert.Equal(t,
		`<gml:Point srsDimension="2" srsName="EPSG:4326"><gml:coord><X>1</X><Y>1</Y></gml:coord></gml:Point>`,
		ToGML(GML2, p, "EPSG:4326"))
}

func TestToGMLPolygonClosesRing(t *testing.T) {
	poly := FromWKT("POLYGON((1 1, 1 2, 2 2, 2 1))")
	require.NotNil(t, poly)

	assert.Equal(t,
		`<gml:Polygon srsName="EPSG:4326"><gml:exterior><gml:LinearRing><gml:posList>1 1 1 2 2 2 2 1 1 1</gml:posList></gml:LinearRing></gml:exterior></gml:Polygon>`,
		ToGML(GML311, poly, "EPSG:4326"))
	assert.Equal(t,
		`<gml:Polygon srsName="EPSG:4326"><gml:outerBoundaryIs><gml:LinearRing><gml:coordinates>1,1 1,2 2,2 2,1 1,1</gml:coordinates></gml:LinearRing></gml:outerBoundaryIs></gml:Polygon>`,
		ToGML(GML2, poly, "EPSG:4326"))
}

func TestWKTToGMLRoundTrip(t *testing.T) {
	g := FromWKT("POLYGON((1 2, 3 4, 5 6, 1 2))")
	assert.Equal(t, orb.Polygon{{{1, 2}, {3, 4}, {5, 6}, {1, 2}}}, g)
	assert.Equal(t,
		`<gml:Polygon><gml:exterior><gml:LinearRing><gml:posList>1 2 3 4 5 6 1 2</gml:posList></gml:LinearRing></gml:exterior></gml:Polygon>`,
		ToGML(GML311, g, ""))
}

func TestToGMLMultiTypesByVersion(t *testing.T) {
	mls := orb.MultiLineString{{{0, 0}, {1, 1}}}
	assert.Equal(t,
		`<gml:MultiLineString><gml:lineStringMember><gml:LineString><gml:posList>0 0 1 1</gml:posList></gml:LineString></gml:lineStringMember></gml:MultiLineString>`,
		ToGML(GML311, mls, ""))
	assert.Equal(t,
		`<gml:MultiCurve><gml:curveMember><gml:LineString><gml:posList>0 0 1 1</gml:posList></gml:LineString></gml:curveMember></gml:MultiCurve>`,
		ToGML(GML32, mls, ""))

	mp := orb.MultiPolygon{{{{0, 0}, {1, 0}, {1, 1}}}}
	assert.Contains(t, ToGML(GML32, mp, ""), "<gml:MultiSurface><gml:surfaceMember><gml:Polygon>")
	assert.Contains(t, ToGML(GML2, mp, ""), "<gml:MultiPolygon><gml:polygonMember><gml:Polygon><gml:outerBoundaryIs>")
	assert.Contains(t, ToGML(GML2, mp, ""), "0,0 1,0 1,1 0,0")

	assert.Empty(t, ToGML(GML311, orb.Collection{orb.Point{1, 1}}, ""))
	assert.Empty(t, ToGML(GML311, nil, ""))
}

func TestEnvelope(t *testing.T) {
	assert.Equal(t,
		`<gml:Envelope srsName="EPSG:4326"><gml:lowerCorner>-180 -90</gml:lowerCorner><gml:upperCorner>180 90</gml:upperCorner></gml:Envelope>`,
		Envelope("EPSG:4326", []float64{-180, -90, 180, 90}))
	assert.Empty(t, Envelope("EPSG:4326", []float64{1, 2}))
}

func TestToCQL(t *testing.T) {
	tests := []struct {
		geom orb.Geometry
		want string
	}{
		{orb.Point{1, 2}, "Point(1 2)"},
		{orb.MultiPoint{{1, 2}, {3, 4}}, "MultiPoint(1 2, 3 4)"},
		{orb.Polygon{{{1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}}}, "Polygon((1 2, 2 3, 3 4, 4 5, 5 6, 1 2))"},
		{orb.MultiPolygon{{{{1, 2}, {2, 3}, {3, 4}}}, {{{5, 5}, {6, 6}, {7, 5}}}}, "MultiPolygon(((1 2, 2 3, 3 4, 1 2)), ((5 5, 6 6, 7 5, 5 5)))"},
		{orb.LineString{{0, 0}, {1, 1}}, "LineString(0 0, 1 1)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToCQL(tt.geom))
	}
}

func TestToWKT(t *testing.T) {
	assert.Equal(t, "POINT(1 2)", ToWKT(orb.Point{1, 2}))
	assert.Equal(t, "POLYGON((0 0, 1 0, 1 1, 0 0))", ToWKT(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}}}))
	assert.Equal(t, "MULTIPOINT((1 2), (3 4))", ToWKT(orb.MultiPoint{{1, 2}, {3, 4}}))

	g := FromWKT(ToWKT(orb.Point{6127162.329125555, -0.5}))
	assert.Equal(t, orb.Point{6127162.329125555, -0.5}, g)
}

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		1:                  "1",
		0:                  "0",
		-2.5:               "-2.5",
		6127162.329125555:  "6127162.329125555",
		1e21:               "1e+21",
		0.0000001:          "1e-7",
		-189291.5232339711: "-189291.5232339711",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatNumber(in))
	}
}

func TestJoinCoordinates(t *testing.T) {
	coords := []any{[]any{2.0, 2.0}, []any{4.0, 1.0}}
	assert.Equal(t, "2,2 4,1", JoinCoordinates(coords, " "))
	assert.Equal(t, "1 1", JoinCoordinates([]any{1.0, 1.0}, " "))
}

func TestClosePolygon(t *testing.T) {
	open := orb.Ring{{0, 0}, {1, 0}, {1, 1}}
	closed := ClosePolygon(open)
	assert.Len(t, open, 3)
	assert.Equal(t, orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}, closed)
	assert.Equal(t, closed, ClosePolygon(closed))
}
