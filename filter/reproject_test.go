package filter

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spatialPoint(t *testing.T, f *Filter) orb.Point {
	t.Helper()
	require.Len(t, f.SpatialField.Fields, 1)
	o, err := f.SpatialField.Fields[0].Geometry.Orb()
	require.NoError(t, err)
	p, ok := o.(orb.Point)
	require.True(t, ok, "%T", o)
	return p
}

func TestNormalizeFilterCQL(t *testing.T) {
	doc := `{"filterFields":[{"attribute":"A","operator":"=","type":"string","value":"a"}],
		"spatialField":{"operation":"INTERSECTS","attribute":"the_geom",
		"geometry":{"type":"Point","projection":"EPSG:4326","coordinates":[12.5,41.9],"center":[12.5,41.9],"radius":1000}}}`
	f := mustParse(t, doc)

	got, err := NormalizeFilterCQL(f, "EPSG:3857")
	require.NoError(t, err)

	p := spatialPoint(t, got)
	assert.InDelta(t, 1391493.6349, p[0], 1e-3)
	assert.InDelta(t, 5146011.6793, p[1], 1e-3)

	g := got.SpatialField.Fields[0].Geometry
	assert.Equal(t, "EPSG:3857", g.Projection)
	require.Len(t, g.Center, 2)
	assert.InDelta(t, 1391493.6349, g.Center[0], 1e-3)
	assert.InDelta(t, 5146011.6793, g.Center[1], 1e-3)
	assert.InDelta(t, 111319490.7933, g.Radius, 1e-3)
	assert.True(t, got.SpatialField.Single)

	// the input is left alone
	assert.Equal(t, "EPSG:4326", f.SpatialField.Fields[0].Geometry.Projection)
	assert.Equal(t, orb.Point{12.5, 41.9}, spatialPoint(t, f))

	text, ok := ToCQLFilter(got)
	require.True(t, ok)
	assert.Contains(t, text, `INTERSECTS("the_geom",SRID=3857;Point(`)
}

func TestNormalizeFilterCQLDefaultProjection(t *testing.T) {
	f := mustParse(t, `{"spatialField":{"operation":"INTERSECTS","attribute":"the_geom",
		"geometry":{"type":"Point","coordinates":[1391493.6349159197,5146011.679282788]}}}`)

	got, err := NormalizeFilterCQL(f, "EPSG:4326")
	require.NoError(t, err)
	p := spatialPoint(t, got)
	assert.InDelta(t, 12.5, p[0], 1e-9)
	assert.InDelta(t, 41.9, p[1], 1e-9)

	// aliases of the same projection need no conversion
	same, err := NormalizeFilterCQL(f, "EPSG:900913")
	require.NoError(t, err)
	assert.Same(t, f.SpatialField.Fields[0].Geometry, same.SpatialField.Fields[0].Geometry)
}

func TestNormalizeFilterCQLWithoutNativeCRS(t *testing.T) {
	f := mustParse(t, `{"filterFields":[{"attribute":"A","operator":"=","type":"string","value":"a"}],
		"spatialField":{"operation":"INTERSECTS","attribute":"the_geom",
		"geometry":{"type":"Point","projection":"EPSG:4326","coordinates":[1,2]}}}`)

	got, err := NormalizeFilterCQL(f, "")
	require.NoError(t, err)
	assert.True(t, got.SpatialField.IsZero())
	assert.Len(t, f.SpatialField.Fields, 1)

	text, ok := ToCQLFilter(got)
	require.True(t, ok)
	assert.Equal(t, `("A"='a')`, text)

	// fields without coordinates are kept as they are
	f = mustParse(t, `{"spatialField":{"operation":"INTERSECTS","attribute":"the_geom","geometry":{"type":"Point"}}}`)
	got, err = NormalizeFilterCQL(f, "")
	require.NoError(t, err)
	assert.Len(t, got.SpatialField.Fields, 1)
}

func TestNormalizeFilterCQLUnsupported(t *testing.T) {
	f := mustParse(t, `{"spatialField":[{"operation":"INTERSECTS","attribute":"the_geom",
		"geometry":{"type":"Point","projection":"EPSG:4326","coordinates":[1,2]}}]}`)

	_, err := NormalizeFilterCQL(f, "EPSG:32632")
	var pe *UnsupportedProjectionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "EPSG:4326", pe.From)
	assert.Equal(t, "EPSG:32632", pe.To)

	got, err := NormalizeFilterCQL(nil, "EPSG:4326")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReprojectGeometryPolygon(t *testing.T) {
	g := NewGeometry(orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 0}}}, "EPSG:4326")

	moved, err := ReprojectGeometry(g, "EPSG:3857")
	require.NoError(t, err)
	back, err := ReprojectGeometry(moved, "EPSG:4326")
	require.NoError(t, err)

	o, err := back.Orb()
	require.NoError(t, err)
	poly, ok := o.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, poly[0], 4)
	assert.InDelta(t, 10, poly[0][2][0], 1e-9)
	assert.InDelta(t, 10, poly[0][2][1], 1e-9)
}
