package filter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Projections NormalizeFilterCQL converts between. Geometries without a
// projection are in EPSG:3857.
const (
	EPSG3857 = "EPSG:3857"
	EPSG4326 = "EPSG:4326"
)

var crsAliases = map[string]string{
	"EPSG:900913":                   EPSG3857,
	"EPSG:102113":                   EPSG3857,
	"CRS:84":                        EPSG4326,
	"urn:ogc:def:crs:EPSG::4326":    EPSG4326,
	"urn:ogc:def:crs:EPSG::3857":    EPSG3857,
	"urn:ogc:def:crs:OGC:1.3:CRS84": EPSG4326,
}

func canonicalCRS(crs string) string {
	if c, ok := crsAliases[crs]; ok {
		return c
	}
	return strings.ToUpper(crs)
}

// UnsupportedProjectionError is returned for a pair of projections that
// cannot be converted.
type UnsupportedProjectionError struct {
	From string
	To   string
}

func (e *UnsupportedProjectionError) Error() string {
	return fmt.Sprintf("filter: cannot reproject from %s to %s", e.From, e.To)
}

// projection returns the conversion from one CRS to another, or nil when
// both are the same.
func projection(from, to string) (orb.Projection, error) {
	from, to = canonicalCRS(from), canonicalCRS(to)
	switch {
	case from == to:
		return nil, nil
	case from == EPSG3857 && to == EPSG4326:
		return project.Mercator.ToWGS84, nil
	case from == EPSG4326 && to == EPSG3857:
		return project.WGS84.ToMercator, nil
	}
	return nil, &UnsupportedProjectionError{From: from, To: to}
}

func sourceCRS(g *Geometry) string {
	if g.Projection == "" {
		return EPSG3857
	}
	return g.Projection
}

func hasCoordinates(g *Geometry) bool {
	c := bytes.TrimSpace(g.Coordinates)
	return len(c) > 0 && !bytes.Equal(c, []byte("null")) && !bytes.Equal(c, []byte("[]"))
}

// ReprojectGeometry returns a copy of g with its coordinates, center and
// radius in nativeCRS.
func ReprojectGeometry(g *Geometry, nativeCRS string) (*Geometry, error) {
	proj, err := projection(sourceCRS(g), nativeCRS)
	if err != nil {
		return nil, err
	}
	out := *g
	out.Projection = nativeCRS
	if proj == nil {
		return &out, nil
	}

	if hasCoordinates(g) {
		o, err := g.Orb()
		if err != nil {
			return nil, err
		}
		out.Coordinates = NewGeometry(project.Geometry(orb.Clone(o), proj), nativeCRS).Coordinates
	}
	if len(g.Center) >= 2 {
		c := proj(orb.Point{g.Center[0], g.Center[1]})
		out.Center = []float64{c[0], c[1]}
	}
	if g.Radius != 0 {
		out.Radius = proj(orb.Point{g.Radius, 0})[0]
	}
	return &out, nil
}

// NormalizeFilterCQL returns f ready for CQL output, where spatial
// conditions are written in the layer's native CRS. Spatial fields with
// coordinates in another CRS are reprojected to nativeCRS, or left out
// when nativeCRS is empty. f is not modified.
//
// Only EPSG:3857 and EPSG:4326 are converted; other pairs return an
// *UnsupportedProjectionError.
func NormalizeFilterCQL(f *Filter, nativeCRS string) (*Filter, error) {
	if f == nil || len(f.SpatialField.Fields) == 0 {
		return f, nil
	}

	fields := make([]SpatialField, 0, len(f.SpatialField.Fields))
	for _, field := range f.SpatialField.Fields {
		g := field.Geometry
		if g == nil || !hasCoordinates(g) || canonicalCRS(sourceCRS(g)) == canonicalCRS(nativeCRS) {
			fields = append(fields, field)
			continue
		}
		if nativeCRS == "" {
			continue
		}
		moved, err := ReprojectGeometry(g, nativeCRS)
		if err != nil {
			return nil, fmt.Errorf("filter: spatial field %q: %w", field.Attribute, err)
		}
		field.Geometry = moved
		fields = append(fields, field)
	}

	out := *f
	out.SpatialField = SpatialFields{Fields: fields, Single: f.SpatialField.Single && len(fields) > 0}
	return &out, nil
}
