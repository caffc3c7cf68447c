package geometry

import (
	"strings"

	"github.com/paulmach/orb"
)

// ToCQL renders g as the geometry element used by legacy CQL spatial
// filters, e.g. "Polygon((1 2, 2 3, 1 2))". The type name is the GeoJSON
// one. Rings are closed before rendering.
func ToCQL(g orb.Geometry) string {
	if g == nil {
		return ""
	}
	var body string
	switch g := g.(type) {
	case orb.Point:
		body = pointText(g, " ")
	case orb.MultiPoint:
		body = cqlPoints(g)
	case orb.LineString:
		body = cqlPoints(g)
	case orb.MultiLineString:
		parts := make([]string, len(g))
		for i, ls := range g {
			parts[i] = "(" + cqlPoints(ls) + ")"
		}
		body = strings.Join(parts, ", ")
	case orb.Polygon:
		body = cqlRings(g)
	case orb.MultiPolygon:
		parts := make([]string, len(g))
		for i, p := range g {
			parts[i] = "(" + cqlRings(p) + ")"
		}
		body = strings.Join(parts, ", ")
	default:
		return ""
	}
	return g.GeoJSONType() + "(" + body + ")"
}

func cqlPoints(ps []orb.Point) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = pointText(p, " ")
	}
	return strings.Join(parts, ", ")
}

func cqlRings(p orb.Polygon) string {
	parts := make([]string, len(p))
	for i, r := range p {
		parts[i] = "(" + cqlPoints(ClosePolygon(r)) + ")"
	}
	return strings.Join(parts, ", ")
}
