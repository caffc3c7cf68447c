package geometry

import (
	"strings"

	"github.com/paulmach/orb"
)

// GML versions understood by ToGML.
const (
	GML2   = "2.0"
	GML311 = "3.1.1"
	GML32  = "3.2"
)

type gmlDialect struct {
	legacy bool // GML 2: coordinates, outer/innerBoundaryIs
	v32    bool // GML 3.2: MultiCurve, MultiSurface
}

func dialectFor(version string) gmlDialect {
	switch {
	case strings.HasPrefix(version, "2."):
		return gmlDialect{legacy: true}
	case strings.HasPrefix(version, "3.2"):
		return gmlDialect{v32: true}
	default:
		return gmlDialect{}
	}
}

// ToGML renders g as a GML fragment for the given GML version.
// Supported geometries are the six simple GeoJSON types; anything else,
// including nil, renders as an empty string.
func ToGML(version string, g orb.Geometry, srsName string) string {
	d := dialectFor(version)
	srs := srsAttr(srsName)

	switch g := g.(type) {
	case orb.Point:
		return `<gml:Point srsDimension="2"` + srs + ">" + d.pointBody(g) + "</gml:Point>"
	case orb.MultiPoint:
		var sb strings.Builder
		sb.WriteString("<gml:MultiPoint" + srs + ">")
		for _, p := range g {
			sb.WriteString("<gml:pointMember><gml:Point>" + d.pointBody(p) + "</gml:Point></gml:pointMember>")
		}
		sb.WriteString("</gml:MultiPoint>")
		return sb.String()
	case orb.LineString:
		return d.lineString(g, srs)
	case orb.MultiLineString:
		tag, member := "MultiLineString", "lineStringMember"
		if d.v32 {
			tag, member = "MultiCurve", "curveMember"
		}
		var sb strings.Builder
		sb.WriteString("<gml:" + tag + srs + ">")
		for _, ls := range g {
			sb.WriteString("<gml:" + member + ">" + d.lineString(ls, "") + "</gml:" + member + ">")
		}
		sb.WriteString("</gml:" + tag + ">")
		return sb.String()
	case orb.Polygon:
		return d.polygon(g, srs)
	case orb.MultiPolygon:
		tag, member := "MultiPolygon", "polygonMember"
		if d.v32 {
			tag, member = "MultiSurface", "surfaceMember"
		}
		var sb strings.Builder
		sb.WriteString("<gml:" + tag + srs + ">")
		for _, p := range g {
			sb.WriteString("<gml:" + member + ">" + d.polygon(p, "") + "</gml:" + member + ">")
		}
		sb.WriteString("</gml:" + tag + ">")
		return sb.String()
	}
	return ""
}

// Envelope renders a gml:Envelope for extent [minx, miny, maxx, maxy].
func Envelope(srsName string, extent []float64) string {
	if len(extent) < 4 {
		return ""
	}
	return "<gml:Envelope" + srsAttr(srsName) + ">" +
		"<gml:lowerCorner>" + FormatNumber(extent[0]) + " " + FormatNumber(extent[1]) + "</gml:lowerCorner>" +
		"<gml:upperCorner>" + FormatNumber(extent[2]) + " " + FormatNumber(extent[3]) + "</gml:upperCorner>" +
		"</gml:Envelope>"
}

// PointGML renders a point whose coordinates could not be decoded into a
// position; the raw coordinate value is printed verbatim.
func PointGML(version string, coordinates any, srsName string) string {
	d := dialectFor(version)
	if d.legacy {
		return `<gml:Point srsDimension="2"` + srsAttr(srsName) + "><gml:coordinates>" +
			JoinCoordinates(coordinates, ",") + "</gml:coordinates></gml:Point>"
	}
	return `<gml:Point srsDimension="2"` + srsAttr(srsName) + "><gml:pos>" +
		JoinCoordinates(coordinates, " ") + "</gml:pos></gml:Point>"
}

func srsAttr(srsName string) string {
	if srsName == "" {
		return ""
	}
	return ` srsName="` + srsName + `"`
}

func (d gmlDialect) pointBody(p orb.Point) string {
	if d.legacy {
		return "<gml:coord><X>" + FormatNumber(p[0]) + "</X><Y>" + FormatNumber(p[1]) + "</Y></gml:coord>"
	}
	return "<gml:pos>" + pointText(p, " ") + "</gml:pos>"
}

func (d gmlDialect) positions(ls []orb.Point) string {
	parts := make([]string, len(ls))
	if d.legacy {
		for i, p := range ls {
			parts[i] = pointText(p, ",")
		}
		return "<gml:coordinates>" + strings.Join(parts, " ") + "</gml:coordinates>"
	}
	for i, p := range ls {
		parts[i] = pointText(p, " ")
	}
	return "<gml:posList>" + strings.Join(parts, " ") + "</gml:posList>"
}

func (d gmlDialect) lineString(ls orb.LineString, srs string) string {
	return "<gml:LineString" + srs + ">" + d.positions(ls) + "</gml:LineString>"
}

func (d gmlDialect) polygon(p orb.Polygon, srs string) string {
	outer, inner := "exterior", "interior"
	if d.legacy {
		outer, inner = "outerBoundaryIs", "innerBoundaryIs"
	}
	var sb strings.Builder
	sb.WriteString("<gml:Polygon" + srs + ">")
	for i, r := range p {
		tag := inner
		if i == 0 {
			tag = outer
		}
		sb.WriteString("<gml:" + tag + "><gml:LinearRing>" + d.positions(ClosePolygon(r)) + "</gml:LinearRing></gml:" + tag + ">")
	}
	sb.WriteString("</gml:Polygon>")
	return sb.String()
}
