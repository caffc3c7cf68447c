package ogc

import (
	"strings"

	"github.com/hugr-lab/ogcfilter/geometry"
)

// WFS versions.
const (
	WFS100 = "1.0.0"
	WFS110 = "1.1.0"
	WFS20  = "2.0"
)

// WFSToGMLVersion returns the GML version a WFS version embeds.
// The empty version is treated as 1.1.0.
func WFSToGMLVersion(wfsVersion string) string {
	if wfsVersion == "" {
		wfsVersion = WFS110
	}
	switch {
	case strings.HasPrefix(wfsVersion, "1.0"):
		return geometry.GML2
	case strings.HasPrefix(wfsVersion, "1.1"):
		return geometry.GML311
	default:
		return geometry.GML32
	}
}

// NormalizeVersion expands short WFS versions: "" becomes 2.0, "1.0" becomes
// 1.0.0 and "1.1" becomes 1.1.0. Other values pass through.
func NormalizeVersion(version string) string {
	switch version {
	case "":
		return WFS20
	case "1.0":
		return WFS100
	case "1.1":
		return WFS110
	}
	return version
}

// Namespace returns the filter namespace prefix for a normalized WFS version.
func Namespace(version string) string {
	if version == WFS20 {
		return "fes"
	}
	return "ogc"
}
