package ogcfilter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hugr-lab/ogcfilter/geometry"
	"github.com/hugr-lab/ogcfilter/ogc"
	"github.com/hugr-lab/ogcfilter/sqlfilter"
)

// Config contains configuration for a Translator.
type Config struct {
	// WFSVersion of generated filters and requests.
	// OPTIONAL: Defaults to "2.0". "1.0" and "1.1" are expanded and
	// "2.0.0" is written as "2.0".
	WFSVersion string

	// FilterNS is the namespace prefix of filter tags.
	// OPTIONAL: Defaults to "fes" for WFS 2.0 and "ogc" otherwise.
	FilterNS string

	// GMLVersion of embedded geometries.
	// OPTIONAL: Derived from WFSVersion if empty.
	// Valid values: geometry.GML2, geometry.GML311, geometry.GML32
	GMLVersion string

	// SQL configures the DuckDB WHERE clause encoder.
	// OPTIONAL: If nil, property names are used as column names.
	SQL *sqlfilter.EncoderOptions

	// Logger for dropped fields and conversion details.
	// OPTIONAL: If nil and LogLevel is nil, nothing is logged.
	Logger *slog.Logger

	// LogLevel creates a text logger on stderr with that level.
	// OPTIONAL: Ignored if Logger is provided.
	LogLevel *slog.Level
}

// Standard errors returned by the ogcfilter package.
var (
	// ErrInvalidConfig indicates Config validation failed.
	ErrInvalidConfig = errors.New("invalid translator config")
)

var wfsVersions = map[string]bool{
	ogc.WFS100: true,
	ogc.WFS110: true,
	ogc.WFS20:  true,
	"2.0.0":    true,
}

var gmlVersions = map[string]bool{
	geometry.GML2:   true,
	geometry.GML311: true,
	geometry.GML32:  true,
}

// Validate checks the configuration. The returned error wraps
// ErrInvalidConfig.
func (c Config) Validate() error {
	if v := ogc.NormalizeVersion(c.WFSVersion); !wfsVersions[v] {
		return fmt.Errorf("%w: unsupported WFS version %q", ErrInvalidConfig, c.WFSVersion)
	}
	if c.GMLVersion != "" && !gmlVersions[c.GMLVersion] {
		return fmt.Errorf("%w: unsupported GML version %q", ErrInvalidConfig, c.GMLVersion)
	}
	if c.FilterNS != "" && strings.ContainsAny(c.FilterNS, " \t\n:<>&\"'") {
		return fmt.Errorf("%w: invalid filter namespace %q", ErrInvalidConfig, c.FilterNS)
	}
	return nil
}

// wfsVersion normalizes v the way the generators expect it. The legacy
// generators only know "2.0" as the 2.x version.
func wfsVersion(v string) string {
	v = ogc.NormalizeVersion(v)
	if v == "2.0.0" {
		return ogc.WFS20
	}
	return v
}

// withDefaults returns a copy of c with every optional field resolved.
func (c Config) withDefaults() Config {
	c.WFSVersion = wfsVersion(c.WFSVersion)
	if c.FilterNS == "" {
		c.FilterNS = "ogc"
		if strings.HasPrefix(c.WFSVersion, "2.") {
			c.FilterNS = "fes"
		}
	}
	if c.GMLVersion == "" {
		c.GMLVersion = ogc.WFSToGMLVersion(c.WFSVersion)
	}
	if c.Logger == nil {
		if c.LogLevel != nil {
			c.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: *c.LogLevel,
			}))
		} else {
			c.Logger = slog.New(slog.DiscardHandler)
		}
	}
	return c
}
