// Package ogcfilter translates filters between the forms a web mapping
// client deals with: ECQL text, filter trees, OGC Filter Encoding XML,
// WFS GetFeature requests and DuckDB SQL.
//
// The subpackages do the work:
//   - cql parses and encodes CQL text and the JSON form of filter trees
//   - ogc renders filter trees as Filter Encoding XML through a Builder
//   - geometry converts between WKT, GML and CQL geometry literals
//   - filter turns the grouped filter objects of query builder forms into
//     XML, CQL and complete WFS requests
//   - sqlfilter encodes filter trees as DuckDB WHERE clauses
//
// A Translator binds them to one configuration.
//
// # Quick Start
//
//	t, err := ogcfilter.New(ogcfilter.Config{WFSVersion: "2.0"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	xml, err := t.CQLToOGCFilter("name = 'Rome' AND INTERSECTS(geom, POINT(12.5 41.9))")
//	// <fes:Filter><fes:And>...</fes:And></fes:Filter>
//
//	where, err := t.CQLToSQL("pop BETWEEN 1000 AND 5000")
//	// pop BETWEEN 1000 AND 5000
//
// # Grouped filter objects
//
//	f, err := filter.Parse(formJSON)
//	req, err := t.GetFeature("topp:states", f, filter.Options{Hits: true})
//
// # Versions
//
// The WFS version decides the filter namespace (fes for 2.0, ogc for 1.x),
// PropertyName or ValueReference, and the GML dialect of geometries
// (GML 2 for 1.0.0, GML 3.1.1 for 1.1.0, GML 3.2 for 2.0).
//
// # Logging
//
// Nothing is logged unless Config.Logger or Config.LogLevel is set. Fields
// of filter objects that cannot produce a condition are reported at debug
// level.
package ogcfilter
