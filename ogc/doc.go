// Package ogc renders OGC Filter Encoding XML.
//
// It provides the operator tables that map comparison, logical and spatial
// operator names to their XML tags, a Builder that produces namespace and
// version aware fragments, and Render, which walks a cql tree and emits
// XML through a Builder.
//
// # Builder
//
//	b := ogc.NewBuilder(ogc.BuilderOptions{FilterNS: "fes", WFSVersion: "2.0"})
//	xml := b.Filter(b.And(
//	    b.Property("name").EqualTo("Rome"),
//	    b.Property("pop").Between(1000, 5000),
//	))
//
// The WFS version decides between PropertyName (1.x) and ValueReference
// (2.x). The GML version of embedded geometries defaults to the one the
// WFS version implies (see WFSToGMLVersion).
//
// # From CQL
//
//	xml, err := ogc.CQLToOGC("name = 'Rome' AND pop > 1000", ogc.BuilderOptions{})
//
// Render returns *UnsupportedTypeError for nodes it cannot express rather
// than dropping them. An INCLUDE node renders as the empty string.
package ogc
