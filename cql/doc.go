// Package cql parses ECQL-style filter text into a tree and renders trees
// back to text and JSON.
//
// # Grammar
//
// The tokenizer is driven by an explicit follow-set table: after each token
// only the token types listed in Follows are tried, in order. A recursive
// descent parser then builds the tree with this precedence, loosest first:
//
//	OR
//	AND
//	NOT
//	predicate: comparison | BETWEEN | IS NULL | spatial | INCLUDE | function
//
// Supported predicates:
//
//	name = 'x'                       =, <>, <, <=, >, >=, LIKE, ILIKE
//	"quoted name" IS NULL
//	pop BETWEEN 10 AND 20
//	INTERSECTS(geom, POLYGON((0 0, 1 0, 1 1, 0 0)))
//	WITHIN(geom, POINT(1 2)), CONTAINS(...)
//	BBOX(geom, -180, -90, 180, 90 [, 'EPSG:4326'])
//	DWITHIN(geom, POINT(1 2), 10 [, meters])
//	InArray(1, tags)                 bare function used as a predicate
//	INCLUDE
//
// # Basic Usage
//
//	n, err := cql.Parse("name = 'Rome' AND pop > 1000")
//	if err != nil {
//	    return err // *cql.ParseError, *cql.SyntaxError or *cql.TrailingTokensError
//	}
//
//	text, _ := cql.Encode(n) // name = 'Rome' AND pop > 1000
//	data, _ := json.Marshal(n)
//	back, _ := cql.Unmarshal(data)
//
// # Backends
//
// Renderers implement Visitor and are driven by Visit. The ogc package
// renders OGC Filter XML and the sqlfilter package renders DuckDB SQL.
package cql
