// Package sqlfilter encodes CQL filter trees as DuckDB SQL WHERE clauses.
//
// It lets the same CQL that drives WFS requests be pushed down to a local
// DuckDB table, for example a cached copy of a feature type.
//
// # Basic Usage
//
//	n, err := cql.Parse("name ILIKE 'ro%' AND pop > 1000")
//	if err != nil {
//	    return err
//	}
//	enc := sqlfilter.NewDuckDBEncoder(nil)
//	where := enc.Encode(n)
//	// where == "(name ILIKE 'ro%' AND pop > 1000)"
//
// # Column Mapping
//
// Filter property names can be renamed or replaced by expressions:
//
//	enc := sqlfilter.NewDuckDBEncoder(&sqlfilter.EncoderOptions{
//	    ColumnMapping:     map[string]string{"population": "pop"},
//	    ColumnExpressions: map[string]string{"city": "upper(name)"},
//	})
//
// # Unsupported Parts
//
// Encode leaves out what has no SQL form (cross-layer lookups, unknown
// nodes) so that the clause never selects fewer rows than the filter
// would. The caller re-checks the rows when an exact answer is needed.
// EncodeStrict fails with *UnsupportedError instead.
//
// Spatial predicates map to ST_Intersects, ST_Within, ST_Contains and
// ST_DWithin and require the spatial extension to be loaded.
package sqlfilter
