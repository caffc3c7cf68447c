// Package filter renders grouped filter objects, the JSON documents query
// builder forms produce, as OGC Filter Encoding XML (optionally inside a
// WFS GetFeature request) and as CQL.
//
// A filter object combines attribute fields organised in a tree of
// logical groups, simplified search fields, spatial fields, a cross-layer
// filter that collects the geometries of another layer, free CQL and a
// filters array of CQL and logic entries:
//
//	f, err := filter.Parse(doc)
//	if err != nil {
//		return err
//	}
//	req, err := filter.ToOGCFilter("topp:states", f, filter.Options{Version: "1.1.0"})
//	cql, ok := filter.ToCQLFilter(f)
//
// The output is byte compatible with what WFS servers such as GeoServer
// have been receiving from existing clients, including the version
// specific envelopes, namespaces and GML dialects.
//
// Package level functions use a Generator that discards its logs; create a
// Generator with a Logger to see which fields were left out.
package filter

var std Generator

// ToOGCFilter renders a WFS GetFeature request. See Generator.ToOGCFilter.
func ToOGCFilter(typeName string, f *Filter, opts Options) (string, error) {
	return std.ToOGCFilter(typeName, f, opts)
}

// ToOGCFilterParts renders the filter parts of f. See
// Generator.ToOGCFilterParts.
func ToOGCFilterParts(f *Filter, version, ns string) ([]string, error) {
	return std.ToOGCFilterParts(f, version, ns)
}

// ToCQLFilter renders f as CQL. See Generator.ToCQLFilter.
func ToCQLFilter(f *Filter) (string, bool) {
	return std.ToCQLFilter(f)
}

// MergeFiltersToOGC combines CQL text and filter objects. See
// Generator.MergeFiltersToOGC.
func MergeFiltersToOGC(opts MergeOptions, entries ...any) (string, error) {
	return std.MergeFiltersToOGC(opts, entries...)
}

// GetWFSFilterData renders f as its filterType asks. See
// Generator.GetWFSFilterData.
func GetWFSFilterData(f *Filter, options *QueryOptions) (string, error) {
	return std.GetWFSFilterData(f, options)
}

// GetSLD returns a style filtering with f. See Generator.GetSLD.
func GetSLD(typeName string, f *Filter, version, ns string) (string, error) {
	return std.GetSLD(typeName, f, version, ns)
}

// ProcessOGCFilterGroup renders a group. See
// Generator.ProcessOGCFilterGroup.
func ProcessOGCFilterGroup(root Group, f *Filter, ns string) (string, error) {
	return std.ProcessOGCFilterGroup(root, f, ns)
}

// ProcessOGCFilterFields renders the fields of a group. See
// Generator.ProcessOGCFilterFields.
func ProcessOGCFilterFields(group *Group, f *Filter, ns string) string {
	return std.ProcessOGCFilterFields(group, f, ns)
}

// ProcessOGCSpatialFilter renders a spatial field. See
// Generator.ProcessOGCSpatialFilter.
func ProcessOGCSpatialFilter(version string, field SpatialField, ns string) (string, error) {
	return std.ProcessOGCSpatialFilter(version, field, ns)
}

// ProcessCQLFilterGroup renders a group as CQL. See
// Generator.ProcessCQLFilterGroup.
func ProcessCQLFilterGroup(root Group, f *Filter) string {
	return std.ProcessCQLFilterGroup(root, f)
}

// ProcessCQLFilterFields renders the fields of a group as CQL. See
// Generator.ProcessCQLFilterFields.
func ProcessCQLFilterFields(group Group, negateAll bool, f *Filter) string {
	return std.ProcessCQLFilterFields(group, negateAll, f)
}

// ProcessCQLSpatialFilter renders the spatial fields as CQL. See
// Generator.ProcessCQLSpatialFilter.
func ProcessCQLSpatialFilter(f *Filter) string {
	return std.ProcessCQLSpatialFilter(f)
}
