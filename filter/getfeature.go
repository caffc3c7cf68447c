package filter

import (
	"strconv"
	"strings"

	"github.com/hugr-lab/ogcfilter/ogc"
)

// Options configures a GetFeature request.
type Options struct {
	// Version of WFS. Default 2.0; "1.0" and "1.1" are expanded.
	Version     string
	SortOptions *SortOptions
	Hits        bool
	// Format is written as outputFormat when set.
	Format        string
	PropertyNames []string
	// SrsName of the query. Default EPSG:4326; "native" omits the
	// attribute.
	SrsName string
}

// GetFeatureBase returns the opening GetFeature tag for version, with its
// namespaces and the pagination, hits and layer options.
func GetFeatureBase(version string, pagination *Pagination, hits bool, format string, options *QueryOptions) string {
	ver := ogc.NormalizeVersion(version)
	if options == nil {
		options = &QueryOptions{}
	}

	var sb strings.Builder
	sb.WriteString("<wfs:GetFeature ")
	if format != "" {
		sb.WriteString(`outputFormat="` + format + `" `)
	}
	if pagination != nil && pagination.StartIndex != nil {
		sb.WriteString(`startIndex="` + strconv.Itoa(*pagination.StartIndex) + `" `)
	}
	if options.ViewParams != "" {
		sb.WriteString(` viewParams="` + options.ViewParams + `" `)
	}
	maxFeatures := func(attr string) {
		if pagination != nil && pagination.MaxFeatures != 0 {
			sb.WriteString(attr + `="` + strconv.Itoa(pagination.MaxFeatures) + `" `)
		}
	}

	switch ver {
	case ogc.WFS100:
		maxFeatures("maxFeatures")
		if hits {
			sb.WriteString(` resultType="hits"`)
		}
		sb.WriteString(`service="WFS" version="` + ver + `" ` +
			`outputFormat="GML2" ` +
			`xmlns:gml="http://www.opengis.net/gml" ` +
			`xmlns:wfs="http://www.opengis.net/wfs" ` +
			`xmlns:ogc="http://www.opengis.net/ogc" ` +
			`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" `)
		if !options.NoSchemaLocation {
			sb.WriteString(`xsi:schemaLocation="http://www.opengis.net/wfs http://schemas.opengis.net/wfs/1.0.0/WFS-basic.xsd"`)
		}
	case ogc.WFS110:
		maxFeatures("maxFeatures")
		if hits {
			sb.WriteString(` resultType="hits"`)
		}
		sb.WriteString(`service="WFS" version="` + ver + `" ` +
			`xmlns:gml="http://www.opengis.net/gml" ` +
			`xmlns:wfs="http://www.opengis.net/wfs" ` +
			`xmlns:ogc="http://www.opengis.net/ogc" ` +
			`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" `)
		if !options.NoSchemaLocation {
			sb.WriteString(`xsi:schemaLocation="http://www.opengis.net/wfs http://schemas.opengis.net/wfs/1.1.0/wfs.xsd"`)
		}
	default:
		maxFeatures("count")
		if hits && pagination == nil {
			sb.WriteString(` resultType="hits"`)
		}
		sb.WriteString(`service="WFS" version="` + ver + `" ` +
			`xmlns:wfs="http://www.opengis.net/wfs/2.0" ` +
			`xmlns:fes="http://www.opengis.net/fes/2.0" ` +
			`xmlns:gml="http://www.opengis.net/gml/3.2" ` +
			`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" `)
		if !options.NoSchemaLocation {
			sb.WriteString(`xsi:schemaLocation="http://www.opengis.net/wfs/2.0 ` +
				`http://schemas.opengis.net/wfs/2.0/wfs.xsd ` +
				`http://www.opengis.net/gml/3.2 ` +
				`http://schemas.opengis.net/gml/3.2.1/gml.xsd"`)
		}
	}
	sb.WriteString(">")
	return sb.String()
}

// ToOGCFilter renders a complete WFS GetFeature request for typeName with
// f as its filter. Several filter parts are combined with And.
func (g Generator) ToOGCFilter(typeName string, f *Filter, opts Options) (string, error) {
	ver := ogc.NormalizeVersion(opts.Version)
	ns := ogc.Namespace(ver)
	if f == nil {
		f = &Filter{}
	}
	srsName := opts.SrsName
	if srsName == "" {
		srsName = "EPSG:4326"
	}

	parts, err := g.ToOGCFilterParts(f, ver, ns)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(GetFeatureBase(ver, f.Pagination, opts.Hits, opts.Format, f.Options))

	typeAttr := "typeName"
	if ver == ogc.WFS20 {
		typeAttr = "typeNames"
	}
	sb.WriteString("<wfs:Query " + typeAttr + `="` + typeName + `" `)
	if srsName != "native" {
		sb.WriteString(`srsName="` + srsName + `"`)
	}
	sb.WriteString(">")

	switch len(parts) {
	case 0:
	case 1:
		sb.WriteString("<" + ns + ":Filter>" + parts[0] + "</" + ns + ":Filter>")
	default:
		sb.WriteString("<" + ns + ":Filter>" + ogc.LogicalOperators["AND"](ns, parts...) + "</" + ns + ":Filter>")
	}

	for _, name := range opts.PropertyNames {
		sb.WriteString(propertyTag(ns, name))
	}
	if s := opts.SortOptions; s != nil && s.SortBy != "" && s.SortOrder != "" {
		sb.WriteString("<" + ns + ":SortBy>" +
			"<" + ns + ":SortProperty>" +
			propertyTag(ns, s.SortBy) +
			"<" + ns + ":SortOrder>" + s.SortOrder + "</" + ns + ":SortOrder>" +
			"</" + ns + ":SortProperty>" +
			"</" + ns + ":SortBy>")
	}
	sb.WriteString("</wfs:Query></wfs:GetFeature>")
	return sb.String(), nil
}

// GetWFSFilterData renders f in the form its filterType asks for: a
// GetFeature request for "OGC", CQL otherwise. options replace the
// filter's own layer options.
func (g Generator) GetWFSFilterData(f *Filter, options *QueryOptions) (string, error) {
	if f == nil {
		return "", nil
	}
	if f.FilterType == "OGC" {
		cp := *f
		cp.Options = options
		return g.ToOGCFilter(f.FeatureTypeName, &cp, Options{
			Version:     f.OGCVersion,
			SortOptions: f.SortOptions,
			Hits:        f.Hits,
		})
	}
	s, _ := g.ToCQLFilter(f)
	return s, nil
}

// GetOGCAllPropertyValue returns a WFS 2.0 GetPropertyValue request for
// every value of attribute.
func GetOGCAllPropertyValue(typeName, attribute string) string {
	return `<wfs:GetPropertyValue service="WFS" valueReference='` + attribute + `'
                version="2.0" xmlns:fes="http://www.opengis.net/fes/2.0"
                xmlns:gml="http://www.opengis.net/gml/3.2"
                xmlns:wfs="http://www.opengis.net/wfs/2.0"
                xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
                xsi:schemaLocation="http://www.opengis.net/wfs/2.0 http://schemas.opengis.net/wfs/2.0/wfs.xsd http://www.opengis.net/gml/3.2 http://schemas.opengis.net/gml/3.2.1/gml.xsd">
                    <wfs:Query typeNames="` + typeName + `"/>
            </wfs:GetPropertyValue>`
}

const sldHeader = `<StyledLayerDescriptor version="1.0.0"
            xsi:schemaLocation="http://www.opengis.net/sld StyledLayerDescriptor.xsd" xmlns:ogc="http://www.opengis.net/ogc" xmlns:xlink="http://www.w3.org/1999/xlink" xmlns:gml="http://www.opengis.net/gml" xmlns:gsml="urn:cgi:xmlns:CGI:GeoSciML:2.0" xmlns:sld="http://www.opengis.net/sld" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`

// GetSLD returns a point style for typeName whose single rule carries the
// filter of f. The filter element is looked up under prefix ns; an empty
// ns uses the prefix of version. Without a filter the rule matches all
// features.
func (g Generator) GetSLD(typeName string, f *Filter, version, ns string) (string, error) {
	req, err := g.ToOGCFilter(typeName, f, Options{Version: version})
	if err != nil {
		return "", err
	}
	if ns == "" {
		ns = ogc.Namespace(ogc.NormalizeVersion(version))
	}

	var filter string
	if start := strings.Index(req, "<"+ns+":Filter>"); start != -1 {
		end := strings.Index(req, "</wfs:Query>")
		if end > start {
			filter = req[start:end]
		}
	}
	return sldHeader +
		"<NamedLayer><Name>" + typeName + "</Name><UserStyle><FeatureTypeStyle><Rule >" + filter +
		`<PointSymbolizer><Graphic><Mark><WellKnownName>circle</WellKnownName><Fill><CssParameter name="fill">#0000FF</CssParameter></Fill></Mark><Size>20</Size></Graphic></PointSymbolizer>` +
		"</Rule></FeatureTypeStyle></UserStyle></NamedLayer></StyledLayerDescriptor>", nil
}
