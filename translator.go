package ogcfilter

import (
	"fmt"

	"github.com/hugr-lab/ogcfilter/cql"
	"github.com/hugr-lab/ogcfilter/filter"
	"github.com/hugr-lab/ogcfilter/ogc"
	"github.com/hugr-lab/ogcfilter/sqlfilter"
)

// Translator converts filters between CQL text, filter trees, OGC Filter
// XML, WFS requests and DuckDB SQL with one configuration.
// It is safe for concurrent use.
type Translator struct {
	cfg Config
	fb  *ogc.Builder
	gen filter.Generator
	sql *sqlfilter.DuckDBEncoder
}

// New creates a Translator.
//
// Returns an error wrapping ErrInvalidConfig if cfg is invalid.
//
// Example:
//
//	t, err := ogcfilter.New(ogcfilter.Config{WFSVersion: "1.1.0"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	xml, err := t.CQLToOGC("name = 'Rome' AND pop > 1000")
func New(cfg Config) (*Translator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	t := &Translator{
		cfg: cfg,
		fb: ogc.NewBuilder(ogc.BuilderOptions{
			FilterNS:   cfg.FilterNS,
			GMLVersion: cfg.GMLVersion,
			WFSVersion: cfg.WFSVersion,
		}),
		gen: filter.Generator{Logger: cfg.Logger},
		sql: sqlfilter.NewDuckDBEncoder(cfg.SQL),
	}

	cfg.Logger.Debug("ogcfilter: translator created",
		"wfs_version", cfg.WFSVersion,
		"filter_ns", cfg.FilterNS,
		"gml_version", cfg.GMLVersion,
	)
	return t, nil
}

// Config returns the configuration with defaults applied.
func (t *Translator) Config() Config { return t.cfg }

// Builder returns the filter builder of the configured namespace and
// versions.
func (t *Translator) Builder() *ogc.Builder { return t.fb }

// Generator returns the grouped filter generator, which logs to the
// configured logger.
func (t *Translator) Generator() filter.Generator { return t.gen }

// Parse parses CQL text into a filter tree.
func (t *Translator) Parse(text string) (cql.Node, error) {
	return cql.Parse(text)
}

// ToOGC renders a filter tree as Filter Encoding XML, without the root
// Filter element.
func (t *Translator) ToOGC(n cql.Node) (string, error) {
	return ogc.Render(t.fb, n)
}

// CQLToOGC parses text and renders it as Filter Encoding XML, without the
// root Filter element.
func (t *Translator) CQLToOGC(text string) (string, error) {
	n, err := cql.Parse(text)
	if err != nil {
		return "", err
	}
	return t.ToOGC(n)
}

// CQLToOGCFilter is CQLToOGC wrapped in the root Filter element.
func (t *Translator) CQLToOGCFilter(text string) (string, error) {
	body, err := t.CQLToOGC(text)
	if err != nil {
		return "", err
	}
	return t.fb.Filter(body), nil
}

// ToCQL encodes a filter tree as CQL text.
func (t *Translator) ToCQL(n cql.Node) (string, error) {
	return cql.Encode(n)
}

// FilterToCQL renders a grouped filter object as CQL text. It reports
// false when the object holds no condition.
func (t *Translator) FilterToCQL(f *filter.Filter) (string, bool) {
	return t.gen.ToCQLFilter(f)
}

// GetFeature renders a WFS GetFeature request for typeName with f as its
// filter. An empty opts.Version takes the configured WFS version.
func (t *Translator) GetFeature(typeName string, f *filter.Filter, opts filter.Options) (string, error) {
	if opts.Version == "" {
		opts.Version = t.cfg.WFSVersion
	}
	opts.Version = wfsVersion(opts.Version)
	out, err := t.gen.ToOGCFilter(typeName, f, opts)
	if err != nil {
		return "", fmt.Errorf("ogcfilter: %s: %w", typeName, err)
	}
	return out, nil
}

// Merge combines CQL text and filter objects into one Filter element with
// the configured namespace and WFS version. See filter.MergeFiltersToOGC.
func (t *Translator) Merge(xmlns []string, entries ...any) (string, error) {
	return t.gen.MergeFiltersToOGC(filter.MergeOptions{
		NSPlaceholder:  t.cfg.FilterNS,
		OGCVersion:     t.cfg.WFSVersion,
		AddXmlnsToRoot: len(xmlns) > 0,
		XmlnsToAdd:     xmlns,
	}, entries...)
}

// ToSQL encodes a filter tree as a DuckDB WHERE clause body. It fails
// when part of the tree has no SQL form.
func (t *Translator) ToSQL(n cql.Node) (string, error) {
	return t.sql.EncodeStrict(n)
}

// CQLToSQL parses text and encodes it as a DuckDB WHERE clause body.
func (t *Translator) CQLToSQL(text string) (string, error) {
	n, err := cql.Parse(text)
	if err != nil {
		return "", err
	}
	return t.ToSQL(n)
}
