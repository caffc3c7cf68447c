package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hugr-lab/ogcfilter/cql"
	"github.com/hugr-lab/ogcfilter/filter"
	"github.com/hugr-lab/ogcfilter/internal/recovery"
	"github.com/hugr-lab/ogcfilter/sqlfilter"
)

func (a *app) parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse CQL text and print the filter tree as JSON",
		ArgsUsage: "[cql]",
		Flags: []cli.Flag{
			newFileFlag(),
			&cli.BoolFlag{Name: "compact", Usage: "print the tree on one line"},
		},
		Action: a.parseAction,
	}
}

func (a *app) parseAction(_ context.Context, cmd *cli.Command) error {
	text, err := a.text(cmd)
	if err != nil {
		return err
	}
	n, err := cql.Parse(text)
	if err != nil {
		return err
	}
	if cmd.Bool("compact") {
		data, err := json.Marshal(n)
		if err != nil {
			return err
		}
		return a.println(string(data))
	}
	return a.printJSON(n)
}

func (a *app) ogcCommand() *cli.Command {
	return &cli.Command{
		Name:      "ogc",
		Usage:     "Convert CQL text to OGC Filter Encoding XML",
		ArgsUsage: "[cql]",
		Flags: []cli.Flag{
			newFileFlag(),
			&cli.BoolFlag{Name: "fragment", Usage: "omit the root Filter element"},
		},
		Action: a.ogcAction,
	}
}

func (a *app) ogcAction(_ context.Context, cmd *cli.Command) error {
	text, err := a.text(cmd)
	if err != nil {
		return err
	}
	t, err := a.translator(nil)
	if err != nil {
		return err
	}
	convert := t.CQLToOGCFilter
	if cmd.Bool("fragment") {
		convert = t.CQLToOGC
	}
	xml, err := recovery.RecoverToValue(a.slog, "ogc", func() (string, error) {
		return convert(text)
	})
	if err != nil {
		return err
	}
	return a.println(xml)
}

func (a *app) cqlCommand() *cli.Command {
	return &cli.Command{
		Name:      "cql",
		Usage:     "Encode a filter tree or a grouped filter object as CQL text",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "native-crs", Usage: "reproject spatial fields of a filter object to this CRS"},
		},
		Action: a.cqlAction,
	}
}

func (a *app) cqlAction(_ context.Context, cmd *cli.Command) error {
	doc, err := a.document(cmd.Args().First())
	if err != nil {
		return err
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(doc, &members); err != nil {
		return fmt.Errorf("expected a JSON object: %w", err)
	}
	if _, ok := members["type"]; ok {
		n, err := cql.Unmarshal(doc)
		if err != nil {
			return err
		}
		text, err := recovery.RecoverToValue(a.slog, "cql", func() (string, error) {
			return cql.Encode(n)
		})
		if err != nil {
			return err
		}
		return a.println(text)
	}

	f, err := filter.Parse(doc)
	if err != nil {
		return err
	}
	if cmd.IsSet("native-crs") {
		if f, err = filter.NormalizeFilterCQL(f, cmd.String("native-crs")); err != nil {
			return err
		}
	}
	t, err := a.translator(nil)
	if err != nil {
		return err
	}
	text, ok := t.FilterToCQL(f)
	if !ok {
		a.log.Warn().Msg("filter object holds no condition")
	}
	return a.println(text)
}

func (a *app) getFeatureCommand() *cli.Command {
	return &cli.Command{
		Name:      "getfeature",
		Usage:     "Build a WFS GetFeature request from a grouped filter object",
		ArgsUsage: "<type-name> [file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "srs", Usage: `srsName of the query; "native" omits it`},
			&cli.StringFlag{Name: "format", Usage: "outputFormat of the request"},
			&cli.BoolFlag{Name: "hits", Usage: "request the feature count only"},
			&cli.StringSliceFlag{Name: "property", Usage: "property to return, repeatable"},
			&cli.StringFlag{Name: "sort-by", Usage: "property to sort by"},
			&cli.StringFlag{Name: "sort-order", Usage: "ASC or DESC", Value: "ASC"},
		},
		Action: a.getFeatureAction,
	}
}

func (a *app) getFeatureAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 || cmd.Args().Len() > 2 {
		return fmt.Errorf("expected a type name and an optional file")
	}

	doc, err := a.document(cmd.Args().Get(1))
	if err != nil {
		return err
	}
	f, err := filter.Parse(doc)
	if err != nil {
		return err
	}

	opts := filter.Options{
		SrsName:       cmd.String("srs"),
		Format:        cmd.String("format"),
		Hits:          cmd.Bool("hits") || f.Hits,
		PropertyNames: cmd.StringSlice("property"),
	}
	if by := cmd.String("sort-by"); by != "" {
		opts.SortOptions = &filter.SortOptions{SortBy: by, SortOrder: cmd.String("sort-order")}
	} else {
		opts.SortOptions = f.SortOptions
	}

	t, err := a.translator(nil)
	if err != nil {
		return err
	}
	xml, err := t.GetFeature(cmd.Args().First(), f, opts)
	if err != nil {
		return err
	}
	return a.println(xml)
}

func (a *app) sqlCommand() *cli.Command {
	return &cli.Command{
		Name:      "sql",
		Usage:     "Convert CQL text to a DuckDB WHERE clause",
		ArgsUsage: "[cql]",
		Flags: []cli.Flag{
			newFileFlag(),
			&cli.StringSliceFlag{Name: "column", Usage: "property=column mapping, repeatable"},
			&cli.BoolFlag{Name: "lenient", Usage: "leave out conditions that have no SQL form"},
		},
		Action: a.sqlAction,
	}
}

func (a *app) sqlAction(_ context.Context, cmd *cli.Command) error {
	text, err := a.text(cmd)
	if err != nil {
		return err
	}

	opts := &sqlfilter.EncoderOptions{}
	for _, m := range cmd.StringSlice("column") {
		prop, col, ok := strings.Cut(m, "=")
		if !ok || prop == "" || col == "" {
			return fmt.Errorf("invalid column mapping %q, expected property=column", m)
		}
		if opts.ColumnMapping == nil {
			opts.ColumnMapping = make(map[string]string)
		}
		opts.ColumnMapping[prop] = col
	}

	t, err := a.translator(opts)
	if err != nil {
		return err
	}
	n, err := t.Parse(text)
	if err != nil {
		return err
	}

	var where string
	if cmd.Bool("lenient") {
		where = sqlfilter.NewDuckDBEncoder(opts).Encode(n)
		if where == "" {
			a.log.Warn().Str("cql", text).Msg("no condition could be encoded")
		}
	} else if where, err = t.ToSQL(n); err != nil {
		return err
	}
	return a.println(where)
}

func (a *app) composeCommand() *cli.Command {
	return &cli.Command{
		Name:      "compose",
		Usage:     "Combine grouped filter objects into one",
		ArgsUsage: "<file>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "logic", Usage: "logic joining the filters", Value: "AND"},
			&cli.StringFlag{Name: "spatial-operator", Usage: "logic joining the spatial fields", Value: "AND"},
			&cli.BoolFlag{Name: "cql", Usage: "print the composed filter as CQL text"},
		},
		Action: a.composeAction,
	}
}

func (a *app) composeAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("expected at least one filter file")
	}

	var filters []*filter.Filter
	for _, path := range cmd.Args().Slice() {
		doc, err := a.document(path)
		if err != nil {
			return err
		}
		f, err := filter.Parse(doc)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if !filter.IsFilterValid(f) {
			a.log.Info().Str("file", path).Msg("skipping filter without conditions")
			continue
		}
		filters = append(filters, f)
	}

	composed := filter.ComposeAttributeFilters(filters, cmd.String("logic"), cmd.String("spatial-operator"))
	if !cmd.Bool("cql") {
		return a.printJSON(composed)
	}

	t, err := a.translator(nil)
	if err != nil {
		return err
	}
	text, _ := t.FilterToCQL(composed)
	return a.println(text)
}
