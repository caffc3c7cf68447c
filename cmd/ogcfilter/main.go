// Command ogcfilter converts filters between CQL, OGC Filter Encoding XML,
// WFS GetFeature requests and DuckDB SQL.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/hugr-lab/ogcfilter"
	"github.com/hugr-lab/ogcfilter/internal/serialize"
	"github.com/hugr-lab/ogcfilter/sqlfilter"
)

const (
	inputJSON    = "json"
	inputMsgpack = "msgpack"
)

// Global flag names.
const (
	wfsVersionFlag  = "wfs-version"
	nsFlag          = "ns"
	gmlVersionFlag  = "gml-version"
	logLevelFlag    = "log-level"
	logFormatFlag   = "log-format"
	inputFormatFlag = "input-format"
	fileFlag        = "file"
)

// Flags are built per command tree: a flag value keeps its parsed state.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    wfsVersionFlag,
			Aliases: []string{"w"},
			Usage:   "WFS version of the output: 1.0.0, 1.1.0 or 2.0 (env OGCFILTER_WFS_VERSION)",
		},
		&cli.StringFlag{
			Name:  nsFlag,
			Usage: "filter namespace prefix, fes for 2.0 and ogc otherwise by default (env OGCFILTER_FILTER_NS)",
		},
		&cli.StringFlag{
			Name:  gmlVersionFlag,
			Usage: "GML version of geometries: 2.0, 3.1.1 or 3.2 (env OGCFILTER_GML_VERSION)",
		},
		&cli.StringFlag{
			Name:  logLevelFlag,
			Usage: "debug, info, warn or error (env OGCFILTER_LOG_LEVEL)",
		},
		&cli.StringFlag{
			Name:  logFormatFlag,
			Usage: "console or json (env OGCFILTER_LOG_FORMAT)",
		},
		&cli.StringFlag{
			Name:  inputFormatFlag,
			Usage: "encoding of filter objects and trees: json or msgpack (env OGCFILTER_INPUT_FORMAT)",
		},
	}
}

func newFileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    fileFlag,
		Aliases: []string{"f"},
		Usage:   "read input from a file instead of arguments or stdin; .zst files are decompressed",
	}
}

// app holds the state shared by the commands of one run.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	settings settings
	log      zerolog.Logger
	slog     *slog.Logger
	dec      *serialize.Decompressor
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{stdin: stdin, stdout: stdout, stderr: stderr, log: zerolog.Nop()}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "ogcfilter",
		Usage:     "Convert filters between CQL, OGC Filter XML, WFS requests and SQL",
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags:     globalFlags(),
		Before:    a.before,
		After:     a.after,
		Commands: []*cli.Command{
			a.parseCommand(),
			a.ogcCommand(),
			a.cqlCommand(),
			a.getFeatureCommand(),
			a.sqlCommand(),
			a.composeCommand(),
			a.batchCommand(),
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return ctx, err
	}
	a.settings = s
	a.log = newLogger(s.LogLevel, s.LogFormat, a.stderr)
	a.slog = libraryLogger(a.log, s.LogFormat, a.stderr)

	a.dec, err = serialize.NewDecompressor()
	if err != nil {
		return ctx, err
	}

	a.log.Debug().
		Str("wfs_version", s.WFSVersion).
		Str("input_format", s.InputFormat).
		Msg("configuration loaded")
	return ctx, nil
}

func (a *app) after(context.Context, *cli.Command) error {
	if a.dec != nil {
		a.dec.Close()
	}
	return nil
}

// translator builds a Translator from the run settings. sql may be nil.
func (a *app) translator(sql *sqlfilter.EncoderOptions) (*ogcfilter.Translator, error) {
	return ogcfilter.New(ogcfilter.Config{
		WFSVersion: a.settings.WFSVersion,
		FilterNS:   a.settings.FilterNS,
		GMLVersion: a.settings.GMLVersion,
		SQL:        sql,
		Logger:     a.slog,
	})
}

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := a.command().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
