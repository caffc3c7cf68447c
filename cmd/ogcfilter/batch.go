package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/hugr-lab/ogcfilter"
	"github.com/hugr-lab/ogcfilter/internal/recovery"
	"github.com/hugr-lab/ogcfilter/internal/serialize"
)

func (a *app) batchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Convert every .cql file of a directory to OGC Filter XML",
		ArgsUsage: "<dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output directory, the input directory by default"},
			&cli.IntFlag{Name: "workers", Usage: "files converted concurrently (env OGCFILTER_WORKERS)"},
			&cli.BoolFlag{Name: "compress", Usage: "write .xml.zst files"},
		},
		Action: a.batchAction,
	}
}

// batchJob converts one file.
type batchJob struct {
	src string
	dst string
}

func (a *app) batchAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected 1 argument: input directory")
	}
	dir := cmd.Args().First()
	out := cmd.String("out")
	if out == "" {
		out = dir
	}
	workers := a.settings.Workers
	if cmd.IsSet("workers") {
		workers = cmd.Int("workers")
	}
	if workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", workers)
	}

	jobs, err := findJobs(dir, out, cmd.Bool("compress"))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}

	t, err := a.translator(nil)
	if err != nil {
		return err
	}
	var comp *serialize.Compressor
	if cmd.Bool("compress") {
		comp, err = serialize.NewCompressor()
		if err != nil {
			return err
		}
		defer comp.Close()
	}

	var failed atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, job := range jobs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			err := recovery.RecoverToError(a.slog, job.src, func() error {
				return a.convertFile(t, comp, job)
			})
			if err != nil {
				failed.Add(1)
				a.log.Error().Err(err).Str("file", job.src).Msg("conversion failed")
				return nil
			}
			a.log.Debug().Str("file", job.src).Str("output", job.dst).Msg("converted")
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	a.log.Info().
		Int("files", len(jobs)).
		Int64("failed", failed.Load()).
		Msg("batch finished")
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d files failed", n, len(jobs))
	}
	return nil
}

func (a *app) convertFile(t *ogcfilter.Translator, comp *serialize.Compressor, job batchJob) error {
	data, err := a.readInput(job.src)
	if err != nil {
		return err
	}
	xml, err := t.CQLToOGCFilter(strings.TrimSpace(string(data)))
	if err != nil {
		return err
	}
	content := []byte(xml)
	if comp != nil {
		if content, err = comp.Compress(content); err != nil {
			return err
		}
	}
	return os.WriteFile(job.dst, content, 0o644)
}

// findJobs lists the .cql and .cql.zst files directly under dir.
func findJobs(dir, out string, compress bool) ([]batchJob, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var jobs []batchJob
	for _, e := range entries {
		if !e.Type().IsRegular() && e.Type() != fs.ModeSymlink {
			continue
		}
		name := strings.TrimSuffix(e.Name(), serialize.Ext)
		if !strings.HasSuffix(name, ".cql") {
			continue
		}
		dst := strings.TrimSuffix(name, ".cql") + ".xml"
		if compress {
			dst += serialize.Ext
		}
		jobs = append(jobs, batchJob{
			src: filepath.Join(dir, e.Name()),
			dst: filepath.Join(out, dst),
		})
	}
	return jobs, nil
}
