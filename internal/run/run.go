// Package run executes one processing run: it reads an instrument file,
// computes the blank-corrected fluxes and writes the requested exports and
// charts.
package run

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/fluxpro/internal/chart"
	"github.com/banshee-data/fluxpro/internal/config"
	"github.com/banshee-data/fluxpro/internal/export"
	"github.com/banshee-data/fluxpro/internal/flux"
	"github.com/banshee-data/fluxpro/internal/format"
	"github.com/banshee-data/fluxpro/internal/fsutil"
	"github.com/banshee-data/fluxpro/internal/gas"
	"github.com/banshee-data/fluxpro/internal/monitoring"
	"github.com/banshee-data/fluxpro/internal/security"
	"github.com/banshee-data/fluxpro/internal/timeutil"
)

// DefaultFormats is used when neither the options nor the configuration name
// an output format.
var DefaultFormats = []string{string(export.FormatCSV)}

// ErrNoInput is returned when Options.Input is empty.
var ErrNoInput = errors.New("no input file")

// Options describes one run. OutputDir, Formats and Plots override the
// matching [output] settings of Config when set.
type Options struct {
	Input     string
	Config    *config.Config
	OutputDir string
	Formats   []string
	Plots     []string
}

// Result summarises a finished run.
type Result struct {
	Rows    int
	Files   []string
	Elapsed time.Duration
}

// Runner carries the collaborators of a run.
type Runner struct {
	FS    fsutil.FileSystem
	Clock timeutil.Clock
	Gases *gas.Table
}

// NewRunner returns a Runner on the OS filesystem with the default gas table.
func NewRunner() *Runner {
	return &Runner{
		FS:    fsutil.OSFileSystem{},
		Clock: timeutil.RealClock{},
		Gases: gas.DefaultTable(),
	}
}

type job struct {
	name  string
	write func(ctx context.Context) ([]string, error)
}

// Run executes opts. Exports and charts are written concurrently; the first
// failure cancels the rest.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Input == "" {
		return nil, ErrNoInput
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("%w: no configuration", config.ErrConfiguration)
	}
	start := r.Clock.Now()

	formats, err := export.ParseFormats(pick(opts.Formats, opts.Config.Output.Formats, DefaultFormats))
	if err != nil {
		return nil, err
	}
	kinds, err := chart.ParseKinds(pick(opts.Plots, opts.Config.Output.Plots, nil))
	if err != nil {
		return nil, err
	}

	pipeline, err := flux.New(opts.Config, r.Gases)
	if err != nil {
		return nil, err
	}

	raw, err := format.NewReader(r.FS).ReadTable(opts.Input)
	if err != nil {
		return nil, err
	}
	wide, err := pipeline.Run(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to process %s: %w", opts.Input, err)
	}

	dir := outputDir(opts)
	if err := r.FS.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	stem := Stem(opts.Input)

	var jobs []job
	for _, f := range formats {
		w, err := export.NewWriter(f, r.FS)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job{name: string(f), write: func(ctx context.Context) ([]string, error) {
			return w.Write(ctx, wide, dir, stem)
		}})
	}
	charts := chart.NewWriter(r.FS)
	for _, k := range kinds {
		jobs = append(jobs, job{name: string(k), write: func(ctx context.Context) ([]string, error) {
			return charts.Write(ctx, k, wide, dir, stem)
		}})
	}

	written := make([][]string, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, j := range jobs {
		g.Go(func() error {
			files, err := j.write(gctx)
			if err != nil {
				return fmt.Errorf("%s output: %w", j.name, err)
			}
			written[i] = files
			monitoring.Logf("run: wrote %d %s file(s) for %s", len(files), j.name, stem)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Rows: len(wide.Rows), Elapsed: r.Clock.Since(start)}
	for _, files := range written {
		res.Files = append(res.Files, files...)
	}
	monitoring.Logf("run: %s produced %d rows in %s", opts.Input, res.Rows, res.Elapsed)
	return res, nil
}

// Stem derives the output file name prefix from an input path.
func Stem(input string) string {
	base := filepath.Base(input)
	return security.SanitizeFilename(strings.TrimSuffix(base, filepath.Ext(base)))
}

func outputDir(opts Options) string {
	switch {
	case opts.OutputDir != "":
		return opts.OutputDir
	case opts.Config.Output.Directory != "":
		return opts.Config.Output.Directory
	}
	return filepath.Dir(opts.Input)
}

func pick(values ...[]string) []string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}
