// Command fluxpro converts a gas analyser log into blank-corrected soil
// fluxes.
//
//	fluxpro [-config fluxpro.toml] [-out dir] [-format csv,xlsx,sqlite] [-plot png,html] <input>
//	fluxpro -init [-config fluxpro.toml]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/banshee-data/fluxpro/internal/config"
	"github.com/banshee-data/fluxpro/internal/fsutil"
	"github.com/banshee-data/fluxpro/internal/monitoring"
	"github.com/banshee-data/fluxpro/internal/run"
	"github.com/banshee-data/fluxpro/internal/version"
)

// Env holds the settings read from FLUXPRO_* environment variables.
type Env struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
	Config    string `envconfig:"CONFIG" default:"fluxpro.toml"`
}

var errUsage = errors.New("usage: fluxpro [flags] <input file>")

func main() {
	if err := loadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "fluxpro: %v\n", err)
		os.Exit(1)
	}

	var env Env
	if err := envconfig.Process("FLUXPRO", &env); err != nil {
		fmt.Fprintf(os.Stderr, "fluxpro: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Args[1:], env, os.Stdout, os.Stderr, run.NewRunner()); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "fluxpro: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

// loadDotEnv loads environment defaults from the named files, .env when none
// is given. A missing file is ignored; a malformed one is an error.
func loadDotEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load environment file: %w", err)
	}
	return nil
}

func execute(ctx context.Context, args []string, env Env, stdout, stderr io.Writer, runner *run.Runner) error {
	flags := flag.NewFlagSet("fluxpro", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", env.Config, "configuration file (.toml or .json)")
	outDir := flags.String("out", "", "output directory (default: the input file's directory)")
	formats := flags.String("format", "", "comma separated output formats: csv, xlsx, sqlite")
	plots := flags.String("plot", "", "comma separated charts: png, html")
	initConfig := flags.Bool("init", false, "write an example configuration to -config and exit")
	showVersion := flags.Bool("version", false, "print version information and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	log := monitoring.NewLogger(stderr, env.LogLevel, env.LogFormat)
	monitoring.SetLogger(monitoring.Printf(log, "fluxpro"))

	switch {
	case *showVersion:
		fmt.Fprintln(stdout, version.String())
		return nil
	case *initConfig:
		return writeExample(runner.FS, *configPath, stdout)
	}

	if flags.NArg() != 1 {
		flags.Usage()
		return errUsage
	}
	input := flags.Arg(0)

	cfg, err := config.LoadFS(runner.FS, *configPath)
	if err != nil {
		return err
	}

	res, err := runner.Run(ctx, run.Options{
		Input:     input,
		Config:    cfg,
		OutputDir: *outDir,
		Formats:   splitList(*formats),
		Plots:     splitList(*plots),
	})
	if err != nil {
		log.Error().Err(err).Str("input", input).Msg("run failed")
		return err
	}

	log.Info().
		Str("input", input).
		Int("rows", res.Rows).
		Int("files", len(res.Files)).
		Dur("elapsed", res.Elapsed).
		Msg("run complete")
	for _, f := range res.Files {
		fmt.Fprintln(stdout, f)
	}
	return nil
}

func writeExample(fsys fsutil.FileSystem, path string, stdout io.Writer) error {
	if _, err := fsys.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	text, err := config.ExampleTOML()
	if err != nil {
		return err
	}
	f, err := fsys.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, text); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
