package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/fluxpro/internal/config"
	"github.com/banshee-data/fluxpro/internal/fsutil"
	"github.com/banshee-data/fluxpro/internal/gas"
	"github.com/banshee-data/fluxpro/internal/monitoring"
	"github.com/banshee-data/fluxpro/internal/run"
	"github.com/banshee-data/fluxpro/internal/testutil"
	"github.com/banshee-data/fluxpro/internal/timeutil"
)

const testConfig = `
[samples]
total_cycles = 2
samples_per_cycle = 3
minutes_per_sample = 2
discard_minutes = 0

[flux]
flow_rate = 0.1
soil_surface_area = 0.05

[blank]
mode = "cycle"
index = 1
`

func testEnv() Env {
	return Env{LogLevel: "error", LogFormat: "json", Config: "/cfg/fluxpro.toml"}
}

func newTestRunner() (*run.Runner, *fsutil.MemoryFileSystem) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.WriteFile("/cfg/fluxpro.toml", []byte(testConfig))
	mfs.WriteFile("/data/FTIR.csv", testutil.FTIRLog(12).Bytes())
	return &run.Runner{
		FS:    mfs,
		Clock: timeutil.NewMockClock(time.Unix(0, 0)),
		Gases: gas.DefaultTable(),
	}, mfs
}

func TestExecuteRun(t *testing.T) {
	t.Cleanup(func() { monitoring.SetLogger(nil) })
	runner, mfs := newTestRunner()
	var stdout, stderr bytes.Buffer

	err := execute(context.Background(), []string{"-out", "/out", "-format", "csv, sqlite", "/data/FTIR.csv"}, testEnv(), &stdout, &stderr, runner)
	require.NoError(t, err)

	// cycle 1 is the blank, leaving cycle 2 for samples 1-3
	want := []string{
		"/out/FTIR_1_out.csv", "/out/FTIR_2_out.csv", "/out/FTIR_3_out.csv",
		"/out/FTIR_out.db",
	}
	assert.Equal(t, want, strings.Fields(stdout.String()))
	assert.Equal(t, want, mfs.Files("/out"))
}

func TestExecuteVersion(t *testing.T) {
	t.Cleanup(func() { monitoring.SetLogger(nil) })
	runner, _ := newTestRunner()
	var stdout bytes.Buffer

	require.NoError(t, execute(context.Background(), []string{"-version"}, testEnv(), &stdout, &bytes.Buffer{}, runner))
	assert.True(t, strings.HasPrefix(stdout.String(), "fluxpro "))
}

func TestExecuteInit(t *testing.T) {
	t.Cleanup(func() { monitoring.SetLogger(nil) })
	runner, mfs := newTestRunner()
	var stdout bytes.Buffer

	require.NoError(t, execute(context.Background(), []string{"-init", "-config", "/new/fluxpro.toml"}, testEnv(), &stdout, &bytes.Buffer{}, runner))
	data, err := mfs.ReadFile("/new/fluxpro.toml")
	require.NoError(t, err)

	cfg, err := config.Parse(data, ".toml")
	require.NoError(t, err)
	assert.Equal(t, config.Example(), cfg)

	err = execute(context.Background(), []string{"-init", "-config", "/new/fluxpro.toml"}, testEnv(), &stdout, &bytes.Buffer{}, runner)
	assert.ErrorContains(t, err, "already exists")
}

func TestExecuteErrors(t *testing.T) {
	t.Cleanup(func() { monitoring.SetLogger(nil) })

	tests := []struct {
		name string
		args []string
		is   error
	}{
		{"no input", nil, errUsage},
		{"two inputs", []string{"a.csv", "b.csv"}, errUsage},
		{"help", []string{"-h"}, flag.ErrHelp},
		{"missing config", []string{"-config", "/cfg/missing.toml", "/data/FTIR.csv"}, nil},
		{"bad format", []string{"-format", "parquet", "/data/FTIR.csv"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, _ := newTestRunner()
			err := execute(context.Background(), tt.args, testEnv(), &bytes.Buffer{}, &bytes.Buffer{}, runner)
			require.Error(t, err)
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("execute() error = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"csv", "xlsx"}, splitList(" csv,,xlsx "))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, loadDotEnv(filepath.Join(dir, "missing.env")))

	good := filepath.Join(dir, "good.env")
	require.NoError(t, os.WriteFile(good, []byte("FLUXPRO_TEST_DOTENV=console\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("FLUXPRO_TEST_DOTENV") })
	require.NoError(t, loadDotEnv(good))
	assert.Equal(t, "console", os.Getenv("FLUXPRO_TEST_DOTENV"))

	bad := filepath.Join(dir, "bad.env")
	require.NoError(t, os.WriteFile(bad, []byte("FLUXPRO-BAD=1\n"), 0644))
	err := loadDotEnv(bad)
	require.Error(t, err)
	assert.False(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "failed to load environment file")
}
