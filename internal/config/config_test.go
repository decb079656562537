package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/fluxpro/internal/fsutil"
)

const validTOML = `
[samples]
total_cycles = 3
samples_per_cycle = 2
minutes_per_sample = 1
discard_minutes = 0

[flux]
flow_rate = 2.0
chamber_volume = 0.01
soil_surface_area = 0.005

[blank]
mode = "cycle"
index = 1

[output]
directory = "results"
formats = ["csv", "sqlite"]
plots = ["html"]
`

func TestLoadTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "fluxpro.toml")
	if err := os.WriteFile(configPath, []byte(validTOML), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	want := &Config{
		Samples: Samples{TotalCycles: 3, SamplesPerCycle: 2, MinutesPerSample: 1, DiscardMinutes: 0},
		Flux:    Flux{FlowRate: 2.0, ChamberVolume: 0.01, SoilSurfaceArea: 0.005},
		Blank:   Blank{Mode: BlankCycle, Index: 1},
		Output:  Output{Directory: "results", Formats: []string{"csv", "sqlite"}, Plots: []string{"html"}},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadJSON(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.WriteFile("/cfg/run.json", []byte(`{
  "samples": {"total_cycles": 22, "samples_per_cycle": 6, "minutes_per_sample": 10, "discard_minutes": 2},
  "flux": {"flow_rate": 0.1, "soil_surface_area": 0.05},
  "blank": {"mode": "sample", "index": 1}
}`))

	cfg, err := LoadFS(mfs, "/cfg/run.json")
	require.NoError(t, err)
	assert.Equal(t, 22, cfg.Samples.TotalCycles)
	assert.Equal(t, BlankSample, cfg.Blank.Mode)
	assert.Empty(t, cfg.Output.Formats)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/path/to/fluxpro.toml")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadRejectsExtension(t *testing.T) {
	for _, path := range []string{"../../etc/passwd", "/some/path/config.yaml"} {
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), "extension") {
			t.Errorf("Load(%q) error = %v, want extension error", path, err)
		}
	}
}

func TestLoadRejectsLargeFile(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.WriteFile("/large.toml", make([]byte, 2*1024*1024))

	_, err := LoadFS(mfs, "/large.toml")
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("Expected error for file size > 1MB, got %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		ext     string
		wantMsg string
	}{
		{"malformed toml", "[samples\n", ".toml", "parse config TOML"},
		{"malformed json", `{"samples": `, ".json", "parse config JSON"},
		{"unknown key", strings.Replace(validTOML, "index = 1", "index = 1\nblank_sample_index = 2", 1), ".toml", "parse config TOML"},
		{"missing sections", "", ".toml", "samples.total_cycles must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.ext)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero cycles", func(c *Config) { c.Samples.TotalCycles = 0 }, "samples.total_cycles must be greater than 0"},
		{"negative samples", func(c *Config) { c.Samples.SamplesPerCycle = -1 }, "samples.samples_per_cycle must be greater than 0"},
		{"zero minutes", func(c *Config) { c.Samples.MinutesPerSample = 0 }, "samples.minutes_per_sample must be greater than 0"},
		{"negative discard", func(c *Config) { c.Samples.DiscardMinutes = -1 }, "samples.discard_minutes must be greater than or equal to 0"},
		{"discard equals sample", func(c *Config) { c.Samples.DiscardMinutes = 10 }, "samples.discard_minutes must be less than minutes_per_sample"},
		{"zero flow", func(c *Config) { c.Flux.FlowRate = 0 }, "flux.flow_rate must be greater than 0"},
		{"negative area", func(c *Config) { c.Flux.SoilSurfaceArea = -0.5 }, "flux.soil_surface_area must be greater than 0"},
		{"bad mode", func(c *Config) { c.Blank.Mode = "gas" }, "blank.mode must be one of: sample, cycle"},
		{"zero index", func(c *Config) { c.Blank.Index = 0 }, "blank.index must be greater than or equal to 1"},
		{"bad format", func(c *Config) { c.Output.Formats = []string{"csv", "parquet"} }, "output.formats[1] must be one of: csv, xlsx, sqlite"},
		{"bad plot", func(c *Config) { c.Output.Plots = []string{"svg"} }, "output.plots[0] must be one of: png, html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Example()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("Validate() error = %v, want ErrConfiguration", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateReportsAllViolations(t *testing.T) {
	cfg := Example()
	cfg.Samples.TotalCycles = 0
	cfg.Flux.FlowRate = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "total_cycles")
	assert.Contains(t, err.Error(), "flow_rate")
}

func TestExampleTOMLRoundTrip(t *testing.T) {
	text, err := ExampleTOML()
	require.NoError(t, err)

	assert.Contains(t, text, "[samples]")
	assert.Contains(t, text, "[blank]")
	assert.Contains(t, text, "total number of cycles")

	cfg, err := Parse([]byte(text), ".toml")
	require.NoError(t, err)
	if diff := cmp.Diff(Example(), cfg); diff != "" {
		t.Errorf("example round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "minutes_per_sample", snakeCase("MinutesPerSample"))
	assert.Equal(t, "index", snakeCase("index"))
}
