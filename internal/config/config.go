// Package config loads and validates the run configuration: the sampling
// schedule, the chamber geometry, the blank and the optional output settings.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/banshee-data/fluxpro/internal/fsutil"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "fluxpro.toml"

// MaxFileSize bounds the size of a configuration file.
const MaxFileSize = 1 * 1024 * 1024

// ErrConfiguration is returned for any configuration that cannot drive a run.
var ErrConfiguration = errors.New("configuration error")

// Blank modes
const (
	BlankSample = "sample"
	BlankCycle  = "cycle"
)

// Config is the full run configuration.
type Config struct {
	Samples Samples `toml:"samples" json:"samples"`
	Flux    Flux    `toml:"flux" json:"flux"`
	Blank   Blank   `toml:"blank" json:"blank"`
	Output  Output  `toml:"output,omitempty" json:"output,omitempty"`
}

// Samples describes the multiplexer schedule.
type Samples struct {
	TotalCycles      int `toml:"total_cycles" json:"total_cycles" validate:"gt=0" comment:"total number of cycles"`
	SamplesPerCycle  int `toml:"samples_per_cycle" json:"samples_per_cycle" validate:"gt=0" comment:"number of samples per cycle (including the blank)"`
	MinutesPerSample int `toml:"minutes_per_sample" json:"minutes_per_sample" validate:"gt=0" comment:"number of minutes per sample"`
	DiscardMinutes   int `toml:"discard_minutes" json:"discard_minutes" validate:"gte=0,ltfield=MinutesPerSample" comment:"minutes removed from the start of each sample to let the readings settle"`
}

// Flux holds the chamber geometry. ChamberVolume is accepted for older
// configuration files but plays no part in the flux formula.
type Flux struct {
	FlowRate        float64 `toml:"flow_rate" json:"flow_rate" validate:"gt=0" comment:"flow rate through the chamber (L/min)"`
	ChamberVolume   float64 `toml:"chamber_volume,omitempty" json:"chamber_volume,omitempty" validate:"gte=0" comment:"volume of the chamber headspace (m^3), unused"`
	SoilSurfaceArea float64 `toml:"soil_surface_area" json:"soil_surface_area" validate:"gt=0" comment:"surface area of the soil (m^2)"`
}

// Blank selects the reference reading subtracted from every other one.
type Blank struct {
	Mode  string `toml:"mode" json:"mode" validate:"oneof=sample cycle" comment:"use a sample or a cycle as the blank reading: 'sample' or 'cycle'"`
	Index int    `toml:"index" json:"index" validate:"gte=1" comment:"index of the blank (counting up from 1)"`
}

// Output holds optional output settings. Command line flags override them.
type Output struct {
	Directory string   `toml:"directory,omitempty" json:"directory,omitempty" comment:"output directory, defaults to the input file's directory"`
	Formats   []string `toml:"formats,omitempty" json:"formats,omitempty" validate:"dive,oneof=csv xlsx sqlite" comment:"result formats: csv, xlsx, sqlite"`
	Plots     []string `toml:"plots,omitempty" json:"plots,omitempty" validate:"dive,oneof=png html" comment:"flux charts: png, html"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads a configuration file from the OS filesystem.
func Load(path string) (*Config, error) {
	return LoadFS(fsutil.OSFileSystem{}, path)
}

// LoadFS reads a .toml or .json configuration file from fsys and validates it.
func LoadFS(fsys fsutil.FileSystem, path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".toml" && ext != ".json" {
		return nil, fmt.Errorf("config file must have .toml or .json extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > MaxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), MaxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, ext)
}

// Parse decodes data in the format named by ext and validates the result.
// Unknown keys are rejected.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := &Config{}
	switch ext {
	case ".toml":
		if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config TOML: %w", ErrConfiguration, err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config JSON: %w", ErrConfiguration, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field constraint. All violations are reported in
// one error wrapping ErrConfiguration.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatValidationError(fe))
	}
	return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(msgs, "; "))
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	param := err.Param()

	switch err.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "ltfield":
		return fmt.Sprintf("%s must be less than %s", field, snakeCase(param))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s, got %q", field, strings.ReplaceAll(param, " ", ", "), err.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// snakeCase renders a Go field name the way it appears in the file.
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Example returns a valid configuration with typical values.
func Example() *Config {
	return &Config{
		Samples: Samples{TotalCycles: 22, SamplesPerCycle: 6, MinutesPerSample: 10, DiscardMinutes: 2},
		Flux:    Flux{FlowRate: 0.1, SoilSurfaceArea: 0.05},
		Blank:   Blank{Mode: BlankSample, Index: 1},
		Output:  Output{Formats: []string{"csv"}, Plots: []string{"png"}},
	}
}

// ExampleTOML renders Example as a commented TOML document.
func ExampleTOML() (string, error) {
	data, err := toml.Marshal(Example())
	if err != nil {
		return "", fmt.Errorf("failed to render example config: %w", err)
	}
	return string(data), nil
}
