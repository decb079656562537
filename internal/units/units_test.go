package units

import (
	"errors"
	"math"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    Unit
		wantErr bool
	}{
		{"ftir calibrated", "Carbon Dioxide / ppm (cal)", PPM, false},
		{"channel logger ppb", "NO2 (ppb)", PPB, false},
		{"channel logger ppm", "CO2 (ppm)", PPM, false},
		{"teledyne conc", "NOY-NO Conc", PPM, false},
		{"ppt is not supported", "test gas (ppt)", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.header)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownUnit) {
					t.Fatalf("Detect(%q) error = %v, want ErrUnknownUnit", tt.header, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Detect(%q) unexpected error: %v", tt.header, err)
			}
			if got != tt.want {
				t.Errorf("Detect(%q) = %s, want %s", tt.header, got, tt.want)
			}
		})
	}
}

func TestMolarVolume(t *testing.T) {
	// 24.465 L/mol at 25 degC and 1 atm
	if math.Abs(MolarVolume-24.4654) > 1e-3 {
		t.Errorf("MolarVolume = %f, want ~24.4654", MolarVolume)
	}
}

func TestToMolPerLitre(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		unit  Unit
		want  float64
	}{
		{"400 ppm", 400, PPM, 400 * 1e-6 / MolarVolume},
		{"20 ppb", 20, PPB, 20 * 1e-9 / MolarVolume},
		{"zero", 0, PPM, 0},
		{"negative reading", -3, PPB, -3 * 1e-9 / MolarVolume},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToMolPerLitre(tt.value, tt.unit)
			if math.Abs(got-tt.want) > 1e-20 {
				t.Errorf("ToMolPerLitre(%f, %s) = %g, want %g", tt.value, tt.unit, got, tt.want)
			}
		})
	}
}

func TestUnitRoundTrip(t *testing.T) {
	for _, u := range []Unit{PPM, PPB} {
		for _, x := range []float64{0.5, 1, 412.7, 1e4} {
			back := FromMolPerLitre(ToMolPerLitre(x, u), u)
			if math.Abs(back-x) > 1e-9*math.Max(1, x) {
				t.Errorf("round trip %f %s = %f", x, u, back)
			}
		}
	}
}
