package testutil

import (
	"errors"
	"strings"
	"testing"
)

func TestInstrumentLogString(t *testing.T) {
	t.Parallel()

	out := ChannelLog(3).String()
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), out)
	}
	if lines[2] != "Time\tNO2 (ppb)\tHONO (ppb)\tCO2 (ppm)\tCell Temp" {
		t.Errorf("unexpected header %q", lines[2])
	}
	if !strings.HasPrefix(lines[4], "2025-11-08T00:00:51\t") {
		t.Errorf("unexpected second row %q", lines[4])
	}
	if got := len(strings.Split(lines[5], "\t")); got != 5 {
		t.Errorf("expected 5 fields, got %d", got)
	}
}

func TestInstrumentLogCustomValue(t *testing.T) {
	t.Parallel()

	l := TeledyneLog(2)
	l.Value = func(row, col int) string {
		if row == 1 && col == 0 {
			return "NaN?"
		}
		return "0"
	}
	out := string(l.Bytes())

	if !strings.HasPrefix(out, "TheTime,NO Conc,NOY Conc,NOY-NO Conc\n") {
		t.Errorf("expected header on the first line, got %q", out)
	}
	if !strings.Contains(out, "11/13/2025 09:01,NaN?,0,0\n") {
		t.Errorf("custom value missing:\n%s", out)
	}
}

func TestFTIRLogPreamble(t *testing.T) {
	t.Parallel()

	l := FTIRLog(1)
	if len(l.Preamble) != 2 {
		t.Errorf("expected two preamble lines, got %d", len(l.Preamble))
	}
	if !strings.Contains(l.String(), "2025-03-04 10:00:00,") {
		t.Error("first reading missing")
	}
}

func TestAssertNoError(t *testing.T) {
	t.Parallel()
	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	t.Parallel()
	AssertError(t, errors.New("test error"))
}
