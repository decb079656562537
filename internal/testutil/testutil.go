// Package testutil provides shared test utilities and fixtures.
//
// The fixtures render synthetic analyser exports in the shapes the readers
// accept: a free-text preamble, a header row, then one timestamped reading
// per line.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

// InstrumentLog describes a synthetic instrument export.
type InstrumentLog struct {
	Separator string
	Preamble  []string
	// TimeHeader names the first column. Columns lists the channel headers
	// that follow it.
	TimeHeader string
	Columns    []string
	Layout     string
	Start      time.Time
	Interval   time.Duration
	Rows       int
	// Value renders the reading for a row and channel. Nil uses a slow
	// linear ramp.
	Value func(row, col int) string
}

// String renders the log as file content.
func (l InstrumentLog) String() string {
	var b strings.Builder
	for _, line := range l.Preamble {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(strings.Join(append([]string{l.TimeHeader}, l.Columns...), l.Separator))
	b.WriteByte('\n')

	value := l.Value
	if value == nil {
		value = func(row, col int) string {
			return fmt.Sprintf("%.4f", 1+0.01*float64(row)+float64(col))
		}
	}
	for i := 0; i < l.Rows; i++ {
		fields := []string{l.Start.Add(time.Duration(i) * l.Interval).Format(l.Layout)}
		for c := range l.Columns {
			fields = append(fields, value(i, c))
		}
		b.WriteString(strings.Join(fields, l.Separator))
		b.WriteByte('\n')
	}
	return b.String()
}

// Bytes renders the log as file content.
func (l InstrumentLog) Bytes() []byte {
	return []byte(l.String())
}

// FTIRLog is a comma separated FTIR export with a two line preamble and one
// reading per minute.
func FTIRLog(rows int) InstrumentLog {
	return InstrumentLog{
		Separator:  ",",
		Preamble:   []string{"FTIR gas analyser", "Method: soil chamber"},
		TimeHeader: "Date Time",
		Columns: []string{
			"Ammonia / ppm (cal)",
			"Nitrous Oxide / ppm (cal)",
			"Ozone / ppm (cal)",
			"Methane / ppm (cal)",
			"Carbon Dioxide / ppm (cal)",
			"Carbon Monoxide / ppm (cal)",
			"Nitrogen Dioxide / ppm (cal)",
			"Water Vapour / % (cal)",
		},
		Layout:   "2006-01-02 15:04:05",
		Start:    time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC),
		Interval: time.Minute,
		Rows:     rows,
	}
}

// ChannelLog is a tab separated NO2/HONO channel logger export with a two
// line preamble and a reading every 30 seconds.
func ChannelLog(rows int) InstrumentLog {
	return InstrumentLog{
		Separator:  "\t",
		Preamble:   []string{"Channel logger export", "Instrument ID LOGGER-A"},
		TimeHeader: "Time",
		Columns:    []string{"NO2 (ppb)", "HONO (ppb)", "CO2 (ppm)", "Cell Temp"},
		Layout:     "2006-01-02T15:04:05",
		Start:      time.Date(2025, 11, 8, 0, 0, 21, 0, time.UTC),
		Interval:   30 * time.Second,
		Rows:       rows,
	}
}

// TeledyneLog is a comma separated NOy analyser export without a preamble.
// Timestamps are month first; the 13th makes the day unambiguous.
func TeledyneLog(rows int) InstrumentLog {
	return InstrumentLog{
		Separator:  ",",
		TimeHeader: "TheTime",
		Columns:    []string{"NO Conc", "NOY Conc", "NOY-NO Conc"},
		Layout:     "01/02/2006 15:04",
		Start:      time.Date(2025, 11, 13, 9, 0, 0, 0, time.UTC),
		Interval:   time.Minute,
		Rows:       rows,
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
