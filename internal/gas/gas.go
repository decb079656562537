// Package gas holds the canonical gas identifiers and the read-only lookup
// tables that map instrument column headers and molar masses onto them.
package gas

import (
	"sort"

	"github.com/banshee-data/fluxpro/internal/monitoring"
)

// Gas is a canonical gas identifier, independent of how an instrument names
// the channel.
type Gas string

// Canonical gases
const (
	NH3   Gas = "NH3"
	NO2   Gas = "NO2"
	N2O   Gas = "N2O"
	O3    Gas = "O3"
	HONO  Gas = "HONO"
	NO    Gas = "NO"
	NOY   Gas = "NOY"
	NOYNO Gas = "NOY-NO"
	CO    Gas = "CO"
	CO2   Gas = "CO2"
	CH4   Gas = "CH4"
)

// Elemental molar masses in g/mol.
const (
	NitrogenMass = 14.006747
	CarbonMass   = 12.0111
	OxygenMass   = 15.99943
)

// All lists every canonical gas.
var All = []Gas{NH3, NO2, N2O, O3, HONO, NO, NOY, NOYNO, CO, CO2, CH4}

// IsValid reports whether g is one of the canonical gases.
func IsValid(g Gas) bool {
	for _, known := range All {
		if g == known {
			return true
		}
	}
	return false
}

// DefaultIdentifiers maps instrument column headers (trimmed) to gases.
// FTIR exports use "<Name> / ppm (cal)", the Teledyne NOy analyser uses
// "<Gas> Conc" and the NO2/HONO channel logger uses "<Gas> (ppb|ppm)".
var DefaultIdentifiers = map[string]Gas{
	"Ammonia / ppm (cal)":          NH3,
	"NO2 (ppb)":                    NO2,
	"Nitrogen Dioxide / ppm (cal)": NO2,
	"Nitrous Oxide / ppm (cal)":    N2O,
	"Ozone / ppm (cal)":            O3,
	"HONO (ppb)":                   HONO,
	"NO Conc":                      NO,
	"NOY Conc":                     NOY,
	"NOY-NO Conc":                  NOYNO,
	"Carbon Monoxide / ppm (cal)":  CO,
	"CO2 (ppm)":                    CO2,
	"Carbon Dioxide / ppm (cal)":   CO2,
	"Methane / ppm (cal)":          CH4,
}

// DefaultMolarMasses assigns each gas the mass of a single constituent
// element: nitrogen for the N species, carbon for the C species and oxygen
// for ozone.
var DefaultMolarMasses = map[Gas]float64{
	NH3:   NitrogenMass,
	NO2:   NitrogenMass,
	N2O:   NitrogenMass,
	HONO:  NitrogenMass,
	NO:    NitrogenMass,
	NOY:   NitrogenMass,
	NOYNO: NitrogenMass,
	CO:    CarbonMass,
	CO2:   CarbonMass,
	CH4:   CarbonMass,
	O3:    OxygenMass,
}

// Table is an immutable pair of lookup tables. It is built once and shared
// read-only by the standardizer and the flux calculator.
type Table struct {
	identifiers map[string]Gas
	molarMasses map[Gas]float64
}

// NewTable copies the given maps into a new Table. Entries naming a gas
// outside All are skipped, so every lookup yields a canonical gas.
func NewTable(identifiers map[string]Gas, molarMasses map[Gas]float64) *Table {
	t := &Table{
		identifiers: make(map[string]Gas, len(identifiers)),
		molarMasses: make(map[Gas]float64, len(molarMasses)),
	}
	for k, v := range identifiers {
		if !IsValid(v) {
			monitoring.Logf("gas table: header %q maps to unknown gas %q, skipped", k, v)
			continue
		}
		t.identifiers[k] = v
	}
	for k, v := range molarMasses {
		if !IsValid(k) {
			monitoring.Logf("gas table: molar mass for unknown gas %q skipped", k)
			continue
		}
		t.molarMasses[k] = v
	}
	return t
}

// DefaultTable returns a Table built from DefaultIdentifiers and
// DefaultMolarMasses.
func DefaultTable() *Table {
	return NewTable(DefaultIdentifiers, DefaultMolarMasses)
}

// Lookup resolves an already trimmed column header.
func (t *Table) Lookup(header string) (Gas, bool) {
	g, ok := t.identifiers[header]
	return g, ok
}

// MolarMass returns the molar mass (g/mol) used for flux scaling.
func (t *Table) MolarMass(g Gas) (float64, bool) {
	m, ok := t.molarMasses[g]
	return m, ok
}

// Headers returns the recognised headers in sorted order.
func (t *Table) Headers() []string {
	out := make([]string, 0, len(t.identifiers))
	for h := range t.identifiers {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}
