// Package units provides the concentration units reported by the gas
// analysers and their conversion to molar concentration (mol/L).
package units

import (
	"errors"
	"fmt"
	"strings"
)

// Unit is a raw concentration unit as reported by an instrument.
type Unit string

// Unit constants
const (
	PPM Unit = "ppm"
	PPB Unit = "ppb"
)

// ErrUnknownUnit is returned when a column header carries no unit marker.
var ErrUnknownUnit = errors.New("unknown unit")

// Ideal gas constants used for the molar volume at the chamber conditions.
const (
	GasConstant = 0.082057366080960 // L*atm/K/mol
	Temperature = 298.15            // K
	Pressure    = 1.0               // atm
)

// MolarVolume is the ideal-gas molar volume R*T/P in L/mol.
const MolarVolume = GasConstant * Temperature / Pressure

// Detect returns the unit encoded in an instrument column header.
// "Conc" channels are already converted by the analyser and are reported in
// ppm.
func Detect(header string) (Unit, error) {
	switch {
	case strings.Contains(header, "ppm"):
		return PPM, nil
	case strings.Contains(header, "ppb"):
		return PPB, nil
	case strings.Contains(header, "Conc"):
		return PPM, nil
	}
	return "", fmt.Errorf("%w: failed to detect unit for column %q", ErrUnknownUnit, header)
}

// Scale returns the mixing-ratio factor of the unit (1e-6 for ppm, 1e-9 for ppb).
func (u Unit) Scale() float64 {
	switch u {
	case PPM:
		return 1e-6
	case PPB:
		return 1e-9
	default:
		return 0
	}
}

// ToMolPerLitre converts a mixing ratio in unit u to mol/L.
func ToMolPerLitre(v float64, u Unit) float64 {
	return v * u.Scale() / MolarVolume
}

// FromMolPerLitre converts a concentration in mol/L back to unit u.
func FromMolPerLitre(c float64, u Unit) float64 {
	s := u.Scale()
	if s == 0 {
		return 0
	}
	return c * MolarVolume / s
}
