// Package units provides physical constants for neutron energy/wavelength
// conversion and validation for the flux plot x-axis mode
package units

import (
	"fmt"
	"math"
	"strings"

	"github.com/mctalPlots/mctalPlots/internal/tally"
)

// Physical constants (SI)
const (
	Planck      = 6.62607015e-34  // J s
	NeutronMass = 1.674927498e-27 // kg
	MeVToJoule  = 1.60217733e-13  // J per MeV
)

// WavelengthConstant is C in w = C/sqrt(E), with w in angstrom and E in MeV.
var WavelengthConstant = Planck * 1e10 / math.Sqrt(2*NeutronMass*MeVToJoule)

// EnergyToWavelength converts a neutron energy in MeV to a wavelength in
// angstrom. Zero energy maps to +Inf.
func EnergyToWavelength(energyMeV float64) float64 {
	return WavelengthConstant / math.Sqrt(energyMeV)
}

// X-axis modes for flux plots
const (
	Energy     = "E"
	Wavelength = "W"
	Both       = "both"
)

// ValidXAxisModes contains all valid x-axis mode values
var ValidXAxisModes = []string{Energy, Wavelength, Both}

// IsValid checks if the given x-axis mode is in the list of valid modes
func IsValid(mode string) bool {
	for _, m := range ValidXAxisModes {
		if mode == m {
			return true
		}
	}
	return false
}

// GetValidModesString returns a comma-separated string of valid modes for error messages
func GetValidModesString() string {
	return strings.Join(ValidXAxisModes, ", ")
}

// ParseXAxisMode validates mode, defaulting an empty string to Both.
func ParseXAxisMode(mode string) (string, error) {
	if mode == "" {
		return Both, nil
	}
	if !IsValid(mode) {
		return "", fmt.Errorf("x-axis mode %q must be one of %s: %w", mode, GetValidModesString(), tally.ErrInvalidSelection)
	}
	return mode, nil
}

// PlotsEnergy reports whether mode includes the energy plot.
func PlotsEnergy(mode string) bool { return mode == Energy || mode == Both }

// PlotsWavelength reports whether mode includes the wavelength plot.
func PlotsWavelength(mode string) bool { return mode == Wavelength || mode == Both }
