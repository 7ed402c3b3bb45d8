package units

import (
	"errors"
	"math"
	"testing"

	"github.com/mctalPlots/mctalPlots/internal/tally"
)

func TestEnergyToWavelength(t *testing.T) {
	tests := []struct {
		name     string
		energy   float64
		expected float64
	}{
		// 25.3 meV thermal neutron is about 1.798 angstrom
		{"thermal", 25.3e-9, 1.798},
		// 1 meV is about 9.045 angstrom
		{"cold", 1e-9, 9.045},
		{"1 MeV", 1, 2.86e-4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EnergyToWavelength(tt.energy)
			if math.Abs(result-tt.expected)/tt.expected > 0.001 {
				t.Errorf("EnergyToWavelength(%g) = %g, want %g", tt.energy, result, tt.expected)
			}
		})
	}

	if !math.IsInf(EnergyToWavelength(0), 1) {
		t.Errorf("EnergyToWavelength(0) = %g, want +Inf", EnergyToWavelength(0))
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		expected bool
	}{
		{"energy", Energy, true},
		{"wavelength", Wavelength, true},
		{"both", Both, true},
		{"lowercase e", "e", false},
		{"uppercase both", "BOTH", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.mode); got != tt.expected {
				t.Errorf("IsValid(%q) = %v, want %v", tt.mode, got, tt.expected)
			}
		})
	}
}

func TestParseXAxisMode(t *testing.T) {
	mode, err := ParseXAxisMode("")
	if err != nil || mode != Both {
		t.Errorf("ParseXAxisMode(\"\") = %q, %v; want %q, nil", mode, err, Both)
	}

	_, err = ParseXAxisMode("X")
	if !errors.Is(err, tally.ErrInvalidSelection) {
		t.Errorf("ParseXAxisMode(\"X\") error = %v, want ErrInvalidSelection", err)
	}

	if !PlotsEnergy(Both) || !PlotsWavelength(Both) {
		t.Error("both should plot energy and wavelength")
	}
	if PlotsWavelength(Energy) || PlotsEnergy(Wavelength) {
		t.Error("single modes should plot one axis")
	}
}

func TestGetValidModesString(t *testing.T) {
	if got := GetValidModesString(); got != "E, W, both" {
		t.Errorf("GetValidModesString() = %q", got)
	}
}
