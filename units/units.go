// Package units provides shared constants and conversion for length units.
package units

import (
	"strings"

	"github.com/pkg/errors"
)

// Length unit constants
const (
	Inches      = "in"
	Feet        = "ft"
	Meters      = "m"
	Centimeters = "cm"
	Millimeters = "mm"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Inches, Feet, Meters, Centimeters, Millimeters}

// metersPer is the size of one of each unit in meters.
var metersPer = map[string]float64{
	Inches:      0.0254,
	Feet:        0.3048,
	Meters:      1,
	Centimeters: 0.01,
	Millimeters: 0.001,
}

// aliases accepted in files written by hand.
var aliases = map[string]string{
	"inch":        Inches,
	"inches":      Inches,
	"foot":        Feet,
	"feet":        Feet,
	"meter":       Meters,
	"meters":      Meters,
	"centimeter":  Centimeters,
	"centimeters": Centimeters,
	"millimeter":  Millimeters,
	"millimeters": Millimeters,
}

// Normalize returns the canonical name of the given unit, or an error if it is unknown.
func Normalize(unit string) (string, error) {
	u := strings.ToLower(strings.TrimSpace(unit))
	if canonical, ok := aliases[u]; ok {
		u = canonical
	}
	if _, ok := metersPer[u]; !ok {
		return "", NewUnknownUnitError(unit)
	}
	return u, nil
}

// IsValid checks if the given unit is a known length unit
func IsValid(unit string) bool {
	_, err := Normalize(unit)
	return err == nil
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// Convert converts a length (or a rate of a length, such as a velocity) from one unit to another.
func Convert(value float64, from, to string) (float64, error) {
	f, err := Normalize(from)
	if err != nil {
		return 0, err
	}
	t, err := Normalize(to)
	if err != nil {
		return 0, err
	}
	if f == t {
		return value, nil
	}
	return value * metersPer[f] / metersPer[t], nil
}

// NewUnknownUnitError is returned when a unit name is not recognized.
func NewUnknownUnitError(unit string) error {
	return errors.Errorf("unknown length unit %q, expected one of %s", unit, GetValidUnitsString())
}
