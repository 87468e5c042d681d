package config

import (
	"github.com/pkg/errors"
)

// GeneratorType names the algorithm used to turn a path into trajectories.
type GeneratorType string

// Known generator types.
const (
	GeneratorCheesyPoofs         = GeneratorType("CheesyPoofs")
	GeneratorErrorCodeXeroSwerve = GeneratorType("ErrorCodeXeroSwerve")
)

// DefaultGenerator is used when a path file does not name one.
const DefaultGenerator = GeneratorCheesyPoofs

var knownGenerators = map[GeneratorType]bool{
	GeneratorCheesyPoofs:         true,
	GeneratorErrorCodeXeroSwerve: true,
}

// Validate returns an error for generator names that are not known.
func (g GeneratorType) Validate() error {
	if !knownGenerators[g] {
		return errors.Errorf("unknown generator type %q", string(g))
	}
	return nil
}

// DriveType is the kind of drive base a robot has.
type DriveType string

// Known drive types.
const (
	DriveTank   = DriveType("tank")
	DriveSwerve = DriveType("swerve")
)

// Validate returns an error for drive types that are not known.
func (d DriveType) Validate() error {
	switch d {
	case DriveTank, DriveSwerve:
		return nil
	default:
		return errors.Errorf("unknown drive type %q", string(d))
	}
}
