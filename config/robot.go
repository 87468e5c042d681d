package config

import (
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/pathgen/units"
)

// DefaultTimestep is the trajectory sample period used when a robot does not specify one.
const DefaultTimestep = 0.02

// Robot describes the drive base trajectories are generated for. Lengths are in LengthUnits.
type Robot struct {
	Name            string    `json:"name"`
	DriveType       DriveType `json:"drivetype"`
	LengthUnits     string    `json:"lengthunits"`
	EffectiveWidth  float64   `json:"effectivewidth"`
	EffectiveLength float64   `json:"effectivelength"`
	Timestep        float64   `json:"timestep"`
	MaxVelocity     float64   `json:"maxvelocity"`
	MaxAcceleration float64   `json:"maxacceleration"`

	ConfigFilePath string `json:"-"`
}

// Ensure fills defaults and validates the robot.
func (r *Robot) Ensure() error {
	if r.LengthUnits == "" {
		r.LengthUnits = units.Inches
	}
	if r.Timestep == 0 {
		r.Timestep = DefaultTimestep
	}
	return r.Validate("")
}

// Validate returns every problem found in the robot.
func (r *Robot) Validate(path string) error {
	var errs error
	if r.Name == "" {
		errs = multierr.Append(errs, goutils.NewConfigValidationFieldRequiredError(path, "name"))
	}
	if err := r.DriveType.Validate(); err != nil {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(joinPath(path, "drivetype"), err))
	}
	if _, err := units.Normalize(r.LengthUnits); err != nil {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(joinPath(path, "lengthunits"), err))
	}
	if err := checkNumber(path, "effectivewidth", r.EffectiveWidth, false); err != nil {
		errs = multierr.Append(errs, err)
	} else if r.DriveType == DriveTank && r.EffectiveWidth == 0 {
		errs = multierr.Append(errs, newValidationError(path, "effectivewidth", "must be positive for a tank drive, got %v",
			r.EffectiveWidth))
	}
	errs = multierr.Append(errs, checkNumber(path, "effectivelength", r.EffectiveLength, false))
	errs = multierr.Append(errs, checkNumber(path, "timestep", r.Timestep, true))
	errs = multierr.Append(errs, checkNumber(path, "maxvelocity", r.MaxVelocity, false))
	errs = multierr.Append(errs, checkNumber(path, "maxacceleration", r.MaxAcceleration, false))
	return errs
}

// WidthIn returns the effective width expressed in the given units.
func (r *Robot) WidthIn(unit string) (float64, error) {
	return units.Convert(r.EffectiveWidth, r.LengthUnits, unit)
}

// LimitsIn returns the robot's max velocity and acceleration expressed in the given units.
// Zero means the robot does not limit that quantity.
func (r *Robot) LimitsIn(unit string) (maxVelocity, maxAcceleration float64, err error) {
	factor, err := units.Convert(1, r.LengthUnits, unit)
	if err != nil {
		return 0, 0, err
	}
	return r.MaxVelocity * factor, r.MaxAcceleration * factor, nil
}
