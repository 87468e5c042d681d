package motionplan

import (
	"fmt"

	"github.com/pkg/errors"

	"go.viam.com/pathgen/utils"
)

const velocityTolerance = 1e-9

var (
	// ErrEmptyPath is returned when there are no poses to resample.
	ErrEmptyPath = errors.New("path has no poses")
	// ErrInvalidStep is returned when the resampling step is not positive.
	ErrInvalidStep = errors.New("resampling step must be positive")
	// ErrProfileStalled is returned when a velocity ceiling of zero sits over a nonzero distance,
	// which the robot could never traverse.
	ErrProfileStalled = errors.New("velocity profile stalls on a zero velocity ceiling")
)

// NewInvalidProfileParamError is returned when a profile parameter cannot be used.
func NewInvalidProfileParamError(name string, value float64, requirement string) error {
	return errors.Errorf("invalid profile parameter %s: %v must be %s", name, value, requirement)
}

// InfeasibleProfileError reports that a requested boundary velocity could not be met within the
// acceleration limit over the length of the path. The trajectory returned alongside it uses the
// achieved values.
type InfeasibleProfileError struct {
	StartRequested float64
	StartAchieved  float64
	EndRequested   float64
	EndAchieved    float64
}

// StartAdjusted returns whether the start velocity was lowered.
func (e *InfeasibleProfileError) StartAdjusted() bool {
	return !utils.Float64AlmostEqual(e.StartRequested, e.StartAchieved, velocityTolerance)
}

// EndAdjusted returns whether the end velocity was changed.
func (e *InfeasibleProfileError) EndAdjusted() bool {
	return !utils.Float64AlmostEqual(e.EndRequested, e.EndAchieved, velocityTolerance)
}

func (e *InfeasibleProfileError) Error() string {
	msg := "infeasible velocity profile:"
	if e.StartAdjusted() {
		msg += fmt.Sprintf(" start velocity %.4g achieved as %.4g", e.StartRequested, e.StartAchieved)
	}
	if e.EndAdjusted() {
		if e.StartAdjusted() {
			msg += ","
		}
		msg += fmt.Sprintf(" end velocity %.4g achieved as %.4g", e.EndRequested, e.EndAchieved)
	}
	return msg
}
